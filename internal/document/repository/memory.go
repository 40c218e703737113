package repository

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prenv/catalog-api/internal/document"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryVersion is reported as the server version of in-memory databases.
const MemoryVersion = "memory"

// MemoryDatabase is an in-process Database used by unit tests and the
// memory store backend. Availability can be switched off to simulate an outage.
type MemoryDatabase struct {
	name      string
	mu        sync.RWMutex
	cols      map[string]*memoryStore
	available atomic.Bool
}

func NewMemoryDatabase(name string) *MemoryDatabase {
	db := &MemoryDatabase{name: name, cols: map[string]*memoryStore{}}
	db.available.Store(true)
	return db
}

// SetAvailable toggles whether operations succeed.
func (m *MemoryDatabase) SetAvailable(ok bool) { m.available.Store(ok) }

// Available reports the current availability.
func (m *MemoryDatabase) Available() bool { return m.available.Load() }

func (m *MemoryDatabase) Name() string { return m.name }

func (m *MemoryDatabase) Collection(name string) Collection {
	return &MemoryCollection{db: m, name: name}
}

func (m *MemoryDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.cols))
	for n := range m.cols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryDatabase) ServerVersion(ctx context.Context) (string, error) {
	if err := m.check(ctx); err != nil {
		return "", err
	}
	return MemoryVersion, nil
}

func (m *MemoryDatabase) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.available.Load() {
		return ErrUnavailable
	}
	return nil
}

// store returns the backing store of a collection, creating it on first write
// like the real server does.
func (m *MemoryDatabase) store(name string, create bool) *memoryStore {
	m.mu.RLock()
	s, ok := m.cols[name]
	m.mu.RUnlock()
	if ok || !create {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.cols[name]; ok {
		return s
	}
	s = &memoryStore{}
	m.cols[name] = s
	return s
}

type memoryStore struct {
	mu   sync.RWMutex
	docs []document.Document // insertion order
}

// MemoryCollection implements Collection over a MemoryDatabase.
type MemoryCollection struct {
	db   *MemoryDatabase
	name string
}

func (c *MemoryCollection) Name() string { return c.name }

func (c *MemoryCollection) Find(ctx context.Context, filter Filter) ([]document.Document, error) {
	if err := c.db.check(ctx); err != nil {
		return nil, err
	}
	s := c.db.store(c.name, false)
	out := []document.Document{}
	if s == nil {
		return out, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if matches(d, filter) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (c *MemoryCollection) FindOne(ctx context.Context, filter Filter) (document.Document, error) {
	if err := c.db.check(ctx); err != nil {
		return nil, err
	}
	s := c.db.store(c.name, false)
	if s == nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if matches(d, filter) {
			return d.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryCollection) InsertOne(ctx context.Context, doc document.Document) (primitive.ObjectID, error) {
	ids, err := c.InsertMany(ctx, []document.Document{doc})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return ids[0], nil
}

func (c *MemoryCollection) InsertMany(ctx context.Context, docs []document.Document) ([]primitive.ObjectID, error) {
	if err := c.db.check(ctx); err != nil {
		return nil, err
	}
	s := c.db.store(c.name, true)
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		stored := d.Clone()
		if stored == nil {
			stored = document.Document{}
		}
		id, ok := stored.ID()
		if !ok {
			id = primitive.NewObjectID()
			stored[document.IDField] = id
		}
		ids = append(ids, id)
		s.docs = append(s.docs, stored)
	}
	return ids, nil
}

func (c *MemoryCollection) UpdateOne(ctx context.Context, filter Filter, set document.Document) (int64, error) {
	if err := c.db.check(ctx); err != nil {
		return 0, err
	}
	s := c.db.store(c.name, false)
	if s == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if !matches(d, filter) {
			continue
		}
		for k, v := range set.Clone() {
			if k == document.IDField {
				continue
			}
			d[k] = v
		}
		return 1, nil
	}
	return 0, nil
}

func (c *MemoryCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	return c.delete(ctx, filter, 1)
}

func (c *MemoryCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	return c.delete(ctx, filter, -1)
}

func (c *MemoryCollection) delete(ctx context.Context, filter Filter, limit int) (int64, error) {
	if err := c.db.check(ctx); err != nil {
		return 0, err
	}
	s := c.db.store(c.name, false)
	if s == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	kept := s.docs[:0]
	for _, d := range s.docs {
		if (limit < 0 || n < int64(limit)) && matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	s.docs = kept
	return n, nil
}

func (c *MemoryCollection) CountDocuments(ctx context.Context, filter Filter) (int64, error) {
	docs, err := c.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func matches(d document.Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := d[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
