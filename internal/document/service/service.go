package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prenv/catalog-api/internal/document"
	"github.com/prenv/catalog-api/internal/document/repository"
	"github.com/prenv/catalog-api/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means no connection to the store could be established.
	ErrUnavailable = errors.New("database connection failed")
)

// CollectionProvider hands out collection references; *database.Manager implements it.
type CollectionProvider interface {
	Collection(ctx context.Context, name string) (repository.Collection, bool)
}

// EventRecorder receives notable events (seeding); the system log implements it.
type EventRecorder interface {
	Record(ctx context.Context, level, message string) error
}

// TestRecordMessage is the message stored by the database test endpoint.
const TestRecordMessage = "Hello from PR environment!"

// Service performs the store operations behind the resource endpoints. Each
// method performs one store call (two for the test record) and returns explicit errors:
// ErrUnavailable, ErrNotFound (also for malformed identifiers) or the raw store error.
type Service struct {
	store    CollectionProvider
	prNumber string
	events   EventRecorder
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithPRNumber(pr string) Option        { return func(s *Service) { s.prNumber = pr } }
func WithEvents(r EventRecorder) Option     { return func(s *Service) { s.events = r } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(store CollectionProvider, opts ...Option) *Service {
	s := &Service{store: store, prNumber: "unknown", now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) collection(ctx context.Context, name string) (repository.Collection, error) {
	col, ok := s.store.Collection(ctx, name)
	if !ok {
		metrics.StoreOperations.WithLabelValues(name, "connect", "unavailable").Inc()
		return nil, ErrUnavailable
	}
	return col, nil
}

func observe(col, op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.StoreOperations.WithLabelValues(col, op, outcome).Inc()
}

func (s *Service) timestamp() time.Time {
	// BSON datetimes hold milliseconds; truncate so reads equal writes.
	return s.now().UTC().Truncate(time.Millisecond)
}

// List returns every document of the collection.
func (s *Service) List(ctx context.Context, collection string) ([]document.Document, error) {
	return s.find(ctx, collection, nil)
}

// ListBy returns documents whose field equals value exactly.
func (s *Service) ListBy(ctx context.Context, collection, field string, value any) ([]document.Document, error) {
	return s.find(ctx, collection, repository.Filter{field: value})
}

func (s *Service) find(ctx context.Context, collection string, filter repository.Filter) ([]document.Document, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, filter)
	observe(collection, "find", err)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return docs, nil
}

// Get fetches one document by its wire identifier.
func (s *Service) Get(ctx context.Context, collection, id string) (document.Document, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	d, err := col.FindOne(ctx, repository.ByID(oid))
	observe(collection, "find_one", err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	return d, nil
}

// Create stamps created_at and inserts the document.
func (s *Service) Create(ctx context.Context, collection string, doc document.Document) (primitive.ObjectID, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return primitive.NilObjectID, err
	}
	d := doc.WithoutID()
	d[document.CreatedAtField] = s.timestamp()
	id, err := col.InsertOne(ctx, d)
	observe(collection, "insert_one", err)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Update merges fields into the document and stamps updated_at.
func (s *Service) Update(ctx context.Context, collection, id string, fields document.Document) error {
	oid, err := document.ParseID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	set := fields.WithoutID()
	set[document.UpdatedAtField] = s.timestamp()
	matched, err := col.UpdateOne(ctx, repository.ByID(oid), set)
	observe(collection, "update_one", err)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document.
func (s *Service) Delete(ctx context.Context, collection, id string) error {
	oid, err := document.ParseID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	deleted, err := col.DeleteOne(ctx, repository.ByID(oid))
	observe(collection, "delete_one", err)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", collection, id, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *Service) Count(ctx context.Context, collection string) (int64, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, nil)
	observe(collection, "count", err)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// WriteTestRecord inserts a test record and reads it back.
func (s *Service) WriteTestRecord(ctx context.Context) (document.Document, error) {
	col, err := s.collection(ctx, document.TestCollection)
	if err != nil {
		return nil, err
	}
	rec := document.TestRecord{Message: TestRecordMessage, Timestamp: s.timestamp(), PRNumber: s.prNumber}
	id, err := col.InsertOne(ctx, rec.Document())
	observe(document.TestCollection, "insert_one", err)
	if err != nil {
		return nil, fmt.Errorf("test record insert: %w", err)
	}
	d, err := col.FindOne(ctx, repository.ByID(id))
	observe(document.TestCollection, "find_one", err)
	if err != nil {
		return nil, fmt.Errorf("test record read back: %w", err)
	}
	return d, nil
}

func (s *Service) record(ctx context.Context, level, msg string) {
	if s.events != nil {
		_ = s.events.Record(ctx, level, msg)
	}
}
