package database

import (
	"context"
	"sync/atomic"

	"github.com/prenv/catalog-api/internal/document/repository"
)

// MemoryServer stands in for a document-store server: it hands out sessions
// over a single MemoryDatabase and can be taken down and brought back.
type MemoryServer struct {
	db    *repository.MemoryDatabase
	dials atomic.Int64
}

func NewMemoryServer(database string) *MemoryServer {
	return &MemoryServer{db: repository.NewMemoryDatabase(database)}
}

// DB exposes the backing database for test setup.
func (s *MemoryServer) DB() *repository.MemoryDatabase { return s.db }

// SetAvailable simulates the server going down or recovering.
func (s *MemoryServer) SetAvailable(ok bool) { s.db.SetAvailable(ok) }

// Dials reports how many sessions were requested.
func (s *MemoryServer) Dials() int64 { return s.dials.Load() }

// Dial implements DialFunc.
func (s *MemoryServer) Dial(ctx context.Context) (Session, error) {
	s.dials.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.db.Available() {
		return nil, repository.ErrUnavailable
	}
	return &memorySession{db: s.db}, nil
}

type memorySession struct {
	db *repository.MemoryDatabase
}

func (s *memorySession) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.db.Available() {
		return repository.ErrUnavailable
	}
	return nil
}

func (s *memorySession) Database() repository.Database { return s.db }

func (s *memorySession) Disconnect(context.Context) error { return nil }
