package repository

import (
	"context"
	"errors"

	"github.com/prenv/catalog-api/internal/document"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable is returned when the backing server cannot be reached.
	ErrUnavailable = errors.New("document store unavailable")
)

// Filter is an equality match on top-level fields. An empty filter matches everything.
type Filter map[string]any

// ByID matches a single document by its native identifier.
func ByID(id primitive.ObjectID) Filter {
	return Filter{document.IDField: id}
}

// Collection is the set of store operations the service layer performs.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter Filter) ([]document.Document, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, filter Filter) (document.Document, error)
	InsertOne(ctx context.Context, doc document.Document) (primitive.ObjectID, error)
	InsertMany(ctx context.Context, docs []document.Document) ([]primitive.ObjectID, error)
	// UpdateOne merges set into the first match and reports how many documents matched.
	UpdateOne(ctx context.Context, filter Filter, set document.Document) (int64, error)
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
}

// Database groups collections and exposes database-level facts.
type Database interface {
	Name() string
	Collection(name string) Collection
	ListCollectionNames(ctx context.Context) ([]string, error)
	ServerVersion(ctx context.Context) (string, error)
}
