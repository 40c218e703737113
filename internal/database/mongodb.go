package database

import (
	"context"
	"fmt"
	"time"

	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/document/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
// timeout bounds both connection establishment and server selection so a dead
// server fails fast instead of hanging request goroutines.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MongoDialer returns a DialFunc opening sessions against the configured server.
func MongoDialer(cfg config.MongoDBConfig) DialFunc {
	return func(ctx context.Context) (Session, error) {
		client, err := ConnectMongo(ctx, cfg.ConnectionURI(), cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return &mongoSession{client: client, db: repository.NewMongoDatabase(client.Database(cfg.Database))}, nil
	}
}

type mongoSession struct {
	client *mongo.Client
	db     *repository.MongoDatabase
}

func (s *mongoSession) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoSession) Database() repository.Database { return s.db }

func (s *mongoSession) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
