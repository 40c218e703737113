package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/prenv/catalog-api/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDatabase implements Database over a *mongo.Database.
type MongoDatabase struct {
	db *mongo.Database
}

func NewMongoDatabase(db *mongo.Database) *MongoDatabase {
	return &MongoDatabase{db: db}
}

func (m *MongoDatabase) Name() string { return m.db.Name() }

func (m *MongoDatabase) Collection(name string) Collection {
	return NewMongoCollection(m.db.Collection(name))
}

func (m *MongoDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	return m.db.ListCollectionNames(ctx, bson.D{})
}

// ServerVersion runs buildInfo against the database.
func (m *MongoDatabase) ServerVersion(ctx context.Context) (string, error) {
	var info struct {
		Version string `bson:"version"`
	}
	if err := m.db.RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info); err != nil {
		return "", fmt.Errorf("buildInfo: %w", err)
	}
	if info.Version == "" {
		return "unknown", nil
	}
	return info.Version, nil
}

// MongoCollection implements Collection over a *mongo.Collection. Documents
// are decoded as bson.M so arbitrary fields pass through untouched.
type MongoCollection struct {
	col *mongo.Collection
}

func NewMongoCollection(col *mongo.Collection) *MongoCollection {
	return &MongoCollection{col: col}
}

func (m *MongoCollection) Name() string { return m.col.Name() }

func (m *MongoCollection) Find(ctx context.Context, filter Filter) ([]document.Document, error) {
	cur, err := m.col.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []document.Document{}
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, document.Document(d))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoCollection) FindOne(ctx context.Context, filter Filter) (document.Document, error) {
	var d bson.M
	err := m.col.FindOne(ctx, toBSON(filter)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return document.Document(d), nil
}

func (m *MongoCollection) InsertOne(ctx context.Context, doc document.Document) (primitive.ObjectID, error) {
	res, err := m.col.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(res.InsertedID)
}

func (m *MongoCollection) InsertMany(ctx context.Context, docs []document.Document) ([]primitive.ObjectID, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	batch := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, bson.M(d))
	}
	res, err := m.col.InsertMany(ctx, batch)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		id, err := insertedID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MongoCollection) UpdateOne(ctx context.Context, filter Filter, set document.Document) (int64, error) {
	res, err := m.col.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(set.WithoutID())})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (m *MongoCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	res, err := m.col.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := m.col.DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoCollection) CountDocuments(ctx context.Context, filter Filter) (int64, error) {
	return m.col.CountDocuments(ctx, toBSON(filter))
}

func toBSON(f Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func insertedID(raw interface{}) (primitive.ObjectID, error) {
	id, ok := raw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", raw)
	}
	return id, nil
}
