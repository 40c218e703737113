package service

import (
	"context"
	"fmt"

	"github.com/prenv/catalog-api/internal/document"
)

// SeedResult reports what Seed did.
type SeedResult struct {
	AlreadySeeded    bool
	ProductsInserted int
	UsersInserted    int
	ProductsCount    int64
	UsersCount       int64
}

// Seed inserts the sample catalog and users unless products already exist.
// Not atomic: concurrent first calls may both insert.
func (s *Service) Seed(ctx context.Context) (*SeedResult, error) {
	products, err := s.collection(ctx, document.ProductsCollection)
	if err != nil {
		return nil, err
	}
	users, err := s.collection(ctx, document.UsersCollection)
	if err != nil {
		return nil, err
	}

	existing, err := products.CountDocuments(ctx, nil)
	observe(document.ProductsCollection, "count", err)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		userCount, err := users.CountDocuments(ctx, nil)
		observe(document.UsersCollection, "count", err)
		if err != nil {
			return nil, fmt.Errorf("count users: %w", err)
		}
		return &SeedResult{AlreadySeeded: true, ProductsCount: existing, UsersCount: userCount}, nil
	}

	now := s.timestamp()
	var productDocs []document.Document
	for _, p := range document.SampleProducts(now) {
		productDocs = append(productDocs, p.Document())
	}
	var userDocs []document.Document
	for _, u := range document.SampleUsers(now) {
		userDocs = append(userDocs, u.Document())
	}

	pids, err := products.InsertMany(ctx, productDocs)
	observe(document.ProductsCollection, "insert_many", err)
	if err != nil {
		return nil, fmt.Errorf("insert sample products: %w", err)
	}
	uids, err := users.InsertMany(ctx, userDocs)
	observe(document.UsersCollection, "insert_many", err)
	if err != nil {
		return nil, fmt.Errorf("insert sample users: %w", err)
	}

	s.record(ctx, "INFO", fmt.Sprintf("sample data initialized: %d products, %d users", len(pids), len(uids)))
	return &SeedResult{
		ProductsInserted: len(pids),
		UsersInserted:    len(uids),
	}, nil
}

// SeedPeople replaces the people collection with the fixed roster and returns
// how many documents were inserted.
func (s *Service) SeedPeople(ctx context.Context) (int, error) {
	col, err := s.collection(ctx, document.PeopleCollection)
	if err != nil {
		return 0, err
	}
	_, err = col.DeleteMany(ctx, nil)
	observe(document.PeopleCollection, "delete_many", err)
	if err != nil {
		return 0, fmt.Errorf("clear people: %w", err)
	}
	var docs []document.Document
	for _, p := range document.SamplePeople() {
		docs = append(docs, p.Document())
	}
	ids, err := col.InsertMany(ctx, docs)
	observe(document.PeopleCollection, "insert_many", err)
	if err != nil {
		return 0, fmt.Errorf("insert people: %w", err)
	}
	s.record(ctx, "INFO", fmt.Sprintf("people collection reset with %d entries", len(ids)))
	return len(ids), nil
}
