package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prenv/catalog-api/internal/document"
)

// ObjectStore is the subset of MinIOStorage used by the exporter.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// DefaultLinkTTL is how long a presigned snapshot link stays valid.
const DefaultLinkTTL = 24 * time.Hour

// Snapshot is the JSON document written for one exported collection.
type Snapshot struct {
	Collection string           `json:"collection"`
	PRNumber   string           `json:"pr_number"`
	TakenAt    string           `json:"taken_at"`
	Count      int              `json:"count"`
	Documents  []map[string]any `json:"documents"`
}

// SnapshotKey names the object holding a snapshot:
// pr-<pr>/<collection>/<UTC timestamp>.json
func SnapshotKey(collection, prNumber string, t time.Time) string {
	return fmt.Sprintf("pr-%s/%s/%s.json", prNumber, collection, t.UTC().Format("20060102T150405Z"))
}

// EncodeSnapshot renders documents in their wire form.
func EncodeSnapshot(collection, prNumber string, t time.Time, docs []document.Document) ([]byte, error) {
	return json.MarshalIndent(Snapshot{
		Collection: collection,
		PRNumber:   prNumber,
		TakenAt:    document.FormatTime(t),
		Count:      len(docs),
		Documents:  document.ProjectAll(docs),
	}, "", "  ")
}

// Exported describes an uploaded snapshot.
type Exported struct {
	Key   string
	URL   string
	Count int
}

// Export uploads a snapshot of docs and returns its key and a presigned link.
func Export(ctx context.Context, store ObjectStore, collection, prNumber string, now time.Time, docs []document.Document) (*Exported, error) {
	body, err := EncodeSnapshot(collection, prNumber, now, docs)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	key := SnapshotKey(collection, prNumber, now)
	if err := store.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	link, err := store.GetPresignedURL(ctx, key, DefaultLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	return &Exported{Key: key, URL: link, Count: len(docs)}, nil
}
