package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/document"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeObjects struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func (f *fakeObjects) UploadFile(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.failPut != nil {
		return f.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	f.objects[key] = b
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) GetPresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://minio.local/prenv-snapshots/" + key + "?X-Amz-Signature=x", nil
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))
	require.Equal(t, "pr-42/products/20240309T130507Z.json", SnapshotKey("products", "42", at))
}

func TestExport(t *testing.T) {
	store := &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
	now := time.Date(2024, 3, 9, 13, 5, 7, 0, time.UTC)
	id := primitive.NewObjectID()
	docs := []document.Document{{document.IDField: id, "name": "Mouse", document.CreatedAtField: now}}

	out, err := Export(context.Background(), store, "products", "42", now, docs)
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	require.Equal(t, "pr-42/products/20240309T130507Z.json", out.Key)
	require.Contains(t, out.URL, out.Key)
	require.Equal(t, "application/json", store.types[out.Key])

	var snap Snapshot
	require.NoError(t, json.Unmarshal(store.objects[out.Key], &snap))
	require.Equal(t, "products", snap.Collection)
	require.Equal(t, "42", snap.PRNumber)
	require.Equal(t, "2024-03-09T13:05:07.000Z", snap.TakenAt)
	require.Len(t, snap.Documents, 1)
	require.Equal(t, id.Hex(), snap.Documents[0]["_id"])
	require.Equal(t, "2024-03-09T13:05:07.000Z", snap.Documents[0]["created_at"])
}

func TestExportUploadFailure(t *testing.T) {
	store := &fakeObjects{failPut: errors.New("bucket gone")}
	_, err := Export(context.Background(), store, "users", "1", time.Now(), nil)
	require.ErrorContains(t, err, "bucket gone")
}

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "b"})
	require.ErrorIs(t, err, ErrNotConfigured)
}
