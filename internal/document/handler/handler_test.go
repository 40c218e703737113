package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/internal/database"
	"github.com/prenv/catalog-api/internal/document/service"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) (*gin.Engine, *database.MemoryServer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := database.NewMemoryServer("testdb")
	mgr := database.NewManager(srv.Dial, "memory")
	svc := service.New(mgr, service.WithPRNumber("42"))
	g := gin.New()
	RegisterRoutes(g, svc)
	return g, srv
}

func do(t *testing.T, g *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func TestUserLifecycle(t *testing.T) {
	g, _ := setup(t)

	w, created := do(t, g, http.MethodPost, "/api/users", `{"name":"Alice","email":"alice@x.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "success", created["status"])
	require.Equal(t, "User created successfully", created["message"])
	id, ok := created["user_id"].(string)
	require.True(t, ok)
	require.Len(t, id, 24)

	w, got := do(t, g, http.MethodGet, "/api/users/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	user := got["user"].(map[string]any)
	require.Equal(t, id, user["_id"])
	require.Equal(t, "Alice", user["name"])
	require.Equal(t, "alice@x.com", user["email"])
	ts, ok := user["created_at"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)

	w, upd := do(t, g, http.MethodPut, "/api/users/"+id, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "User updated successfully", upd["message"])

	w, got = do(t, g, http.MethodGet, "/api/users/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	user = got["user"].(map[string]any)
	require.Equal(t, "admin", user["role"])
	require.Equal(t, "Alice", user["name"])
	require.IsType(t, "", user["updated_at"])

	w, del := do(t, g, http.MethodDelete, "/api/users/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "User deleted successfully", del["message"])

	w, missing := do(t, g, http.MethodGet, "/api/users/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "error", missing["status"])
	require.Equal(t, "User not found", missing["message"])
}

func TestAbsentIdentifiersAre404(t *testing.T) {
	g, _ := setup(t)
	for _, id := range []string{primitive.NewObjectID().Hex(), "xyz"} {
		w, _ := do(t, g, http.MethodGet, "/api/users/"+id, "")
		require.Equal(t, http.StatusNotFound, w.Code, id)
		w, _ = do(t, g, http.MethodPut, "/api/users/"+id, `{"name":"n"}`)
		require.Equal(t, http.StatusNotFound, w.Code, id)
		w, _ = do(t, g, http.MethodDelete, "/api/users/"+id, "")
		require.Equal(t, http.StatusNotFound, w.Code, id)
	}
}

func TestMalformedBodyIs500(t *testing.T) {
	g, _ := setup(t)
	for _, body := range []string{`{"name":`, `[1,2]`, `null`} {
		w, out := do(t, g, http.MethodPost, "/api/users", body)
		require.Equal(t, http.StatusInternalServerError, w.Code, body)
		require.Equal(t, "error", out["status"])
		require.NotEmpty(t, out["error"])
	}
}

func TestClientIdentifierIsIgnored(t *testing.T) {
	g, _ := setup(t)
	w, created := do(t, g, http.MethodPost, "/api/users", `{"_id":"abc","name":"Bob"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEqual(t, "abc", created["user_id"])

	w, got := do(t, g, http.MethodGet, "/api/users/"+created["user_id"].(string), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, created["user_id"], got["user"].(map[string]any)["_id"])
}

func TestSeedAndProducts(t *testing.T) {
	g, _ := setup(t)

	w, first := do(t, g, http.MethodPost, "/init-data", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "success", first["status"])
	require.EqualValues(t, 6, first["products_inserted"])
	require.EqualValues(t, 3, first["users_inserted"])
	require.Equal(t, "/api/products", first["api_products"])

	w, second := do(t, g, http.MethodGet, "/init-data", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "info", second["status"])
	require.Equal(t, "Sample data already exists", second["message"])
	require.EqualValues(t, 6, second["products_count"])
	require.EqualValues(t, 3, second["users_count"])

	w, list := do(t, g, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 6, list["count"])
	for _, p := range list["products"].([]any) {
		item := p.(map[string]any)
		require.IsType(t, "", item["_id"])
		require.IsType(t, "", item["created_at"])
	}

	w, audio := do(t, g, http.MethodGet, "/api/products/category/Audio", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Audio", audio["category"])
	require.EqualValues(t, 2, audio["count"])

	w, none := do(t, g, http.MethodGet, "/api/products/category/Nothing", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 0, none["count"])
	require.Empty(t, none["products"])

	w, users := do(t, g, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 3, users["count"])
}

func TestDatabaseTestEndpoint(t *testing.T) {
	g, _ := setup(t)
	w, out := do(t, g, http.MethodGet, "/api/test-db", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "insert_and_retrieve", out["operation"])
	d := out["document"].(map[string]any)
	require.Equal(t, service.TestRecordMessage, d["message"])
	require.Equal(t, "42", d["pr_number"])
	require.IsType(t, "", d["_id"])
	require.IsType(t, "", d["timestamp"])
}

func TestStoreUnavailable(t *testing.T) {
	g, srv := setup(t)
	srv.SetAvailable(false)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/products", ""},
		{http.MethodGet, "/api/users", ""},
		{http.MethodPost, "/api/users", `{"name":"x"}`},
		{http.MethodGet, "/api/users/" + primitive.NewObjectID().Hex(), ""},
		{http.MethodGet, "/api/test-db", ""},
		{http.MethodPost, "/init-data", ""},
	} {
		w, out := do(t, g, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusInternalServerError, w.Code, tc.path)
		require.Equal(t, "error", out["status"])
		require.Equal(t, "Database connection failed", out["error"])
	}

	srv.SetAvailable(true)
	w, _ := do(t, g, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
}
