package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/database"
	"github.com/prenv/catalog-api/internal/document/service"
	"github.com/prenv/catalog-api/internal/systemlog"
	"github.com/prenv/catalog-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{PRNumber: "123", Debug: true},
		MongoDB: config.MongoDBConfig{Backend: config.BackendMemory, Host: "mongo-pr-123", Port: 27017, Database: "mercor_dev"},
	}
}

type fixture struct {
	engine *gin.Engine
	srv    *database.MemoryServer
	svc    *service.Service
}

func newFixture(t *testing.T, opts ...StatusOption) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := database.NewMemoryServer("mercor_dev")
	mgr := database.NewManager(srv.Dial, "memory", database.WithPingTimeout(time.Second))
	svc := service.New(mgr, service.WithPRNumber("123"))
	h := NewStatusHandler(testConfig(), mgr, svc, opts...)
	g := gin.New()
	h.Register(g)
	return &fixture{engine: g, srv: srv, svc: svc}
}

func (f *fixture) get(t *testing.T, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthJSON(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/health", "Accept", "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "connected", body["database"])
	require.Equal(t, "mercor_dev", body["environment"])
	require.Equal(t, "mongo-pr-123", body["host"])
	require.Equal(t, "27017", body["port"])
	require.Equal(t, "123", body["pr_number"])
	require.Equal(t, true, body["debug"])
	require.NotEmpty(t, body["timestamp"])
	require.NotContains(t, body, "additional_info")
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreUp))
}

func TestHealthFollowsStoreBothWays(t *testing.T) {
	f := newFixture(t)
	status := func() string {
		w := f.get(t, "/health?format=json")
		require.Equal(t, http.StatusOK, w.Code)
		return decode(t, w)["status"].(string)
	}

	require.Equal(t, "healthy", status())
	f.srv.SetAvailable(false)
	require.Equal(t, "unhealthy", status())
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.StoreUp))
	f.srv.SetAvailable(true)
	require.Equal(t, "healthy", status())
}

func TestHealthUnreachableFromStart(t *testing.T) {
	f := newFixture(t)
	f.srv.SetAvailable(false)
	w := f.get(t, "/health?format=json&details=true")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "unhealthy", body["status"])
	require.Equal(t, "disconnected", body["database"])
	require.Empty(t, body["mongodb_stats"])
}

func TestHealthDetails(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Seed(context.Background())
	require.NoError(t, err)

	w := f.get(t, "/health?format=json&details=true")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	info := body["additional_info"].(map[string]any)
	require.Equal(t, ServiceName, info["service"])
	stats := body["mongodb_stats"].(map[string]any)
	require.Equal(t, "mercor_dev", stats["database_name"])
	require.Equal(t, "memory", stats["server_info"])
	require.ElementsMatch(t, []any{"products", "users"}, stats["collections"])
}

func TestHealthHTML(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/health", "Accept", "text/html")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "healthy")
	require.Contains(t, w.Body.String(), "mercor_dev")
}

func TestHealthCancelledRequest(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/health?format=json", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	require.Equal(t, "unhealthy", body["status"])
	require.Equal(t, context.Canceled.Error(), body["error"])
	require.NotEmpty(t, body["timestamp"])
}

func TestWelcome(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Seed(context.Background())
	require.NoError(t, err)

	w := f.get(t, "/welcome?format=json")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "123", body["pr_number"])
	require.Equal(t, "mongo-pr-123", body["mongodb_host"])
	require.EqualValues(t, 6, body["products_count"])
	require.EqualValues(t, 3, body["users_count"])
	require.Len(t, body["endpoints"], len(Endpoints))
	for _, e := range body["endpoints"].([]any) {
		url := e.(map[string]any)["url"].(string)
		require.False(t, strings.HasSuffix(url, "/"), "endpoint %s should be advertised without a trailing slash", url)
	}

	w = f.get(t, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "PR 123 environment")
	require.Contains(t, w.Body.String(), `href="/api/products"`)
	require.NotContains(t, w.Body.String(), `href="/api/products/"`)
}

func TestWelcomeStoreDown(t *testing.T) {
	f := newFixture(t)
	f.srv.SetAvailable(false)
	w := f.get(t, "/", "Accept", "application/json")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	require.Equal(t, "Database connection failed", body["error"])

	w = f.get(t, "/")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "MongoDB is not accessible")
}

func TestReady(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	f := newFixture(t, WithRedisCheck(func(ctx context.Context) error { return client.Ping(ctx).Err() }))

	w := f.get(t, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "ready", body["status"])
	deps := body["deps"].(map[string]any)
	require.Equal(t, true, deps["store"])
	require.Equal(t, true, deps["redis"])

	mr.Close()
	w = f.get(t, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, false, decode(t, w)["deps"].(map[string]any)["redis"])
}

func TestReadyStoreDown(t *testing.T) {
	f := newFixture(t)
	f.srv.SetAvailable(false)
	w := f.get(t, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "not_ready", decode(t, w)["status"])
}

func TestSystemLogs(t *testing.T) {
	logs, err := systemlog.Open(filepath.Join(t.TempDir(), "system.db"), "123")
	require.NoError(t, err)
	defer logs.Close()
	for i := 0; i < 5; i++ {
		require.NoError(t, logs.Record(context.Background(), "INFO", fmt.Sprintf("event %d", i)))
	}
	f := newFixture(t, WithSystemLog(logs))

	w := f.get(t, "/api/system-logs?limit=3")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.EqualValues(t, 3, body["count"])
	first := body["logs"].([]any)[0].(map[string]any)
	require.Equal(t, "123", first["pr_number"])

	w = f.get(t, "/api/system-logs?limit=bogus")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 5, decode(t, w)["count"])
}

func TestSystemLogsDisabled(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/api/system-logs")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "error", decode(t, w)["status"])
}
