package handlers

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/document/repository"
	"github.com/prenv/catalog-api/internal/systemlog"
)

// Store is the part of the connection manager the status endpoints need.
type Store interface {
	IsConnected(ctx context.Context) bool
	Database(ctx context.Context) (repository.Database, bool)
}

// Counter counts documents; *service.Service implements it.
type Counter interface {
	Count(ctx context.Context, collection string) (int64, error)
}

// LogReader lists recent system log entries; *systemlog.Store implements it.
type LogReader interface {
	Recent(ctx context.Context, limit int) ([]systemlog.Entry, error)
}

// StatusHandler serves the health, readiness, welcome and system log endpoints.
type StatusHandler struct {
	cfg      *config.Config
	store    Store
	counter  Counter
	logs     LogReader
	redis    func(ctx context.Context) error
	started  time.Time
	now      func() time.Time
	hostname string
}

type StatusOption func(*StatusHandler)

// WithSystemLog exposes the system log under /api/system-logs.
func WithSystemLog(r LogReader) StatusOption { return func(h *StatusHandler) { h.logs = r } }

// WithRedisCheck makes Redis a readiness dependency.
func WithRedisCheck(check func(ctx context.Context) error) StatusOption {
	return func(h *StatusHandler) { h.redis = check }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) StatusOption { return func(h *StatusHandler) { h.now = now } }

func NewStatusHandler(cfg *config.Config, store Store, counter Counter, opts ...StatusOption) *StatusHandler {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	h := &StatusHandler{cfg: cfg, store: store, counter: counter, now: time.Now, hostname: host}
	for _, o := range opts {
		o(h)
	}
	h.started = h.now()
	return h
}

// Register mounts the status routes.
func (h *StatusHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Welcome)
	r.GET("/welcome", h.Welcome)
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/api/system-logs", h.SystemLogs)
}

// wantsJSON reports whether the caller asked for JSON rather than a page.
func wantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
