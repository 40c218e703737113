package database

import (
	"context"
	"sync"
	"time"

	"github.com/prenv/catalog-api/internal/document/repository"
	"github.com/prenv/catalog-api/pkg/logger"
	"github.com/prenv/catalog-api/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Session is an open connection to the document store. Implementations must
// be safe for concurrent use; *mongo.Client is.
type Session interface {
	Ping(ctx context.Context) error
	Database() repository.Database
	Disconnect(ctx context.Context) error
}

// DialFunc opens a new Session.
type DialFunc func(ctx context.Context) (Session, error)

// EventRecorder receives connection lifecycle events (the system log implements it).
type EventRecorder interface {
	Record(ctx context.Context, level, message string) error
}

// DefaultPingTimeout bounds a liveness check.
const DefaultPingTimeout = 2 * time.Second

// Manager owns the single shared store session of the process. It connects
// lazily and reconnects when a lookup finds no live handle. Concurrent lookups
// share one dial; the mutex only guards the handle pointer. Every failure
// collapses to "unavailable" for callers.
type Manager struct {
	dial        DialFunc
	target      string
	pingTimeout time.Duration
	events      EventRecorder
	log         zerolog.Logger

	flight singleflight.Group

	mu   sync.Mutex
	sess Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithEvents records connect successes and failures.
func WithEvents(r EventRecorder) Option { return func(m *Manager) { m.events = r } }

// WithPingTimeout overrides DefaultPingTimeout.
func WithPingTimeout(d time.Duration) Option { return func(m *Manager) { m.pingTimeout = d } }

// NewManager creates a manager; target is a human readable description of
// the server used in log lines (never the URI, which may carry credentials).
func NewManager(dial DialFunc, target string, opts ...Option) *Manager {
	m := &Manager{
		dial:        dial,
		target:      target,
		pingTimeout: DefaultPingTimeout,
		log:         logger.Component("database"),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Connect opens the session unless one is already held. On failure the
// handle stays cleared and the cause is logged and returned.
func (m *Manager) Connect(ctx context.Context) error {
	_, err := m.session(ctx)
	return err
}

func (m *Manager) current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// session returns the held session or joins the single in-flight dial.
// Callers wait for that dial or their own ctx, whichever ends first.
func (m *Manager) session(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sess := m.current(); sess != nil {
		return sess, nil
	}
	// The dial outlives any single caller; its own timeout bounds it.
	dctx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("dial", func() (any, error) { return m.dialOnce(dctx) })
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) dialOnce(ctx context.Context) (Session, error) {
	if sess := m.current(); sess != nil {
		return sess, nil
	}
	sess, err := m.dial(ctx)
	if err != nil {
		metrics.StoreConnects.WithLabelValues("failure").Inc()
		m.log.Error().Err(err).Str("target", m.target).Msg("document store connection failed")
		m.record(ctx, "ERROR", "document store connection failed: "+err.Error())
		return nil, err
	}
	m.mu.Lock()
	m.sess = sess
	m.mu.Unlock()
	metrics.StoreConnects.WithLabelValues("success").Inc()
	m.log.Info().Str("target", m.target).Msg("connected to document store")
	m.record(ctx, "INFO", "connected to document store "+m.target)
	return sess, nil
}

// Database returns the active database, connecting first when needed.
func (m *Manager) Database(ctx context.Context) (repository.Database, bool) {
	sess, err := m.session(ctx)
	if err != nil {
		return nil, false
	}
	return sess.Database(), true
}

// Collection returns a reference to the named collection, connecting first
// when needed. ok is false when the store is unavailable.
func (m *Manager) Collection(ctx context.Context, name string) (repository.Collection, bool) {
	db, ok := m.Database(ctx)
	if !ok {
		return nil, false
	}
	return db.Collection(name), true
}

// IsConnected runs a liveness check. Without a handle it first makes a single
// connection attempt so a recovered server is noticed on the next check.
func (m *Manager) IsConnected(ctx context.Context) bool {
	sess, err := m.session(ctx)
	if err != nil {
		return false
	}
	pctx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()
	if err := sess.Ping(pctx); err != nil {
		m.log.Warn().Err(err).Str("target", m.target).Msg("liveness check failed")
		return false
	}
	return true
}

// Close disconnects the held session, if any.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil
	}
	err := m.sess.Disconnect(ctx)
	m.sess = nil
	return err
}

func (m *Manager) record(ctx context.Context, level, msg string) {
	if m.events == nil {
		return
	}
	if err := m.events.Record(ctx, level, msg); err != nil {
		m.log.Warn().Err(err).Msg("failed to record system log event")
	}
}
