// Package systemlog keeps an append-only table of service events (startup,
// store connectivity, seeding) in a local sqlite file.
package systemlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var ErrDisabled = errors.New("system log disabled")

// Entry is one logged event.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	PRNumber  string    `json:"pr_number"`
}

// Store writes and reads entries. A nil *Store is valid and reports ErrDisabled
// on reads and drops writes.
type Store struct {
	db       *sql.DB
	prNumber string
	now      func() time.Time
}

// Open opens (creating if needed) the sqlite file at path and migrates it.
func Open(path, prNumber string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("system log dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, prNumber: prNumber, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS system_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			level TEXT NOT NULL DEFAULT 'INFO',
			message TEXT NOT NULL,
			pr_number TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_system_logs_timestamp ON system_logs(timestamp DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record appends an entry. Level is upper-cased; empty means INFO.
func (s *Store) Record(ctx context.Context, level, message string) error {
	if s == nil {
		return nil
	}
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		level = "INFO"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_logs (timestamp, level, message, pr_number) VALUES (?, ?, ?, ?)`,
		s.now().UTC().UnixMilli(), level, message, s.prNumber)
	return err
}

// Recent returns up to limit entries, newest first. limit is clamped to
// [1, MaxLimit]; zero or negative means DefaultLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, level, message, pr_number FROM system_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &ms, &e.Level, &e.Message, &e.PRNumber); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
