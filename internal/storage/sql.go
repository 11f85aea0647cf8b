package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const slotsSchema = `
CREATE TABLE IF NOT EXISTS slots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLSlot keeps slots in a "slots" table. SQLite and Postgres share the
// schema and differ only in placeholder syntax.
type SQLSlot struct {
	db       *sql.DB
	getQuery string
	setQuery string
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under the server.
	db.SetMaxOpenConns(1)
	return newSQLSlot(ctx, db, "?")
}

func OpenPostgres(ctx context.Context, dsn string) (*SQLSlot, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return newSQLSlot(ctx, db, "$")
}

func newSQLSlot(ctx context.Context, db *sql.DB, placeholder string) (*SQLSlot, error) {
	if _, err := db.ExecContext(ctx, slotsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	p := func(n int) string {
		if placeholder == "$" {
			return fmt.Sprintf("$%d", n)
		}
		return "?"
	}
	return &SQLSlot{
		db:       db,
		getQuery: "SELECT value FROM slots WHERE key = " + p(1),
		setQuery: fmt.Sprintf(`INSERT INTO slots (key, value, updated_at) VALUES (%s, %s, %s)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			p(1), p(2), p(3)),
	}, nil
}

func (s *SQLSlot) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLSlot) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, value, now); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLSlot) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLSlot) Close() error {
	return s.db.Close()
}
