package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS insight_cache (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// SQLiteStore persists entries in a single SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(path string, optFns ...func(o *Options)) (*SQLiteStore, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var (
		db  *sql.DB
		err error
	)
	if path == ":memory:" {
		db, err = sql.Open("sqlite", ":memory:")
		if err == nil {
			// every connection would get its own empty database
			db.SetMaxOpenConns(1)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: create database directory: %w", err)
		}
		db, err = sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	}
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &SQLiteStore{db: db, opts: opts}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var (
		value   []byte
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, created_at FROM insight_cache WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s/%s: %w", namespace, key, err)
	}
	if s.opts.expired(time.Unix(0, created)) {
		return nil, ErrNotFound
	}
	return value, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insight_cache (namespace, key, value, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		namespace, key, value, s.opts.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM insight_cache WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("cache: delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Purge removes expired entries and reports how many were dropped.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	if s.opts.TTL <= 0 {
		return 0, nil
	}
	cutoff := s.opts.Now().Add(-s.opts.TTL).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM insight_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: purge: %w", err)
	}
	return res.RowsAffected()
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
