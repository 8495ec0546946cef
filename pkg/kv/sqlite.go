package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgdb "github.com/unowned-ai/nin/pkg/db"
)

const (
	getItemStatement = `
	SELECT value FROM kv_items WHERE key = ?
	`

	setItemStatement = `
	INSERT INTO kv_items (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()
	`

	deleteItemStatement = `
	DELETE FROM kv_items WHERE key = ?
	`

	listKeysStatement = `
	SELECT key FROM kv_items ORDER BY key ASC
	`
)

// SQLiteStore persists items in the kv_items table of a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens the database described by opts and brings its schema up
// to pkgdb.TargetSchemaVersion.
func OpenSQLite(opts pkgdb.Options, log *zap.Logger) (*SQLiteStore, error) {
	conn, err := pkgdb.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := pkgdb.Upgrade(conn, opts.Path, pkgdb.TargetSchemaVersion, log); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", opts.Path, err)
	}
	return &SQLiteStore{db: conn, name: opts.Path}, nil
}

// NewSQLiteStore wraps an already initialized connection.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: conn}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getItemStatement, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, setItemStatement, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteItemStatement, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listKeysStatement)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// Close checkpoints the WAL back into the main file before closing.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	// TRUNCATE waits for readers and writes the WAL back to the main DB; it is a
	// no-op outside WAL mode.
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return s.db.Close()
}
