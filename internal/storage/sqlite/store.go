// Package sqlite provides a record store on modernc.org/sqlite. It is the
// portable fallback for platforms where neither embedded KV engine is a fit;
// the driver is pure Go, so it builds everywhere the rest of the module does.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mighty840/walletvault/internal/storage"
)

// StorageID names this backend variant.
const StorageID = string(storage.BackendSQLite)

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

func init() {
	storage.Register(storage.BackendSQLite, func(path string) (storage.Adapter, error) {
		return Open(path)
	})
}

// Store keeps records in a single key/value table. SQLite serializes writers
// through its own locking; WAL keeps readers off the write path.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: storage path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: create parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	for _, stmt := range []string{pragmaJournalModeWAL, pragmaBusyTimeout} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: configure %q: %w", stmt, err)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create records table: %w", err)
	}

	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set db file permissions: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) ID() string {
	return StorageID
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrRecordNotFound
		}
		return "", fmt.Errorf("sqlite: get %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO records(key, value) VALUES(?, ?)`, key, value); err != nil {
		return fmt.Errorf("sqlite: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) BatchSet(ctx context.Context, records map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: batch set: begin: %w", err)
	}

	for key, value := range records {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO records(key, value) VALUES(?, ?)`, key, value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: batch set %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: batch set: commit: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
