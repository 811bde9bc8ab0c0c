// Package badgerdb provides the log-structured backend on dgraph-io/badger.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/mighty840/walletvault/internal/storage"
)

// StorageID names this backend variant.
const StorageID = string(storage.BackendBadger)

func init() {
	storage.Register(storage.BackendBadger, func(path string) (storage.Adapter, error) {
		return Open(path)
	})
}

// Store is a Badger-backed record store. Badger serializes commits through
// its transaction oracle; reads run against a consistent snapshot.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database directory at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("badgerdb: storage path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerdb: open %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) ID() string {
	return StorageID
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", storage.ErrRecordNotFound
		}
		return "", fmt.Errorf("badgerdb: get %q: %w", key, err)
	}
	return string(value), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badgerdb: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) BatchSet(ctx context.Context, records map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// All sets share one transaction and commit atomically. A batch
	// exceeding badger's transaction size limit fails with ErrTxnTooBig
	// and nothing commits.
	err := s.db.Update(func(txn *badger.Txn) error {
		for key, value := range records {
			if err := txn.Set([]byte(key), []byte(value)); err != nil {
				return fmt.Errorf("set %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgerdb: batch set: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Deleting an absent key commits cleanly.
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badgerdb: remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
