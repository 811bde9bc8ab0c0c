// Package bolt provides the embedded paged B-tree backend on go.etcd.io/bbolt.
package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mighty840/walletvault/internal/storage"
)

// StorageID names this backend variant.
const StorageID = string(storage.BackendBolt)

const recordBucket = "records"

func init() {
	storage.Register(storage.BackendBolt, func(path string) (storage.Adapter, error) {
		return Open(path)
	})
}

// Store is a BoltDB-backed record store. Bolt allows one write transaction at
// a time; reads run in their own snapshot transactions.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path and ensures the record
// bucket exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bolt: storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create record bucket: %w", err)
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

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(recordBucket)).Get([]byte(key))
		if payload == nil {
			return storage.ErrRecordNotFound
		}
		value = string(payload)
		return nil
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(recordBucket)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("bolt: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) BatchSet(ctx context.Context, records map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// One Update call is one transaction: all puts commit together or the
	// whole transaction rolls back.
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		for key, value := range records {
			if err := bucket.Put([]byte(key), []byte(value)); err != nil {
				return fmt.Errorf("put %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt: batch set: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Bucket.Delete on an absent key is a no-op.
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(recordBucket)).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt: remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
