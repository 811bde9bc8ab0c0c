// Package memory provides the in-memory map backend. Nothing survives the
// process; it exists for tests and ephemeral wallets.
package memory

import (
	"context"
	"sync"

	"github.com/mighty840/walletvault/internal/storage"
)

// StorageID names this backend variant.
const StorageID = string(storage.BackendMemory)

func init() {
	storage.Register(storage.BackendMemory, func(string) (storage.Adapter, error) {
		return New(), nil
	})
}

// Store is a map guarded by a RWMutex. Writers are fully serialized; readers
// observe the last committed state.
type Store struct {
	mu      sync.RWMutex
	records map[string]string
}

func New() *Store {
	return &Store{records: make(map[string]string)}
}

func (s *Store) ID() string {
	return StorageID
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return "", storage.ErrRecordNotFound
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = value
	return nil
}

func (s *Store) BatchSet(ctx context.Context, records map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The map is mutated only after the lock is held and no per-entry step
	// can fail, so the batch is observed all-or-nothing.
	for key, value := range records {
		s.records[key] = value
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *Store) Close() error {
	return nil
}
