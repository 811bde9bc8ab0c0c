package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"github.com/mighty840/walletvault/internal/crypto"
)

// Storage wraps a backend Adapter with optional transparent at-rest
// encryption. With a key configured every value is sealed with
// XChaCha20-Poly1305 before it reaches the adapter and authenticated on the
// way back out, so plaintext is never observable at the adapter boundary.
// Without a key, values pass through unchanged.
//
// Ciphertexts carry associated data binding them to the store ID and the
// record key, so a value copied under a different key fails authentication.
type Storage struct {
	adapter Adapter
	key     *memguard.LockedBuffer
	storeID string
}

// NewStorage wraps adapter. key must be nil (no encryption) or exactly
// crypto.KeySize bytes; the caller's copy is wiped once the key is guarded.
func NewStorage(ctx context.Context, adapter Adapter, key []byte) (*Storage, error) {
	if adapter == nil {
		return nil, errors.New("storage: adapter is nil")
	}

	s := &Storage{adapter: adapter}
	if key != nil {
		if len(key) != crypto.KeySize {
			return nil, fmt.Errorf("%w: encryption key must be %d bytes", crypto.ErrInvalidAEADInput, crypto.KeySize)
		}
		// NewBufferFromBytes wipes the source slice.
		s.key = memguard.NewBufferFromBytes(key)
	}

	storeID, err := s.loadOrCreateStoreID(ctx)
	if err != nil {
		if s.key != nil {
			s.key.Destroy()
		}
		return nil, err
	}
	s.storeID = storeID

	return s, nil
}

// ID reports the wrapped backend's identifier.
func (s *Storage) ID() string {
	return s.adapter.ID()
}

// IsEncrypted reports whether an encryption key is configured.
func (s *Storage) IsEncrypted() bool {
	return s.key != nil
}

// Get fetches and, when a key is configured, authenticated-decrypts the value
// for key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.adapter.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if s.key == nil {
		return value, nil
	}
	return s.decrypt(key, value)
}

// Set encrypts value when a key is configured and writes it through.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.key != nil {
		sealed, err := s.encrypt(key, value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return s.adapter.Set(ctx, key, value)
}

// BatchSet encrypts every value when a key is configured and commits them as
// one atomic unit.
func (s *Storage) BatchSet(ctx context.Context, records map[string]string) error {
	if s.key == nil {
		return s.adapter.BatchSet(ctx, records)
	}

	sealed := make(map[string]string, len(records))
	for key, value := range records {
		ct, err := s.encrypt(key, value)
		if err != nil {
			return err
		}
		sealed[key] = ct
	}
	return s.adapter.BatchSet(ctx, sealed)
}

// Remove deletes key from the backend.
func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.adapter.Remove(ctx, key)
}

// Close destroys the in-memory key and releases the backend handle.
func (s *Storage) Close() error {
	if s.key != nil {
		s.key.Destroy()
		s.key = nil
	}
	return s.adapter.Close()
}

// PersistedSchemaVersion reads the schema version recorded in the store
// without going through the manager's version gate, so even a store this
// build refuses to open can be inspected. ErrRecordNotFound means the store
// was never initialized.
func (s *Storage) PersistedSchemaVersion(ctx context.Context) (uint8, error) {
	value, err := s.Get(ctx, schemaVersionKey)
	if err != nil {
		return 0, err
	}

	var version uint8
	if err := json.Unmarshal([]byte(value), &version); err != nil {
		return 0, fmt.Errorf("decode record %q: %w", schemaVersionKey, err)
	}
	return version, nil
}

// loadOrCreateStoreID reads the persisted store ID, minting one on first
// open. The ID is stored plaintext: it is needed before any value can be
// decrypted and carries no secret material.
func (s *Storage) loadOrCreateStoreID(ctx context.Context) (string, error) {
	storeID, err := s.adapter.Get(ctx, storeIDKey)
	if err == nil {
		return storeID, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return "", fmt.Errorf("load store id: %w", err)
	}

	storeID = uuid.NewString()
	if err := s.adapter.Set(ctx, storeIDKey, storeID); err != nil {
		return "", fmt.Errorf("persist store id: %w", err)
	}
	return storeID, nil
}

func (s *Storage) encrypt(key, value string) (string, error) {
	nonce, err := crypto.RandomNonce()
	if err != nil {
		return "", fmt.Errorf("encrypt record %q: %w", key, err)
	}

	ciphertext, err := crypto.Seal(s.key.Bytes(), nonce, []byte(value), s.recordAAD(key))
	if err != nil {
		return "", fmt.Errorf("encrypt record %q: %w", key, err)
	}

	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

func (s *Storage) decrypt(key, stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: record %q is not valid ciphertext: %v", ErrDecryptionFailed, key, err)
	}
	if len(raw) < crypto.NonceSize+crypto.Overhead {
		return "", fmt.Errorf("%w: record %q ciphertext truncated", ErrDecryptionFailed, key)
	}

	nonce, ciphertext := raw[:crypto.NonceSize], raw[crypto.NonceSize:]
	plaintext, err := crypto.Open(s.key.Bytes(), nonce, ciphertext, s.recordAAD(key))
	if err != nil {
		return "", fmt.Errorf("%w: record %q: %v", ErrDecryptionFailed, key, err)
	}
	return string(plaintext), nil
}

func (s *Storage) recordAAD(key string) []byte {
	return []byte("walletvault:" + s.storeID + ":" + key)
}
