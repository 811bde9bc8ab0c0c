package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mighty840/walletvault/internal/account"
	"github.com/mighty840/walletvault/internal/secrets"
	"github.com/mighty840/walletvault/internal/wallet"
)

// Manager orchestrates schema versioning, the account index registry, and the
// secret-manager persistence policy over an encrypting Storage. One wallet
// session owns one Manager; a single mutex serializes every operation so
// registry updates never interleave.
type Manager struct {
	mu      sync.Mutex
	storage *Storage
	log     *slog.Logger

	// accountIndexes caches the persisted registry. indexesLoaded
	// distinguishes "not yet read" from "read and genuinely empty"; both
	// states behave identically to callers.
	accountIndexes []uint32
	indexesLoaded  bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger attaches a logger. Without it the manager is silent.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager opens the store through the schema-version gate. A fresh store
// gets the current version written; a store persisting any other version
// fails with ErrUnsupportedSchemaVersion and nothing is touched.
func NewManager(ctx context.Context, storage *Storage, opts ...ManagerOption) (*Manager, error) {
	if storage == nil {
		return nil, errors.New("storage: manager requires a storage instance")
	}

	m := &Manager{
		storage: storage,
		log:     slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	version, err := storage.PersistedSchemaVersion(ctx)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		if err := m.setJSON(ctx, schemaVersionKey, SchemaVersion); err != nil {
			return nil, fmt.Errorf("initialize schema version: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read schema version: %w", err)
	case version != SchemaVersion:
		return nil, fmt.Errorf("%w: store has v%d, this build requires v%d", ErrUnsupportedSchemaVersion, version, SchemaVersion)
	}

	return m, nil
}

// ID names the underlying backend variant.
func (m *Manager) ID() string {
	return m.storage.ID()
}

// IsEncrypted reports whether values are encrypted at rest.
func (m *Manager) IsEncrypted() bool {
	return m.storage.IsEncrypted()
}

// Close releases the store handle and wipes the encryption key.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage.Close()
}

// Accounts loads the registry if needed and fetches every registered account
// record. A registered index with no record returns ErrInconsistentRegistry.
func (m *Manager) Accounts(ctx context.Context) ([]account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadIndexes(ctx); err != nil {
		return nil, err
	}

	accounts := make([]account.Account, 0, len(m.accountIndexes))
	for _, index := range m.accountIndexes {
		var acc account.Account
		if err := m.getJSON(ctx, accountKey(index), &acc); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: index %d", ErrInconsistentRegistry, index)
			}
			return nil, fmt.Errorf("load account %d: %w", index, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// SaveAccount upserts an account. The registry entry and the account record
// are committed in one atomic batch, so neither can land without the other.
// Saving the same index twice leaves exactly one registry entry.
func (m *Manager) SaveAccount(ctx context.Context, acc *account.Account) error {
	if acc == nil {
		return errors.New("storage: account is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.DebugContext(ctx, "save account", slog.Uint64("index", uint64(acc.Index)))

	if err := m.loadIndexes(ctx); err != nil {
		return err
	}

	indexes := m.accountIndexes
	if !containsIndex(indexes, acc.Index) {
		indexes = append(append([]uint32(nil), indexes...), acc.Index)
	}

	indexesJSON, err := json.Marshal(indexes)
	if err != nil {
		return fmt.Errorf("encode account indexes: %w", err)
	}
	accountJSON, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode account %d: %w", acc.Index, err)
	}

	if err := m.storage.BatchSet(ctx, map[string]string{
		accountIndexesKey:     string(indexesJSON),
		accountKey(acc.Index): string(accountJSON),
	}); err != nil {
		return fmt.Errorf("save account %d: %w", acc.Index, err)
	}

	m.accountIndexes = indexes
	return nil
}

// RemoveAccount deletes the account record, drops its registry entry, and
// persists the updated registry. The record is removed first: if the second
// write fails, the registry briefly references a missing record and a later
// Accounts call surfaces ErrInconsistentRegistry instead of stale data.
func (m *Manager) RemoveAccount(ctx context.Context, index uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.DebugContext(ctx, "remove account", slog.Uint64("index", uint64(index)))

	if err := m.loadIndexes(ctx); err != nil {
		return err
	}

	if err := m.storage.Remove(ctx, accountKey(index)); err != nil {
		return fmt.Errorf("remove account %d: %w", index, err)
	}

	indexes := m.accountIndexes[:0:0]
	for _, idx := range m.accountIndexes {
		if idx != index {
			indexes = append(indexes, idx)
		}
	}
	if err := m.setJSON(ctx, accountIndexesKey, indexes); err != nil {
		return fmt.Errorf("persist account indexes: %w", err)
	}

	m.accountIndexes = indexes
	return nil
}

// SaveManagerData persists the wallet-level builder configuration and, when
// the policy allows it, a snapshot of the configured secret manager.
// Mnemonic-derived secret managers are never written: their seed cannot be
// reconstructed from a serialized form.
func (m *Manager) SaveManagerData(ctx context.Context, builder *wallet.Builder) error {
	if builder == nil {
		return errors.New("storage: builder is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.DebugContext(ctx, "save manager data")

	if err := m.setJSON(ctx, builderKey, builder); err != nil {
		return fmt.Errorf("save manager data: %w", err)
	}

	if builder.SecretManager == nil {
		return nil
	}

	persist, err := builder.SecretManager.Persistable()
	if err != nil {
		return fmt.Errorf("save secret manager snapshot: %w", err)
	}
	if !persist {
		m.log.DebugContext(ctx, "secret manager variant excluded from persistence")
		return nil
	}

	if err := m.setJSON(ctx, secretManagerKey, builder.SecretManager); err != nil {
		return fmt.Errorf("save secret manager snapshot: %w", err)
	}
	return nil
}

// ManagerData restores the persisted builder, rehydrating the secret manager
// from its snapshot when one exists. A missing snapshot is not an error: it
// means no restorable secret manager was configured. A store that never saw
// SaveManagerData returns ErrRecordNotFound.
func (m *Manager) ManagerData(ctx context.Context) (*wallet.Builder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.DebugContext(ctx, "get manager data")

	var builder wallet.Builder
	if err := m.getJSON(ctx, builderKey, &builder); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load manager data: %w", err)
	}

	var config secrets.Config
	err := m.getJSON(ctx, secretManagerKey, &config)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		// No restorable secret manager was persisted.
	case err != nil:
		return nil, fmt.Errorf("load secret manager snapshot: %w", err)
	default:
		builder.SecretManager = &config
	}

	return &builder, nil
}

// loadIndexes populates the registry cache on first use. Callers hold m.mu.
func (m *Manager) loadIndexes(ctx context.Context) error {
	if m.indexesLoaded {
		return nil
	}

	var indexes []uint32
	err := m.getJSON(ctx, accountIndexesKey, &indexes)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		indexes = nil
	case err != nil:
		return fmt.Errorf("load account indexes: %w", err)
	}

	m.accountIndexes = indexes
	m.indexesLoaded = true
	return nil
}

func (m *Manager) getJSON(ctx context.Context, key string, v any) error {
	value, err := m.storage.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("decode record %q: %w", key, err)
	}
	return nil
}

func (m *Manager) setJSON(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	return m.storage.Set(ctx, key, string(value))
}

func containsIndex(indexes []uint32, index uint32) bool {
	for _, idx := range indexes {
		if idx == index {
			return true
		}
	}
	return false
}

// discardHandler drops all records; it keeps the nil checks out of the hot
// paths when no logger is configured.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
