package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Adapter is the capability contract every storage engine variant implements.
// Values are UTF-8 textual encodings of structured records; keys are unique
// within a store instance. Implementations serialize their own writers (one
// active write transaction at a time) while reads observe a previously
// committed snapshot.
type Adapter interface {
	// ID names the backend variant for diagnostics.
	ID() string

	// Get returns the current value for key, or ErrRecordNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts key. Once it returns nil the value is committed per the
	// backend's durability semantics.
	Set(ctx context.Context, key, value string) error

	// BatchSet commits all records as a single atomic unit: either every
	// entry becomes visible or none do.
	BatchSet(ctx context.Context, records map[string]string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend handle.
	Close() error
}

// Backend identifies one of the closed set of storage engine variants.
type Backend string

const (
	BackendBolt    Backend = "bolt"
	BackendBadger  Backend = "badger"
	BackendMemory  Backend = "memory"
	BackendSQLite  Backend = "sqlite"
	DefaultBackend         = BackendBolt
)

// OpenFunc opens a backend instance rooted at path. Path is ignored by
// backends without an on-disk representation.
type OpenFunc func(path string) (Adapter, error)

var (
	backendsMu sync.RWMutex
	backends   = map[Backend]OpenFunc{}
)

// Register makes a backend variant available to Open. It is called from the
// init function of each backend package, database/sql driver style, so a
// build only pays for the engines it imports.
func Register(kind Backend, open OpenFunc) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if open == nil {
		panic("storage: Register called with nil OpenFunc")
	}
	if _, dup := backends[kind]; dup {
		panic(fmt.Sprintf("storage: backend %q registered twice", kind))
	}
	backends[kind] = open
}

// Open constructs the backend variant registered under kind.
func Open(kind Backend, path string) (Adapter, error) {
	backendsMu.RLock()
	open, ok := backends[kind]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownBackend, kind, strings.Join(RegisteredBackends(), ", "))
	}
	return open(path)
}

// RegisteredBackends lists the registered backend kinds in sorted order.
func RegisteredBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	kinds := make([]string, 0, len(backends))
	for kind := range backends {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	return kinds
}
