package storage

import "errors"

var (
	// ErrRecordNotFound is returned by Adapter.Get when the key is absent.
	// Every backend variant normalizes its own missing-key signal to this
	// sentinel; none of them return an empty value instead.
	ErrRecordNotFound = errors.New("storage: record not found")

	// ErrDecryptionFailed is returned when an encrypted value fails its
	// integrity check on read. No partial plaintext is ever returned.
	ErrDecryptionFailed = errors.New("storage: decryption failed")

	// ErrUnsupportedSchemaVersion is returned when the persisted schema
	// version does not match the version this build writes. The store
	// refuses to open rather than misinterpret an incompatible layout.
	ErrUnsupportedSchemaVersion = errors.New("storage: unsupported schema version")

	// ErrInconsistentRegistry is returned when the account index registry
	// references an index with no persisted account record.
	ErrInconsistentRegistry = errors.New("storage: account registry references missing record")

	// ErrUnknownBackend is returned by Open for a backend kind that was
	// never registered.
	ErrUnknownBackend = errors.New("storage: unknown backend")
)
