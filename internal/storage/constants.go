package storage

import "strconv"

// SchemaVersion is the layout version this build reads and writes. A store
// persisting any other version refuses to open.
const SchemaVersion uint8 = 1

// Reserved keys. Everything else in the key space belongs to account records.
const (
	schemaVersionKey  = "wallet-schema-version"
	storeIDKey        = "wallet-store-id"
	accountIndexesKey = "wallet-account-indexes"
	accountKeyPrefix  = "wallet-account-"
	builderKey        = "wallet-manager-options"
	secretManagerKey  = "wallet-secret-manager"
)

func accountKey(index uint32) string {
	return accountKeyPrefix + strconv.FormatUint(uint64(index), 10)
}
