// Package wallet holds the account-manager builder the persistence layer
// round-trips. Assembling a live wallet from it is out of scope here.
package wallet

import (
	"encoding/json"

	"github.com/mighty840/walletvault/internal/secrets"
)

// Builder is the wallet-level configuration persisted by the storage
// manager. The secret manager is deliberately excluded from the builder's
// own JSON form; its snapshot is stored separately under policy.
type Builder struct {
	StoragePath   string          `json:"storagePath,omitempty"`
	CoinType      uint32          `json:"coinType,omitempty"`
	ClientOptions json.RawMessage `json:"clientOptions,omitempty"`

	SecretManager *secrets.Config `json:"-"`
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) WithStoragePath(path string) *Builder {
	b.StoragePath = path
	return b
}

func (b *Builder) WithCoinType(coinType uint32) *Builder {
	b.CoinType = coinType
	return b
}

func (b *Builder) WithClientOptions(options json.RawMessage) *Builder {
	b.ClientOptions = options
	return b
}

func (b *Builder) WithSecretManager(config *secrets.Config) *Builder {
	b.SecretManager = config
	return b
}
