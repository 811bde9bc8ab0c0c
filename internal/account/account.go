// Package account defines the account records the persistence layer stores.
// Account business logic (address generation, syncing, transfers) lives with
// the wallet, not here.
package account

// Address is a public address derived for an account.
type Address struct {
	Address  string `json:"address"`
	KeyIndex uint32 `json:"keyIndex"`
	Internal bool   `json:"internal"`
}

// Account is one wallet account. Index is unique across the store and keys
// the persisted record.
type Account struct {
	Index           uint32    `json:"index"`
	Alias           string    `json:"alias,omitempty"`
	CoinType        uint32    `json:"coinType"`
	PublicAddresses []Address `json:"publicAddresses,omitempty"`
}
