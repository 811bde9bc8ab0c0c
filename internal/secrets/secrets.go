// Package secrets models serializable secret-manager configurations and the
// per-variant persistence policy. The cryptographic internals of each secret
// manager are external collaborators; only their restorable configuration is
// represented here.
package secrets

import (
	"errors"
	"fmt"
)

// Kind tags a secret-manager configuration variant.
type Kind string

const (
	// KindMnemonic holds seed material directly. The seed cannot be
	// reconstructed from a serialized form, so this variant is never
	// persisted.
	KindMnemonic Kind = "mnemonic"

	// KindStronghold references an encrypted snapshot file on disk.
	KindStronghold Kind = "stronghold"

	// KindLedgerNano drives a hardware device (or its simulator).
	KindLedgerNano Kind = "ledgerNano"
)

var (
	ErrNoVariant       = errors.New("secrets: config has no variant set")
	ErrAmbiguousConfig = errors.New("secrets: config has more than one variant set")
	ErrNoPolicy        = errors.New("secrets: no persistence policy for variant")
)

// persistable is the persistence policy table. Every variant must have an
// explicit entry; adding a Kind without one makes Persistable return
// ErrNoPolicy instead of silently choosing a default.
var persistable = map[Kind]bool{
	KindMnemonic:   false,
	KindStronghold: true,
	KindLedgerNano: true,
}

// StrongholdConfig locates a stronghold snapshot.
type StrongholdConfig struct {
	SnapshotPath string `json:"snapshotPath"`
}

// LedgerNanoConfig selects a ledger device.
type LedgerNanoConfig struct {
	Simulator bool `json:"simulator"`
}

// Config is a tagged union: exactly one variant field is set. It serializes
// as a single-key JSON object, e.g. {"stronghold":{"snapshotPath":"..."}}.
type Config struct {
	Mnemonic   string            `json:"mnemonic,omitempty"`
	Stronghold *StrongholdConfig `json:"stronghold,omitempty"`
	LedgerNano *LedgerNanoConfig `json:"ledgerNano,omitempty"`
}

// NewMnemonic builds a mnemonic-derived config.
func NewMnemonic(mnemonic string) *Config {
	return &Config{Mnemonic: mnemonic}
}

// NewStronghold builds a stronghold-backed config.
func NewStronghold(snapshotPath string) *Config {
	return &Config{Stronghold: &StrongholdConfig{SnapshotPath: snapshotPath}}
}

// NewLedgerNano builds a ledger-backed config.
func NewLedgerNano(simulator bool) *Config {
	return &Config{LedgerNano: &LedgerNanoConfig{Simulator: simulator}}
}

// Kind reports which variant is set.
func (c *Config) Kind() (Kind, error) {
	var (
		kind  Kind
		count int
	)
	if c.Mnemonic != "" {
		kind, count = KindMnemonic, count+1
	}
	if c.Stronghold != nil {
		kind, count = KindStronghold, count+1
	}
	if c.LedgerNano != nil {
		kind, count = KindLedgerNano, count+1
	}

	switch count {
	case 0:
		return "", ErrNoVariant
	case 1:
		return kind, nil
	default:
		return "", ErrAmbiguousConfig
	}
}

// Persistable consults the policy table for the config's variant.
func (c *Config) Persistable() (bool, error) {
	kind, err := c.Kind()
	if err != nil {
		return false, err
	}

	persist, ok := persistable[kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNoPolicy, kind)
	}
	return persist, nil
}
