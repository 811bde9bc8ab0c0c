package storage

// Package storage provides the wallet persistence layer: a key-value backend
// adapter contract, transparent at-rest encryption, and a storage manager that
// gates schema versions and maintains the account index registry.
