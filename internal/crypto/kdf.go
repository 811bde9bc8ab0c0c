package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultArgon2MemoryKiB  uint32 = 64 * 1024
	DefaultArgon2Iterations uint32 = 3
	DefaultArgon2SaltLen           = 16
	MinArgon2MemoryKiB      uint32 = 16 * 1024
)

var ErrInvalidKDFParams = errors.New("invalid kdf parameters")

// Argon2Params tunes the Argon2id passphrase stretch used to derive a store
// encryption key.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     int
}

func DefaultArgon2Params() Argon2Params {
	parallelism := runtime.NumCPU()
	if parallelism > 4 {
		parallelism = 4
	}
	if parallelism < 1 {
		parallelism = 1
	}

	return Argon2Params{
		Memory:      DefaultArgon2MemoryKiB,
		Iterations:  DefaultArgon2Iterations,
		Parallelism: uint8(parallelism),
		SaltLen:     DefaultArgon2SaltLen,
	}
}

func (p Argon2Params) Validate() error {
	switch {
	case p.Memory < MinArgon2MemoryKiB:
		return fmt.Errorf("%w: memory must be >= %d KiB", ErrInvalidKDFParams, MinArgon2MemoryKiB)
	case p.Iterations == 0:
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidKDFParams)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be > 0", ErrInvalidKDFParams)
	case p.SaltLen < 16:
		return fmt.Errorf("%w: salt length must be >= 16", ErrInvalidKDFParams)
	default:
		return nil
	}
}

// KeyFromPassphrase stretches a passphrase into a KeySize store key with
// Argon2id. The same passphrase, salt, and params always yield the same key.
func KeyFromPassphrase(passphrase, salt []byte, params Argon2Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase must not be empty", ErrInvalidKDFParams)
	}
	if len(salt) < params.SaltLen {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidKDFParams, params.SaltLen)
	}

	return argon2.IDKey(passphrase, salt, params.Iterations, params.Memory, params.Parallelism, KeySize), nil
}

// GenerateSalt draws a random KDF salt of the given length.
func GenerateSalt(length int) ([]byte, error) {
	if length < 16 {
		return nil, fmt.Errorf("generate salt: length must be >= 16, got %d", length)
	}
	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
