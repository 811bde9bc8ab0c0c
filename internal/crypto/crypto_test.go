package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	nonce, err := RandomNonce()
	require.NoError(t, err)

	plaintext := []byte("account record payload")
	aad := []byte("walletvault:store-1:wallet-account-0")

	ciphertext, err := Seal(testKey(), nonce, plaintext, aad)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)
	require.Len(t, ciphertext, len(plaintext)+Overhead)

	got, err := Open(testKey(), nonce, ciphertext, aad)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	t.Parallel()

	nonce, err := RandomNonce()
	require.NoError(t, err)

	ciphertext, err := Seal(testKey(), nonce, []byte("payload"), nil)
	require.NoError(t, err)

	ciphertext[0] ^= 0x01
	_, err = Open(testKey(), nonce, ciphertext, nil)
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestOpenRejectsWrongAAD(t *testing.T) {
	t.Parallel()

	nonce, err := RandomNonce()
	require.NoError(t, err)

	ciphertext, err := Seal(testKey(), nonce, []byte("payload"), []byte("walletvault:store-1:a"))
	require.NoError(t, err)

	_, err = Open(testKey(), nonce, ciphertext, []byte("walletvault:store-1:b"))
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestSealRejectsBadKeyAndNonceSizes(t *testing.T) {
	t.Parallel()

	nonce, err := RandomNonce()
	require.NoError(t, err)

	_, err = Seal([]byte("short"), nonce, []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidAEADInput)

	_, err = Seal(testKey(), []byte("short"), []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidAEADInput)
}

func TestKeyFromPassphraseIsDeterministic(t *testing.T) {
	t.Parallel()

	params := Argon2Params{Memory: MinArgon2MemoryKiB, Iterations: 1, Parallelism: 1, SaltLen: 16}
	salt := []byte("0123456789abcdef")

	first, err := KeyFromPassphrase([]byte("correct horse battery staple"), salt, params)
	require.NoError(t, err)
	require.Len(t, first, KeySize)

	second, err := KeyFromPassphrase([]byte("correct horse battery staple"), salt, params)
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := KeyFromPassphrase([]byte("correct horse battery staple"), []byte("fedcba9876543210"), params)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestKeyFromPassphraseValidatesInput(t *testing.T) {
	t.Parallel()

	params := DefaultArgon2Params()

	_, err := KeyFromPassphrase(nil, []byte("0123456789abcdef0123456789abcdef"), params)
	require.ErrorIs(t, err, ErrInvalidKDFParams)

	_, err = KeyFromPassphrase([]byte("pass"), []byte("short"), params)
	require.ErrorIs(t, err, ErrInvalidKDFParams)
}

func TestArgon2ParamsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultArgon2Params().Validate())

	bad := DefaultArgon2Params()
	bad.Memory = 1
	require.ErrorIs(t, bad.Validate(), ErrInvalidKDFParams)

	bad = DefaultArgon2Params()
	bad.Iterations = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidKDFParams)

	bad = DefaultArgon2Params()
	bad.SaltLen = 8
	require.ErrorIs(t, bad.Validate(), ErrInvalidKDFParams)
}

func TestGenerateSalt(t *testing.T) {
	t.Parallel()

	salt, err := GenerateSalt(16)
	require.NoError(t, err)
	require.Len(t, salt, 16)

	_, err = GenerateSalt(8)
	require.Error(t, err)
}
