package storage_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mighty840/walletvault/internal/crypto"
	"github.com/mighty840/walletvault/internal/storage"
	"github.com/mighty840/walletvault/internal/storage/memory"
)

// testKey returns a fresh key slice per call: NewStorage wipes its input.
func testKey() []byte {
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func TestStoragePassthroughWithoutKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()
	store, err := storage.NewStorage(ctx, adapter, nil)
	require.NoError(t, err)
	require.False(t, store.IsEncrypted())

	require.NoError(t, store.Set(ctx, "a", "1"))

	raw, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", raw)

	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestStorageEncryptsAtAdapterBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()
	store, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)
	require.True(t, store.IsEncrypted())

	const plaintext = `{"index":0,"alias":"main"}`
	require.NoError(t, store.Set(ctx, "record", plaintext))

	raw, err := adapter.Get(ctx, "record")
	require.NoError(t, err)
	require.NotEqual(t, plaintext, raw)
	require.NotContains(t, raw, "alias")

	value, err := store.Get(ctx, "record")
	require.NoError(t, err)
	require.Equal(t, plaintext, value)
}

func TestStorageBatchSetEncryptsEveryValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()
	store, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)

	records := map[string]string{"a": "1", "b": "2"}
	require.NoError(t, store.BatchSet(ctx, records))

	for key, plaintext := range records {
		raw, err := adapter.Get(ctx, key)
		require.NoError(t, err)
		require.NotEqual(t, plaintext, raw)

		value, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, plaintext, value)
	}
}

func TestStorageDetectsTampering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()
	store, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "a", "sensitive"))

	raw, err := adapter.Get(ctx, "a")
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	decoded[len(decoded)-1] ^= 0x01
	require.NoError(t, adapter.Set(ctx, "a", base64.StdEncoding.EncodeToString(decoded)))

	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, storage.ErrDecryptionFailed)
}

func TestStorageRejectsGarbageCiphertext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()
	store, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)

	require.NoError(t, adapter.Set(ctx, "a", "not ciphertext"))

	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, storage.ErrDecryptionFailed)
}

func TestStorageRejectsWrongKeyLength(t *testing.T) {
	t.Parallel()

	_, err := storage.NewStorage(context.Background(), memory.New(), []byte("short"))
	require.Error(t, err)
}

func TestStorageReopenWithSameKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := memory.New()

	first, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "a", "1"))

	// Same adapter, fresh storage instance: the persisted store ID must
	// keep previously written ciphertexts decryptable.
	second, err := storage.NewStorage(ctx, adapter, testKey())
	require.NoError(t, err)

	value, err := second.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestStorageMissingRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := storage.NewStorage(ctx, memory.New(), testKey())
	require.NoError(t, err)

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrRecordNotFound)
}
