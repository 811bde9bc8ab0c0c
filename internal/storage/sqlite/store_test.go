package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mighty840/walletvault/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("")
	require.Error(t, err)
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))

	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestSetOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "a", "2"))

	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "2", value)
}

func TestGetMissingKey(t *testing.T) {
	t.Parallel()

	_, err := newTestStore(t).Get(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestRemoveThenGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Remove(ctx, "a"))

	_, err := store.Get(ctx, "a")
	require.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestRemoveAbsentKey(t *testing.T) {
	t.Parallel()

	require.NoError(t, newTestStore(t).Remove(context.Background(), "missing"))
}

func TestBatchSetVisibleTogether(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.BatchSet(ctx, map[string]string{"a": "1", "b": "2"}))

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		value, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, value)
	}
}

func TestBatchSetLeavesNothingVisibleWhenItFails(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newTestStore(t)
	err := store.BatchSet(ctx, map[string]string{"a": "1", "b": "2"})
	require.Error(t, err)

	// The failed transaction must not have published any entry, and the
	// store must remain usable.
	for _, key := range []string{"a", "b"} {
		_, err := store.Get(context.Background(), key)
		require.ErrorIs(t, err, storage.ErrRecordNotFound)
	}
	require.NoError(t, store.Set(context.Background(), "c", "3"))
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wallet.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestStorageID(t *testing.T) {
	t.Parallel()

	require.Equal(t, StorageID, newTestStore(t).ID())
}
