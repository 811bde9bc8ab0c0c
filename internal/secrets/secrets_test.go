package secrets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindDetection(t *testing.T) {
	t.Parallel()

	kind, err := NewMnemonic("word list").Kind()
	require.NoError(t, err)
	require.Equal(t, KindMnemonic, kind)

	kind, err = NewStronghold("/tmp/wallet.stronghold").Kind()
	require.NoError(t, err)
	require.Equal(t, KindStronghold, kind)

	kind, err = NewLedgerNano(true).Kind()
	require.NoError(t, err)
	require.Equal(t, KindLedgerNano, kind)
}

func TestKindRejectsEmptyAndAmbiguousConfigs(t *testing.T) {
	t.Parallel()

	_, err := (&Config{}).Kind()
	require.ErrorIs(t, err, ErrNoVariant)

	ambiguous := &Config{
		Mnemonic:   "word list",
		Stronghold: &StrongholdConfig{SnapshotPath: "/tmp/x"},
	}
	_, err = ambiguous.Kind()
	require.ErrorIs(t, err, ErrAmbiguousConfig)
}

func TestPersistencePolicy(t *testing.T) {
	t.Parallel()

	persist, err := NewMnemonic("word list").Persistable()
	require.NoError(t, err)
	require.False(t, persist, "mnemonic seed material must never be persisted")

	persist, err = NewStronghold("/tmp/wallet.stronghold").Persistable()
	require.NoError(t, err)
	require.True(t, persist)

	persist, err = NewLedgerNano(false).Persistable()
	require.NoError(t, err)
	require.True(t, persist)
}

func TestEveryKindHasAPolicyEntry(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindMnemonic, KindStronghold, KindLedgerNano} {
		_, ok := persistable[kind]
		require.Truef(t, ok, "kind %q has no persistence policy", kind)
	}
}

func TestConfigJSONShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewStronghold("/tmp/wallet.stronghold"))
	require.NoError(t, err)
	require.JSONEq(t, `{"stronghold":{"snapshotPath":"/tmp/wallet.stronghold"}}`, string(data))

	var restored Config
	require.NoError(t, json.Unmarshal(data, &restored))

	kind, err := restored.Kind()
	require.NoError(t, err)
	require.Equal(t, KindStronghold, kind)
	require.Equal(t, "/tmp/wallet.stronghold", restored.Stronghold.SnapshotPath)
}
