package syncstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/syncstore"
)

func TestFilePluginPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	plugin, err := syncstore.NewFilePlugin(path, 4)
	require.NoError(t, err)
	store := syncstore.New(plugin)

	pubkeys := make([]byte, beacon.SyncCommitteeSize*48)
	pubkeys[0] = 0x42
	require.NoError(t, store.Trust(1, syncstore.TrustedCommittee{Period: 7, Pubkeys: pubkeys}))

	reloaded, err := syncstore.NewFilePlugin(path, 4)
	require.NoError(t, err)
	store2 := syncstore.New(reloaded)

	got, err := store2.GetValidators(1, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.Period)
	require.Equal(t, pubkeys, got.Pubkeys)
}

func TestFilePluginMissingFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	plugin, err := syncstore.NewFilePlugin(path, 4)
	require.NoError(t, err)
	_, ok := plugin.Get("states_1")
	require.False(t, ok)
}

func TestFilePluginEvictsOldestPeriodBeyondBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	plugin, err := syncstore.NewFilePlugin(path, 2)
	require.NoError(t, err)
	store := syncstore.New(plugin)

	pubkeys := make([]byte, beacon.SyncCommitteeSize*48)
	for _, p := range []uint64{1, 2, 3} {
		require.NoError(t, store.Trust(1, syncstore.TrustedCommittee{Period: p, Pubkeys: pubkeys}))
	}
	_, err = store.GetValidators(1, 1)
	require.Error(t, err)
}
