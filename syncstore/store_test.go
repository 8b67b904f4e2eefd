package syncstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/syncstore"
)

func TestTrustAndGetRoundTrip(t *testing.T) {
	store := syncstore.New(syncstore.NewMemPlugin(4))
	pubkeys := make([]byte, beacon.SyncCommitteeSize*48)
	require.NoError(t, store.Trust(1, syncstore.TrustedCommittee{Period: 10, Pubkeys: pubkeys}))

	got, err := store.GetValidators(1, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(10), got.Period)
	require.Len(t, got.Pubkeys, len(pubkeys))
}

func TestGetMissingPeriodReturnsTypedError(t *testing.T) {
	store := syncstore.New(syncstore.NewMemPlugin(4))
	_, err := store.GetValidators(1, 99)
	require.Error(t, err)
	var missing *syncstore.MissingPeriodError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, uint64(99), missing.Period)
}

func TestEvictsOldestPeriodBeyondBound(t *testing.T) {
	store := syncstore.New(syncstore.NewMemPlugin(2))
	pubkeys := make([]byte, beacon.SyncCommitteeSize*48)
	for _, p := range []uint64{1, 2, 3} {
		require.NoError(t, store.Trust(1, syncstore.TrustedCommittee{Period: p, Pubkeys: pubkeys}))
	}
	_, err := store.GetValidators(1, 1)
	require.Error(t, err, "period 1 should have been evicted once a 3rd period arrived")

	first, last, ok := store.Range(1)
	require.True(t, ok)
	require.Equal(t, uint64(2), first)
	require.Equal(t, uint64(3), last)
}

func TestTrustRejectsWrongSizedPubkeyBlob(t *testing.T) {
	store := syncstore.New(syncstore.NewMemPlugin(4))
	err := store.Trust(1, syncstore.TrustedCommittee{Period: 1, Pubkeys: []byte{0x01, 0x02}})
	require.Error(t, err)
}

func TestApplyUpdatesEmptyListIsNoOp(t *testing.T) {
	// No trust anchor is installed, but an empty update list never
	// needs a signing committee, so ApplyUpdates succeeds without
	// touching the store.
	store := syncstore.New(syncstore.NewMemPlugin(4))
	err := store.ApplyUpdates(1, nil, syncstore.UpdateParams{
		SlotsPerEpoch:       32,
		EpochsPerSyncPeriod: 256,
	})
	require.NoError(t, err, "an empty update list is a no-op")
}
