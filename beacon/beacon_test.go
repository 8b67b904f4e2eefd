package beacon_test

import (
	"testing"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/stretchr/testify/require"
)

func TestBeaconBlockHeaderRoundTrip(t *testing.T) {
	def := beacon.BeaconBlockHeader()
	fields := [][]byte{
		make([]byte, 8),
		make([]byte, 8),
		make([]byte, 32),
		make([]byte, 32),
		make([]byte, 32),
	}
	raw := ssz.Encode([]bool{false, false, false, false, false}, fields)
	obj := ssz.Object{Def: def, Bytes: raw}
	require.NoError(t, obj.Validate())

	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)
	root2, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)
	require.Equal(t, root, root2)
}

func TestStateRootGindexDiffersFromReceiptsRoot(t *testing.T) {
	g1, err := beacon.StateRootGindex()
	require.NoError(t, err)
	g2, err := beacon.ReceiptsRootGindex()
	require.NoError(t, err)
	require.NotEqual(t, g1, g2)
}

func TestNextSyncCommitteeGindexStable(t *testing.T) {
	g1, err := beacon.NextSyncCommitteeGindex()
	require.NoError(t, err)
	g2, err := beacon.NextSyncCommitteeGindex()
	require.NoError(t, err)
	require.Equal(t, g1, g2)
}

func TestTransactionGindexSequential(t *testing.T) {
	require.Equal(t, uint64(beacon.TransactionsBaseGindex), beacon.TransactionGindex(0))
	require.Equal(t, uint64(beacon.TransactionsBaseGindex+5), beacon.TransactionGindex(5))
}

func TestCheckCanonicalGindexesMatchesSchema(t *testing.T) {
	require.NoError(t, beacon.CheckCanonicalGindexes())
}

func TestComputeDomainDeterministic(t *testing.T) {
	var genesis [32]byte
	d1 := beacon.ComputeDomain(beacon.DomainSyncCommittee, beacon.ForkVersion{1, 0, 0, 0}, genesis)
	d2 := beacon.ComputeDomain(beacon.DomainSyncCommittee, beacon.ForkVersion{1, 0, 0, 0}, genesis)
	require.Equal(t, d1, d2)
	d3 := beacon.ComputeDomain(beacon.DomainSyncCommittee, beacon.ForkVersion{2, 0, 0, 0}, genesis)
	require.NotEqual(t, d1, d3)
}
