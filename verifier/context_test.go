package verifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/rpcglue"
	"github.com/corpus-core/c4go/syncstore"
)

func newTestContext() *Context {
	return &Context{
		ChainID: 1,
		Store:   syncstore.New(syncstore.NewMemPlugin(16)),
		Params:  syncstore.UpdateParams{SlotsPerEpoch: 32, EpochsPerSyncPeriod: 256},
	}
}

func TestVerifyRejectsTruncatedArtifact(t *testing.T) {
	_, err := Verify([]byte{0x00}, newTestContext())
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindInputInvalid, verr.Kind)
}

func TestVerifyAllNoneIsUnsupported(t *testing.T) {
	data := []byte{byte(rpcglue.DataNone)}
	proof := []byte{byte(rpcglue.ProofNone)}
	syncData := []byte{byte(rpcglue.SyncDataNone)}
	raw := ssz.Encode([]bool{true, true, true}, [][]byte{data, proof, syncData})

	_, err := Verify(raw, newTestContext())
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindUnsupported, verr.Kind)
}

func TestVerifyUnknownSyncDataVariantIsInputInvalid(t *testing.T) {
	data := []byte{byte(rpcglue.DataNone)}
	proof := []byte{byte(rpcglue.ProofNone)}
	syncData := []byte{0x07}
	raw := ssz.Encode([]bool{true, true, true}, [][]byte{data, proof, syncData})

	_, err := Verify(raw, newTestContext())
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindInputInvalid, verr.Kind)
}

func TestMissingSyncPeriodErrorMessage(t *testing.T) {
	err := missingPeriod(40, 42)
	require.Equal(t, KindMissingSyncPeriod, err.Kind)
	require.Equal(t, uint64(40), err.FirstMissingPeriod)
	require.Equal(t, uint64(42), err.LastMissingPeriod)
	require.Contains(t, err.Error(), "42")
}

// TestMissingSyncPeriodRangeScenarioS5 matches spec.md's scenario S5:
// the store's highest trusted period is p-3, the target is p, so the
// caller must fetch the inclusive range p-2..p.
func TestMissingSyncPeriodRangeScenarioS5(t *testing.T) {
	ctx := newTestContext()
	pubkeys := make([]byte, beacon.SyncCommitteeSize*48)
	const p = 10
	require.NoError(t, ctx.Store.Trust(ctx.ChainID, syncstore.TrustedCommittee{Period: p - 3, Pubkeys: pubkeys}))

	first, last := ctx.missingSyncPeriodRange(p)
	require.Equal(t, uint64(p-2), first)
	require.Equal(t, uint64(p), last)
}

func TestMissingSyncPeriodRangeWithNothingTrustedYet(t *testing.T) {
	ctx := newTestContext()
	first, last := ctx.missingSyncPeriodRange(7)
	require.Equal(t, uint64(7), first)
	require.Equal(t, uint64(7), last)
}
