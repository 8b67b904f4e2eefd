package rpcglue_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/rpcglue"
)

func emptyUnion(def *ssz.Def) []byte { return []byte{0} }

func TestC4RequestAllNoneValidates(t *testing.T) {
	data := emptyUnion(rpcglue.DataDef())
	proof := emptyUnion(rpcglue.ProofDef())
	syncData := emptyUnion(rpcglue.SyncDataDef())

	fields := [][]byte{data, proof, syncData}
	raw := ssz.Encode([]bool{true, true, true}, fields)
	obj, err := rpcglue.ParseArtifact(raw)
	require.NoError(t, err)

	sel, err := mustGet(t, obj, "proof").Selector()
	require.NoError(t, err)
	require.Equal(t, rpcglue.ProofNone, sel)
}

func mustGet(t *testing.T, o ssz.Object, name string) ssz.Object {
	t.Helper()
	fo, err := o.Get(name)
	require.NoError(t, err)
	return fo
}

func TestRequestIDDeterministic(t *testing.T) {
	id1 := rpcglue.RequestID("POST", "https://rpc.example", []byte(`{"id":1}`))
	id2 := rpcglue.RequestID("POST", "https://rpc.example", []byte(`{"id":1}`))
	require.Equal(t, id1, id2)

	id3 := rpcglue.RequestID("POST", "https://rpc.example", []byte(`{"id":2}`))
	require.NotEqual(t, id1, id3)
}

func TestDecodeResponseRecognizesStructuredError(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	_, err := rpcglue.DecodeResponse(raw)
	require.Error(t, err)
	require.True(t, rpcglue.IsRetryable(err))
}

func TestDecodeResponseNonRetryableError(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)
	_, err := rpcglue.DecodeResponse(raw)
	require.Error(t, err)
	require.False(t, rpcglue.IsRetryable(err))
}

func TestDecodeResponseResult(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"result":"0x1234"}`)
	result, err := rpcglue.DecodeResponse(raw)
	require.NoError(t, err)
	require.Equal(t, `"0x1234"`, string(result))
}

func TestFixedVariantNumbering(t *testing.T) {
	// spec.md §6 mandates these literal selector values for wire
	// compatibility; this test exists so an accidental reorder of the
	// union constructors fails loudly.
	require.Equal(t, 0, rpcglue.ProofNone)
	require.Equal(t, 1, rpcglue.ProofBlockHash)
	require.Equal(t, 2, rpcglue.ProofAccount)
	require.Equal(t, 3, rpcglue.ProofTransaction)
	require.Equal(t, 4, rpcglue.ProofReceipt)
	require.Equal(t, 5, rpcglue.ProofLogs)
	require.Equal(t, 0, rpcglue.SyncDataNone)
	require.Equal(t, 1, rpcglue.SyncDataLightClientUpdateList)
}
