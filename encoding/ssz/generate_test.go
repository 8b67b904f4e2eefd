package ssz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/ssz"
)

func fourFieldObj(t *testing.T) ssz.Object {
	def := ssz.Container("Four",
		ssz.F("a", ssz.Uint(32)),
		ssz.F("b", ssz.Uint(32)),
		ssz.F("c", ssz.Uint(32)),
		ssz.F("d", ssz.Uint(32)),
	)
	fields := make([][]byte, 4)
	for i := range fields {
		fields[i] = make([]byte, 32)
		fields[i][0] = byte(i + 1)
	}
	raw := ssz.Encode([]bool{false, false, false, false}, fields)
	return ssz.Object{Def: def, Bytes: raw}
}

func TestGenerateProofSingleField(t *testing.T) {
	obj := fourFieldObj(t)
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	leaf, gindex, siblings, err := ssz.GenerateProof(obj, "c")
	require.NoError(t, err)
	require.Equal(t, uint64(6), gindex)

	fc, err := obj.Get("c")
	require.NoError(t, err)
	wantLeaf, err := ssz.HashTreeRoot(fc)
	require.NoError(t, err)
	require.Equal(t, wantLeaf, leaf)

	err = ssz.VerifyMultiMerkleProof([][32]byte{leaf}, []uint64{gindex}, siblings, root)
	require.NoError(t, err)
}

func TestGenerateProofListElement(t *testing.T) {
	listDef := ssz.List(ssz.Uint(32), 8)
	def := ssz.Container("WithList",
		ssz.F("items", listDef),
	)
	elems := make([]byte, 32*3)
	for i := 0; i < 3; i++ {
		elems[32*i] = byte(i + 1)
	}
	raw := ssz.Encode([]bool{true}, [][]byte{elems})
	obj := ssz.Object{Def: def, Bytes: raw}
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	leaf, gindex, siblings, err := ssz.GenerateProof(obj, "items", 1)
	require.NoError(t, err)

	itemsObj, err := obj.Get("items")
	require.NoError(t, err)
	el, err := itemsObj.At(1)
	require.NoError(t, err)
	wantLeaf, err := ssz.HashTreeRoot(el)
	require.NoError(t, err)
	require.Equal(t, wantLeaf, leaf)

	err = ssz.VerifyMultiMerkleProof([][32]byte{leaf}, []uint64{gindex}, siblings, root)
	require.NoError(t, err)
}

func TestGenerateProofRejectsPackedVectorElement(t *testing.T) {
	// Vector(Uint(1), 4) packs all 4 one-byte elements into a single
	// 32-byte chunk: element 3 has no gindex of its own.
	vecDef := ssz.Vector(ssz.Uint(1), 4)
	def := ssz.Container("WithVector", ssz.F("items", vecDef))
	raw := ssz.Encode([]bool{false}, [][]byte{{1, 2, 3, 4}})
	obj := ssz.Object{Def: def, Bytes: raw}

	_, err := ssz.Gindex(def, "items", 3)
	require.Error(t, err)

	_, _, _, err = ssz.GenerateProof(obj, "items", 3)
	require.Error(t, err)
}

func TestGenerateProofRejectsPackedListElement(t *testing.T) {
	listDef := ssz.List(ssz.Uint(8), 4)
	def := ssz.Container("WithList", ssz.F("items", listDef))
	raw := ssz.Encode([]bool{true}, [][]byte{{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}})
	obj := ssz.Object{Def: def, Bytes: raw}

	_, err := ssz.Gindex(def, "items", 1)
	require.Error(t, err)

	_, _, _, err = ssz.GenerateProof(obj, "items", 1)
	require.Error(t, err)
}

func TestGenerateMultiProofTwoFields(t *testing.T) {
	obj := fourFieldObj(t)
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	leaves, gindexes, chunks, err := ssz.GenerateMultiProof(obj,
		[]interface{}{"a"},
		[]interface{}{"c"},
	)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 6}, gindexes)

	// gindex 4 and 6 share no ancestor below the root other than the
	// root itself, so this degenerates to two independent single-leaf
	// proofs: siblings 5 (=b) and 7 (=d), 2 chunks total.
	require.Len(t, chunks, 2)

	err = ssz.VerifyMultiMerkleProof(leaves, gindexes, chunks, root)
	require.NoError(t, err)
}

func TestGenerateMultiProofSharedAncestor(t *testing.T) {
	obj := fourFieldObj(t)
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	// a and b share their immediate parent (gindex 2): the multi-proof
	// should need only the sibling subtree rooted at gindex 3, a single
	// chunk, instead of the two chunks two independent proofs would
	// need.
	leaves, gindexes, chunks, err := ssz.GenerateMultiProof(obj,
		[]interface{}{"a"},
		[]interface{}{"b"},
	)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 5}, gindexes)
	require.Len(t, chunks, 1)

	err = ssz.VerifyMultiMerkleProof(leaves, gindexes, chunks, root)
	require.NoError(t, err)
}

func TestGenerateMultiProofRejectsTampering(t *testing.T) {
	obj := fourFieldObj(t)
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	leaves, gindexes, chunks, err := ssz.GenerateMultiProof(obj,
		[]interface{}{"a"},
		[]interface{}{"c"},
	)
	require.NoError(t, err)
	chunks[0][0] ^= 0xff

	err = ssz.VerifyMultiMerkleProof(leaves, gindexes, chunks, root)
	require.Error(t, err)
}
