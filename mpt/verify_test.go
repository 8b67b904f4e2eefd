package mpt_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/mpt"
)

func toNibbles(b []byte) []byte {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[2*i] = c >> 4
		out[2*i+1] = c & 0x0f
	}
	return out
}

func compactEncode(nibbles []byte, isLeaf bool) []byte {
	flag := byte(0)
	if isLeaf {
		flag |= 0x20
	}
	var out []byte
	if len(nibbles)%2 == 1 {
		flag |= 0x10
		out = append(out, flag|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flag)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func singleLeafTrie(key, value []byte) (root [32]byte, node []byte) {
	nibbles := toNibbles(crypto.Keccak256(key))
	path := compactEncode(nibbles, true)
	b := rlp.NewBuilder()
	b.AddItem(path)
	b.AddItem(value)
	node = b.ToList()
	root = [32]byte(crypto.Keccak256Hash(node))
	return root, node
}

func TestVerifySingleLeafFound(t *testing.T) {
	key := []byte("account-key")
	value := []byte("account-value")
	root, node := singleLeafTrie(key, value)

	got, result, err := mpt.Verify(root, key, [][]byte{node})
	require.NoError(t, err)
	require.Equal(t, mpt.Found, result)
	require.Equal(t, value, got)
}

func TestVerifyWrongKeyIsAbsent(t *testing.T) {
	key := []byte("account-key")
	value := []byte("account-value")
	root, node := singleLeafTrie(key, value)

	_, result, err := mpt.Verify(root, []byte("other-key"), [][]byte{node})
	require.NoError(t, err)
	require.Equal(t, mpt.Absent, result)
}

func TestVerifyTamperedNodeRejected(t *testing.T) {
	key := []byte("account-key")
	value := []byte("account-value")
	root, node := singleLeafTrie(key, value)

	tampered := append([]byte{}, node...)
	tampered[len(tampered)-1] ^= 0xff

	_, result, err := mpt.Verify(root, key, [][]byte{tampered})
	require.Error(t, err)
	require.Equal(t, mpt.Invalid, result)
}

func TestVerifyBranchWithExtension(t *testing.T) {
	// Two keys sharing a keccak256 prefix nibble forces a branch; build
	// it directly rather than searching for a real collision by hand-
	// crafting a 2-level trie: extension -> branch -> two leaves.
	keyA := []byte("alpha")
	keyB := []byte("beta")
	nibA := toNibbles(crypto.Keccak256(keyA))
	nibB := toNibbles(crypto.Keccak256(keyB))

	// Share the first 2 nibbles artificially by overwriting nibB's
	// prefix with nibA's so the extension node is exercised.
	nibB[0], nibB[1] = nibA[0], nibA[1]
	if nibB[2] == nibA[2] {
		nibB[2] = (nibA[2] + 1) % 16
	}

	leafA := rlp.NewBuilder()
	leafA.AddItem(compactEncode(nibA[3:], true))
	leafA.AddItem([]byte("value-a"))
	nodeLeafA := leafA.ToList()

	leafB := rlp.NewBuilder()
	leafB.AddItem(compactEncode(nibB[3:], true))
	leafB.AddItem([]byte("value-b"))
	nodeLeafB := leafB.ToList()

	branch := rlp.NewBuilder()
	slots := make([][]byte, 16)
	slots[nibA[2]] = crypto.Keccak256(nodeLeafA)
	slots[nibB[2]] = crypto.Keccak256(nodeLeafB)
	for i := 0; i < 16; i++ {
		if slots[i] == nil {
			branch.AddItem(nil)
		} else {
			branch.AddItem(slots[i])
		}
	}
	branch.AddItem(nil) // branch value slot, empty
	nodeBranch := branch.ToList()

	ext := rlp.NewBuilder()
	ext.AddItem(compactEncode(nibA[:2], false))
	ext.AddItem(crypto.Keccak256(nodeBranch))
	nodeExt := ext.ToList()

	root := [32]byte(crypto.Keccak256Hash(nodeExt))
	proof := [][]byte{nodeExt, nodeBranch, nodeLeafA}

	got, result, err := mpt.Verify(root, keyA, proof)
	require.NoError(t, err)
	require.Equal(t, mpt.Found, result)
	require.Equal(t, []byte("value-a"), got)
}
