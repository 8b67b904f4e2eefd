package mpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/mpt"
)

func TestTrieInsertProveVerifyRoundTrip(t *testing.T) {
	trie := mpt.NewTrie()
	entries := map[string]string{
		"alpha":   "value-alpha",
		"alphorn": "value-alphorn",
		"beta":    "value-beta",
		"gamma":   "value-gamma",
	}
	for k, v := range entries {
		trie.Insert([]byte(k), []byte(v))
	}
	root := trie.Root()

	for k, v := range entries {
		value, proof, err := trie.Prove([]byte(k))
		require.NoError(t, err)
		require.Equal(t, []byte(v), value)

		got, result, err := mpt.VerifyRaw(root, []byte(k), proof)
		require.NoError(t, err)
		require.Equal(t, mpt.Found, result)
		require.Equal(t, []byte(v), got)
	}
}

func TestTrieOverwriteExistingKey(t *testing.T) {
	trie := mpt.NewTrie()
	trie.Insert([]byte("key"), []byte("first"))
	trie.Insert([]byte("key"), []byte("second"))

	value, proof, err := trie.Prove([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("second"), value)

	root := trie.Root()
	got, result, err := mpt.VerifyRaw(root, []byte("key"), proof)
	require.NoError(t, err)
	require.Equal(t, mpt.Found, result)
	require.Equal(t, []byte("second"), got)
}

func TestTrieSingleEntryRoot(t *testing.T) {
	trie := mpt.NewTrie()
	trie.Insert([]byte("only"), []byte("value"))
	_, proof, err := trie.Prove([]byte("only"))
	require.NoError(t, err)
	require.Len(t, proof, 1)

	root := trie.Root()
	_, result, err := mpt.VerifyRaw(root, []byte("only"), proof)
	require.NoError(t, err)
	require.Equal(t, mpt.Found, result)
}

// TestTrieReceiptIndexKeys exercises the receipts-trie convention this
// module actually uses: rlp(index) keys rather than arbitrary strings,
// including the single-digit-vs-multi-byte RLP boundary at index 128.
func TestTrieReceiptIndexKeys(t *testing.T) {
	trie := mpt.NewTrie()
	keys := make([][]byte, 0, 130)
	for i := 0; i < 130; i++ {
		keys = append(keys, rlp.EncodeUint(uint64(i)))
	}
	for i, k := range keys {
		trie.Insert(k, []byte{byte(i), byte(i >> 8)})
	}
	root := trie.Root()
	for i, k := range keys {
		value, proof, err := trie.Prove(k)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i), byte(i >> 8)}, value)
		got, result, err := mpt.VerifyRaw(root, k, proof)
		require.NoError(t, err)
		require.Equal(t, mpt.Found, result)
		require.Equal(t, []byte{byte(i), byte(i >> 8)}, got)
	}
}
