package rlp_test

import (
	"testing"

	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/stretchr/testify/require"
)

func TestEncodeItemEmpty(t *testing.T) {
	require.Equal(t, []byte{0x80}, rlp.EncodeItem(nil))
}

func TestEncodeUintZero(t *testing.T) {
	require.Equal(t, []byte{0x80}, rlp.EncodeUint(0))
}

func TestEncodeItemSingleByte(t *testing.T) {
	require.Equal(t, []byte{0x01}, rlp.EncodeItem([]byte{0x01}))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := rlp.NewBuilder()
	b.AddItem([]byte("cat"))
	b.AddItem([]byte("dog"))
	encoded := b.ToList()

	kind, payload, rest, err := rlp.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, rlp.KindList, kind)
	require.Empty(t, rest)

	items, err := rlp.DecodeList(payload)
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, p0, _, err := rlp.Decode(items[0])
	require.NoError(t, err)
	require.Equal(t, "cat", string(p0))
}

func TestNestedList(t *testing.T) {
	inner := rlp.NewBuilder()
	inner.AddItem([]byte("a"))
	outer := rlp.NewBuilder()
	outer.AddList(inner)
	outer.AddItem([]byte("b"))
	encoded := outer.ToList()

	_, payload, _, err := rlp.Decode(encoded)
	require.NoError(t, err)
	items, err := rlp.DecodeList(payload)
	require.NoError(t, err)
	require.Len(t, items, 2)

	kind, _, _, err := rlp.Decode(items[0])
	require.NoError(t, err)
	require.Equal(t, rlp.KindList, kind)
}

func TestLongStringHeader(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = byte(i)
	}
	encoded := rlp.EncodeItem(long)
	kind, payload, rest, err := rlp.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, rlp.KindItem, kind)
	require.Empty(t, rest)
	require.Equal(t, long, payload)
}
