package buffer_test

import (
	"testing"

	"github.com/corpus-core/c4go/internal/buffer"
	"github.com/stretchr/testify/require"
)

func TestBufferCapped(t *testing.T) {
	b := buffer.NewCapped(4)
	n := b.Write([]byte{1, 2, 3, 4, 5, 6})
	require.Equal(t, 4, n)
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())
}

func TestBufferUnbounded(t *testing.T) {
	b := buffer.New([]byte{1, 2})
	b.Write([]byte{3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())
	require.Equal(t, 4, b.Len())
}

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	h := buffer.ToHex(raw)
	require.Equal(t, "0xdeadbeef", h)
	decoded, err := buffer.FromHex(h)
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
}

func TestUintLERoundTrip(t *testing.T) {
	enc := buffer.PutUintLE(0x0102030405060708, 8)
	require.Equal(t, uint64(0x0102030405060708), buffer.UintLE(enc))
}

func TestPad(t *testing.T) {
	require.Equal(t, []byte{0, 0, 1, 2}, buffer.PadLeft([]byte{1, 2}, 4))
	require.Equal(t, []byte{1, 2, 0, 0}, buffer.PadRight([]byte{1, 2}, 4))
}
