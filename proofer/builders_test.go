package proofer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/rlp"
)

// TestBuildReceiptRLPEncodesFailedStatusAsEmptyString locks in that a
// reverted transaction's status (0) RLP-encodes as the empty string
// (0x80), matching go-ethereum, rather than the literal byte 0x00 a
// naive AddItem(statusBytes) would produce.
func TestBuildReceiptRLPEncodesFailedStatusAsEmptyString(t *testing.T) {
	bloom := make([]byte, 256)
	canonical, err := buildReceiptRLP(0, []byte{0}, 21000, bloom, nil)
	require.NoError(t, err)

	_, payload, _, err := rlp.Decode(canonical)
	require.NoError(t, err)
	require.Equal(t, byte(0x80), payload[0])
}

// TestBuildReceiptRLPEncodesSuccessStatusAsSingleByte confirms the
// common case (status 1) is unaffected: RLP's minimal-integer rule
// already encodes 1 as the single byte 0x01.
func TestBuildReceiptRLPEncodesSuccessStatusAsSingleByte(t *testing.T) {
	bloom := make([]byte, 256)
	canonical, err := buildReceiptRLP(0, []byte{1}, 21000, bloom, nil)
	require.NoError(t, err)

	_, payload, _, err := rlp.Decode(canonical)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), payload[0])
}

// TestBuildReceiptRLPKeepsStateRootAsItem confirms a pre-Byzantium
// 32-byte state root (rather than a 1-byte status) still round-trips
// as a plain RLP item, not as an integer.
func TestBuildReceiptRLPKeepsStateRootAsItem(t *testing.T) {
	root := make([]byte, 32)
	root[0] = 0xAB
	bloom := make([]byte, 256)
	canonical, err := buildReceiptRLP(0, root, 21000, bloom, nil)
	require.NoError(t, err)

	_, payload, _, err := rlp.Decode(canonical)
	require.NoError(t, err)
	_, itemPayload, _, err := rlp.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, root, itemPayload)
}
