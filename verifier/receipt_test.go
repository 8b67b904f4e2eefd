package verifier

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/encoding/ssz"
)

var logRecordDef = ssz.Container("LogRecord",
	ssz.F("address", ssz.Vector(ssz.Uint(1), 20)),
	ssz.F("topics", ssz.List(ssz.Vector(ssz.Uint(1), 32), 4)),
	ssz.F("data", ssz.List(ssz.Uint(1), 1<<16)),
)

var receiptFieldsDef = ssz.Container("receiptFields",
	ssz.F("txType", ssz.Uint(1)),
	ssz.F("statusOrStateRoot", ssz.List(ssz.Uint(1), 32)),
	ssz.F("cumulativeGasUsed", ssz.Uint(8)),
	ssz.F("logsBloom", ssz.Vector(ssz.Uint(1), 256)),
	ssz.F("logs", ssz.List(logRecordDef, 4096)),
)

func encodeLogRecord(address []byte, topics [][]byte, data []byte) []byte {
	topicsBytes := ssz.EncodeVector(false, topics)
	return ssz.Encode([]bool{false, true, true}, [][]byte{address, topicsBytes, data})
}

func encodeReceiptFields(txType byte, status []byte, gasUsed uint64, bloom []byte, logs [][]byte) []byte {
	gasBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(gasBytes, gasUsed)
	logsBytes := ssz.EncodeVector(true, logs)
	return ssz.Encode([]bool{false, true, false, false, true},
		[][]byte{{txType}, status, gasBytes, bloom, logsBytes})
}

func TestBuildCanonicalReceiptRLPMatchesHandEncoded(t *testing.T) {
	address := bytes20(0xAA)
	topic := bytes32(0x01)
	logData := []byte{0xde, 0xad}
	logRaw := encodeLogRecord(address, [][]byte{topic}, logData)

	bloom := make([]byte, 256)
	receiptRaw := encodeReceiptFields(1, []byte{1}, 21000, bloom, [][]byte{logRaw})
	receiptObj := ssz.Object{Def: receiptFieldsDef, Bytes: receiptRaw}

	canonical, err := buildCanonicalReceiptRLP(receiptObj)
	require.NoError(t, err)

	logBuilder := rlp.NewBuilder()
	logBuilder.AddItem(address)
	topicsBuilder := rlp.NewBuilder()
	topicsBuilder.AddItem(topic)
	logBuilder.AddList(topicsBuilder)
	logBuilder.AddItem(logData)

	receiptBuilder := rlp.NewBuilder()
	receiptBuilder.AddItem([]byte{1})
	receiptBuilder.AddUint(21000)
	receiptBuilder.AddItem(bloom)
	logsBuilder := rlp.NewBuilder()
	logsBuilder.AddList(logBuilder)
	receiptBuilder.AddList(logsBuilder)
	expected := append([]byte{1}, receiptBuilder.ToList()...)

	require.Equal(t, expected, canonical)
}

func TestBuildCanonicalReceiptRLPLegacyHasNoTypePrefix(t *testing.T) {
	logRaw := encodeLogRecord(bytes20(0xBB), nil, nil)
	receiptRaw := encodeReceiptFields(0, []byte{0}, 1, make([]byte, 256), [][]byte{logRaw})
	receiptObj := ssz.Object{Def: receiptFieldsDef, Bytes: receiptRaw}

	canonical, err := buildCanonicalReceiptRLP(receiptObj)
	require.NoError(t, err)
	require.NotEqual(t, byte(0x00), canonical[0])
	require.NotEqual(t, byte(0x01), canonical[0]) // no EIP-2718 type byte for a legacy receipt
}

// TestBuildCanonicalReceiptRLPEncodesFailedStatusAsEmptyString locks in
// that a failed transaction's status (0) RLP-encodes the same way
// go-ethereum encodes it: as the empty string (0x80), not the literal
// byte 0x00 a naive AddItem(statusBytes) would produce.
func TestBuildCanonicalReceiptRLPEncodesFailedStatusAsEmptyString(t *testing.T) {
	logRaw := encodeLogRecord(bytes20(0xDD), nil, nil)
	receiptRaw := encodeReceiptFields(0, []byte{0}, 21000, make([]byte, 256), [][]byte{logRaw})
	receiptObj := ssz.Object{Def: receiptFieldsDef, Bytes: receiptRaw}

	canonical, err := buildCanonicalReceiptRLP(receiptObj)
	require.NoError(t, err)

	_, payload, _, err := rlp.Decode(canonical)
	require.NoError(t, err)
	require.Equal(t, byte(0x80), payload[0])
}

func TestEncodeLogRLPMatchesHandEncoded(t *testing.T) {
	address := bytes20(0xCC)
	topic1, topic2 := bytes32(0x01), bytes32(0x02)
	logRaw := encodeLogRecord(address, [][]byte{topic1, topic2}, []byte{0x42})
	logObj := ssz.Object{Def: logRecordDef, Bytes: logRaw}

	got, err := encodeLogRLP(logObj)
	require.NoError(t, err)

	logBuilder := rlp.NewBuilder()
	logBuilder.AddItem(address)
	topicsBuilder := rlp.NewBuilder()
	topicsBuilder.AddItem(topic1)
	topicsBuilder.AddItem(topic2)
	logBuilder.AddList(topicsBuilder)
	logBuilder.AddItem([]byte{0x42})
	require.Equal(t, logBuilder.ToList(), got)
}

func bytes20(b byte) []byte {
	out := make([]byte, 20)
	for i := range out {
		out[i] = b
	}
	return out
}

func bytes32(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}
