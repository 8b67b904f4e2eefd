package rpcglue

import "github.com/corpus-core/c4go/encoding/ssz"

// EncodeContainer assembles a Container's wire bytes from a name →
// already-encoded-bytes map, walking def.Fields in declaration order
// and routing each to the fixed or dynamic region per its own
// IsDynamic(). This is the proofer-side counterpart of Object.Get:
// builders describe what they know field-by-field and never need to
// hand-roll offset arithmetic.
func EncodeContainer(def *ssz.Def, values map[string][]byte) []byte {
	b := ssz.NewBuilder()
	for _, f := range def.Fields {
		v := values[f.Name]
		if f.Def.IsDynamic() {
			b.AddDynamic(v)
		} else {
			b.AddFixed(v)
		}
	}
	return b.ToBytes()
}

// EncodeUnion prefixes payload with its one-byte selector, per
// spec.md §4.1's union wire format.
func EncodeUnion(selector int, payload []byte) []byte {
	return append([]byte{byte(selector)}, payload...)
}

// EncodeNone is the zero-length payload for a None union variant.
func EncodeNone() []byte { return nil }

// EncodeChunkList lays out a Merkle multi-proof's sibling chunks as a
// chunkList field: fixed-size (Vector) elements, so it's a plain
// concatenation.
func EncodeChunkList(chunks [][32]byte) []byte {
	out := make([]byte, 0, 32*len(chunks))
	for _, c := range chunks {
		out = append(out, c[:]...)
	}
	return out
}

// EncodeDynamicList lays out a List whose element type is itself
// dynamic (a nested byteList, or a Container with any dynamic field)
// — patricia node sequences, log/entry/block lists, and so on all
// share this shape and need the offset-table layout EncodeVector gives
// dynamic elements.
func EncodeDynamicList(items [][]byte) []byte {
	return ssz.EncodeVector(true, items)
}
