package ssz

import "encoding/binary"

// Builder accumulates a Container's encoding by appending fixed-size
// fields inline and dynamic fields as an offset (patched once the
// final fixed-region size is known) plus a payload appended to a
// trailing dynamic region, exactly as spec.md §4.1 describes. Builder
// is single-use; ToBytes concatenates the patched fixed region with
// the dynamic region and the Builder should be discarded afterwards
// (the original C implementation frees its backing buffer here).
type Builder struct {
	dynFlags []bool
	fields   [][]byte // each field's already-encoded bytes
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddFixed appends a fixed-size field's encoded bytes in declaration
// order.
func (b *Builder) AddFixed(raw []byte) *Builder {
	b.dynFlags = append(b.dynFlags, false)
	b.fields = append(b.fields, raw)
	return b
}

// AddDynamic appends a dynamic field's encoded bytes in declaration
// order; ToBytes will emit a 4-byte offset for it in the fixed region.
func (b *Builder) AddDynamic(raw []byte) *Builder {
	b.dynFlags = append(b.dynFlags, true)
	b.fields = append(b.fields, raw)
	return b
}

// ToBytes lays out the fixed region (patching dynamic-field offsets,
// measured from the start of the container) followed by the dynamic
// region, in declaration order.
func (b *Builder) ToBytes() []byte {
	return Encode(b.dynFlags, b.fields)
}

// Encode builds a Container's bytes given, per field in declaration
// order, whether it is dynamic and its already-encoded bytes.
func Encode(dynamicFlags []bool, encodedFields [][]byte) []byte {
	fixedLen := 0
	for i, dyn := range dynamicFlags {
		if dyn {
			fixedLen += 4
		} else {
			fixedLen += len(encodedFields[i])
		}
	}
	fixed := make([]byte, 0, fixedLen)
	var dynamic []byte
	dynOffset := fixedLen
	for i, dyn := range dynamicFlags {
		if dyn {
			off := make([]byte, 4)
			binary.LittleEndian.PutUint32(off, uint32(dynOffset))
			fixed = append(fixed, off...)
			dynamic = append(dynamic, encodedFields[i]...)
			dynOffset += len(encodedFields[i])
		} else {
			fixed = append(fixed, encodedFields[i]...)
		}
	}
	return append(fixed, dynamic...)
}

// EncodeVector concatenates fixed-size elements, or lays out dynamic
// elements using the same offset scheme as Encode (the first
// offset/4 recovers the element count on decode).
func EncodeVector(elemDynamic bool, encodedElements [][]byte) []byte {
	if !elemDynamic {
		var out []byte
		for _, e := range encodedElements {
			out = append(out, e...)
		}
		return out
	}
	flags := make([]bool, len(encodedElements))
	for i := range flags {
		flags[i] = true
	}
	return Encode(flags, encodedElements)
}
