package ssz

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Object is an SSZ value: a Def paired with its raw encoded bytes.
// Object is never mutated in place; every accessor returns a new
// (sub-)Object view over a slice of the same backing array.
type Object struct {
	Def   *Def
	Bytes []byte
}

// Empty returns the zero Object used as an error sentinel by At/Get.
func Empty() Object { return Object{} }

func (o Object) IsEmpty() bool { return o.Def == nil }

// At returns the i-th element of a List or Vector. Fails with an
// empty Object on out-of-range i.
func (o Object) At(i int) (Object, error) {
	switch o.Def.Kind {
	case KindVector:
		return o.atFixedOrDynamic(o.Def.Elem, i, o.Def.Length)
	case KindList:
		n, err := o.Len()
		if err != nil {
			return Empty(), err
		}
		if i >= n {
			return Empty(), errors.Errorf("ssz: index %d out of range (len %d)", i, n)
		}
		return o.atFixedOrDynamic(o.Def.Elem, i, n)
	default:
		return Empty(), errors.Errorf("ssz: At() on non-list/vector %s", o.Def)
	}
}

func (o Object) atFixedOrDynamic(elem *Def, i, count int) (Object, error) {
	if i < 0 || i >= count {
		return Empty(), errors.Errorf("ssz: index %d out of range (count %d)", i, count)
	}
	if !elem.IsDynamic() {
		sz := elem.FixedLength()
		start := i * sz
		if start+sz > len(o.Bytes) {
			return Empty(), errors.New("ssz: element out of bounds")
		}
		return Object{Def: elem, Bytes: o.Bytes[start : start+sz]}, nil
	}
	offsets, err := readOffsets(o.Bytes, count)
	if err != nil {
		return Empty(), err
	}
	start := offsets[i]
	end := len(o.Bytes)
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	if start > end || end > len(o.Bytes) {
		return Empty(), errors.New("ssz: bad dynamic offset")
	}
	return Object{Def: elem, Bytes: o.Bytes[start:end]}, nil
}

// readOffsets reads `count` little-endian 4-byte offsets from the
// front of b (the fixed-size offset region of a dynamic vector/list).
func readOffsets(b []byte, count int) ([]int, error) {
	if len(b) < count*4 {
		return nil, errors.New("ssz: truncated offset table")
	}
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return offsets, nil
}

// Get returns a container field by name. It does not select a union's
// variant payload — use Union for that.
func (o Object) Get(name string) (Object, error) {
	if o.Def.Kind != KindContainer {
		return Empty(), errors.Errorf("ssz: Get() on non-container %s", o.Def)
	}
	idx := o.Def.FieldIndex(name)
	if idx < 0 {
		return Empty(), errors.Errorf("ssz: no such field %q in %s", name, o.Def)
	}
	return o.fieldAt(idx)
}

func (o Object) fieldAt(idx int) (Object, error) {
	fixedEnd := 0
	fixedOffsets := make([]int, len(o.Def.Fields))
	for i, f := range o.Def.Fields {
		fixedOffsets[i] = fixedEnd
		fixedEnd += f.Def.FixedLength()
	}
	if len(o.Bytes) < fixedEnd {
		return Empty(), errors.New("ssz: container shorter than fixed region")
	}
	f := o.Def.Fields[idx]
	if !f.Def.IsDynamic() {
		start := fixedOffsets[idx]
		sz := f.Def.FixedLength()
		return Object{Def: f.Def, Bytes: o.Bytes[start : start+sz]}, nil
	}
	start := int(binary.LittleEndian.Uint32(o.Bytes[fixedOffsets[idx] : fixedOffsets[idx]+4]))
	end := len(o.Bytes)
	for j := idx + 1; j < len(o.Def.Fields); j++ {
		if o.Def.Fields[j].Def.IsDynamic() {
			end = int(binary.LittleEndian.Uint32(o.Bytes[fixedOffsets[j] : fixedOffsets[j]+4]))
			break
		}
	}
	if start > end || end > len(o.Bytes) {
		return Empty(), errors.New("ssz: bad container offset")
	}
	return Object{Def: f.Def, Bytes: o.Bytes[start:end]}, nil
}

// Union returns the selected variant's Def and its payload bytes
// (byte 0 of o.Bytes is the selector; the remainder is the payload).
func (o Object) Union() (*Def, Object, error) {
	if o.Def.Kind != KindUnion {
		return nil, Empty(), errors.Errorf("ssz: Union() on non-union %s", o.Def)
	}
	if len(o.Bytes) < 1 {
		return nil, Empty(), errors.New("ssz: empty union")
	}
	sel := int(o.Bytes[0])
	if sel >= len(o.Def.Variants) {
		return nil, Empty(), errors.Errorf("ssz: union selector %d >= arity %d", sel, len(o.Def.Variants))
	}
	variant := o.Def.Variants[sel]
	payload := o.Bytes[1:]
	if variant.Kind == KindNone {
		if len(payload) != 0 {
			return nil, Empty(), errors.New("ssz: None variant carries payload")
		}
		return variant, Object{Def: variant, Bytes: nil}, nil
	}
	return variant, Object{Def: variant, Bytes: payload}, nil
}

// Selector returns a union Object's variant index without decoding
// the payload.
func (o Object) Selector() (int, error) {
	if o.Def.Kind != KindUnion {
		return 0, errors.Errorf("ssz: Selector() on non-union %s", o.Def)
	}
	if len(o.Bytes) < 1 {
		return 0, errors.New("ssz: empty union")
	}
	return int(o.Bytes[0]), nil
}

// Len returns the element count of a Vector, List, BitVector or
// BitList.
func (o Object) Len() (int, error) {
	switch o.Def.Kind {
	case KindVector, KindBitVector:
		return o.Def.Length, nil
	case KindList:
		if o.Def.Elem.IsDynamic() {
			if len(o.Bytes) == 0 {
				return 0, nil
			}
			if len(o.Bytes) < 4 {
				return 0, errors.New("ssz: truncated list offset table")
			}
			first := int(binary.LittleEndian.Uint32(o.Bytes[0:4]))
			if first%4 != 0 {
				return 0, errors.New("ssz: misaligned first offset")
			}
			return first / 4, nil
		}
		sz := o.Def.Elem.FixedLength()
		if sz == 0 {
			return 0, nil
		}
		if len(o.Bytes)%sz != 0 {
			return 0, errors.New("ssz: list length not a multiple of element size")
		}
		return len(o.Bytes) / sz, nil
	case KindBitList:
		return bitListLen(o.Bytes)
	default:
		return 0, errors.Errorf("ssz: Len() on %s", o.Def)
	}
}

// bitListLen derives a BitList's logical length from its delimiter
// bit: the highest set bit of the final byte marks one-past-the-end.
func bitListLen(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, errors.New("ssz: empty bitlist (missing delimiter)")
	}
	last := b[len(b)-1]
	if last == 0 {
		return 0, errors.New("ssz: bitlist delimiter bit missing")
	}
	top := 0
	for last != 1 {
		last >>= 1
		top++
	}
	return (len(b)-1)*8 + top, nil
}

// Uint decodes a Uint Object (little-endian) to a uint64, truncating
// any bytes beyond the 8th — callers needing the full width should
// read o.Bytes directly (e.g. via package uint256 for 128/256-bit
// values).
func (o Object) Uint() (uint64, error) {
	if o.Def.Kind != KindUint {
		return 0, errors.Errorf("ssz: Uint() on %s", o.Def)
	}
	var n uint64
	for i := 0; i < len(o.Bytes) && i < 8; i++ {
		n |= uint64(o.Bytes[i]) << (8 * i)
	}
	return n, nil
}

// Bool decodes a Boolean Object.
func (o Object) Bool() (bool, error) {
	if o.Def.Kind != KindBoolean {
		return false, errors.Errorf("ssz: Bool() on %s", o.Def)
	}
	if len(o.Bytes) != 1 || (o.Bytes[0] != 0 && o.Bytes[0] != 1) {
		return false, errors.New("ssz: invalid boolean encoding")
	}
	return o.Bytes[0] == 1, nil
}

// Validate checks structural soundness of o's bytes against its Def.
// This is a required first step for any externally supplied artifact
// before any other accessor is trusted.
func (o Object) Validate() error {
	switch o.Def.Kind {
	case KindNone:
		if len(o.Bytes) != 0 {
			return errors.New("ssz: None carries bytes")
		}
		return nil
	case KindUint:
		if len(o.Bytes) != o.Def.UintSize {
			return errors.Errorf("ssz: uint%d has %d bytes", o.Def.UintSize*8, len(o.Bytes))
		}
		return nil
	case KindBoolean:
		if len(o.Bytes) != 1 || o.Bytes[0] > 1 {
			return errors.New("ssz: invalid boolean")
		}
		return nil
	case KindBitVector:
		if len(o.Bytes) != o.Def.FixedLength() {
			return errors.New("ssz: bad bitvector length")
		}
		return nil
	case KindBitList:
		n, err := bitListLen(o.Bytes)
		if err != nil {
			return err
		}
		if n > o.Def.Length {
			return errors.Errorf("ssz: bitlist length %d exceeds max %d", n, o.Def.Length)
		}
		return nil
	case KindVector:
		if len(o.Bytes) < o.Def.FixedLength() && !o.Def.Elem.IsDynamic() {
			return errors.New("ssz: vector shorter than fixed length")
		}
		for i := 0; i < o.Def.Length; i++ {
			el, err := o.At(i)
			if err != nil {
				return err
			}
			if err := el.Validate(); err != nil {
				return err
			}
		}
		return nil
	case KindList:
		n, err := o.Len()
		if err != nil {
			return err
		}
		if n > o.Def.Length {
			return errors.Errorf("ssz: list length %d exceeds max %d", n, o.Def.Length)
		}
		if o.Def.Elem.IsDynamic() {
			offsets, err := readOffsets(o.Bytes, n)
			if err != nil {
				return err
			}
			prev := n * 4
			for _, off := range offsets {
				if off < prev || off > len(o.Bytes) {
					return errors.New("ssz: list offsets not monotone/in-bounds")
				}
				prev = off
			}
		}
		for i := 0; i < n; i++ {
			el, err := o.At(i)
			if err != nil {
				return err
			}
			if err := el.Validate(); err != nil {
				return err
			}
		}
		return nil
	case KindContainer:
		if len(o.Bytes) < o.Def.FixedLength() {
			return errors.Errorf("ssz: container %s shorter than fixed length %d", o.Def.Name, o.Def.FixedLength())
		}
		for _, f := range o.Def.Fields {
			fo, err := o.Get(f.Name)
			if err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
			if err := fo.Validate(); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return nil
	case KindUnion:
		if len(o.Bytes) < 1 {
			return errors.New("ssz: empty union")
		}
		sel := int(o.Bytes[0])
		if sel >= len(o.Def.Variants) {
			return errors.Errorf("ssz: union selector %d out of range", sel)
		}
		_, payload, err := o.Union()
		if err != nil {
			return err
		}
		if o.Def.Variants[sel].Kind == KindNone {
			return nil
		}
		return payload.Validate()
	default:
		return errors.Errorf("ssz: unknown def kind for %s", o.Def)
	}
}
