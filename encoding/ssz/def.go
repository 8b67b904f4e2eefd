// Package ssz implements a typed, data-driven SSZ codec: a recursive
// Def descriptor tree (the schema), an Object (a Def paired with its
// encoded bytes), and the operations spec.md §4.1 requires on top of
// that pair — at/get/union/len/validate, hash_tree_root, gindex and
// multi-Merkle-proof verification.
//
// Unlike a code-generated codec (fastssz's usual mode), the schema
// here is a runtime value so the verifier and proofer can describe
// beacon types, the C4Request artifact, and LightClientUpdate with the
// same machinery instead of hand-written marshal/unmarshal pairs per
// type.
package ssz

import "fmt"

// Kind identifies which SSZ type variant a Def describes.
type Kind int

const (
	KindNone Kind = iota
	KindUint
	KindBoolean
	KindContainer
	KindVector
	KindList
	KindBitVector
	KindBitList
	KindUnion
)

// Field is one named field of a Container, in declaration order.
type Field struct {
	Name string
	Def  *Def
}

// Def is the recursive SSZ type descriptor. Only the fields relevant
// to Kind are populated; see the New* constructors.
type Def struct {
	Kind Kind

	Name string // container/field name, used for debugging and gindex paths

	UintSize int // Uint: byte width, one of 1,2,4,8,16,32

	Fields []Field // Container

	Elem   *Def // Vector/List element type
	Length int  // Vector/BitVector: fixed length. List/BitList: max length.

	Variants []*Def // Union, variant 0 may be KindNone
}

func Uint(n int) *Def        { return &Def{Kind: KindUint, UintSize: n} }
func Boolean() *Def          { return &Def{Kind: KindBoolean} }
func NoneDef() *Def          { return &Def{Kind: KindNone} }
func Vector(e *Def, l int) *Def { return &Def{Kind: KindVector, Elem: e, Length: l} }
func List(e *Def, maxL int) *Def { return &Def{Kind: KindList, Elem: e, Length: maxL} }
func BitVector(l int) *Def   { return &Def{Kind: KindBitVector, Length: l} }
func BitList(maxL int) *Def  { return &Def{Kind: KindBitList, Length: maxL} }

func Container(name string, fields ...Field) *Def {
	return &Def{Kind: KindContainer, Name: name, Fields: fields}
}

func Union(variants ...*Def) *Def {
	return &Def{Kind: KindUnion, Variants: variants}
}

func F(name string, d *Def) Field { return Field{Name: name, Def: d} }

// IsDynamic reports whether def's encoded size depends on its bytes
// (List, BitList, Union, or a Container transitively containing one)
// rather than being fully determined by the type alone.
func (d *Def) IsDynamic() bool {
	switch d.Kind {
	case KindList, KindBitList, KindUnion:
		return true
	case KindVector:
		return d.Elem.IsDynamic()
	case KindContainer:
		for _, f := range d.Fields {
			if f.Def.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// FixedLength returns 4 (an offset slot) for a dynamic def, and the
// exact fixed byte size otherwise.
func (d *Def) FixedLength() int {
	if d.IsDynamic() {
		return 4
	}
	switch d.Kind {
	case KindUint:
		return d.UintSize
	case KindBoolean:
		return 1
	case KindBitVector:
		return (d.Length + 7) / 8
	case KindVector:
		return d.Elem.FixedLength() * d.Length
	case KindContainer:
		n := 0
		for _, f := range d.Fields {
			n += f.Def.FixedLength()
		}
		return n
	case KindNone:
		return 0
	default:
		return 0
	}
}

// FieldIndex returns the declaration index of name within a container
// def, or -1 if absent.
func (d *Def) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (d *Def) String() string {
	switch d.Kind {
	case KindUint:
		return fmt.Sprintf("uint%d", d.UintSize*8)
	case KindBoolean:
		return "bool"
	case KindContainer:
		return "Container(" + d.Name + ")"
	case KindVector:
		return fmt.Sprintf("Vector[%s,%d]", d.Elem, d.Length)
	case KindList:
		return fmt.Sprintf("List[%s,%d]", d.Elem, d.Length)
	case KindBitVector:
		return fmt.Sprintf("BitVector[%d]", d.Length)
	case KindBitList:
		return fmt.Sprintf("BitList[%d]", d.Length)
	case KindUnion:
		return "Union"
	case KindNone:
		return "None"
	default:
		return "?"
	}
}
