// Package rlp implements the small subset of Ethereum's Recursive
// Length Prefix encoding this module needs to build and walk
// receipts, transactions and account values: a byte-builder good
// enough to assemble nested lists incrementally, and a stream-safe
// decode iterator. The same decoder walks trie witness nodes in
// mpt.Verify and reads the account fields the verifier compares
// against a trie leaf.
package rlp

import (
	"github.com/pkg/errors"
)

// EncodeItem RLP-encodes a single byte string. The empty slice encodes
// to the single byte 0x80 per the spec (integers encode as their
// big-endian minimal byte string; zero is the empty string).
func EncodeItem(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(header(0x80, len(b)), b...)
}

// EncodeUint RLP-encodes n as its big-endian minimal byte string.
func EncodeUint(n uint64) []byte {
	if n == 0 {
		return EncodeItem(nil)
	}
	var buf [8]byte
	i := 8
	for n > 0 {
		i--
		buf[i] = byte(n)
		n >>= 8
	}
	return EncodeItem(buf[i:])
}

// EncodeList wraps already-encoded items/lists into a single RLP list.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return append(header(0xc0, len(payload)), payload...)
}

// Builder accumulates a list body incrementally; Add appends an
// already RLP-encoded item or nested list, AddList wraps a previously
// accumulated builder as a nested list, and ToList seals the
// accumulated payload as a top-level list.
type Builder struct {
	payload []byte
}

// NewBuilder returns an empty list builder.
func NewBuilder() *Builder { return &Builder{} }

// Add appends a pre-encoded RLP item or list to the builder.
func (b *Builder) Add(encoded []byte) *Builder {
	b.payload = append(b.payload, encoded...)
	return b
}

// AddItem RLP-encodes and appends a byte string.
func (b *Builder) AddItem(raw []byte) *Builder {
	return b.Add(EncodeItem(raw))
}

// AddUint RLP-encodes and appends an unsigned integer.
func (b *Builder) AddUint(n uint64) *Builder {
	return b.Add(EncodeUint(n))
}

// AddList seals child's accumulated payload as a nested list and
// appends it to b.
func (b *Builder) AddList(child *Builder) *Builder {
	return b.Add(child.ToList())
}

// ToList wraps the builder's entire accumulated payload as a top-level
// RLP list. The builder is left usable; callers typically discard it
// after this call (the original C implementation frees its buffer
// here).
func (b *Builder) ToList() []byte {
	return append(header(0xc0, len(b.payload)), b.payload...)
}

func header(base byte, n int) []byte {
	if n < 56 {
		return []byte{base + byte(n)}
	}
	var lenBytes []byte
	for n > 0 {
		lenBytes = append([]byte{byte(n)}, lenBytes...)
		n >>= 8
	}
	return append([]byte{base + 55 + byte(len(lenBytes))}, lenBytes...)
}

// Kind distinguishes a decoded RLP node's shape.
type Kind int

const (
	KindItem Kind = iota
	KindList
)

// Decode reads one RLP value (item or list) from the front of b and
// returns its kind, its payload view (not including the length
// header), and the remainder of b after this value. It is safe to
// call repeatedly on the remainder to iterate a concatenation of
// values, which is how a list's body is walked.
func Decode(b []byte) (kind Kind, payload, rest []byte, err error) {
	if len(b) == 0 {
		return 0, nil, nil, errors.New("rlp: empty input")
	}
	first := b[0]
	switch {
	case first < 0x80:
		return KindItem, b[:1], b[1:], nil
	case first < 0xb8:
		n := int(first - 0x80)
		if len(b) < 1+n {
			return 0, nil, nil, errors.New("rlp: short item")
		}
		return KindItem, b[1 : 1+n], b[1+n:], nil
	case first < 0xc0:
		lenlen := int(first - 0xb7)
		if len(b) < 1+lenlen {
			return 0, nil, nil, errors.New("rlp: short item length")
		}
		n := decodeLength(b[1 : 1+lenlen])
		start := 1 + lenlen
		if len(b) < start+n {
			return 0, nil, nil, errors.New("rlp: short item")
		}
		return KindItem, b[start : start+n], b[start+n:], nil
	case first < 0xf8:
		n := int(first - 0xc0)
		if len(b) < 1+n {
			return 0, nil, nil, errors.New("rlp: short list")
		}
		return KindList, b[1 : 1+n], b[1+n:], nil
	default:
		lenlen := int(first - 0xf7)
		if len(b) < 1+lenlen {
			return 0, nil, nil, errors.New("rlp: short list length")
		}
		n := decodeLength(b[1 : 1+lenlen])
		start := 1 + lenlen
		if len(b) < start+n {
			return 0, nil, nil, errors.New("rlp: short list")
		}
		return KindList, b[start : start+n], b[start+n:], nil
	}
}

func decodeLength(b []byte) int {
	n := 0
	for _, c := range b {
		n = n<<8 | int(c)
	}
	return n
}

// DecodeList splits a list's payload (as returned by Decode) into its
// top-level elements, each still RLP-encoded.
func DecodeList(payload []byte) ([][]byte, error) {
	var out [][]byte
	rest := payload
	for len(rest) > 0 {
		_, _, next, err := Decode(rest)
		if err != nil {
			return nil, err
		}
		elemLen := len(rest) - len(next)
		out = append(out, rest[:elemLen])
		rest = next
	}
	return out, nil
}
