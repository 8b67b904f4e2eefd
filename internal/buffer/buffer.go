// Package buffer implements the growable/capped byte buffer and the
// hex and fixed-width integer codecs every other package in this
// module builds on.
package buffer

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Buffer is an owned, growable region of bytes. A positive cap means
// "bounded": Write truncates silently instead of growing past it. A
// zero or negative cap means unbounded (heap-growing).
type Buffer struct {
	data []byte
	cap  int
}

// New returns an unbounded buffer seeded with data (copied).
func New(data []byte) *Buffer {
	b := &Buffer{}
	b.Write(data)
	return b
}

// NewCapped returns a buffer bounded to n bytes; writes past n are
// truncated. n <= 0 means unbounded.
func NewCapped(n int) *Buffer {
	return &Buffer{cap: n}
}

// Write appends data, truncating if the buffer is capped.
func (b *Buffer) Write(data []byte) int {
	if b.cap > 0 {
		room := b.cap - len(b.data)
		if room <= 0 {
			return 0
		}
		if len(data) > room {
			data = data[:room]
		}
	}
	b.data = append(b.data, data...)
	return len(data)
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.Write([]byte{c})
	return nil
}

// Bytes returns the buffer's current contents. The slice is owned by
// the buffer; callers must copy before mutating the buffer further.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int { return len(b.data) }

// Reset empties the buffer, keeping its capacity setting.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// PutUint64LE writes n's little-endian 8-byte encoding.
func PutUint64LE(n uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, n)
	return buf
}

// Uint64LE decodes an 8-byte little-endian integer. b must have len >= 8.
func Uint64LE(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// PutUintLE writes n's little-endian encoding in exactly size bytes.
// Since n is a uint64, any bytes past the eighth (size 16 or 32) are
// zero; a size below 8 keeps only the low size bytes.
func PutUintLE(n uint64, size int) []byte {
	buf := make([]byte, size)
	for i := 0; i < size && i < 8; i++ {
		buf[i] = byte(n >> (8 * i))
	}
	return buf
}

// UintLE decodes a little-endian integer of arbitrary byte width into
// a uint64, truncating silently if the value does not fit — callers
// needing the full width (e.g. 16/32-byte balances) should decode with
// package uint256 instead.
func UintLE(b []byte) uint64 {
	var n uint64
	for i := 0; i < len(b) && i < 8; i++ {
		n |= uint64(b[i]) << (8 * i)
	}
	return n
}

// FromHex decodes a 0x-prefixed hex string into bytes, the convention
// every JSON-RPC/beacon-API field this module reads uses.
func FromHex(s string) ([]byte, error) {
	return hexutil.Decode(s)
}

// ToHex encodes b as a 0x-prefixed hex string.
func ToHex(b []byte) string {
	return hexutil.Encode(b)
}

// PadLeft returns b left-padded with zero bytes to length n. If b is
// already >= n bytes it is returned unchanged.
func PadLeft(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// PadRight returns b right-padded with zero bytes to length n.
func PadRight(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
