package ssz

import (
	"crypto/sha256"
	"encoding/binary"

	htr "github.com/prysmaticlabs/gohashtree"
)

// chunk is one 32-byte Merkle leaf/node.
type chunk = [32]byte

var zeroHashes = buildZeroHashes(64)

// buildZeroHashes precomputes sha256(zero‖zero) bottom-up per depth so
// padding an under-full subtree to a power of two never needs a fresh
// hash of real zero bytes at verification time.
func buildZeroHashes(depth int) []chunk {
	out := make([]chunk, depth+1)
	for i := 1; i <= depth; i++ {
		out[i] = hashPair(out[i-1], out[i-1])
	}
	return out
}

func hashPair(l, r chunk) chunk {
	var dst [1][32]byte
	src := [2][32]byte{l, r}
	// gohashtree.Hash processes chunks two at a time; a single pair is
	// the degenerate (and still vectorizable) case.
	if err := htr.Hash(dst[:], src[:]); err != nil {
		// gohashtree only fails on malformed slice lengths, which
		// cannot happen with the fixed-size arrays above.
		h := sha256.Sum256(append(append([]byte{}, l[:]...), r[:]...))
		return h
	}
	return dst[0]
}

// nextPow2 returns the smallest power of two >= n (n=0 -> 1).
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// log2 returns the base-2 log of a power of two.
func log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// merkleizeChunks folds a list of leaves up to a single root, padding
// with zero-subtree hashes to the next power of two (or to limit, the
// list/vector capacity in chunks, when given).
func merkleizeChunks(leaves []chunk, limit int) chunk {
	count := nextPow2(len(leaves))
	if limit > count {
		count = nextPow2(limit)
	}
	if count == 0 {
		count = 1
	}
	depth := log2(count)
	layer := append([]chunk(nil), leaves...)
	for d := 0; d < depth; d++ {
		// Pad an odd layer with the cached root of an all-zero subtree
		// of this depth instead of materialising the zero leaves.
		if len(layer)%2 == 1 {
			layer = append(layer, zeroHashes[d])
		}
		width := len(layer) / 2
		next := make([]chunk, width)
		// Hash pairs in bulk; fall back pairwise if gohashtree rejects
		// the input.
		if width > 0 {
			dst := make([]chunk, width)
			if err := htr.Hash(dst, layer); err == nil {
				next = dst
			} else {
				for i := 0; i < width; i++ {
					next[i] = hashPair(layer[2*i], layer[2*i+1])
				}
			}
		}
		layer = next
	}
	if len(layer) == 0 {
		return zeroHashes[depth]
	}
	return layer[0]
}

// mixInLength folds the 8-byte little-endian length into the data
// root, per SSZ mix_in_length.
func mixInLength(root chunk, length int) chunk {
	var lenChunk chunk
	binary.LittleEndian.PutUint64(lenChunk[:8], uint64(length))
	return hashPair(root, lenChunk)
}

// mixInSelector folds a union's 8-byte little-endian selector into
// the variant root, per SSZ mix_in_selector.
func mixInSelector(root chunk, selector int) chunk {
	return mixInLength(root, selector)
}

// pack right-pads raw bytes to a multiple of 32 and splits into
// chunks.
func pack(raw []byte) []chunk {
	n := nextPow2Multiple32(len(raw))
	padded := make([]byte, n)
	copy(padded, raw)
	out := make([]chunk, n/32)
	for i := range out {
		copy(out[i][:], padded[i*32:i*32+32])
	}
	if len(out) == 0 {
		out = []chunk{{}}
	}
	return out
}

func nextPow2Multiple32(n int) int {
	if n == 0 {
		return 32
	}
	return ((n + 31) / 32) * 32
}

// HashTreeRoot computes the SSZ hash_tree_root of o per spec.md §4.1:
// basic types are right-padded to 32 bytes (little-endian for
// multi-byte ints); vectors/lists of basics are packed then
// merkleized (lists additionally mix in their length); composite
// vectors/lists merkleize element roots; containers merkleize field
// roots in declaration order; bitvectors/bitlists pack bits (bitlists
// mix in length); unions merkleize the selected variant's root mixed
// with the variant index.
func HashTreeRoot(o Object) ([32]byte, error) {
	switch o.Def.Kind {
	case KindUint:
		var c chunk
		copy(c[:], o.Bytes)
		return c, nil
	case KindBoolean:
		var c chunk
		c[0] = o.Bytes[0]
		return c, nil
	case KindNone:
		return chunk{}, nil
	case KindBitVector:
		return merkleizeChunks(pack(o.Bytes), 0), nil
	case KindBitList:
		n, err := o.Len()
		if err != nil {
			return chunk{}, err
		}
		byteLen := (n + 7) / 8
		body := make([]byte, byteLen)
		copy(body, o.Bytes[:byteLen])
		limitChunks := (o.Def.Length/8 + 31) / 32
		root := merkleizeChunks(pack(body), limitChunks)
		return mixInLength(root, n), nil
	case KindVector:
		return hashTreeRootSequence(o, o.Def.Elem, o.Def.Length, o.Def.Length, false)
	case KindList:
		n, err := o.Len()
		if err != nil {
			return chunk{}, err
		}
		root, err := hashTreeRootSequence(o, o.Def.Elem, n, o.Def.Length, true)
		if err != nil {
			return chunk{}, err
		}
		return mixInLength(root, n), nil
	case KindContainer:
		leaves := make([]chunk, len(o.Def.Fields))
		for i, f := range o.Def.Fields {
			fo, err := o.Get(f.Name)
			if err != nil {
				return chunk{}, err
			}
			r, err := HashTreeRoot(fo)
			if err != nil {
				return chunk{}, err
			}
			leaves[i] = r
		}
		return merkleizeChunks(leaves, len(leaves)), nil
	case KindUnion:
		sel, err := o.Selector()
		if err != nil {
			return chunk{}, err
		}
		_, payload, err := o.Union()
		if err != nil {
			return chunk{}, err
		}
		var root chunk
		if o.Def.Variants[sel].Kind != KindNone {
			root, err = HashTreeRoot(payload)
			if err != nil {
				return chunk{}, err
			}
		}
		return mixInSelector(root, sel), nil
	default:
		return chunk{}, errUnknownKind(o.Def)
	}
}

func hashTreeRootSequence(o Object, elem *Def, count, limit int, isList bool) (chunk, error) {
	if !elem.IsDynamic() && elem.Kind != KindContainer {
		// Basic-type vector/list: pack raw bytes.
		var raw []byte
		for i := 0; i < count; i++ {
			el, err := o.At(i)
			if err != nil {
				return chunk{}, err
			}
			raw = append(raw, el.Bytes...)
		}
		limitBytes := limit * elem.FixedLength()
		limitChunks := (limitBytes + 31) / 32
		return merkleizeChunks(pack(raw), limitChunks), nil
	}
	leaves := make([]chunk, count)
	for i := 0; i < count; i++ {
		el, err := o.At(i)
		if err != nil {
			return chunk{}, err
		}
		r, err := HashTreeRoot(el)
		if err != nil {
			return chunk{}, err
		}
		leaves[i] = r
	}
	return merkleizeChunks(leaves, limit), nil
}

func errUnknownKind(d *Def) error {
	return &unknownKindError{d}
}

type unknownKindError struct{ d *Def }

func (e *unknownKindError) Error() string { return "ssz: hash_tree_root: unsupported def " + e.d.String() }
