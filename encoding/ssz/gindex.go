package ssz

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Gindex computes the generalized index (root=1, children 2g/2g+1) of
// the field reached by path, a sequence of container field names
// (string) and vector/list element indices (int), per spec.md §4.1.
//
// For a container with N fields, field i sits under local gindex
// next_pow2(N)+i within the container's own subtree. For a
// vector/list element i, it sits under next_pow2(capacity)+i (for a
// list, capacity is the max length); additionally, because a list's
// hash_tree_root mixes in its length as the sibling of the data
// subtree, entering a list's elements first descends to the left
// child (gindex*2) before the capacity-based offset is applied.
func Gindex(def *Def, path ...interface{}) (uint64, error) {
	g := uint64(1)
	cur := def
	for _, step := range path {
		switch s := step.(type) {
		case string:
			if cur.Kind != KindContainer {
				return 0, errors.Errorf("ssz: gindex: field step %q on non-container %s", s, cur)
			}
			idx := cur.FieldIndex(s)
			if idx < 0 {
				return 0, errors.Errorf("ssz: gindex: no field %q in %s", s, cur)
			}
			local := uint64(nextPow2(len(cur.Fields)) + idx)
			g = compose(g, local)
			cur = cur.Fields[idx].Def
		case int:
			switch cur.Kind {
			case KindVector:
				if perChunk := packedElementsPerChunk(cur.Elem); perChunk > 1 {
					return 0, packedElementError(s, cur, perChunk)
				}
				local := uint64(nextPow2(cur.Length) + s)
				g = compose(g, local)
				cur = cur.Elem
			case KindList:
				if perChunk := packedElementsPerChunk(cur.Elem); perChunk > 1 {
					return 0, packedElementError(s, cur, perChunk)
				}
				g = g * 2 // descend into the data subtree, sibling of the mixed-in length
				local := uint64(nextPow2(cur.Length) + s)
				g = compose(g, local)
				cur = cur.Elem
			default:
				return 0, errors.Errorf("ssz: gindex: index step %d on non-sequence %s", s, cur)
			}
		default:
			return 0, errors.Errorf("ssz: gindex: unsupported path element %T", step)
		}
	}
	return g, nil
}

// compose folds a local gindex (computed as if parent were the root)
// under a global parent gindex.
func compose(parent, local uint64) uint64 {
	depth := bits.Len64(local) - 1
	mask := (uint64(1) << depth) - 1
	return parent<<uint(depth) | (local & mask)
}

// packedElementsPerChunk returns how many consecutive elem values share
// a single 32-byte Merkle leaf under SSZ's basic-type packing rule (a
// 48-byte element gets its own leaf just like a 32-byte one, since it
// doesn't evenly divide a chunk; only elements <32 bytes pack). Dynamic
// and container elements never pack — each already gets its own leaf.
func packedElementsPerChunk(elem *Def) int {
	if elem.IsDynamic() || elem.Kind == KindContainer {
		return 1
	}
	sz := elem.FixedLength()
	if sz <= 0 || sz >= 32 {
		return 1
	}
	return 32 / sz
}

// packedElementError reports that gindex/path step s addresses an
// element packed alongside others into one chunk: a single element has
// no gindex of its own to return, since Gindex/GenerateProof only ever
// prove whole 32-byte leaves.
func packedElementError(s int, seq *Def, perChunk int) error {
	chunkIdx := s / perChunk
	return errors.Errorf("ssz: gindex: index %d addresses a packed element of %s; packed basic-type vectors/lists only have chunk-granularity gindexes (chunk %d holds elements %d-%d)", s, seq, chunkIdx, chunkIdx*perChunk, chunkIdx*perChunk+perChunk-1)
}
