package ssz

import (
	"math/bits"

	"github.com/pkg/errors"
)

// VerifyMultiMerkleProof reconstructs a single root from K leaves at K
// distinct generalized indices plus the minimal set of sibling hashes
// (proofChunks) needed to fold them up, per spec.md §4.1.
//
// Algorithm: seed a working set `known: gindex -> hash` with the
// leaves; repeatedly take the deepest gindex present (ties broken by
// lowest numerical gindex — required for proofs to be bit-identical
// across implementations), fold it with its sibling (taken from
// `known` if already present, else the next proof chunk) into their
// parent, and recurse until only gindex 1 remains. Consumption is
// strict: every proof chunk must be used and none may be left over.
func VerifyMultiMerkleProof(leaves []chunk, gindexes []uint64, proofChunks []chunk, root chunk) error {
	if len(leaves) != len(gindexes) {
		return errors.New("ssz: leaves/gindexes length mismatch")
	}
	known := make(map[uint64]chunk, len(leaves))
	for i, g := range gindexes {
		if g == 0 {
			return errors.New("ssz: gindex 0 is invalid")
		}
		if _, dup := known[g]; dup {
			return errors.Errorf("ssz: duplicate gindex %d in multi-proof", g)
		}
		known[g] = leaves[i]
	}
	consumed := 0
	err := foldToRoot(known, func(sibGindex uint64) (chunk, error) {
		if consumed >= len(proofChunks) {
			return chunk{}, errors.New("ssz: multi-proof exhausted before reconstructing root")
		}
		h := proofChunks[consumed]
		consumed++
		return h, nil
	})
	if err != nil {
		return err
	}
	if consumed != len(proofChunks) {
		return errors.New("ssz: multi-proof has leftover unconsumed chunks")
	}
	final, ok := known[1]
	if !ok {
		return errors.New("ssz: multi-proof did not reduce to the root gindex")
	}
	if final != root {
		return errors.New("ssz: multi-proof root mismatch")
	}
	return nil
}

// deepest returns the gindex in known with the greatest depth
// (bit-length), breaking ties by the lowest numerical gindex.
func deepest(known map[uint64]chunk) (uint64, bool) {
	best := uint64(0)
	bestDepth := -1
	for g := range known {
		d := bits.Len64(g)
		if d > bestDepth || (d == bestDepth && g < best) {
			best, bestDepth = g, d
		}
	}
	return best, bestDepth >= 0
}

// foldToRoot repeatedly takes the deepest gindex in known, folds it
// with its sibling into their shared parent, and writes the parent
// hash back into known, until only gindex 1 remains. A sibling already
// present in known is consumed directly; otherwise resolveSibling is
// called to supply it (and report an error if none can be). Shared by
// VerifyMultiMerkleProof (siblings come from a flat proof-chunk list)
// and GenerateMultiProof (siblings come from recorded per-path proofs)
// so the two can never drift apart on the fold/termination logic.
func foldToRoot(known map[uint64]chunk, resolveSibling func(sibGindex uint64) (chunk, error)) error {
	for {
		if _, ok := known[1]; ok && len(known) == 1 {
			return nil
		}
		g, ok := deepest(known)
		if !ok {
			return nil
		}
		node := known[g]
		sibGindex := g ^ 1
		var sibHash chunk
		if h, present := known[sibGindex]; present {
			sibHash = h
			delete(known, sibGindex)
		} else {
			h, err := resolveSibling(sibGindex)
			if err != nil {
				return err
			}
			sibHash = h
		}
		delete(known, g)
		var left, right chunk
		if g%2 == 0 {
			left, right = node, sibHash
		} else {
			left, right = sibHash, node
		}
		known[g/2] = hashPair(left, right)
	}
}
