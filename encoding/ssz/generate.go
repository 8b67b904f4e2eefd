package ssz

import (
	"encoding/binary"

	"github.com/pkg/errors"
	htr "github.com/prysmaticlabs/gohashtree"
)

// GenerateProof is the proofer-side counterpart of VerifyMultiMerkleProof:
// given an Object and a path of the same shape Gindex accepts (container
// field names, vector/list element indices), it walks the tree,
// computing every sibling subtree's hash_tree_root along the way, and
// returns the target leaf, its generalized index, and the minimal
// sibling chunk list VerifyMultiMerkleProof expects — ordered deepest
// (closest to the leaf) first, shallowest (closest to the root) last.
func GenerateProof(obj Object, path ...interface{}) (leaf [32]byte, gindex uint64, siblings [][32]byte, err error) {
	gindex, err = Gindex(obj.Def, path...)
	if err != nil {
		return chunk{}, 0, nil, err
	}
	leaf, siblings, err = walkProof(obj, path)
	return leaf, gindex, siblings, err
}

func walkProof(obj Object, path []interface{}) (chunk, []chunk, error) {
	if len(path) == 0 {
		root, err := HashTreeRoot(obj)
		return root, nil, err
	}
	switch step := path[0].(type) {
	case string:
		if obj.Def.Kind != KindContainer {
			return chunk{}, nil, errors.Errorf("ssz: GenerateProof: field step %q on non-container %s", step, obj.Def)
		}
		idx := obj.Def.FieldIndex(step)
		if idx < 0 {
			return chunk{}, nil, errors.Errorf("ssz: GenerateProof: no field %q in %s", step, obj.Def)
		}
		childObj, err := obj.Get(step)
		if err != nil {
			return chunk{}, nil, err
		}
		childLeaf, childSiblings, err := walkProof(childObj, path[1:])
		if err != nil {
			return chunk{}, nil, err
		}
		fieldRoot, err := HashTreeRoot(childObj)
		if err != nil {
			return chunk{}, nil, err
		}
		leaves := make([]chunk, len(obj.Def.Fields))
		for j, f := range obj.Def.Fields {
			if j == idx {
				leaves[j] = fieldRoot
				continue
			}
			fo, err := obj.Get(f.Name)
			if err != nil {
				return chunk{}, nil, err
			}
			leaves[j], err = HashTreeRoot(fo)
			if err != nil {
				return chunk{}, nil, err
			}
		}
		_, levelSiblings := foldWithSiblings(leaves, 0, idx)
		return childLeaf, append(childSiblings, levelSiblings...), nil

	case int:
		switch obj.Def.Kind {
		case KindVector:
			if perChunk := packedElementsPerChunk(obj.Def.Elem); perChunk > 1 {
				return chunk{}, nil, packedElementError(step, obj.Def, perChunk)
			}
			n := obj.Def.Length
			childObj, err := obj.At(step)
			if err != nil {
				return chunk{}, nil, err
			}
			childLeaf, childSiblings, err := walkProof(childObj, path[1:])
			if err != nil {
				return chunk{}, nil, err
			}
			elemRoot, err := HashTreeRoot(childObj)
			if err != nil {
				return chunk{}, nil, err
			}
			leaves := make([]chunk, n)
			for i := 0; i < n; i++ {
				if i == step {
					leaves[i] = elemRoot
					continue
				}
				eo, err := obj.At(i)
				if err != nil {
					return chunk{}, nil, err
				}
				leaves[i], err = HashTreeRoot(eo)
				if err != nil {
					return chunk{}, nil, err
				}
			}
			_, levelSiblings := foldWithSiblings(leaves, 0, step)
			return childLeaf, append(childSiblings, levelSiblings...), nil

		case KindList:
			if perChunk := packedElementsPerChunk(obj.Def.Elem); perChunk > 1 {
				return chunk{}, nil, packedElementError(step, obj.Def, perChunk)
			}
			n, err := obj.Len()
			if err != nil {
				return chunk{}, nil, err
			}
			if step >= n {
				return chunk{}, nil, errors.Errorf("ssz: GenerateProof: index %d out of range (len %d)", step, n)
			}
			childObj, err := obj.At(step)
			if err != nil {
				return chunk{}, nil, err
			}
			childLeaf, childSiblings, err := walkProof(childObj, path[1:])
			if err != nil {
				return chunk{}, nil, err
			}
			elemRoot, err := HashTreeRoot(childObj)
			if err != nil {
				return chunk{}, nil, err
			}
			leaves := make([]chunk, n)
			for i := 0; i < n; i++ {
				if i == step {
					leaves[i] = elemRoot
					continue
				}
				eo, err := obj.At(i)
				if err != nil {
					return chunk{}, nil, err
				}
				leaves[i], err = HashTreeRoot(eo)
				if err != nil {
					return chunk{}, nil, err
				}
			}
			_, levelSiblings := foldWithSiblings(leaves, obj.Def.Length, step)
			lenChunk := mixInLengthChunk(n)
			siblings := append(childSiblings, levelSiblings...)
			siblings = append(siblings, lenChunk)
			return childLeaf, siblings, nil

		default:
			return chunk{}, nil, errors.Errorf("ssz: GenerateProof: index step %d on non-sequence %s", step, obj.Def)
		}
	default:
		return chunk{}, nil, errors.Errorf("ssz: GenerateProof: unsupported path element %T", step)
	}
}

// foldWithSiblings merkleizes leaves (padded to next_pow2(len(leaves))
// or to limit, whichever is larger, exactly as merkleizeChunks does)
// while recording the sibling at idx at each level, deepest first.
func foldWithSiblings(leaves []chunk, limit int, idx int) (chunk, []chunk) {
	count := nextPow2(len(leaves))
	if limit > count {
		count = nextPow2(limit)
	}
	if count == 0 {
		count = 1
	}
	depth := log2(count)
	layer := make([]chunk, count)
	copy(layer, leaves)
	siblings := make([]chunk, 0, depth)
	for d := 0; d < depth; d++ {
		sibIdx := idx ^ 1
		if sibIdx < len(layer) {
			siblings = append(siblings, layer[sibIdx])
		} else {
			siblings = append(siblings, zeroHashes[d])
		}
		width := len(layer) / 2
		next := make([]chunk, width)
		if width > 0 {
			if err := htr.Hash(next, layer); err != nil {
				for i := 0; i < width; i++ {
					next[i] = hashPair(layer[2*i], layer[2*i+1])
				}
			}
		}
		layer = next
		idx /= 2
	}
	if len(layer) == 0 {
		return zeroHashes[0], siblings
	}
	return layer[0], siblings
}

// GenerateMultiProof is GenerateProof generalized to several target
// paths folded into one minimal multi-proof — the generation-side
// counterpart of VerifyMultiMerkleProof. It walks each path
// independently to learn every ancestor's sibling hash (keyed by that
// sibling's own gindex, derivable purely by repeated halving of the
// leaf's absolute gindex, since compose() only ever appends bits below
// a parent), then replays VerifyMultiMerkleProof's exact fold-order
// algorithm forward: whenever an already-known leaf or a previously
// folded node happens to BE the needed sibling, no chunk is emitted for
// it, so shared ancestors between target leaves cost one sibling
// instead of two.
func GenerateMultiProof(obj Object, paths ...[]interface{}) (leaves [][32]byte, gindexes []uint64, proofChunks [][32]byte, err error) {
	leaves = make([][32]byte, len(paths))
	gindexes = make([]uint64, len(paths))
	siblingByGindex := make(map[uint64]chunk)
	for i, p := range paths {
		leaf, g, sibs, err := GenerateProof(obj, p...)
		if err != nil {
			return nil, nil, nil, err
		}
		leaves[i] = leaf
		gindexes[i] = g
		cur := g
		for _, s := range sibs {
			siblingByGindex[cur^1] = s
			cur /= 2
		}
	}

	known := make(map[uint64]chunk, len(paths))
	for i, g := range gindexes {
		if _, dup := known[g]; dup {
			return nil, nil, nil, errors.Errorf("ssz: GenerateMultiProof: duplicate gindex %d", g)
		}
		known[g] = leaves[i]
	}
	var chunks []chunk
	err = foldToRoot(known, func(sibGindex uint64) (chunk, error) {
		h, ok := siblingByGindex[sibGindex]
		if !ok {
			return chunk{}, errors.Errorf("ssz: GenerateMultiProof: no sibling hash recorded for gindex %d", sibGindex)
		}
		chunks = append(chunks, h)
		return h, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	proofChunks = make([][32]byte, len(chunks))
	copy(proofChunks, chunks)
	return leaves, gindexes, proofChunks, nil
}

func mixInLengthChunk(length int) chunk {
	var c chunk
	binary.LittleEndian.PutUint64(c[:8], uint64(length))
	return c
}
