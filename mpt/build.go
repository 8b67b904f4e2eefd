package mpt

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/encoding/rlp"
)

// Trie is an in-memory Merkle-Patricia trie a proofer builds from
// scratch to extract an inclusion proof — the generation-side
// counterpart of Verify/VerifyRaw above. Insert keys are used as raw
// nibble paths (no keccak hashing), matching the receipts and
// transactions trie convention; a proofer never needs a secure
// (hashed-key) trie of its own since eth_getProof already returns
// account/storage witnesses pre-built by the execution client.
type Trie struct {
	root node
}

type node interface{}

// shortNode is an RLP-two-item node: a leaf (val is the stored value)
// or an extension (val is the child node), per verify.go's decode-side
// case 2.
type shortNode struct {
	key    []byte // remaining nibbles at this node
	isLeaf bool
	val    node
}

// fullNode is the 17-item branch node of verify.go's decode-side case
// 17: one child per nibble plus a value terminating exactly here.
type fullNode struct {
	children [16]node
	value    []byte
}

type valueNode []byte

func NewTrie() *Trie { return &Trie{} }

// Insert adds or overwrites the value at key.
func (t *Trie) Insert(key, value []byte) {
	t.root = insert(t.root, toNibbles(key), value)
}

// Root returns the trie's current hash_tree_root-equivalent: the
// keccak256 of its root node's RLP encoding.
func (t *Trie) Root() [32]byte {
	if t.root == nil {
		return [32]byte(crypto.Keccak256Hash(rlp.EncodeItem(nil)))
	}
	return [32]byte(crypto.Keccak256Hash(encodeNode(t.root)))
}

// Prove returns key's stored value and the chain of RLP-encoded nodes
// from root to leaf that Verify/VerifyRaw expects — embedded
// (inlined, <32-byte) nodes are omitted exactly as followPointer
// consumes them.
func (t *Trie) Prove(key []byte) ([]byte, [][]byte, error) {
	if t.root == nil {
		return nil, nil, errors.New("mpt: empty trie")
	}
	nibbles := toNibbles(key)
	pos := 0
	cur := t.root
	proof := [][]byte{encodeNode(cur)}
	for {
		switch n := cur.(type) {
		case *shortNode:
			if !hasPrefix(nibbles[pos:], n.key) {
				return nil, nil, errors.New("mpt: key not present in trie")
			}
			pos += len(n.key)
			if n.isLeaf {
				if pos != len(nibbles) {
					return nil, nil, errors.New("mpt: key not present in trie")
				}
				return []byte(n.val.(valueNode)), proof, nil
			}
			cur = n.val
		case *fullNode:
			if pos == len(nibbles) {
				if n.value == nil {
					return nil, nil, errors.New("mpt: key not present in trie")
				}
				return n.value, proof, nil
			}
			idx := nibbles[pos]
			pos++
			if n.children[idx] == nil {
				return nil, nil, errors.New("mpt: key not present in trie")
			}
			cur = n.children[idx]
		default:
			return nil, nil, errors.New("mpt: unreachable node type")
		}
		if enc := encodeNode(cur); len(enc) >= 32 {
			proof = append(proof, enc)
		}
	}
}

func insert(n node, key []byte, value []byte) node {
	if n == nil {
		return &shortNode{key: key, isLeaf: true, val: valueNode(value)}
	}
	switch t := n.(type) {
	case *shortNode:
		matchLen := commonPrefixLen(t.key, key)

		if matchLen == len(t.key) {
			// key shares t's entire path.
			if matchLen == len(key) {
				if t.isLeaf {
					return &shortNode{key: t.key, isLeaf: true, val: valueNode(value)}
				}
				// extension whose path key exactly reaches: the value
				// terminates at the fullNode the extension points to.
				return wrapPrefix(t.key, insert(t.val, nil, value))
			}
			if t.isLeaf {
				// old leaf terminates here; key continues past it.
				branch := &fullNode{value: []byte(t.val.(valueNode))}
				branch.children[key[matchLen]] = &shortNode{key: key[matchLen+1:], isLeaf: true, val: valueNode(value)}
				return wrapPrefix(key[:matchLen], branch)
			}
			// extension: recurse into the child with the remaining key.
			return wrapPrefix(t.key, insert(t.val, key[matchLen:], value))
		}

		// partial match: split t into a branch at matchLen.
		branch := &fullNode{}
		oldRemainder := t.key[matchLen+1:]
		branch.children[t.key[matchLen]] = branchChild(t.isLeaf, oldRemainder, t.val)
		if matchLen == len(key) {
			branch.value = value
		} else {
			branch.children[key[matchLen]] = &shortNode{key: key[matchLen+1:], isLeaf: true, val: valueNode(value)}
		}
		return wrapPrefix(key[:matchLen], branch)

	case *fullNode:
		nt := *t
		if len(key) == 0 {
			nt.value = value
			return &nt
		}
		nt.children[key[0]] = insert(t.children[key[0]], key[1:], value)
		return &nt
	}
	panic("mpt: unreachable node type in insert")
}

// branchChild wraps a split-off shortNode remainder. A zero-length
// extension remainder collapses into its child node directly (an
// extension of length zero is meaningless); a zero-length leaf
// remainder still needs a shortNode wrapper (a leaf with an empty
// path is how "value terminates exactly at this branch slot" is
// represented), since val there is a bare valueNode, not a node the
// trie's other cases know how to encode on its own.
func branchChild(isLeaf bool, remainder []byte, val node) node {
	if len(remainder) == 0 && !isLeaf {
		return val
	}
	return &shortNode{key: remainder, isLeaf: isLeaf, val: val}
}

func wrapPrefix(prefix []byte, child node) node {
	if len(prefix) == 0 {
		return child
	}
	return &shortNode{key: prefix, isLeaf: false, val: child}
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func encodeNode(n node) []byte {
	switch t := n.(type) {
	case *shortNode:
		path := encodeHexPrefix(t.key, t.isLeaf)
		var valBytes []byte
		if t.isLeaf {
			valBytes = rlp.EncodeItem([]byte(t.val.(valueNode)))
		} else {
			valBytes = encodeChildRef(t.val)
		}
		return rlp.EncodeList(rlp.EncodeItem(path), valBytes)
	case *fullNode:
		items := make([][]byte, 17)
		for i := 0; i < 16; i++ {
			items[i] = encodeChildRef(t.children[i])
		}
		if t.value != nil {
			items[16] = rlp.EncodeItem(t.value)
		} else {
			items[16] = rlp.EncodeItem(nil)
		}
		return rlp.EncodeList(items...)
	default:
		return rlp.EncodeItem(nil)
	}
}

// encodeChildRef is a node's representation inside its parent's item
// list: inlined verbatim when its own encoding is under 32 bytes,
// otherwise a 32-byte keccak256 reference — the inverse of
// Verify's followPointer.
func encodeChildRef(n node) []byte {
	if n == nil {
		return rlp.EncodeItem(nil)
	}
	enc := encodeNode(n)
	if len(enc) < 32 {
		return enc
	}
	return rlp.EncodeItem(crypto.Keccak256(enc))
}

// encodeHexPrefix is the inverse of verify.go's decodeHexPrefix.
func encodeHexPrefix(nibbles []byte, isLeaf bool) []byte {
	var flag byte
	if isLeaf {
		flag = 0x20
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	if len(nibbles)%2 == 1 {
		out = append(out, flag|0x10|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flag)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}
