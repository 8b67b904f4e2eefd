// Package mpt verifies an Ethereum Patricia-Merkle trie inclusion or
// exclusion proof: a key, a claimed root, and the chain of RLP-encoded
// trie nodes from root to leaf (spec.md §4.3). It uses go-ethereum's
// keccak256 and this module's own encoding/rlp decoder to walk proof
// nodes without re-decoding them into a typed trie structure — the
// verifier only ever needs to answer "what value
// (if any) sits at this key", never to mutate or re-root a trie.
package mpt

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/encoding/rlp"
)

// Result classifies the outcome of Verify.
type Result int

const (
	// Invalid means the proof itself is malformed or inconsistent with root.
	Invalid Result = iota
	// Absent means the proof correctly demonstrates key is not in the trie.
	Absent
	// Found means value holds the trie's value for key.
	Found
)

// Verify walks the nibble path of keccak256(key) through proofNodes
// starting at root and returns the stored value, ABSENT, or INVALID.
//
// Invariants enforced: proofNodes[0]'s keccak256 must equal root;
// every subsequent internal pointer (a 32-byte reference) must equal
// the keccak256 of the next proof node consumed; pointers shorter than
// 32 bytes are embedded ("inlined") nodes, not external references.
func Verify(root [32]byte, key []byte, proofNodes [][]byte) ([]byte, Result, error) {
	return verifyNibbles(root, toNibbles(crypto.Keccak256(key)), proofNodes)
}

// VerifyRaw is Verify's counterpart for tries keyed by the raw byte
// path directly rather than its keccak256 hash — the convention
// Ethereum's per-block receipts and transactions tries use (key =
// rlp(index)), as opposed to the secure (hashed-key) state and storage
// tries Verify serves.
func VerifyRaw(root [32]byte, key []byte, proofNodes [][]byte) ([]byte, Result, error) {
	return verifyNibbles(root, toNibbles(key), proofNodes)
}

func verifyNibbles(root [32]byte, nibbles []byte, proofNodes [][]byte) ([]byte, Result, error) {
	if len(proofNodes) == 0 {
		return nil, Invalid, errors.New("mpt: empty proof")
	}
	if [32]byte(crypto.Keccak256Hash(proofNodes[0])) != root {
		return nil, Invalid, errors.New("mpt: root node hash mismatch")
	}

	pos := 0
	nodeBytes := proofNodes[0]
	proofIdx := 1

	for {
		kind, payload, _, err := rlp.Decode(nodeBytes)
		if err != nil || kind != rlp.KindList {
			return nil, Invalid, errors.New("mpt: proof node is not an RLP list")
		}
		items, err := rlp.DecodeList(payload)
		if err != nil {
			return nil, Invalid, errors.Wrap(err, "mpt: bad node body")
		}

		switch len(items) {
		case 17: // branch: 16 nibble slots + value
			if pos == len(nibbles) {
				_, val, _, err := rlp.Decode(items[16])
				if err != nil {
					return nil, Invalid, err
				}
				if len(val) == 0 {
					return nil, Absent, nil
				}
				return val, Found, nil
			}
			n := nibbles[pos]
			pos++
			_, ptrPayload, _, err := rlp.Decode(items[n])
			if err != nil {
				return nil, Invalid, err
			}
			if len(ptrPayload) == 0 {
				return nil, Absent, nil
			}
			next, err := followPointer(items[n], proofNodes, &proofIdx)
			if err != nil {
				return nil, Invalid, err
			}
			nodeBytes = next

		case 2: // extension or leaf
			if len(items) != 2 {
				return nil, Invalid, errors.New("mpt: malformed node")
			}
			_, encodedPath, _, err := rlp.Decode(items[0])
			if err != nil {
				return nil, Invalid, err
			}
			pathNibbles, isLeaf := decodeHexPrefix(encodedPath)
			if pos+len(pathNibbles) > len(nibbles) || !hasPrefix(nibbles[pos:], pathNibbles) {
				// The proof's path diverges from the requested key's
				// path: a valid demonstration that key is absent.
				return nil, Absent, nil
			}
			pos += len(pathNibbles)

			if isLeaf {
				if pos != len(nibbles) {
					return nil, Absent, nil
				}
				_, val, _, err := rlp.Decode(items[1])
				if err != nil {
					return nil, Invalid, err
				}
				return val, Found, nil
			}
			next, err := followPointer(items[1], proofNodes, &proofIdx)
			if err != nil {
				return nil, Invalid, err
			}
			nodeBytes = next

		default:
			return nil, Invalid, errors.Errorf("mpt: node has %d items, want 2 or 17", len(items))
		}
	}
}

// followPointer resolves an RLP-encoded pointer: if it already
// contains an embedded (inlined) node it is returned directly,
// otherwise it must be a 32-byte hash referencing the next proof node
// in sequence.
func followPointer(ptr []byte, proofNodes [][]byte, proofIdx *int) ([]byte, error) {
	kind, payload, _, err := rlp.Decode(ptr)
	if err != nil {
		return nil, err
	}
	if kind == rlp.KindList {
		return ptr, nil
	}
	if len(payload) != 32 {
		return nil, errors.New("mpt: pointer is neither an inlined node nor a 32-byte hash")
	}
	if *proofIdx >= len(proofNodes) {
		return nil, errors.New("mpt: proof exhausted before reaching referenced node")
	}
	next := proofNodes[*proofIdx]
	if !bytes.Equal(crypto.Keccak256(next), payload) {
		return nil, errors.New("mpt: referenced proof node hash mismatch")
	}
	*proofIdx++
	return next, nil
}

func toNibbles(b []byte) []byte {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[2*i] = c >> 4
		out[2*i+1] = c & 0x0f
	}
	return out
}

func hasPrefix(nibbles, prefix []byte) bool {
	if len(nibbles) < len(prefix) {
		return false
	}
	return bytes.Equal(nibbles[:len(prefix)], prefix)
}

// decodeHexPrefix decodes the compact hex-prefix encoding used by
// extension/leaf node paths: the top two bits of the first nibble flag
// leaf-ness and odd/even length.
func decodeHexPrefix(path []byte) (nibbles []byte, isLeaf bool) {
	if len(path) == 0 {
		return nil, false
	}
	isLeaf = path[0]&0x20 != 0
	odd := path[0]&0x10 != 0
	rest := path[1:]
	if odd {
		nibbles = append(nibbles, path[0]&0x0f)
	}
	for _, b := range rest {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	return nibbles, isLeaf
}
