// Package hashing exposes the two hash primitives spec.md's crypto
// component (C5) names beyond BLS: SHA-256 (the SSZ Merkleization
// hash, delegated to encoding/ssz's gohashtree-backed tree hasher for
// bulk work, plain crypto/sha256 for one-shot values like
// signing_root) and Keccak-256 (the execution-layer hash, via
// go-ethereum's crypto package).
package hashing

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
)

// SHA256 returns the plain SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Pair returns sha256(left ‖ right), the SSZ internal-node hash.
func SHA256Pair(left, right [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return sha256.Sum256(buf[:])
}

// Keccak256 returns the Keccak-256 digest of data, the execution-layer
// hash used for trie paths, block hashes, and transaction/receipt/log
// addressing.
func Keccak256(data ...[]byte) [32]byte {
	return [32]byte(crypto.Keccak256Hash(data...))
}
