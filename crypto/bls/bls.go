// Package bls wraps the subset of BLS12-381 this module needs: the
// sync committee's FastAggregateVerify over a beacon header's
// signing_root, used nowhere else (proofers never sign). Backed by
// supranational/blst, the same BLS backend the teacher uses as its
// primary implementation.
package bls

import (
	blst "github.com/supranational/blst/bindings/go"
	"github.com/pkg/errors"
)

const pubkeyLen = 48

// PublicKey is a deserialized, group-checked G1 public key.
type PublicKey struct {
	p *blst.P1Affine
}

// Signature is a deserialized, group-checked G2 signature.
type Signature struct {
	s *blst.P2Affine
}

// PublicKeyFromBytes deserializes and subgroup-checks a 48-byte
// compressed G1 point.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) != pubkeyLen {
		return nil, errors.Errorf("bls: public key must be %d bytes, got %d", pubkeyLen, len(b))
	}
	p := new(blst.P1Affine).Uncompress(b)
	if p == nil || !p.KeyValidate() {
		return nil, errors.New("bls: invalid public key encoding")
	}
	return &PublicKey{p: p}, nil
}

// SignatureFromBytes deserializes and subgroup-checks a 96-byte
// compressed G2 point.
func SignatureFromBytes(b []byte) (*Signature, error) {
	s := new(blst.P2Affine).Uncompress(b)
	if s == nil || !s.SigValidate(false) {
		return nil, errors.New("bls: invalid signature encoding")
	}
	return &Signature{s: s}, nil
}

// AggregatePublicKeys sums a set of public keys (e.g. the sync
// committee members whose participation bit is set) into one
// aggregate public key.
func AggregatePublicKeys(keys []*PublicKey) (*PublicKey, error) {
	if len(keys) == 0 {
		return nil, errors.New("bls: cannot aggregate zero public keys")
	}
	agg := new(blst.P1Aggregate)
	raw := make([]*blst.P1Affine, len(keys))
	for i, k := range keys {
		raw[i] = k.p
	}
	if !agg.Aggregate(raw, false) {
		return nil, errors.New("bls: public key aggregation failed")
	}
	return &PublicKey{p: agg.ToAffine()}, nil
}

// FastAggregateVerify verifies that signature is a valid BLS
// aggregate of all pubkeys signing msg, per spec.md §4.4.
func FastAggregateVerify(pubkeys []*PublicKey, msg []byte, signature *Signature) bool {
	if len(pubkeys) == 0 || signature == nil {
		return false
	}
	raw := make([]*blst.P1Affine, len(pubkeys))
	for i, k := range pubkeys {
		raw[i] = k.p
	}
	return signature.s.FastAggregateVerify(true, raw, msg, dst)
}

// dst is the BLS ciphersuite domain separation tag used by the beacon
// chain for signatures over signing roots.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")
