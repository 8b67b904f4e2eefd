package verifier

import (
	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/rpcglue"
)

// verifyBlockHash handles ProofBlockHash: a single-leaf Merkle proof
// from execution_payload.block_hash to the attested header's body
// root, plus the header's sync aggregate.
func (ctx *Context) verifyBlockHash(dataObj, proof ssz.Object) (*Result, error) {
	dataSel, err := dataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading data selector")
	}
	if dataSel != rpcglue.DataBlockhash {
		return nil, fail(KindInputInvalid, nil, "expected blockhash data claim for BlockHashProof, got variant %d", dataSel)
	}
	_, claimed, err := dataObj.Union()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding blockhash claim")
	}
	var leaf [32]byte
	copy(leaf[:], claimed.Bytes)

	branchObj, err := proof.Get("proof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading proof branch")
	}
	branch, err := readChunkList(branchObj)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding proof branch")
	}
	header, err := proof.Get("header")
	if err != nil {
		return nil, fail(KindInternal, err, "reading header")
	}
	bodyRoot, err := headerBodyRoot(header)
	if err != nil {
		return nil, fail(KindInternal, err, "reading header body root")
	}

	if err := ssz.VerifyMultiMerkleProof([][32]byte{leaf}, []uint64{beacon.BlockHashGindex}, branch, bodyRoot); err != nil {
		return nil, fail(KindProofStructuralError, err, "block hash merkle proof")
	}

	bits, err := proof.Get("syncCommitteeBits")
	if err != nil {
		return nil, fail(KindInternal, err, "reading sync committee bits")
	}
	sig, err := proof.Get("syncCommitteeSignature")
	if err != nil {
		return nil, fail(KindInternal, err, "reading sync committee signature")
	}
	if err := ctx.verifySyncAggregate(header, bits.Bytes, sig.Bytes); err != nil {
		return nil, err
	}
	return &Result{Success: true}, nil
}
