package verifier

import (
	"bytes"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/mpt"
	"github.com/corpus-core/c4go/rpcglue"
)

// verifyReceipt handles ProofReceipt: the receipt's canonical RLP
// encoding, reconstructed from its decomposed fields, proven under
// execution_payload.receipts_root, which is in turn proven under the
// attested header's body root, per spec.md §4.6.
func (ctx *Context) verifyReceipt(dataObj, proof ssz.Object) (*Result, error) {
	receiptsRootObj, err := proof.Get("receiptsRoot")
	if err != nil {
		return nil, fail(KindInternal, err, "reading claimed receipts root")
	}
	var receiptsRoot [32]byte
	copy(receiptsRoot[:], receiptsRootObj.Bytes)

	canonical, err := buildCanonicalReceiptRLP(proof)
	if err != nil {
		return nil, fail(KindInternal, err, "reconstructing canonical receipt rlp")
	}

	receiptProofObj, err := proof.Get("receiptProof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading receipt proof")
	}
	keyObj, err := receiptProofObj.Get("key")
	if err != nil {
		return nil, fail(KindInternal, err, "reading receipt proof key")
	}
	nodeListObj, err := receiptProofObj.Get("proof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading receipt proof nodes")
	}
	proofNodes, err := readNodeList(nodeListObj)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding receipt proof nodes")
	}

	value, result, err := mpt.VerifyRaw(receiptsRoot, keyObj.Bytes, proofNodes)
	if err != nil {
		return nil, fail(KindProofStructuralError, err, "receipt patricia proof")
	}
	if result != mpt.Found {
		return nil, fail(KindProofStructuralError, nil, "receipt proof does not demonstrate inclusion")
	}
	if !bytes.Equal(value, canonical) {
		return nil, fail(KindProofStructuralError, nil, "trie receipt value does not match reconstructed canonical rlp")
	}

	dataSel, err := dataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading data selector")
	}
	switch dataSel {
	case rpcglue.DataReceipt:
		_, claimed, err := dataObj.Union()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding claimed receipt")
		}
		if !bytes.Equal(claimed.Bytes, canonical) {
			return nil, fail(KindProofStructuralError, nil, "claimed receipt does not match reconstructed canonical rlp")
		}
	case rpcglue.DataNone:
	default:
		return nil, fail(KindInputInvalid, nil, "unexpected data variant %d for ReceiptProof", dataSel)
	}

	stateRootProofObj, err := proof.Get("receiptsRootProof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading receipts root proof")
	}
	branch, err := readChunkList(stateRootProofObj)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding receipts root proof")
	}
	header, err := proof.Get("header")
	if err != nil {
		return nil, fail(KindInternal, err, "reading header")
	}
	bodyRoot, err := headerBodyRoot(header)
	if err != nil {
		return nil, fail(KindInternal, err, "reading header body root")
	}
	g, err := beacon.ReceiptsRootGindex()
	if err != nil {
		return nil, fail(KindInternal, err, "computing receipts root gindex")
	}
	if err := ssz.VerifyMultiMerkleProof([][32]byte{receiptsRoot}, []uint64{g}, branch, bodyRoot); err != nil {
		return nil, fail(KindProofStructuralError, err, "receipts root merkle proof")
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
