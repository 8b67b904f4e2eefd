package verifier

import (
	"bytes"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/rpcglue"
)

// verifyTransaction handles ProofTransaction: a three-leaf multi-proof
// binding block_number, block_hash and transactions[i] to a single
// body root, per spec.md §4.6's literal gindices.
func (ctx *Context) verifyTransaction(dataObj, proof ssz.Object) (*Result, error) {
	dataSel, err := dataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading data selector")
	}
	if dataSel != rpcglue.DataTransactionRaw {
		return nil, fail(KindInputInvalid, nil, "expected raw transaction claim for TxProof, got variant %d", dataSel)
	}
	_, claimedTx, err := dataObj.Union()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding transaction claim")
	}

	txIdxObj, err := proof.Get("transactionIndex")
	if err != nil {
		return nil, fail(KindInternal, err, "reading transaction index")
	}
	txIdx, err := txIdxObj.Uint()
	if err != nil {
		return nil, fail(KindInternal, err, "decoding transaction index")
	}
	blockNumberObj, err := proof.Get("blockNumber")
	if err != nil {
		return nil, fail(KindInternal, err, "reading block number")
	}
	blockNumber, err := blockNumberObj.Uint()
	if err != nil {
		return nil, fail(KindInternal, err, "decoding block number")
	}
	blockHashObj, err := proof.Get("blockHash")
	if err != nil {
		return nil, fail(KindInternal, err, "reading block hash")
	}
	rawTxObj, err := proof.Get("rawTransaction")
	if err != nil {
		return nil, fail(KindInternal, err, "reading raw transaction")
	}
	if !bytes.Equal(rawTxObj.Bytes, claimedTx.Bytes) {
		return nil, fail(KindProofStructuralError, nil, "claimed transaction bytes do not match proof's raw transaction")
	}

	txListElem := ssz.Object{Def: ssz.List(ssz.Uint(1), beacon.MaxBytesPerTransaction), Bytes: rawTxObj.Bytes}
	txLeaf, err := ssz.HashTreeRoot(txListElem)
	if err != nil {
		return nil, fail(KindInternal, err, "hashing transaction leaf")
	}

	blockNumberLeaf := beacon.Uint64LEBytes32(blockNumber)
	var blockHashLeaf [32]byte
	copy(blockHashLeaf[:], blockHashObj.Bytes)

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

	leaves := [][32]byte{blockNumberLeaf, blockHashLeaf, txLeaf}
	gindexes := []uint64{beacon.BlockNumberGindex, beacon.BlockHashGindex, beacon.TransactionGindex(int(txIdx))}
	if err := ssz.VerifyMultiMerkleProof(leaves, gindexes, branch, bodyRoot); err != nil {
		return nil, fail(KindProofStructuralError, err, "transaction merkle proof")
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
