package verifier

import (
	"bytes"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/mpt"
	"github.com/corpus-core/c4go/rpcglue"
)

// verifyLogs handles ProofLogs: each claimed log is proven by
// reconstructing its parent receipt's canonical RLP and walking a
// patricia witness to that block's receipts_root, which is itself
// proven under that block's own header body root. Blocks referenced
// by more than one entry are only merkle- and signature-verified
// once, per spec.md §4.6.
func (ctx *Context) verifyLogs(dataObj, proof ssz.Object) (*Result, error) {
	entriesObj, err := proof.Get("entries")
	if err != nil {
		return nil, fail(KindInternal, err, "reading log entries")
	}
	blocksObj, err := proof.Get("blocks")
	if err != nil {
		return nil, fail(KindInternal, err, "reading log blocks")
	}
	numEntries, err := entriesObj.Len()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding entry count")
	}
	numBlocks, err := blocksObj.Len()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding block count")
	}

	dataSel, err := dataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading data selector")
	}
	var claimedLogs ssz.Object
	haveClaims := dataSel == rpcglue.DataLogs
	if haveClaims {
		_, claimedUnion, err := dataObj.Union()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding claimed logs")
		}
		claimedLogs = claimedUnion
		n, err := claimedLogs.Len()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding claimed log count")
		}
		if n != numEntries {
			return nil, fail(KindInputInvalid, nil, "claimed %d logs but proof carries %d entries", n, numEntries)
		}
	} else if dataSel != rpcglue.DataNone {
		return nil, fail(KindInputInvalid, nil, "unexpected data variant %d for LogsProof", dataSel)
	}

	verifiedBlocks := make(map[int]bool, numBlocks)
	for i := 0; i < numEntries; i++ {
		entry, err := entriesObj.At(i)
		if err != nil {
			return nil, fail(KindInternal, err, "reading log entry %d", i)
		}
		blockIdxObj, err := entry.Get("blockIndex")
		if err != nil {
			return nil, fail(KindInternal, err, "reading block index for entry %d", i)
		}
		blockIdx, err := blockIdxObj.Uint()
		if err != nil {
			return nil, fail(KindInternal, err, "decoding block index for entry %d", i)
		}
		if int(blockIdx) >= numBlocks {
			return nil, fail(KindProofStructuralError, nil, "entry %d references out-of-range block %d", i, blockIdx)
		}
		logIdxObj, err := entry.Get("logIndex")
		if err != nil {
			return nil, fail(KindInternal, err, "reading log index for entry %d", i)
		}
		logIdx, err := logIdxObj.Uint()
		if err != nil {
			return nil, fail(KindInternal, err, "decoding log index for entry %d", i)
		}

		block, err := blocksObj.At(int(blockIdx))
		if err != nil {
			return nil, fail(KindInternal, err, "reading block %d", blockIdx)
		}
		receiptsRootObj, err := block.Get("receiptsRoot")
		if err != nil {
			return nil, fail(KindInternal, err, "reading receipts root for block %d", blockIdx)
		}
		var receiptsRoot [32]byte
		copy(receiptsRoot[:], receiptsRootObj.Bytes)

		canonical, err := buildCanonicalReceiptRLP(entry)
		if err != nil {
			return nil, fail(KindInternal, err, "reconstructing canonical receipt rlp for entry %d", i)
		}

		receiptProofObj, err := entry.Get("receiptProof")
		if err != nil {
			return nil, fail(KindInternal, err, "reading receipt proof for entry %d", i)
		}
		keyObj, err := receiptProofObj.Get("key")
		if err != nil {
			return nil, fail(KindInternal, err, "reading receipt proof key for entry %d", i)
		}
		nodeListObj, err := receiptProofObj.Get("proof")
		if err != nil {
			return nil, fail(KindInternal, err, "reading receipt proof nodes for entry %d", i)
		}
		proofNodes, err := readNodeList(nodeListObj)
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding receipt proof nodes for entry %d", i)
		}
		value, result, err := mpt.VerifyRaw(receiptsRoot, keyObj.Bytes, proofNodes)
		if err != nil {
			return nil, fail(KindProofStructuralError, err, "receipt patricia proof for entry %d", i)
		}
		if result != mpt.Found {
			return nil, fail(KindProofStructuralError, nil, "receipt proof for entry %d does not demonstrate inclusion", i)
		}
		if !bytes.Equal(value, canonical) {
			return nil, fail(KindProofStructuralError, nil, "trie receipt value mismatch for entry %d", i)
		}

		logsObj, err := entry.Get("logs")
		if err != nil {
			return nil, fail(KindInternal, err, "reading logs for entry %d", i)
		}
		numLogs, err := logsObj.Len()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding log count for entry %d", i)
		}
		if int(logIdx) >= numLogs {
			return nil, fail(KindProofStructuralError, nil, "entry %d references out-of-range log %d", i, logIdx)
		}
		if haveClaims {
			logObj, err := logsObj.At(int(logIdx))
			if err != nil {
				return nil, fail(KindInternal, err, "reading log %d of entry %d", logIdx, i)
			}
			encodedLog, err := encodeLogRLP(logObj)
			if err != nil {
				return nil, fail(KindInternal, err, "encoding log %d of entry %d", logIdx, i)
			}
			claimedLog, err := claimedLogs.At(i)
			if err != nil {
				return nil, fail(KindInternal, err, "reading claimed log %d", i)
			}
			if !bytes.Equal(encodedLog, claimedLog.Bytes) {
				return nil, fail(KindProofStructuralError, nil, "claimed log %d does not match proven receipt log", i)
			}
		}

		if verifiedBlocks[int(blockIdx)] {
			continue
		}
		branchObj, err := block.Get("receiptsRootProof")
		if err != nil {
			return nil, fail(KindInternal, err, "reading receipts root proof for block %d", blockIdx)
		}
		branch, err := readChunkList(branchObj)
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding receipts root proof for block %d", blockIdx)
		}
		header, err := block.Get("header")
		if err != nil {
			return nil, fail(KindInternal, err, "reading header for block %d", blockIdx)
		}
		bodyRoot, err := headerBodyRoot(header)
		if err != nil {
			return nil, fail(KindInternal, err, "reading header body root for block %d", blockIdx)
		}
		g, err := beacon.ReceiptsRootGindex()
		if err != nil {
			return nil, fail(KindInternal, err, "computing receipts root gindex")
		}
		if err := ssz.VerifyMultiMerkleProof([][32]byte{receiptsRoot}, []uint64{g}, branch, bodyRoot); err != nil {
			return nil, fail(KindProofStructuralError, err, "receipts root merkle proof for block %d", blockIdx)
		}
		bits, err := block.Get("syncCommitteeBits")
		if err != nil {
			return nil, fail(KindInternal, err, "reading sync committee bits for block %d", blockIdx)
		}
		sig, err := block.Get("syncCommitteeSignature")
		if err != nil {
			return nil, fail(KindInternal, err, "reading sync committee signature for block %d", blockIdx)
		}
		if err := ctx.verifySyncAggregate(header, bits.Bytes, sig.Bytes); err != nil {
			return nil, err
		}
		verifiedBlocks[int(blockIdx)] = true
	}

	return &Result{Success: true}, nil
}

// encodeLogRLP encodes a single LogRecordDef entry as
// [address, [topics...], data], the per-log granularity a claimed
// eth_getLogs entry is compared against.
func encodeLogRLP(logObj ssz.Object) ([]byte, error) {
	addrObj, err := logObj.Get("address")
	if err != nil {
		return nil, err
	}
	topicsObj, err := logObj.Get("topics")
	if err != nil {
		return nil, err
	}
	dataObj, err := logObj.Get("data")
	if err != nil {
		return nil, err
	}
	n, err := topicsObj.Len()
	if err != nil {
		return nil, err
	}
	topicsBuilder := rlp.NewBuilder()
	for i := 0; i < n; i++ {
		t, err := topicsObj.At(i)
		if err != nil {
			return nil, err
		}
		topicsBuilder.AddItem(t.Bytes)
	}
	logBuilder := rlp.NewBuilder()
	logBuilder.AddItem(addrObj.Bytes)
	logBuilder.AddList(topicsBuilder)
	logBuilder.AddItem(dataObj.Bytes)
	return logBuilder.ToList(), nil
}
