// Package rpcglue is the external-interface glue (spec.md §4.8/§6):
// JSON-RPC envelope shaping with request-id dedup, and the SSZ schema
// and codec for the C4Request wire artifact exchanged between proofer
// and verifier. The union variant indices declared here are fixed by
// the wire format and MUST NOT be renumbered — cross-language
// verifiers depend on them byte-for-byte.
package rpcglue

import (
	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
)

// Size bounds for the dynamic lists inside a proof artifact. These are
// container capacities (the List "max length" a Def declares), not
// protocol constants — raising them never changes wire encoding of an
// artifact that doesn't use the extra room.
const (
	MaxProofNodes    = 64
	MaxNodeBytes     = 1 << 10
	MaxStorageProofs = 256
	MaxRawTxBytes    = beacon.MaxBytesPerTransaction
	MaxReceiptBytes  = 1 << 20
	MaxLogBytes      = 1 << 16
	MaxLogEntries    = 4096
	MaxLogBlocks     = 4096
	MaxSyncUpdates   = 128
	MaxMerkleChunks  = 32
)

// Fixed union variant indices. data and proof are indexed in parallel
// (variant i of one corresponds to variant i of the other for a given
// proof request), per spec.md §6.
const (
	DataNone           = 0
	DataBlockhash      = 1
	DataBalance        = 2
	DataTransactionRaw = 3
	DataReceipt        = 4
	DataLogs           = 5

	ProofNone        = 0
	ProofBlockHash   = 1
	ProofAccount     = 2
	ProofTransaction = 3
	ProofReceipt     = 4
	ProofLogs        = 5

	SyncDataNone                 = 0
	SyncDataLightClientUpdateList = 1
)

func byteList(maxLen int) *ssz.Def { return ssz.List(ssz.Uint(1), maxLen) }

func nodeList(maxNodes, maxNodeLen int) *ssz.Def { return ssz.List(byteList(maxNodeLen), maxNodes) }

// chunkList is a variable-length sequence of 32-byte Merkle sibling
// hashes — the wire shape of a multi_merkle_proof's proof_chunks.
func chunkList(maxChunks int) *ssz.Def { return ssz.List(ssz.Vector(ssz.Uint(1), 32), maxChunks) }

// MPTProofDef is one Patricia-Merkle inclusion/exclusion witness: the
// key proven, its claimed value (empty for an exclusion proof), and
// the chain of RLP-encoded trie nodes from root to leaf.
func MPTProofDef() *ssz.Def {
	return ssz.Container("MPTProof",
		ssz.F("key", byteList(32)),
		ssz.F("value", byteList(MaxReceiptBytes)),
		ssz.F("proof", nodeList(MaxProofNodes, MaxNodeBytes)),
	)
}

func syncAggregateFields() []ssz.Field {
	return []ssz.Field{
		ssz.F("header", beacon.BeaconBlockHeader()),
		ssz.F("syncCommitteeBits", ssz.BitVector(beacon.SyncCommitteeSize)),
		ssz.F("syncCommitteeSignature", ssz.Vector(ssz.Uint(1), 96)),
	}
}

// BlockHashProofDef proves execution_payload.block_hash under a beacon
// block body root, plus the sync aggregate attesting to that header.
func BlockHashProofDef() *ssz.Def {
	fields := append([]ssz.Field{ssz.F("proof", chunkList(MaxMerkleChunks))}, syncAggregateFields()...)
	return ssz.Container("BlockHashProof", fields...)
}

// AccountProofDef proves an account's RLP encoding under
// execution_payload.state_root (via accountProof), state_root's
// membership under the body root (via stateRootProof), and — for each
// requested storage slot — a value under the account's storage root.
func AccountProofDef() *ssz.Def {
	fields := append([]ssz.Field{
		ssz.F("address", ssz.Vector(ssz.Uint(1), 20)),
		ssz.F("stateRoot", beacon.Hash32()),
		ssz.F("accountProof", MPTProofDef()),
		ssz.F("storageProof", ssz.List(MPTProofDef(), MaxStorageProofs)),
		ssz.F("stateRootProof", chunkList(MaxMerkleChunks)),
	}, syncAggregateFields()...)
	return ssz.Container("AccountProof", fields...)
}

// TxProofDef proves a raw transaction's membership at a fixed gindex
// under the body root, per the literal gindices spec.md §4.6 names.
func TxProofDef() *ssz.Def {
	fields := append([]ssz.Field{
		ssz.F("transactionIndex", ssz.Uint(4)),
		ssz.F("blockNumber", ssz.Uint(8)),
		ssz.F("blockHash", beacon.Hash32()),
		ssz.F("rawTransaction", byteList(MaxRawTxBytes)),
		ssz.F("proof", chunkList(MaxMerkleChunks)),
	}, syncAggregateFields()...)
	return ssz.Container("TxProof", fields...)
}

// LogRecordDef is one emitted log, the granularity spec.md §4.6's
// canonical receipt RLP reconstruction needs: [address, [topics], data].
func LogRecordDef() *ssz.Def {
	return ssz.Container("LogRecord",
		ssz.F("address", ssz.Vector(ssz.Uint(1), 20)),
		ssz.F("topics", ssz.List(beacon.Hash32(), 4)),
		ssz.F("data", byteList(MaxLogBytes)),
	)
}

// receiptFields are the decomposed receipt contents the canonical RLP
// envelope is rebuilt from: [statusOrStateRoot, cumulativeGasUsed,
// logsBloom, logs], prefixed by a type byte for typed transactions.
func receiptFields() []ssz.Field {
	return []ssz.Field{
		ssz.F("txType", ssz.Uint(1)),
		ssz.F("statusOrStateRoot", byteList(32)),
		ssz.F("cumulativeGasUsed", ssz.Uint(8)),
		ssz.F("logsBloom", ssz.Vector(ssz.Uint(1), 256)),
		ssz.F("logs", ssz.List(LogRecordDef(), MaxLogEntries)),
	}
}

// ReceiptProofDef proves a receipt's canonical RLP encoding under
// execution_payload.receipts_root, plus receipts_root's membership
// under the body root.
func ReceiptProofDef() *ssz.Def {
	fields := append(append([]ssz.Field{
		ssz.F("transactionIndex", ssz.Uint(4)),
		ssz.F("receiptsRoot", beacon.Hash32()),
	}, receiptFields()...), append([]ssz.Field{
		ssz.F("receiptProof", MPTProofDef()),
		ssz.F("receiptsRootProof", chunkList(MaxMerkleChunks)),
	}, syncAggregateFields()...)...)
	return ssz.Container("ReceiptProof", fields...)
}

// LogsBlockProofDef is one block's receipts_root-to-body_root binding;
// LogsProofDef references these by index rather than nesting receipt
// proofs inside them, so a block touched by several requested logs is
// only proven once.
func LogsBlockProofDef() *ssz.Def {
	fields := append([]ssz.Field{
		ssz.F("blockNumber", ssz.Uint(8)),
		ssz.F("receiptsRoot", beacon.Hash32()),
		ssz.F("receiptsRootProof", chunkList(MaxMerkleChunks)),
	}, syncAggregateFields()...)
	return ssz.Container("LogsBlockProof", fields...)
}

// LogEntryRefDef locates one claimed log: which block bundle it came
// from, and its receipt's canonical RLP fields plus its patricia
// witness under that block's receipts_root.
func LogEntryRefDef() *ssz.Def {
	fields := append([]ssz.Field{
		ssz.F("blockIndex", ssz.Uint(4)),
		ssz.F("logIndex", ssz.Uint(4)),
		ssz.F("receiptProof", MPTProofDef()),
	}, receiptFields()...)
	return ssz.Container("LogEntryRef", fields...)
}

func LogsProofDef() *ssz.Def {
	return ssz.Container("LogsProof",
		ssz.F("entries", ssz.List(LogEntryRefDef(), MaxLogEntries)),
		ssz.F("blocks", ssz.List(LogsBlockProofDef(), MaxLogBlocks)),
	)
}

// DataDef is the "claimed value being proved" union; its selected
// variant must match the proof union's selected variant for a given
// artifact (e.g. selector 1 in both means "blockhash claim,
// BlockHashProof witness").
func DataDef() *ssz.Def {
	return ssz.Union(
		ssz.NoneDef(),
		beacon.Hash32(),
		ssz.Uint(32),
		byteList(MaxRawTxBytes),
		byteList(MaxReceiptBytes),
		ssz.List(byteList(MaxLogBytes), MaxLogEntries),
	)
}

func ProofDef() *ssz.Def {
	return ssz.Union(
		ssz.NoneDef(),
		BlockHashProofDef(),
		AccountProofDef(),
		TxProofDef(),
		ReceiptProofDef(),
		LogsProofDef(),
	)
}

func SyncDataDef() *ssz.Def {
	return ssz.Union(
		ssz.NoneDef(),
		beacon.LightClientUpdateList(MaxSyncUpdates),
	)
}

// C4RequestDef is the top-level artifact exchanged between proofer and
// verifier.
func C4RequestDef() *ssz.Def {
	return ssz.Container("C4Request",
		ssz.F("data", DataDef()),
		ssz.F("proof", ProofDef()),
		ssz.F("syncData", SyncDataDef()),
	)
}

// ParseArtifact wraps raw bytes as a C4Request Object and structurally
// validates it — the mandatory first step for any externally supplied
// artifact (spec.md §4.1).
func ParseArtifact(raw []byte) (ssz.Object, error) {
	obj := ssz.Object{Def: C4RequestDef(), Bytes: raw}
	if err := obj.Validate(); err != nil {
		return ssz.Empty(), err
	}
	return obj, nil
}
