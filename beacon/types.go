// Package beacon declares the SSZ schemas (as encoding/ssz Defs) for
// the beacon-chain types this module's proofs are anchored in: the
// block header, the block body (whose root the verifier proves
// execution-layer data under), the light-client sync-committee
// update, and the subset of BeaconState needed to locate
// next_sync_committee and the finalized checkpoint.
//
// These are deliberately not the full mainnet container — fields the
// proof pipeline never touches (slashings, attestations, validator
// registry contents, ...) are modeled as opaque byte lists so the
// schema's *shape* (field order, dynamic/fixed classification) is
// right for gindex and hash_tree_root purposes without carrying
// thousands of lines of unused consensus-type definitions.
package beacon

import "github.com/corpus-core/c4go/encoding/ssz"

// Hash32 is a 32-byte hash-or-root modeled as a Uint(32) leaf — SSZ
// has no distinct "bytes32" kind; a right-sized opaque Uint is the
// standard encoding trick.
func Hash32() *ssz.Def { return ssz.Uint(32) }

func Checkpoint() *ssz.Def {
	return ssz.Container("Checkpoint",
		ssz.F("epoch", ssz.Uint(8)),
		ssz.F("root", Hash32()),
	)
}

func Eth1Data() *ssz.Def {
	return ssz.Container("Eth1Data",
		ssz.F("depositRoot", Hash32()),
		ssz.F("depositCount", ssz.Uint(8)),
		ssz.F("blockHash", Hash32()),
	)
}

func BeaconBlockHeader() *ssz.Def {
	return ssz.Container("BeaconBlockHeader",
		ssz.F("slot", ssz.Uint(8)),
		ssz.F("proposerIndex", ssz.Uint(8)),
		ssz.F("parentRoot", Hash32()),
		ssz.F("stateRoot", Hash32()),
		ssz.F("bodyRoot", Hash32()),
	)
}

// SyncCommitteeSize is the number of validators in a sync committee.
const SyncCommitteeSize = 512

func SyncCommittee() *ssz.Def {
	return ssz.Container("SyncCommittee",
		ssz.F("pubkeys", ssz.Vector(ssz.Vector(ssz.Uint(1), 48), SyncCommitteeSize)),
		ssz.F("aggregatePubkey", ssz.Vector(ssz.Uint(1), 48)),
	)
}

func SyncAggregate() *ssz.Def {
	return ssz.Container("SyncAggregate",
		ssz.F("syncCommitteeBits", ssz.BitVector(SyncCommitteeSize)),
		ssz.F("syncCommitteeSignature", ssz.Vector(ssz.Uint(1), 96)),
	)
}

// MaxTransactionsPerPayload and MaxBytesPerTransaction bound the
// execution payload's transaction list, per the mainnet execution
// spec.
const (
	MaxTransactionsPerPayload = 1 << 20
	MaxBytesPerTransaction    = 1 << 30
	MaxExtraDataBytes         = 32
)

// MaxWithdrawalsPerPayload bounds the withdrawals list, per the
// mainnet Capella execution spec.
const MaxWithdrawalsPerPayload = 16

// Withdrawal is never read by this module's proof pipeline, but is
// modeled as a real container (rather than folded into an opaqueList)
// since its shape is small and fixed and costs nothing to get right.
func Withdrawal() *ssz.Def {
	return ssz.Container("Withdrawal",
		ssz.F("index", ssz.Uint(8)),
		ssz.F("validatorIndex", ssz.Uint(8)),
		ssz.F("address", ssz.Vector(ssz.Uint(1), 20)),
		ssz.F("amount", ssz.Uint(8)),
	)
}

// ExecutionPayload mirrors the post-Deneb mainnet field list exactly:
// the three trailing fields (withdrawals, blobGasUsed, excessBlobGas)
// are never read by this module's proof pipeline, but their presence
// is required to get the container's field count — and therefore
// every gindex beacon/gindex.go hard-codes below it — right. Dropping
// them shifts ExecutionPayload from 17 fields to 14, which crosses a
// merkleization power-of-two boundary (nextPow2(14)=16 vs.
// nextPow2(17)=32) and silently changes every executionPayload.* gindex.
func ExecutionPayload() *ssz.Def {
	return ssz.Container("ExecutionPayload",
		ssz.F("parentHash", Hash32()),
		ssz.F("feeRecipient", ssz.Vector(ssz.Uint(1), 20)),
		ssz.F("stateRoot", Hash32()),
		ssz.F("receiptsRoot", Hash32()),
		ssz.F("logsBloom", ssz.Vector(ssz.Uint(1), 256)),
		ssz.F("prevRandao", Hash32()),
		ssz.F("blockNumber", ssz.Uint(8)),
		ssz.F("gasLimit", ssz.Uint(8)),
		ssz.F("gasUsed", ssz.Uint(8)),
		ssz.F("timestamp", ssz.Uint(8)),
		ssz.F("extraData", ssz.List(ssz.Uint(1), MaxExtraDataBytes)),
		ssz.F("baseFeePerGas", ssz.Uint(32)),
		ssz.F("blockHash", Hash32()),
		ssz.F("transactions", ssz.List(ssz.List(ssz.Uint(1), MaxBytesPerTransaction), MaxTransactionsPerPayload)),
		ssz.F("withdrawals", ssz.List(Withdrawal(), MaxWithdrawalsPerPayload)),
		ssz.F("blobGasUsed", ssz.Uint(8)),
		ssz.F("excessBlobGas", ssz.Uint(8)),
	)
}

// opaqueList is a placeholder for beacon-body lists this module never
// inspects the contents of (slashings, attestations, deposits, ...):
// only their presence/position in the container matters for gindex
// and hash_tree_root purposes.
func opaqueList(maxLen int) *ssz.Def {
	return ssz.List(ssz.Uint(1), maxLen)
}

func BeaconBlockBody() *ssz.Def {
	return ssz.Container("BeaconBlockBody",
		ssz.F("randaoReveal", ssz.Vector(ssz.Uint(1), 96)),
		ssz.F("eth1Data", Eth1Data()),
		ssz.F("graffiti", Hash32()),
		ssz.F("proposerSlashings", opaqueList(16)),
		ssz.F("attesterSlashings", opaqueList(2)),
		ssz.F("attestations", opaqueList(128)),
		ssz.F("deposits", opaqueList(16)),
		ssz.F("voluntaryExits", opaqueList(16)),
		ssz.F("syncAggregate", SyncAggregate()),
		ssz.F("executionPayload", ExecutionPayload()),
	)
}

// BeaconState models only the prefix of mainnet BeaconState needed to
// locate next_sync_committee and finalized_checkpoint by field name;
// fields preceding them are modeled opaquely to keep their
// declaration position (and therefore their sibling gindexes) right.
func BeaconState() *ssz.Def {
	return ssz.Container("BeaconState",
		ssz.F("genesisTime", ssz.Uint(8)),
		ssz.F("genesisValidatorsRoot", Hash32()),
		ssz.F("slot", ssz.Uint(8)),
		ssz.F("fork", ssz.Container("Fork",
			ssz.F("previousVersion", ssz.Uint(4)),
			ssz.F("currentVersion", ssz.Uint(4)),
			ssz.F("epoch", ssz.Uint(8)),
		)),
		ssz.F("latestBlockHeader", BeaconBlockHeader()),
		ssz.F("blockRoots", ssz.Vector(Hash32(), 8192)),
		ssz.F("stateRoots", ssz.Vector(Hash32(), 8192)),
		ssz.F("historicalRoots", ssz.List(Hash32(), 16777216)),
		ssz.F("eth1Data", Eth1Data()),
		ssz.F("eth1DataVotes", opaqueList(2048)),
		ssz.F("eth1DepositIndex", ssz.Uint(8)),
		ssz.F("validators", opaqueList(1)),
		ssz.F("balances", opaqueList(1)),
		ssz.F("randaoMixes", ssz.Vector(Hash32(), 65536)),
		ssz.F("slashings", ssz.Vector(ssz.Uint(8), 8192)),
		ssz.F("previousEpochParticipation", opaqueList(1)),
		ssz.F("currentEpochParticipation", opaqueList(1)),
		ssz.F("justificationBits", ssz.BitVector(4)),
		ssz.F("previousJustifiedCheckpoint", Checkpoint()),
		ssz.F("currentJustifiedCheckpoint", Checkpoint()),
		ssz.F("finalizedCheckpoint", Checkpoint()),
		ssz.F("inactivityScores", opaqueList(1)),
		ssz.F("currentSyncCommittee", SyncCommittee()),
		ssz.F("nextSyncCommittee", SyncCommittee()),
	)
}

// LightClientHeader holds only the beacon block header; it has no
// execution payload header or execution branch fields.
func LightClientHeader() *ssz.Def {
	return ssz.Container("LightClientHeader",
		ssz.F("beacon", BeaconBlockHeader()),
	)
}

// FinalityBranchDepth is the depth of the Merkle branch from
// finalized_checkpoint.root to the attested state root.
const FinalityBranchDepth = 6

// NextSyncCommitteeBranchDepth is the depth of the Merkle branch from
// next_sync_committee to the attested state root.
const NextSyncCommitteeBranchDepth = 5

func LightClientUpdate() *ssz.Def {
	branch := func(depth int) *ssz.Def { return ssz.Vector(Hash32(), depth) }
	return ssz.Container("LightClientUpdate",
		ssz.F("attestedHeader", LightClientHeader()),
		ssz.F("nextSyncCommittee", SyncCommittee()),
		ssz.F("nextSyncCommitteeBranch", branch(NextSyncCommitteeBranchDepth)),
		ssz.F("finalizedHeader", LightClientHeader()),
		ssz.F("finalityBranch", branch(FinalityBranchDepth)),
		ssz.F("syncAggregate", SyncAggregate()),
		ssz.F("signatureSlot", ssz.Uint(8)),
	)
}

func LightClientUpdateList(maxUpdates int) *ssz.Def {
	return ssz.List(LightClientUpdate(), maxUpdates)
}
