package beacon

import "github.com/corpus-core/c4go/encoding/ssz"

// These three generalized indices are preserved verbatim from the
// original C implementation (spec.md §9's design note): the source
// hard-codes them rather than recomputing them from the body schema
// at call time. CheckCanonicalGindexes re-derives them from
// BeaconBlockBody()'s own declared shape and returns an error on
// mismatch; both CLIs call it at startup and exit on that error, so a
// schema edit that silently shifts a field can never produce a
// body-root proof against the wrong leaf.
const (
	BlockNumberGindex       = 806
	BlockHashGindex         = 812
	TransactionsBaseGindex  = 1704984576
)

// TransactionGindex returns the generalized index of
// executionPayload.transactions[i] under a beacon block body root.
func TransactionGindex(i int) uint64 {
	return TransactionsBaseGindex + uint64(i)
}

// CheckCanonicalGindexes verifies the three hard-coded constants above
// against this package's own BeaconBlockBody schema. Call once at
// process start; a mismatch means the schema in types.go no longer
// matches the layout the constants were measured against.
func CheckCanonicalGindexes() error {
	body := BeaconBlockBody()
	if g, err := ssz.Gindex(body, "executionPayload", "blockNumber"); err != nil {
		return err
	} else if g != BlockNumberGindex {
		return gindexMismatch("block_number", BlockNumberGindex, g)
	}
	if g, err := ssz.Gindex(body, "executionPayload", "blockHash"); err != nil {
		return err
	} else if g != BlockHashGindex {
		return gindexMismatch("block_hash", BlockHashGindex, g)
	}
	if g, err := ssz.Gindex(body, "executionPayload", "transactions", 0); err != nil {
		return err
	} else if g != TransactionsBaseGindex {
		return gindexMismatch("transactions[0]", TransactionsBaseGindex, g)
	}
	return nil
}

func gindexMismatch(field string, want uint64, got uint64) error {
	return &gindexMismatchError{field, want, got}
}

type gindexMismatchError struct {
	field      string
	want, got uint64
}

func (e *gindexMismatchError) Error() string {
	return "beacon: canonical gindex for " + e.field + " no longer matches schema"
}

// StateRootGindex returns the generalized index of
// executionPayload.stateRoot under a beacon block body root — used to
// bind an AccountProof's MPT root to the body the sync committee
// signed.
func StateRootGindex() (uint64, error) {
	return ssz.Gindex(BeaconBlockBody(), "executionPayload", "stateRoot")
}

// ReceiptsRootGindex returns the generalized index of
// executionPayload.receiptsRoot under a beacon block body root.
func ReceiptsRootGindex() (uint64, error) {
	return ssz.Gindex(BeaconBlockBody(), "executionPayload", "receiptsRoot")
}

// NextSyncCommitteeGindex returns the generalized index of
// nextSyncCommittee under a BeaconState root.
func NextSyncCommitteeGindex() (uint64, error) {
	return ssz.Gindex(BeaconState(), "nextSyncCommittee")
}

// FinalizedRootGindex returns the generalized index of
// finalizedCheckpoint.root under a BeaconState root.
func FinalizedRootGindex() (uint64, error) {
	return ssz.Gindex(BeaconState(), "finalizedCheckpoint", "root")
}
