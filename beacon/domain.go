package beacon

import (
	"encoding/binary"

	"github.com/corpus-core/c4go/crypto/hashing"
)

// DomainSyncCommittee is the domain type mixed into a sync-committee
// signing root, fixed by the beacon chain spec.
var DomainSyncCommittee = [4]byte{0x07, 0x00, 0x00, 0x00}

// ForkVersion is the 4-byte fork version that, together with the
// genesis validators root, is needed to compute a domain; both are
// chain-parameterized (see config.ChainParams).
type ForkVersion [4]byte

// ComputeDomain folds a domain type and a fork-data root into the
// 32-byte domain used to compute a signing root, per the beacon chain
// spec's compute_domain.
func ComputeDomain(domainType [4]byte, forkVersion ForkVersion, genesisValidatorsRoot [32]byte) [32]byte {
	forkDataRoot := computeForkDataRoot(forkVersion, genesisValidatorsRoot)
	var out [32]byte
	copy(out[:4], domainType[:])
	copy(out[4:], forkDataRoot[:28])
	return out
}

func computeForkDataRoot(forkVersion ForkVersion, genesisValidatorsRoot [32]byte) [32]byte {
	var padded [32]byte
	copy(padded[:4], forkVersion[:])
	return hashing.SHA256Pair(padded, genesisValidatorsRoot)
}

// SigningRoot computes the hash_tree_root of a SigningData container
// {object_root, domain}, the message a sync committee's aggregate
// signature is verified against.
func SigningRoot(objectRoot [32]byte, domain [32]byte) [32]byte {
	return hashing.SHA256Pair(objectRoot, domain)
}

// SlotToEpoch and SlotToPeriod convert a slot to its epoch and sync
// committee period, per the beacon chain spec's slots-per-epoch and
// epochs-per-sync-committee-period constants.
func SlotToEpoch(slot uint64, slotsPerEpoch uint64) uint64 {
	return slot / slotsPerEpoch
}

func SlotToPeriod(slot, slotsPerEpoch, epochsPerPeriod uint64) uint64 {
	return SlotToEpoch(slot, slotsPerEpoch) / epochsPerPeriod
}

// Uint64LEBytes32 encodes n as a zero-padded 32-byte little-endian
// chunk, the SSZ basic-type leaf encoding — used when a header field
// must be hashed standalone, outside a full container hash_tree_root.
func Uint64LEBytes32(n uint64) [32]byte {
	var out [32]byte
	binary.LittleEndian.PutUint64(out[:8], n)
	return out
}
