package syncstore

import (
	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/crypto/bls"
	"github.com/corpus-core/c4go/encoding/ssz"
)

// UpdateParams carries the chain-specific constants ApplyUpdates needs
// that a LightClientUpdate object doesn't itself encode.
type UpdateParams struct {
	SlotsPerEpoch         uint64
	EpochsPerSyncPeriod   uint64
	ForkVersion           beacon.ForkVersion
	GenesisValidatorsRoot [32]byte
}

// ApplyUpdates verifies and applies a sequence of LightClientUpdate
// objects (each an ssz.Object of Def beacon.LightClientUpdate()) in
// order, per spec.md §4.5: each update's next_sync_committee and
// finalized_header Merkle branches must check out against its
// attested header's state root, and its sync aggregate must carry a
// valid >=2/3 aggregate BLS signature from the committee already
// trusted for that update's signature-slot period. On success the
// update's next_sync_committee becomes the trusted committee for the
// following period.
func (s *Store) ApplyUpdates(chainID uint64, updates []ssz.Object, params UpdateParams) error {
	for i, u := range updates {
		if err := s.applyOne(chainID, u, params); err != nil {
			return errors.Wrapf(err, "update %d", i)
		}
	}
	return nil
}

func (s *Store) applyOne(chainID uint64, u ssz.Object, params UpdateParams) error {
	attestedHeader, err := u.Get("attestedHeader")
	if err != nil {
		return err
	}
	attestedBeacon, err := attestedHeader.Get("beacon")
	if err != nil {
		return err
	}
	stateRootObj, err := attestedBeacon.Get("stateRoot")
	if err != nil {
		return err
	}
	var attestedStateRoot [32]byte
	copy(attestedStateRoot[:], stateRootObj.Bytes)

	nextSC, err := u.Get("nextSyncCommittee")
	if err != nil {
		return err
	}
	nextSCRoot, err := ssz.HashTreeRoot(nextSC)
	if err != nil {
		return err
	}
	nextSCBranchObj, err := u.Get("nextSyncCommitteeBranch")
	if err != nil {
		return err
	}
	nextSCBranch, err := readBranch(nextSCBranchObj, beacon.NextSyncCommitteeBranchDepth)
	if err != nil {
		return err
	}
	gNextSC, err := beacon.NextSyncCommitteeGindex()
	if err != nil {
		return err
	}
	if err := ssz.VerifyMultiMerkleProof([][32]byte{nextSCRoot}, []uint64{gNextSC}, nextSCBranch, attestedStateRoot); err != nil {
		return errors.Wrap(err, "next_sync_committee branch")
	}

	finalizedHeader, err := u.Get("finalizedHeader")
	if err != nil {
		return err
	}
	finalizedBeacon, err := finalizedHeader.Get("beacon")
	if err != nil {
		return err
	}
	finalizedRoot, err := ssz.HashTreeRoot(finalizedBeacon)
	if err != nil {
		return err
	}
	finalityBranchObj, err := u.Get("finalityBranch")
	if err != nil {
		return err
	}
	finalityBranch, err := readBranch(finalityBranchObj, beacon.FinalityBranchDepth)
	if err != nil {
		return err
	}
	gFinalized, err := beacon.FinalizedRootGindex()
	if err != nil {
		return err
	}
	if err := ssz.VerifyMultiMerkleProof([][32]byte{finalizedRoot}, []uint64{gFinalized}, finalityBranch, attestedStateRoot); err != nil {
		return errors.Wrap(err, "finalized_header branch")
	}

	sigSlotObj, err := u.Get("signatureSlot")
	if err != nil {
		return err
	}
	sigSlot, err := sigSlotObj.Uint()
	if err != nil {
		return err
	}
	period := beacon.SlotToPeriod(sigSlot, params.SlotsPerEpoch, params.EpochsPerSyncPeriod)

	signer, err := s.Get(chainID, period)
	if err != nil {
		return err
	}

	syncAgg, err := u.Get("syncAggregate")
	if err != nil {
		return err
	}
	bitsObj, err := syncAgg.Get("syncCommitteeBits")
	if err != nil {
		return err
	}
	sigObj, err := syncAgg.Get("syncCommitteeSignature")
	if err != nil {
		return err
	}

	participants, count, err := SelectParticipants(signer.Pubkeys, bitsObj.Bytes)
	if err != nil {
		return err
	}
	if count*3 < beacon.SyncCommitteeSize*2 {
		return errors.Errorf("sync aggregate participation %d/%d below 2/3 threshold", count, beacon.SyncCommitteeSize)
	}

	sig, err := bls.SignatureFromBytes(sigObj.Bytes)
	if err != nil {
		return errors.Wrap(err, "sync aggregate signature")
	}
	domain := beacon.ComputeDomain(beacon.DomainSyncCommittee, params.ForkVersion, params.GenesisValidatorsRoot)
	objectRoot, err := ssz.HashTreeRoot(attestedBeacon)
	if err != nil {
		return err
	}
	signingRoot := beacon.SigningRoot(objectRoot, domain)
	if !bls.FastAggregateVerify(participants, signingRoot[:], sig) {
		return errors.New("sync committee aggregate signature invalid")
	}

	pubkeysObj, err := nextSC.Get("pubkeys")
	if err != nil {
		return err
	}
	return s.put(chainID, TrustedCommittee{
		Period:  period + 1,
		Root:    nextSCRoot,
		Pubkeys: append([]byte(nil), pubkeysObj.Bytes...),
	})
}

func readBranch(o ssz.Object, depth int) ([][32]byte, error) {
	if len(o.Bytes) != depth*32 {
		return nil, errors.Errorf("syncstore: expected branch of depth %d, got %d bytes", depth, len(o.Bytes))
	}
	out := make([][32]byte, depth)
	for i := 0; i < depth; i++ {
		copy(out[i][:], o.Bytes[i*32:i*32+32])
	}
	return out, nil
}

// SelectParticipants returns the public keys of every sync-committee
// member whose participation bit is set, plus the total count, used
// both to aggregate the verification key and to check the 2/3
// threshold per spec.md §4.5. Exported for reuse by the verifier
// pipeline, which runs the same check inline for each proof's sync
// aggregate rather than through ApplyUpdates.
func SelectParticipants(pubkeysBlob []byte, bitsRaw []byte) ([]*bls.PublicKey, int, error) {
	bits := bitfield.Bitvector512(bitsRaw)
	var out []*bls.PublicKey
	count := 0
	for i := 0; i < beacon.SyncCommitteeSize; i++ {
		if !bits.BitAt(uint64(i)) {
			continue
		}
		start := i * 48
		if start+48 > len(pubkeysBlob) {
			return nil, 0, errors.New("syncstore: committee pubkeys blob truncated")
		}
		pk, err := bls.PublicKeyFromBytes(pubkeysBlob[start : start+48])
		if err != nil {
			return nil, 0, errors.Wrapf(err, "participant %d", i)
		}
		out = append(out, pk)
		count++
	}
	return out, count, nil
}
