package verifier

import (
	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/crypto/bls"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/syncstore"
)

// verifySyncAggregate checks that the sync committee trusted for
// header's slot's period produced a valid >=2/3 aggregate signature
// over header's signing_root, per spec.md §4.4/§4.6. Every proof
// variant ends with this same check — only the Merkle/Patricia
// portion differs between them.
func (ctx *Context) verifySyncAggregate(header ssz.Object, bits, sig []byte) error {
	slotObj, err := header.Get("slot")
	if err != nil {
		return fail(KindInternal, err, "reading header slot")
	}
	slot, err := slotObj.Uint()
	if err != nil {
		return fail(KindInternal, err, "decoding header slot")
	}
	period := beacon.SlotToPeriod(slot, ctx.Params.SlotsPerEpoch, ctx.Params.EpochsPerSyncPeriod)

	committee, err := ctx.Store.GetValidators(ctx.ChainID, period)
	if err != nil {
		var missing *syncstore.MissingPeriodError
		if errors.As(err, &missing) {
			first, last := ctx.missingSyncPeriodRange(missing.Period)
			return missingPeriod(first, last)
		}
		return fail(KindInternal, err, "loading trusted committee for period %d", period)
	}

	participants, count, err := syncstore.SelectParticipants(committee.Pubkeys, bits)
	if err != nil {
		return fail(KindProofStructuralError, err, "decoding sync committee bits")
	}
	if count*3 < beacon.SyncCommitteeSize*2 {
		return fail(KindSignatureInvalid, nil, "sync aggregate participation %d/%d below 2/3 threshold", count, beacon.SyncCommitteeSize)
	}

	sigObj, err := bls.SignatureFromBytes(sig)
	if err != nil {
		return fail(KindSignatureInvalid, err, "decoding sync aggregate signature")
	}
	domain := beacon.ComputeDomain(beacon.DomainSyncCommittee, ctx.Params.ForkVersion, ctx.Params.GenesisValidatorsRoot)
	objectRoot, err := ssz.HashTreeRoot(header)
	if err != nil {
		return fail(KindInternal, err, "hashing header")
	}
	signingRoot := beacon.SigningRoot(objectRoot, domain)
	if !bls.FastAggregateVerify(participants, signingRoot[:], sigObj) {
		return fail(KindSignatureInvalid, nil, "sync committee aggregate signature invalid")
	}
	return nil
}

func headerBodyRoot(header ssz.Object) ([32]byte, error) {
	fo, err := header.Get("bodyRoot")
	if err != nil {
		return [32]byte{}, err
	}
	var root [32]byte
	copy(root[:], fo.Bytes)
	return root, nil
}
