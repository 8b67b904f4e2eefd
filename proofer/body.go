package proofer

import (
	"strconv"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/ssz"
)

// fetchBlockBody resolves the SSZ-encoded beacon block body at slot,
// requested in octet-stream form (the Beacon API's binary content
// negotiation a light client uses instead of the verbose JSON
// representation) so Merkle branches can be generated locally against
// this module's own BeaconBlockBody schema. The consensus-internal
// fields that schema keeps opaque (spec.md's scope never inspects
// them) are carried through verbatim; only the execution-payload
// fields this module's proofs actually walk need bit-exact encoding,
// and ExecutionPayload's Def here is the real mainnet layout.
func fetchBlockBody(c *Context, slot uint64) (ssz.Object, bool, error) {
	raw, ok, err := beaconGet(c, "/eth/v2/beacon/blocks/"+strconv.FormatUint(slot, 10)+"?format=ssz")
	if err != nil || !ok {
		return ssz.Object{}, false, err
	}
	return ssz.Object{Def: beacon.BeaconBlockBody(), Bytes: raw}, true, nil
}
