package proofer

import (
	"strconv"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/internal/buffer"
	"github.com/corpus-core/c4go/rpcglue"
)

type beaconHeaderResponse struct {
	Data struct {
		Header struct {
			Message struct {
				Slot          string `json:"slot"`
				ProposerIndex string `json:"proposer_index"`
				ParentRoot    string `json:"parent_root"`
				StateRoot     string `json:"state_root"`
				BodyRoot      string `json:"body_root"`
			} `json:"message"`
		} `json:"header"`
	} `json:"data"`
}

type syncAggregateResponse struct {
	Data struct {
		Message struct {
			Body struct {
				SyncAggregate struct {
					SyncCommitteeBits      string `json:"sync_committee_bits"`
					SyncCommitteeSignature string `json:"sync_committee_signature"`
				} `json:"sync_aggregate"`
			} `json:"body"`
		} `json:"message"`
	} `json:"data"`
}

// headerWithAggregate is the shared syncAggregateFields payload every
// proof variant's container carries: the attested header and the sync
// committee's aggregate over it.
type headerWithAggregate struct {
	HeaderBytes []byte
	Bits        []byte
	Signature   []byte
}

func (h *headerWithAggregate) values() map[string][]byte {
	return map[string][]byte{
		"header":                 h.HeaderBytes,
		"syncCommitteeBits":      h.Bits,
		"syncCommitteeSignature": h.Signature,
	}
}

// fetchHeaderWithAggregate resolves the beacon header at slot and the
// sync aggregate that attests to it, which per the light-client
// protocol lives in the following slot's block body. Returns ok=false
// when either request is still pending.
func fetchHeaderWithAggregate(c *Context, slot uint64) (*headerWithAggregate, bool, error) {
	headerBody, ok, err := beaconGet(c, "/eth/v1/beacon/headers/"+strconv.FormatUint(slot, 10))
	if err != nil || !ok {
		return nil, false, err
	}
	aggBody, ok, err := beaconGet(c, "/eth/v2/beacon/blocks/"+strconv.FormatUint(slot+1, 10))
	if err != nil || !ok {
		return nil, false, err
	}

	var hr beaconHeaderResponse
	if err := json.Unmarshal(headerBody, &hr); err != nil {
		return nil, false, fail(KindRpcError, "decoding beacon header at slot %d: %v", slot, err)
	}
	var ar syncAggregateResponse
	if err := json.Unmarshal(aggBody, &ar); err != nil {
		return nil, false, fail(KindRpcError, "decoding sync aggregate at slot %d: %v", slot+1, err)
	}

	msg := hr.Data.Header.Message
	slotN, err := strconv.ParseUint(msg.Slot, 10, 64)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed slot %q", msg.Slot)
	}
	proposerIndex, err := strconv.ParseUint(msg.ProposerIndex, 10, 64)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed proposer_index %q", msg.ProposerIndex)
	}
	parentRoot, err := buffer.FromHex(msg.ParentRoot)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed parent_root: %v", err)
	}
	stateRoot, err := buffer.FromHex(msg.StateRoot)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed state_root: %v", err)
	}
	bodyRoot, err := buffer.FromHex(msg.BodyRoot)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed body_root: %v", err)
	}

	headerBytes := rpcglue.EncodeContainer(beacon.BeaconBlockHeader(), map[string][]byte{
		"slot":          buffer.PutUintLE(slotN, 8),
		"proposerIndex": buffer.PutUintLE(proposerIndex, 8),
		"parentRoot":    parentRoot,
		"stateRoot":     stateRoot,
		"bodyRoot":      bodyRoot,
	})

	bits, err := buffer.FromHex(ar.Data.Message.Body.SyncAggregate.SyncCommitteeBits)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed sync_committee_bits: %v", err)
	}
	sig, err := buffer.FromHex(ar.Data.Message.Body.SyncAggregate.SyncCommitteeSignature)
	if err != nil {
		return nil, false, fail(KindRpcError, "malformed sync_committee_signature: %v", err)
	}

	return &headerWithAggregate{HeaderBytes: headerBytes, Bits: bits, Signature: sig}, true, nil
}
