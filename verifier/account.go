package verifier

import (
	"bytes"

	"github.com/holiman/uint256"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/encoding/rlp"
	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/mpt"
	"github.com/corpus-core/c4go/rpcglue"
)

// verifyAccount handles ProofAccount: the account's canonical RLP
// encoding ([nonce, balance, storageHash, codeHash]) under
// execution_payload.state_root, each requested storage slot under the
// account's storageHash, state_root's own membership under the body
// root, and the header's sync aggregate.
func (ctx *Context) verifyAccount(dataObj, proof ssz.Object) (*Result, error) {
	stateRootObj, err := proof.Get("stateRoot")
	if err != nil {
		return nil, fail(KindInternal, err, "reading claimed state root")
	}
	var stateRoot [32]byte
	copy(stateRoot[:], stateRootObj.Bytes)

	accProofObj, err := proof.Get("accountProof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading account proof")
	}
	keyObj, err := accProofObj.Get("key")
	if err != nil {
		return nil, fail(KindInternal, err, "reading account proof key")
	}
	valueObj, err := accProofObj.Get("value")
	if err != nil {
		return nil, fail(KindInternal, err, "reading account proof value")
	}
	nodeListObj, err := accProofObj.Get("proof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading account proof nodes")
	}
	proofNodes, err := readNodeList(nodeListObj)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding account proof nodes")
	}

	value, result, err := mpt.Verify(stateRoot, keyObj.Bytes, proofNodes)
	if err != nil {
		return nil, fail(KindProofStructuralError, err, "account patricia proof")
	}
	if result != mpt.Found {
		return nil, fail(KindProofStructuralError, nil, "account proof does not demonstrate inclusion")
	}
	if !bytes.Equal(value, valueObj.Bytes) {
		return nil, fail(KindProofStructuralError, nil, "account leaf value mismatch")
	}

	kind, payload, _, err := rlp.Decode(value)
	if err != nil || kind != rlp.KindList {
		return nil, fail(KindProofStructuralError, err, "account value is not an RLP list")
	}
	items, err := rlp.DecodeList(payload)
	if err != nil {
		return nil, fail(KindProofStructuralError, err, "malformed account RLP")
	}
	if len(items) != 4 {
		return nil, fail(KindProofStructuralError, nil, "account RLP must have 4 fields, got %d", len(items))
	}
	_, balanceRaw, _, err := rlp.Decode(items[1])
	if err != nil {
		return nil, fail(KindProofStructuralError, err, "decoding account balance")
	}
	_, storageHashRaw, _, err := rlp.Decode(items[2])
	if err != nil {
		return nil, fail(KindProofStructuralError, err, "decoding account storage root")
	}
	var storageRoot [32]byte
	copy(storageRoot[:], storageHashRaw)

	storageListObj, err := proof.Get("storageProof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading storage proofs")
	}
	n, err := storageListObj.Len()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding storage proof count")
	}
	for i := 0; i < n; i++ {
		sp, err := storageListObj.At(i)
		if err != nil {
			return nil, fail(KindInternal, err, "reading storage proof %d", i)
		}
		spKey, err := sp.Get("key")
		if err != nil {
			return nil, fail(KindInternal, err, "reading storage key %d", i)
		}
		spVal, err := sp.Get("value")
		if err != nil {
			return nil, fail(KindInternal, err, "reading storage value %d", i)
		}
		spNodesObj, err := sp.Get("proof")
		if err != nil {
			return nil, fail(KindInternal, err, "reading storage proof nodes %d", i)
		}
		spNodes, err := readNodeList(spNodesObj)
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding storage proof nodes %d", i)
		}
		v, res, err := mpt.Verify(storageRoot, spKey.Bytes, spNodes)
		if err != nil {
			return nil, fail(KindProofStructuralError, err, "storage patricia proof %d", i)
		}
		if len(spVal.Bytes) == 0 {
			if res == mpt.Found {
				return nil, fail(KindProofStructuralError, nil, "storage proof %d claims absence but trie has a value", i)
			}
			continue
		}
		if res != mpt.Found || !bytes.Equal(v, spVal.Bytes) {
			return nil, fail(KindProofStructuralError, nil, "storage value mismatch at slot %d", i)
		}
	}

	stateRootProofObj, err := proof.Get("stateRootProof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading state root proof")
	}
	branch, err := readChunkList(stateRootProofObj)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding state root proof")
	}
	header, err := proof.Get("header")
	if err != nil {
		return nil, fail(KindInternal, err, "reading header")
	}
	bodyRoot, err := headerBodyRoot(header)
	if err != nil {
		return nil, fail(KindInternal, err, "reading header body root")
	}
	g, err := beacon.StateRootGindex()
	if err != nil {
		return nil, fail(KindInternal, err, "computing state root gindex")
	}
	if err := ssz.VerifyMultiMerkleProof([][32]byte{stateRoot}, []uint64{g}, branch, bodyRoot); err != nil {
		return nil, fail(KindProofStructuralError, err, "state root merkle proof")
	}

	dataSel, err := dataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading data selector")
	}
	switch dataSel {
	case rpcglue.DataBalance:
		_, claimed, err := dataObj.Union()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding claimed balance")
		}
		claimedBalance := new(uint256.Int).SetBytes(reverseBytes(claimed.Bytes))
		accountBalance := new(uint256.Int).SetBytes(balanceRaw)
		if !claimedBalance.Eq(accountBalance) {
			return nil, fail(KindProofStructuralError, nil, "claimed balance does not match proven account balance")
		}
	case rpcglue.DataNone:
	default:
		return nil, fail(KindInputInvalid, nil, "unexpected data variant %d for AccountProof", dataSel)
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

// reverseBytes flips byte order, used to turn an SSZ little-endian
// uint256 into the big-endian form uint256.Int.SetBytes expects.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
