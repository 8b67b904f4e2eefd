package verifier

import (
	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/corpus-core/c4go/rpcglue"
	"github.com/corpus-core/c4go/syncstore"
)

// Context carries everything Verify needs beyond the artifact itself:
// which chain the proof is for, the trusted sync-committee store to
// check (and possibly extend) against, and the chain's fork/epoch
// constants.
type Context struct {
	ChainID uint64
	Method  string
	Store   *syncstore.Store
	Params  syncstore.UpdateParams
}

// Result is Verify's success value; Success is always true when err
// is nil (Verify returns a non-nil *Error otherwise) — kept as a
// struct rather than a bare bool so future fields (e.g. which
// sync-committee periods were newly trusted) have somewhere to live.
type Result struct {
	Success bool
}

// Verify runs the pipeline spec.md §4.6 describes: validate, apply
// any embedded sync update list, then dispatch on the proof variant.
func Verify(raw []byte, ctx *Context) (*Result, error) {
	obj, err := rpcglue.ParseArtifact(raw)
	if err != nil {
		return nil, fail(KindInputInvalid, err, "artifact failed structural validation")
	}

	syncDataObj, err := obj.Get("syncData")
	if err != nil {
		return nil, fail(KindInternal, err, "reading sync_data field")
	}
	syncSel, err := syncDataObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading sync_data selector")
	}
	if syncSel == rpcglue.SyncDataLightClientUpdateList {
		_, payload, err := syncDataObj.Union()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding sync_data union")
		}
		updates, err := readUpdateList(payload)
		if err != nil {
			return nil, fail(KindInputInvalid, err, "decoding light client update list")
		}
		if err := ctx.Store.ApplyUpdates(ctx.ChainID, updates, ctx.Params); err != nil {
			var missing *syncstore.MissingPeriodError
			if errors.As(err, &missing) {
				first, last := ctx.missingSyncPeriodRange(missing.Period)
				return nil, missingPeriod(first, last)
			}
			return nil, fail(KindSignatureInvalid, err, "applying sync-committee update list")
		}
	} else if syncSel != rpcglue.SyncDataNone {
		return nil, fail(KindInputInvalid, nil, "unknown sync_data variant %d", syncSel)
	}

	dataObj, err := obj.Get("data")
	if err != nil {
		return nil, fail(KindInternal, err, "reading data field")
	}
	proofObj, err := obj.Get("proof")
	if err != nil {
		return nil, fail(KindInternal, err, "reading proof field")
	}
	proofSel, err := proofObj.Selector()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "reading proof selector")
	}
	_, proofPayload, err := proofObj.Union()
	if err != nil {
		return nil, fail(KindInputInvalid, err, "decoding proof union")
	}

	switch proofSel {
	case rpcglue.ProofNone:
		dataSel, err := dataObj.Selector()
		if err != nil {
			return nil, fail(KindInputInvalid, err, "reading data selector")
		}
		if syncSel == rpcglue.SyncDataLightClientUpdateList && dataSel == rpcglue.DataNone {
			return &Result{Success: true}, nil
		}
		return nil, fail(KindUnsupported, nil, "no proof present and no sync update to apply")
	case rpcglue.ProofBlockHash:
		return ctx.verifyBlockHash(dataObj, proofPayload)
	case rpcglue.ProofAccount:
		return ctx.verifyAccount(dataObj, proofPayload)
	case rpcglue.ProofTransaction:
		return ctx.verifyTransaction(dataObj, proofPayload)
	case rpcglue.ProofReceipt:
		return ctx.verifyReceipt(dataObj, proofPayload)
	case rpcglue.ProofLogs:
		return ctx.verifyLogs(dataObj, proofPayload)
	default:
		return nil, fail(KindUnsupported, nil, "unknown proof variant %d", proofSel)
	}
}

func readUpdateList(o ssz.Object) ([]ssz.Object, error) {
	n, err := o.Len()
	if err != nil {
		return nil, err
	}
	out := make([]ssz.Object, n)
	for i := 0; i < n; i++ {
		el, err := o.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = el
	}
	return out, nil
}

func readChunkList(o ssz.Object) ([][32]byte, error) {
	n, err := o.Len()
	if err != nil {
		return nil, err
	}
	out := make([][32]byte, n)
	for i := 0; i < n; i++ {
		el, err := o.At(i)
		if err != nil {
			return nil, err
		}
		copy(out[i][:], el.Bytes)
	}
	return out, nil
}

func readNodeList(o ssz.Object) ([][]byte, error) {
	n, err := o.Len()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		el, err := o.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = el.Bytes
	}
	return out, nil
}
