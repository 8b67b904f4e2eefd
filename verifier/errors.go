// Package verifier implements the verification pipeline (spec.md
// §4.6): it structurally validates a C4Request artifact, optionally
// advances the sync-committee store from an embedded update list, then
// dispatches on the proof union's variant to run the matching
// Merkle/Patricia/BLS checks.
package verifier

import "fmt"

// Kind classifies why verification failed, per spec.md §7.
type Kind int

const (
	KindInputInvalid Kind = iota
	KindRpcError
	KindRpcRetryable
	KindProofStructuralError
	KindSignatureInvalid
	KindMissingSyncPeriod
	KindUnsupported
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInputInvalid:
		return "input_invalid"
	case KindRpcError:
		return "rpc_error"
	case KindRpcRetryable:
		return "rpc_retryable"
	case KindProofStructuralError:
		return "proof_structural_error"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindMissingSyncPeriod:
		return "missing_sync_period"
	case KindUnsupported:
		return "unsupported"
	default:
		return "internal"
	}
}

// Error is the verifier's structured failure type. FirstMissingPeriod
// and LastMissingPeriod are only meaningful when Kind ==
// KindMissingSyncPeriod.
type Error struct {
	Kind               Kind
	Msg                string
	FirstMissingPeriod uint64
	LastMissingPeriod  uint64
	cause              error
}

func (e *Error) Error() string {
	if e.Kind == KindMissingSyncPeriod {
		return fmt.Sprintf("verifier: missing sync periods %d..%d", e.FirstMissingPeriod, e.LastMissingPeriod)
	}
	return fmt.Sprintf("verifier: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

func fail(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: cause}
}

// missingPeriod builds the KindMissingSyncPeriod error for the
// inclusive range [first, last] of sync-committee periods the caller
// must fetch and apply, per spec.md:138.
func missingPeriod(first, last uint64) *Error {
	return &Error{Kind: KindMissingSyncPeriod, FirstMissingPeriod: first, LastMissingPeriod: last,
		Msg: fmt.Sprintf("no trusted committee for period range %d..%d", first, last)}
}

// missingSyncPeriodRange computes that range for target: from one past
// the store's highest currently-trusted period (or target itself, if
// nothing is trusted yet for this chain) through target. E.g. scenario
// S5 (spec.md:206): highest trusted is p-3, target is p, so the caller
// must fetch periods p-2..p.
func (ctx *Context) missingSyncPeriodRange(target uint64) (first, last uint64) {
	_, highestTrusted, ok := ctx.Store.Range(ctx.ChainID)
	if ok {
		first = highestTrusted + 1
	} else {
		first = target
	}
	last = target
	if first > last {
		first = last
	}
	return first, last
}
