package proofer

import (
	"context"
	"fmt"

	"github.com/corpus-core/c4go/config"
	"github.com/corpus-core/c4go/rpcglue"
)

// Status is execute()'s ternary result, per spec.md §4.7.
type Status int

const (
	Pending Status = iota
	Success
	Error
)

// Kind classifies a terminal proofer error.
type Kind int

const (
	KindInputInvalid Kind = iota
	KindRpcError
	KindRpcRetryable
	KindUnsupported
	KindInternal
)

// Err is the proofer's structured failure type.
type Err struct {
	Kind Kind
	Msg  string
}

func (e *Err) Error() string { return fmt.Sprintf("proofer: %s", e.Msg) }

func fail(kind Kind, format string, args ...interface{}) *Err {
	return &Err{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// builderFunc is a resumable computation: given the context's request
// store, it issues whatever requests it still needs and returns
// Pending, or — once every request it needs has resolved — assembles
// the C4Request artifact bytes and returns Success. Builders must be
// pure functions of Context's fields and State; re-entering after a
// Pending yield must reach the exact same request set (spec.md §4.7).
type builderFunc func(ctx *Context) (Status, error)

// Context is a proofer context (spec.md §4.7): the method call being
// proven, the chain it targets, the owning request store, and the
// accumulated result once execute() reaches Success or Error.
type Context struct {
	Method  string
	Params  []interface{}
	ChainID uint64

	Chain config.ChainParams // resolved once at New
	State *State

	ProofBytes []byte
	Err        error

	builder builderFunc
}

// New resolves method to its builder and chain id to its params,
// returning a fresh context ready for Execute.
func New(method string, params []interface{}, chainID uint64) (*Context, error) {
	cp, err := config.For(chainID)
	if err != nil {
		return nil, fail(KindInputInvalid, "unknown chain id %d", chainID)
	}
	b, ok := builders[method]
	if !ok {
		return nil, fail(KindUnsupported, "unsupported method %q", method)
	}
	return &Context{
		Method:  method,
		Params:  params,
		ChainID: chainID,
		Chain:   cp,
		State:   NewState(),
		builder: b,
	}, nil
}

// Execute drives the builder one step: it runs builder, and if it
// yields Pending, resolves every currently-pending request via
// fetcher (the default synchronous host loop a standalone proofer
// binary wants; a service embedding this module may instead resolve
// requests itself via State.Resolve between Execute calls and skip
// fetcher entirely by passing nil and handling Pending as a real
// suspension point).
func (c *Context) Execute(ctx context.Context, fetcher rpcglue.Fetcher) (Status, error) {
	for {
		status, err := c.builder(c)
		if status != Pending {
			if err != nil {
				c.Err = err
			}
			return status, err
		}
		if fetcher == nil {
			return Pending, nil
		}
		pending := c.State.Pending()
		if len(pending) == 0 {
			// builder yielded Pending but issued nothing new — would
			// spin forever; surface as an internal error instead.
			return Error, fail(KindInternal, "builder yielded PENDING with no pending requests")
		}
		for _, r := range pending {
			body, ferr := fetcher.Fetch(ctx, r.Method, r.URL, r.Payload)
			if ferr != nil {
				c.State.Resolve(r.ID, nil, ferr)
				continue
			}
			if r.Type == TypeEthRpc {
				result, derr := rpcglue.DecodeResponse(body)
				if derr != nil {
					if rpcglue.IsRetryable(derr) {
						r.Retry()
						continue
					}
					c.State.Resolve(r.ID, nil, derr)
					continue
				}
				c.State.Resolve(r.ID, result, nil)
				continue
			}
			c.State.Resolve(r.ID, body, nil)
		}
	}
}
