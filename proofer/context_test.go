package proofer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/config"
	"github.com/corpus-core/c4go/rpcglue"
)

// fakeFetcher serves a queue of canned response bodies per (url,
// payload) key, so a test can script a request resolving on its first
// attempt, or answering once with a JSON-RPC error body before
// succeeding, without any network I/O. Fetch itself only fails once a
// key's queue is exhausted.
type fakeFetcher struct {
	mu    sync.Mutex
	queue map[string][][]byte
	calls int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{queue: map[string][][]byte{}}
}

func (f *fakeFetcher) expect(url string, payload []byte, responses ...[]byte) {
	f.queue[url+string(payload)] = responses
}

func (f *fakeFetcher) Fetch(_ context.Context, _ rpcglue.Method, url string, payload []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := url + string(payload)
	q := f.queue[key]
	if len(q) == 0 {
		return nil, fmt.Errorf("fakeFetcher: no canned response left for %s", key)
	}
	f.queue[key] = q[1:]
	return q[0], nil
}

// twoCallBuilder exercises Execute's suspend/resume loop across two
// distinct upstream calls without depending on any real proof shape.
func twoCallBuilder(c *Context) (Status, error) {
	a, ok, err := ethCall(c, "methodA", nil)
	if err != nil {
		return Error, err
	}
	if !ok {
		return Pending, nil
	}
	b, ok, err := ethCall(c, "methodB", nil)
	if err != nil {
		return Error, err
	}
	if !ok {
		return Pending, nil
	}
	c.ProofBytes = append(append([]byte{}, a...), b...)
	return Success, nil
}

func newSyntheticContext(builder builderFunc) *Context {
	return &Context{
		ChainID: 1,
		Chain:   config.ChainParams{ExecutionRPCURL: "http://execution.example"},
		State:   NewState(),
		builder: builder,
	}
}

func TestExecuteResolvesCallsAcrossResumptions(t *testing.T) {
	c := newSyntheticContext(twoCallBuilder)
	fetcher := newFakeFetcher()

	payloadA, err := rpcglue.EncodeRequest(1, "methodA", nil)
	require.NoError(t, err)
	payloadB, err := rpcglue.EncodeRequest(1, "methodB", nil)
	require.NoError(t, err)
	fetcher.expect(c.Chain.ExecutionRPCURL, payloadA, []byte(`{"jsonrpc":"2.0","id":1,"result":"0xaa"}`))
	fetcher.expect(c.Chain.ExecutionRPCURL, payloadB, []byte(`{"jsonrpc":"2.0","id":1,"result":"0xbb"}`))

	status, err := c.Execute(context.Background(), fetcher)
	require.NoError(t, err)
	require.Equal(t, Success, status)
	require.Equal(t, `"0xaa""0xbb"`, string(c.ProofBytes))
}

func TestExecuteRetriesOnRetryableRPCError(t *testing.T) {
	c := newSyntheticContext(func(c *Context) (Status, error) {
		result, ok, err := ethCall(c, "methodA", nil)
		if err != nil {
			return Error, err
		}
		if !ok {
			return Pending, nil
		}
		c.ProofBytes = result
		return Success, nil
	})
	fetcher := newFakeFetcher()
	payload, err := rpcglue.EncodeRequest(1, "methodA", nil)
	require.NoError(t, err)
	fetcher.expect(c.Chain.ExecutionRPCURL, payload,
		[]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"try again"}}`),
		[]byte(`{"jsonrpc":"2.0","id":1,"result":"0xcc"}`),
	)

	status, err := c.Execute(context.Background(), fetcher)
	require.NoError(t, err)
	require.Equal(t, Success, status)
	require.Equal(t, `"0xcc"`, string(c.ProofBytes))
	require.Equal(t, 2, fetcher.calls)
}

func TestExecutePropagatesNonRetryableRPCError(t *testing.T) {
	c := newSyntheticContext(func(c *Context) (Status, error) {
		_, ok, err := ethCall(c, "methodA", nil)
		if err != nil {
			return Error, err
		}
		if !ok {
			return Pending, nil
		}
		return Success, nil
	})
	fetcher := newFakeFetcher()
	payload, err := rpcglue.EncodeRequest(1, "methodA", nil)
	require.NoError(t, err)
	fetcher.expect(c.Chain.ExecutionRPCURL, payload,
		[]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"nope"}}`),
	)

	status, err := c.Execute(context.Background(), fetcher)
	require.Error(t, err)
	require.Equal(t, Error, status)
	var perr *Err
	require.ErrorAs(t, err, &perr)
	require.Equal(t, KindRpcError, perr.Kind)
}

func TestExecuteWithNilFetcherYieldsPendingOnce(t *testing.T) {
	c := newSyntheticContext(twoCallBuilder)
	status, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, Pending, status)
	require.Len(t, c.State.Pending(), 1)
}

func TestNewRejectsUnsupportedMethod(t *testing.T) {
	_, err := New("eth_unknownMethod", nil, 1)
	require.Error(t, err)
	var perr *Err
	require.ErrorAs(t, err, &perr)
	require.Equal(t, KindUnsupported, perr.Kind)
}

func TestNewRejectsUnknownChain(t *testing.T) {
	_, err := New("eth_getBlockByHash", nil, 999999)
	require.Error(t, err)
	var perr *Err
	require.ErrorAs(t, err, &perr)
	require.Equal(t, KindInputInvalid, perr.Kind)
}
