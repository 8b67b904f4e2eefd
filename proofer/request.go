// Package proofer implements the proofer pipeline (spec.md §4.7/C8):
// a resumable, suspendable driver that turns a JSON-RPC method call
// into a deduplicating set of upstream data requests and, once they
// all resolve, a proof-method builder assembling the SSZ C4Request
// artifact.
package proofer

import (
	"sync"

	"github.com/corpus-core/c4go/rpcglue"
)

// RequestType is the upstream surface a DataRequest targets.
type RequestType int

const (
	TypeEthRpc RequestType = iota
	TypeBeaconAPI
	TypeRestAPI
)

// Encoding is the wire shape expected back from the upstream.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingSSZ
)

// DataRequest is one outstanding (or resolved) call to an upstream
// RPC, keyed by spec.md §3's `id = sha256(method ‖ url ‖ payload)` so
// two logically identical requests collapse onto a single slot.
type DataRequest struct {
	ID       [32]byte
	ChainID  uint64
	Type     RequestType
	Method   rpcglue.Method
	Encoding Encoding
	URL      string
	Payload  []byte

	Response []byte
	Err      error
}

// Pending reports whether this request still needs a response — the
// state a builder yields PENDING on.
func (r *DataRequest) Pending() bool { return r.Response == nil && r.Err == nil }

// Retry clears a sticky error, flipping the request back to pending
// without changing its id, per spec.md §4.7.
func (r *DataRequest) Retry() {
	r.Err = nil
	r.Response = nil
}

// State owns every DataRequest issued by one proofer context and
// deduplicates by id; it is the "request store" builders must be pure
// functions of so re-entering after a PENDING yield converges to the
// same computation (spec.md §4.7/§4.8).
type State struct {
	mu       sync.Mutex
	requests map[[32]byte]*DataRequest
	order    [][32]byte
}

// NewState returns an empty request store.
func NewState() *State {
	return &State{requests: make(map[[32]byte]*DataRequest)}
}

// GetOrCreate returns the existing request for (method, url, payload)
// if one was already issued, or creates and registers a new one.
// Builders call this instead of constructing DataRequest directly so
// identical requests across resumptions always land on the same slot.
func (s *State) GetOrCreate(chainID uint64, typ RequestType, method rpcglue.Method, enc Encoding, url string, payload []byte) *DataRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := rpcglue.RequestID(method.String(), url, payload)
	if r, ok := s.requests[id]; ok {
		return r
	}
	r := &DataRequest{ID: id, ChainID: chainID, Type: typ, Method: method, Encoding: enc, URL: url, Payload: payload}
	s.requests[id] = r
	s.order = append(s.order, id)
	return r
}

// Pending returns every request still awaiting a response or error,
// in issue order — what the host (or the default synchronous runner)
// must resolve before the builder can make further progress.
func (s *State) Pending() []*DataRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*DataRequest
	for _, id := range s.order {
		if r := s.requests[id]; r.Pending() {
			out = append(out, r)
		}
	}
	return out
}

// Resolve installs a response or error for the request with the given
// id, as a host feeding back network I/O results would.
func (s *State) Resolve(id [32]byte, response []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.requests[id]; ok {
		r.Response = response
		r.Err = err
	}
}
