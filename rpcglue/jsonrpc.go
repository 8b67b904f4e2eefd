package rpcglue

import (
	"crypto/sha256"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one JSON-RPC 2.0 call envelope.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// Response is the JSON-RPC 2.0 reply envelope; exactly one of Result
// or Error is populated on a well-formed reply.
type Response struct {
	ID     int             `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is the {code,message} error shape; some upstreams instead
// return a bare string, handled by DecodeResponse.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// retryableCode is the one JSON-RPC error code the original
// implementation treats as transient (spec.md §4.8/§9): -32602
// ("invalid params") from certain upstreams actually signals a
// request that should be retried once rather than failed outright.
// Preserved verbatim for interop even though it reads oddly next to
// the JSON-RPC spec's own meaning of that code.
const retryableCode = -32602

// IsRetryable reports whether err (as returned by DecodeResponse)
// should cause the proofer to retry the request rather than fail it.
func IsRetryable(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == retryableCode
	}
	return false
}

// EncodeRequest builds a JSON-RPC request body. Params are encoded
// with the standard-library-compatible jsoniter config so that two
// calls with identical (method, params) produce byte-identical output
// — required for RequestID's content-hash dedup to work.
func EncodeRequest(id int, method string, params []interface{}) ([]byte, error) {
	req := Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	return json.Marshal(req)
}

// DecodeResponse parses a JSON-RPC reply, returning either raw result
// bytes or an error recognized from either of the two shapes upstreams
// use: a structured {code,message} object, or (rarely) a bare string.
func DecodeResponse(raw []byte) ([]byte, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrap(err, "rpcglue: malformed JSON-RPC response")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	var bareErr string
	if len(resp.Result) == 0 {
		return nil, errors.New("rpcglue: response has neither result nor error")
	}
	if err := json.Unmarshal(resp.Result, &bareErr); err == nil && looksLikeError(bareErr) {
		return nil, errors.New(bareErr)
	}
	return resp.Result, nil
}

func looksLikeError(s string) bool {
	return len(s) > 0 && (hasPrefixFold(s, "error") || hasPrefixFold(s, "exception"))
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// RequestID is the content-hash dedup key spec.md §3 defines for a
// DataRequest: sha256(method ‖ url ‖ payload). Two logically identical
// requests — same method, same target, same body — collapse to one
// id, so the proofer's request store never issues the same upstream
// call twice.
func RequestID(method, url string, payload []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(url))
	h.Write(payload)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
