package proofer

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/corpus-core/c4go/rpcglue"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ethCall issues (or retrieves the already-resolved result of) a
// single execution-layer JSON-RPC call. Builders call this and check
// ok before trying to use result — ok is false exactly when the
// caller should return Pending.
func ethCall(c *Context, method string, params []interface{}) (result jsoniter.RawMessage, ok bool, err error) {
	payload, err := rpcglue.EncodeRequest(1, method, params)
	if err != nil {
		return nil, false, fail(KindInternal, "encoding %s request: %v", method, err)
	}
	req := c.State.GetOrCreate(c.ChainID, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, c.Chain.ExecutionRPCURL, payload)
	if req.Pending() {
		return nil, false, nil
	}
	if req.Err != nil {
		return nil, false, fail(KindRpcError, "%s: %v", method, req.Err)
	}
	return req.Response, true, nil
}

// beaconGet issues a GET against the configured beacon API for path
// (e.g. "/eth/v1/beacon/headers/123").
func beaconGet(c *Context, path string) (body []byte, ok bool, err error) {
	req := c.State.GetOrCreate(c.ChainID, TypeBeaconAPI, rpcglue.MethodGET, EncodingJSON, c.Chain.BeaconAPIURL+path, nil)
	if req.Pending() {
		return nil, false, nil
	}
	if req.Err != nil {
		return nil, false, fail(KindRpcError, "GET %s: %v", path, req.Err)
	}
	return req.Response, true, nil
}
