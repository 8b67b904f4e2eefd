package proofer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpus-core/c4go/rpcglue"
)

func TestGetOrCreateDedupsIdenticalRequests(t *testing.T) {
	s := NewState()
	a := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://x", []byte("same"))
	b := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://x", []byte("same"))
	require.Same(t, a, b)

	c := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://x", []byte("different"))
	require.NotSame(t, a, c)
}

func TestPendingExcludesResolvedRequests(t *testing.T) {
	s := NewState()
	a := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://a", nil)
	b := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://b", nil)
	require.Len(t, s.Pending(), 2)

	s.Resolve(a.ID, []byte("ok"), nil)
	pending := s.Pending()
	require.Len(t, pending, 1)
	require.Same(t, b, pending[0])
}

func TestRetryClearsResponseAndError(t *testing.T) {
	s := NewState()
	r := s.GetOrCreate(1, TypeEthRpc, rpcglue.MethodPOST, EncodingJSON, "http://x", nil)
	s.Resolve(r.ID, nil, errors.New("boom"))
	require.False(t, r.Pending())

	r.Retry()
	require.True(t, r.Pending())
	require.Nil(t, r.Response)
	require.Nil(t, r.Err)
}
