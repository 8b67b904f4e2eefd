package bls_test

import (
	"testing"

	"github.com/corpus-core/c4go/crypto/bls"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyFromBytesRejectsWrongLength(t *testing.T) {
	_, err := bls.PublicKeyFromBytes(make([]byte, 10))
	require.Error(t, err)
}

func TestAggregatePublicKeysRejectsEmpty(t *testing.T) {
	_, err := bls.AggregatePublicKeys(nil)
	require.Error(t, err)
}

func TestFastAggregateVerifyRejectsNilSignature(t *testing.T) {
	ok := bls.FastAggregateVerify(nil, []byte("msg"), nil)
	require.False(t, ok)
}
