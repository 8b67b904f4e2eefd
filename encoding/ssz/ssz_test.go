package ssz_test

import (
	"crypto/sha256"
	"testing"

	"github.com/corpus-core/c4go/encoding/ssz"
	"github.com/stretchr/testify/require"
)

func simpleContainer() *ssz.Def {
	return ssz.Container("Simple",
		ssz.F("a", ssz.Uint(8)),
		ssz.F("b", ssz.Uint(4)),
	)
}

func TestFixedLength(t *testing.T) {
	c := simpleContainer()
	require.False(t, c.IsDynamic())
	require.Equal(t, 12, c.FixedLength())
}

func TestContainerEncodeDecode(t *testing.T) {
	def := simpleContainer()
	a := make([]byte, 8)
	a[0] = 7
	b := make([]byte, 4)
	b[0] = 9
	raw := ssz.Encode([]bool{false, false}, [][]byte{a, b})
	obj := ssz.Object{Def: def, Bytes: raw}
	require.NoError(t, obj.Validate())

	fa, err := obj.Get("a")
	require.NoError(t, err)
	va, err := fa.Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(7), va)
}

func TestContainerWithDynamicField(t *testing.T) {
	listDef := ssz.List(ssz.Uint(1), 16)
	def := ssz.Container("WithList",
		ssz.F("x", ssz.Uint(4)),
		ssz.F("items", listDef),
	)
	x := []byte{1, 0, 0, 0}
	items := []byte{1, 2, 3}
	raw := ssz.Encode([]bool{false, true}, [][]byte{x, items})

	obj := ssz.Object{Def: def, Bytes: raw}
	require.NoError(t, obj.Validate())

	fi, err := obj.Get("items")
	require.NoError(t, err)
	n, err := fi.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	el, err := fi.At(1)
	require.NoError(t, err)
	require.Equal(t, byte(2), el.Bytes[0])
}

func TestUnionSelector(t *testing.T) {
	def := ssz.Union(ssz.NoneDef(), ssz.Uint(4))
	raw := append([]byte{1}, []byte{1, 2, 3, 4}...)
	obj := ssz.Object{Def: def, Bytes: raw}
	require.NoError(t, obj.Validate())
	sel, err := obj.Selector()
	require.NoError(t, err)
	require.Equal(t, 1, sel)

	variant, payload, err := obj.Union()
	require.NoError(t, err)
	require.Equal(t, ssz.KindUint, variant.Kind)
	require.Equal(t, []byte{1, 2, 3, 4}, payload.Bytes)
}

func TestUnionSelectorOutOfRange(t *testing.T) {
	def := ssz.Union(ssz.NoneDef(), ssz.Uint(4))
	raw := append([]byte{7}, []byte{1, 2, 3, 4}...)
	obj := ssz.Object{Def: def, Bytes: raw}
	require.Error(t, obj.Validate())
}

func TestBitListLen(t *testing.T) {
	def := ssz.BitList(8)
	// The highest set bit is the length delimiter; the bits below it are data.
	b := []byte{0b00010101} // data bits 0..3 (0b0101), delimiter at bit 4
	obj := ssz.Object{Def: def, Bytes: b}
	n, err := obj.Len()
	require.NoError(t, err)
	require.Equal(t, 4, n) // top bit at index 4 (0b10000), so length = 4
}

func TestHashTreeRootDeterministic(t *testing.T) {
	def := simpleContainer()
	a := make([]byte, 8)
	a[0] = 7
	b := make([]byte, 4)
	raw := ssz.Encode([]bool{false, false}, [][]byte{a, b})
	obj := ssz.Object{Def: def, Bytes: raw}

	r1, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)
	r2, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestGindexContainerFields(t *testing.T) {
	def := ssz.Container("Four",
		ssz.F("a", ssz.Uint(8)),
		ssz.F("b", ssz.Uint(8)),
		ssz.F("c", ssz.Uint(8)),
	)
	ga, err := ssz.Gindex(def, "a")
	require.NoError(t, err)
	gb, err := ssz.Gindex(def, "b")
	require.NoError(t, err)
	gc, err := ssz.Gindex(def, "c")
	require.NoError(t, err)
	require.NotEqual(t, ga, gb)
	require.NotEqual(t, gb, gc)
	require.NotEqual(t, ga, gc)
	// 3 fields -> next_pow2=4 -> local gindexes 4,5,6 -> composed under root(1) is identity
	require.Equal(t, uint64(4), ga)
	require.Equal(t, uint64(5), gb)
	require.Equal(t, uint64(6), gc)
}

func TestVerifyMultiMerkleProofRoundTrip(t *testing.T) {
	def := ssz.Container("Four",
		ssz.F("a", ssz.Uint(32)),
		ssz.F("b", ssz.Uint(32)),
		ssz.F("c", ssz.Uint(32)),
		ssz.F("d", ssz.Uint(32)),
	)
	fields := make([][]byte, 4)
	for i := range fields {
		fields[i] = make([]byte, 32)
		fields[i][0] = byte(i + 1)
	}
	raw := ssz.Encode([]bool{false, false, false, false}, fields)
	obj := ssz.Object{Def: def, Bytes: raw}
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	// gindexes 4..7 for a..d, a perfect tree of depth 2: root=1, children 2,3; 2's children 4,5; 3's children 6,7.
	fa, _ := obj.Get("a")
	fc, _ := obj.Get("c")
	ra, err := ssz.HashTreeRoot(fa)
	require.NoError(t, err)
	rc, err := ssz.HashTreeRoot(fc)
	require.NoError(t, err)
	fb, _ := obj.Get("b")
	fd, _ := obj.Get("d")
	rb, err := ssz.HashTreeRoot(fb)
	require.NoError(t, err)
	rd, err := ssz.HashTreeRoot(fd)
	require.NoError(t, err)

	// proof chunks needed: sibling of gindex4 is gindex5 (=rb), sibling of gindex6 is gindex7(=rd)
	err = ssz.VerifyMultiMerkleProof(
		[][32]byte{ra, rc},
		[]uint64{4, 6},
		[][32]byte{rb, rd},
		root,
	)
	require.NoError(t, err)

	// Tampering a proof chunk must reject.
	tampered := rb
	tampered[0] ^= 0xff
	err = ssz.VerifyMultiMerkleProof(
		[][32]byte{ra, rc},
		[]uint64{4, 6},
		[][32]byte{tampered, rd},
		root,
	)
	require.Error(t, err)
}

func TestVerifyMultiMerkleProofSingleLeaf(t *testing.T) {
	def := ssz.Container("Four",
		ssz.F("a", ssz.Uint(32)),
		ssz.F("b", ssz.Uint(32)),
		ssz.F("c", ssz.Uint(32)),
		ssz.F("d", ssz.Uint(32)),
	)
	fields := make([][]byte, 4)
	for i := range fields {
		fields[i] = make([]byte, 32)
		fields[i][0] = byte(i + 1)
	}
	raw := ssz.Encode([]bool{false, false, false, false}, fields)
	obj := ssz.Object{Def: def, Bytes: raw}
	root, err := ssz.HashTreeRoot(obj)
	require.NoError(t, err)

	fc, _ := obj.Get("c")
	rc, err := ssz.HashTreeRoot(fc)
	require.NoError(t, err)
	fd, _ := obj.Get("d")
	rd, err := ssz.HashTreeRoot(fd)
	require.NoError(t, err)
	fa, _ := obj.Get("a")
	fb, _ := obj.Get("b")
	ra, err := ssz.HashTreeRoot(fa)
	require.NoError(t, err)
	rb, err := ssz.HashTreeRoot(fb)
	require.NoError(t, err)
	sibAB := sha256.Sum256(append(append([]byte{}, ra[:]...), rb[:]...))

	// A single leaf at gindex 6 (field c) two levels below the root must
	// still fold all the way up to gindex 1, consuming both the d sibling
	// (gindex 7) and the a,b subtree sibling (gindex 2).
	err = ssz.VerifyMultiMerkleProof(
		[][32]byte{rc},
		[]uint64{6},
		[][32]byte{rd, sibAB},
		root,
	)
	require.NoError(t, err)
}

func TestVerifyMultiMerkleProofDuplicateGindex(t *testing.T) {
	var leaf [32]byte
	err := ssz.VerifyMultiMerkleProof(
		[][32]byte{leaf, leaf},
		[]uint64{4, 4},
		nil,
		leaf,
	)
	require.Error(t, err)
}
