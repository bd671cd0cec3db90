package cell

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadUintRoundTrip(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreUint(0xDEADBEEF, 32))
	c, err := b.EndCell()
	require.NoError(t, err)
	require.Equal(t, 32, c.BitLen())

	s := c.BeginParse()
	v, err := s.LoadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, v)
	require.True(t, s.Empty())
}

func TestStoreLoadUint256RoundTrip(t *testing.T) {
	b := NewBuilder()
	want := uint256.NewInt(123456789)
	require.NoError(t, b.StoreUint256(want, 256))
	c, err := b.EndCell()
	require.NoError(t, err)

	s := c.BeginParse()
	got, err := s.LoadUint256(256)
	require.NoError(t, err)
	require.True(t, want.Eq(got))
}

func TestStoreLoadIntSignedRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 12345, -12345, -(1 << 40)} {
		b := NewBuilder()
		require.NoError(t, b.StoreInt(big.NewInt(v), 64))
		c, err := b.EndCell()
		require.NoError(t, err)
		s := c.BeginParse()
		got, err := s.LoadInt(64)
		require.NoError(t, err)
		require.Equal(t, v, got.Int64())
	}
}

func TestBuilderOverflow(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreInt(big.NewInt(0), 1000))
	err := b.StoreUint(0, 23)
	require.NoError(t, err)
	err = b.StoreUint(0, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestRefOverflow(t *testing.T) {
	leaf, err := New(nil, 0, nil)
	require.NoError(t, err)
	b := NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		require.NoError(t, b.StoreRef(leaf))
	}
	require.ErrorIs(t, b.StoreRef(leaf), ErrOverflow)
}

func TestSliceSharesReferenceByHandle(t *testing.T) {
	leaf, err := New([]byte{0xff}, 8, nil)
	require.NoError(t, err)
	b := NewBuilder()
	require.NoError(t, b.StoreRef(leaf))
	require.NoError(t, b.StoreRef(leaf))
	c, err := b.EndCell()
	require.NoError(t, err)
	require.Equal(t, 2, c.RefCount())

	r0, _ := c.Ref(0)
	r1, _ := c.Ref(1)
	require.True(t, r0 == r1, "identical refs should share the same handle")
}

func TestHashDeterministic(t *testing.T) {
	b1 := NewBuilder()
	_ = b1.StoreUint(42, 16)
	c1, _ := b1.EndCell()

	b2 := NewBuilder()
	_ = b2.StoreUint(42, 16)
	c2, _ := b2.EndCell()

	require.Equal(t, c1.Hash(), c2.Hash())
}

func TestUnderflow(t *testing.T) {
	c, err := New([]byte{0xff}, 4, nil)
	require.NoError(t, err)
	s := c.BeginParse()
	_, err = s.LoadUint(5)
	require.ErrorIs(t, err, ErrUnderflow)
}
