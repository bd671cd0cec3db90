package dict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/everx-labs/ever-vm/cell"
)

func valCell(t *testing.T, n uint64) *cell.Cell {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUint(n, 32))
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

func key32(t *testing.T, n uint32) []byte {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUint(uint64(n), 32))
	c, err := b.EndCell()
	require.NoError(t, err)
	return c.RawBits()
}

func TestGetSetDeleteRoundTrip(t *testing.T) {
	tr := New(32)
	k1 := key32(t, 1)
	k2 := key32(t, 2)

	_, ok := tr.Get(k1)
	require.False(t, ok)

	tr.Set(k1, valCell(t, 111))
	tr.Set(k2, valCell(t, 222))
	require.Equal(t, 2, tr.Len())

	v, ok := tr.Get(k1)
	require.True(t, ok)
	s := v.BeginParse()
	got, err := s.LoadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 111, got)

	require.True(t, tr.Delete(k1))
	require.False(t, tr.Delete(k1))
	require.Equal(t, 1, tr.Len())
	_, ok = tr.Get(k1)
	require.False(t, ok)
}

func TestMinMax(t *testing.T) {
	tr := New(32)
	for _, n := range []uint32{50, 10, 90, 30} {
		tr.Set(key32(t, n), valCell(t, uint64(n)))
	}
	minKey, _, ok := tr.Min()
	require.True(t, ok)
	require.Equal(t, key32(t, 10), minKey)

	maxKey, _, ok := tr.Max()
	require.True(t, ok)
	require.Equal(t, key32(t, 90), maxKey)
}

// TestEncodeDecodeRoundTrip covers the below-spill case: fewer entries
// than fit in one cell's references (MaxRefs-1 = 3).
func TestEncodeDecodeRoundTrip(t *testing.T) {
	tr := New(32)
	tr.Set(key32(t, 1), valCell(t, 100))
	tr.Set(key32(t, 2), valCell(t, 200))

	root, err := tr.Encode()
	require.NoError(t, err)

	back, err := Decode(root, 32)
	require.NoError(t, err)
	require.Equal(t, tr.Len(), back.Len())

	v, ok := back.Get(key32(t, 1))
	require.True(t, ok)
	s := v.BeginParse()
	got, err := s.LoadUint(32)
	require.NoError(t, err)
	require.EqualValues(t, 100, got)
}

// TestEncodeDecodeSpills covers the spill-past-MaxRefs path: with more
// entries than one cell's references can hold (cell.MaxRefs-1 = 3), Encode
// must chain the remainder through a continuation cell, and Decode must
// follow that chain back out completely.
func TestEncodeDecodeSpills(t *testing.T) {
	tr := New(32)
	const n = 10
	for i := uint32(0); i < n; i++ {
		tr.Set(key32(t, i), valCell(t, uint64(i)*1000))
	}
	require.Equal(t, n, tr.Len())

	root, err := tr.Encode()
	require.NoError(t, err)
	// The top-level cell can only name cell.MaxRefs-1 entries directly plus
	// one spill ref; confirm it actually used all four refs, proving the
	// spill path executed rather than fitting everything at one level.
	require.Equal(t, cell.MaxRefs, root.RefCount())

	back, err := Decode(root, 32)
	require.NoError(t, err)
	require.Equal(t, n, back.Len())

	for i := uint32(0); i < n; i++ {
		v, ok := back.Get(key32(t, i))
		require.Truef(t, ok, "key %d missing after decode", i)
		s := v.BeginParse()
		got, err := s.LoadUint(32)
		require.NoError(t, err)
		require.EqualValues(t, i*1000, got)
	}
}

func TestClone(t *testing.T) {
	tr := New(32)
	tr.Set(key32(t, 1), valCell(t, 1))
	clone := tr.Clone()
	clone.Set(key32(t, 2), valCell(t, 2))

	require.Equal(t, 1, tr.Len())
	require.Equal(t, 2, clone.Len())
}
