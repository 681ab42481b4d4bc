package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscretiseMapsOriginToGridMidpoint(t *testing.T) {
	u, err := discretise(0.0, 10.0, Bits)
	require.NoError(t, err)
	require.Equal(t, uint64(1)<<(Bits-1), u)
}

func TestDiscretiseClampsUpperBoundary(t *testing.T) {
	u, err := discretise(5.0, 10.0, Bits)
	require.NoError(t, err)
	require.Equal(t, uint64(1)<<Bits-1, u)
}

func TestDiscretiseRejectsOutsideBox(t *testing.T) {
	_, err := discretise(6.0, 10.0, Bits)
	require.Error(t, err)
	require.IsType(t, &DiscretisationError{}, err)
}

func TestDiscretiseRejectsNonFiniteBoxSize(t *testing.T) {
	for _, bs := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := discretise(0.0, bs, Bits)
		require.Error(t, err)
		require.IsType(t, &DiscretisationError{}, err)
	}
}

func TestInterleaveDeinterleaveIsBijective(t *testing.T) {
	inputs := [][]uint64{
		{0, 0, 0},
		{1, 1, 1},
		{0x1FFFFF, 0, 0},
		{0, 0x1FFFFF, 0},
		{0, 0, 0x1FFFFF},
		{0xABCDE, 0x12345, 0x0F0F0},
	}
	for _, u := range inputs {
		code := interleave(u, Dim, Bits)
		back := deinterleave(code, Dim, Bits)
		require.Equal(t, u, back)
	}
}

func TestChildIndexIsNonDecreasingAcrossSortedCodes(t *testing.T) {
	codes := []uint64{0, 1, 2, 3, 4, 5, 6, 7}
	prev := -1
	for _, c := range codes {
		ci := childIndex(c, Dim, Bits, Bits-1)
		require.GreaterOrEqual(t, ci, prev)
		prev = ci
	}
}

func TestNodeCompareAlignsDifferentLevels(t *testing.T) {
	shallow := encode([]uint64{0, 0, 0}, Dim, Bits, 1)
	deep := encode([]uint64{0, 0, 1}, Dim, Bits, 2)
	require.True(t, NodeCompare(shallow, deep, Dim) || NodeCompare(deep, shallow, Dim))
}
