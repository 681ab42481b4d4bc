package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformCube(n int, seed uint64) (x, y, z, mass []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)
	mass = make([]float64, n)
	state := seed
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return (float64(state>>11) / float64(1<<53))*2 - 1
	}
	for i := 0; i < n; i++ {
		x[i] = next()
		y[i] = next()
		z[i] = next()
		mass[i] = 1
	}
	return
}

func TestBoxSizeDeducedFromWideSpreadParticles(t *testing.T) {
	x := []float64{-10, 1, 2, 10}
	y := []float64{-10, 1, 2, 10}
	z := []float64{-10, 1, 2, 10}
	mass := []float64{1, 1, 1, 1}

	tr, err := New(x, y, z, mass, DefaultConfig())
	require.NoError(t, err)
	require.InDelta(t, 21.0, tr.BoxSize(), 1e-9)
	require.True(t, tr.BoxSizeDeduced())
	require.Equal(t, 4, tr.NParts())
}

func TestZeroValueTreeAccessorsAreSafe(t *testing.T) {
	var tr Tree[float64]
	require.Equal(t, 0.0, tr.BoxSize())
	require.False(t, tr.BoxSizeDeduced())
	require.Empty(t, tr.Perm())
	require.Empty(t, tr.InvPerm())
	require.Equal(t, uint(DefaultMaxLeafN), tr.MaxLeafN())
	require.Equal(t, uint(DefaultNcrit), tr.Ncrit())
}

func TestBoundaryExplicitBoxSizeSmallerThanCoordinateRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxSize = 5
	x := []float64{10}
	y := []float64{0}
	z := []float64{0}
	mass := []float64{1}
	_, err := New(x, y, z, mass, cfg)
	require.Error(t, err)
	require.IsType(t, &DiscretisationError{}, err)
}

func TestBoundaryBoxSizeTooSmall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxSize = 1
	x := []float64{0.9}
	y := []float64{0}
	z := []float64{0}
	mass := []float64{1}
	_, err := New(x, y, z, mass, cfg)
	require.Error(t, err)
	require.IsType(t, &DiscretisationError{}, err)
}

func TestBoundaryInfiniteBoxSizeIsArgumentError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxSize = math.Inf(1)
	x := []float64{0}
	y := []float64{0}
	z := []float64{0}
	mass := []float64{1}
	_, err := New(x, y, z, mass, cfg)
	require.Error(t, err)
	require.IsType(t, &ArgumentError{}, err)
}

func TestBoundaryZeroMaxLeafNOrNcritIsArgumentError(t *testing.T) {
	x := []float64{0, 1}
	y := []float64{0, 1}
	z := []float64{0, 1}
	mass := []float64{1, 1}

	cfg := DefaultConfig()
	cfg.MaxLeafN = 0
	_, err := New(x, y, z, mass, cfg)
	require.Error(t, err)
	require.IsType(t, &ArgumentError{}, err)

	cfg = DefaultConfig()
	cfg.Ncrit = 0
	_, err = New(x, y, z, mass, cfg)
	require.Error(t, err)
	require.IsType(t, &ArgumentError{}, err)
}

func TestBoundaryWrongArityIsArgumentError(t *testing.T) {
	cols := [][]float64{{0}, {0}, {1}}
	_, err := NewFromColumns(cols, DefaultConfig())
	require.Error(t, err)
	require.IsType(t, &ArgumentError{}, err)
}

func TestInvariantPermAndInvPermAreMutualInverses(t *testing.T) {
	x, y, z, mass := uniformCube(200, 42)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	perm := tr.Perm()
	inv := tr.InvPerm()
	require.Len(t, perm, 200)
	require.Len(t, inv, 200)
	for i, orig := range perm {
		require.Equal(t, uint32(i), inv[orig])
	}
}

func TestInvariantInputRecoverableThroughInvPerm(t *testing.T) {
	x, y, z, mass := uniformCube(100, 7)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	for orig := 0; orig < 100; orig++ {
		pos := tr.InvPerm()[orig]
		require.Equal(t, x[orig], tr.Coords(0)[pos])
		require.Equal(t, y[orig], tr.Coords(1)[pos])
		require.Equal(t, z[orig], tr.Coords(2)[pos])
	}
}

func TestInvariantLastPermEqualsPermAfterFreshBuild(t *testing.T) {
	x, y, z, mass := uniformCube(50, 3)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)
	require.Equal(t, tr.Perm(), tr.LastPerm())
}

func TestAccsUnorderedEqualsPermutedAccsOrdered(t *testing.T) {
	x, y, z, mass := uniformCube(300, 99)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	ordered, err := tr.AccsOrdered(0.5, 0.01)
	require.NoError(t, err)
	unordered, err := tr.AccsUnordered(0.5, 0.01)
	require.NoError(t, err)

	perm := tr.Perm()
	for axis := 0; axis < Dim; axis++ {
		for pos, orig := range perm {
			require.Equal(t, ordered[axis][pos], unordered[axis][orig])
		}
	}
}

func TestCloneProducesIdenticalOutputs(t *testing.T) {
	x, y, z, mass := uniformCube(150, 11)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	clone := tr.Clone()
	a1, err := tr.AccsOrdered(0.5, 0.01)
	require.NoError(t, err)
	a2, err := clone.AccsOrdered(0.5, 0.01)
	require.NoError(t, err)
	require.Equal(t, a1, a2)
}

func TestQueryTimeDomainErrors(t *testing.T) {
	x, y, z, mass := uniformCube(10, 5)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	_, err = tr.AccsOrdered(0, 0.01)
	require.IsType(t, &DomainError{}, err)

	_, err = tr.AccsOrdered(0.5, -1)
	require.IsType(t, &DomainError{}, err)

	_, err = tr.ExactAccOrdered(-1, 0.01)
	require.IsType(t, &DomainError{}, err)

	_, err = tr.ExactAccOrdered(1000, 0.01)
	require.IsType(t, &DomainError{}, err)
}
