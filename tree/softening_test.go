package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSofteningKeepsCoincidentParticlesFinite reproduces
// the original softening regression (ten coincident pairs collapsed
// onto identical coordinates): every unordered acceleration must stay
// finite across a grid of leaf sizes, batch sizes, and softening
// lengths.
func TestSofteningKeepsCoincidentParticlesFinite(t *testing.T) {
	const pairs = 10
	x, y, z, mass := uniformCube(200, 77)
	for p := 0; p < pairs; p++ {
		x[2*p+1] = x[2*p]
		y[2*p+1] = y[2*p]
		z[2*p+1] = z[2*p]
	}

	for _, maxLeafN := range []uint{1, 2, 8, 16} {
		for _, ncrit := range []uint{1, 16, 128} {
			for _, eps := range []float64{1e-3, 1e-2, 0.1} {
				cfg := DefaultConfig()
				cfg.BoxSize = 2
				cfg.MaxLeafN = maxLeafN
				cfg.Ncrit = ncrit

				tr, err := New(x, y, z, mass, cfg)
				require.NoError(t, err)

				accs, err := tr.AccsUnordered(0.75, eps)
				require.NoError(t, err)
				for d := 0; d < Dim; d++ {
					for _, a := range accs[d] {
						require.False(t, math.IsNaN(float64(a)), "NaN acceleration with maxLeafN=%d ncrit=%d eps=%v", maxLeafN, ncrit, eps)
						require.False(t, math.IsInf(float64(a), 0), "infinite acceleration with maxLeafN=%d ncrit=%d eps=%v", maxLeafN, ncrit, eps)
					}
				}

				pots, err := tr.PotsUnordered(0.75, eps)
				require.NoError(t, err)
				for _, p := range pots {
					require.False(t, math.IsNaN(float64(p)))
					require.False(t, math.IsInf(float64(p), 0))
				}
			}
		}
	}
}

func TestSelfInteractionSkippedEvenWithZeroSoftening(t *testing.T) {
	x := []float64{0}
	y := []float64{0}
	z := []float64{0}
	mass := []float64{1}

	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	accs, err := tr.AccsUnordered(0.5, 0)
	require.NoError(t, err)
	for d := 0; d < Dim; d++ {
		require.Equal(t, float64(0), accs[d][0])
	}
}
