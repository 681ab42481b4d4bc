package gen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformCubeStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := UniformCube(rng, 500, 10, 500)
	for _, col := range [][]float64{d.X, d.Y, d.Z} {
		for _, v := range col {
			require.LessOrEqual(t, math.Abs(v), 5.0)
		}
	}
	require.Len(t, d.Mass, 500)
}

func TestPlummerSphereProducesFiniteCoordinates(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := PlummerSphere(rng, 500, 1, 500)
	for _, col := range [][]float64{d.X, d.Y, d.Z} {
		for _, v := range col {
			require.False(t, math.IsNaN(v))
			require.False(t, math.IsInf(v, 0))
		}
	}
}

func TestBoxSizeCoversAllCoordinates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	d := UniformCube(rng, 200, 10, 200)
	bs := d.BoxSize()
	half := bs / 2
	for _, col := range [][]float64{d.X, d.Y, d.Z} {
		for _, v := range col {
			require.LessOrEqual(t, math.Abs(v), half)
		}
	}
}
