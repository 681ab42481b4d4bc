// Package gen produces synthetic particle datasets for benchmarking
// the tree package: a uniform cube and a Plummer sphere, the two
// standard N-body test distributions. Neither is part of the core
// engine (particle generators are an external
// collaborator); cmd/nbodybench needs something to build trees from.
package gen

import (
	"math"
	"math/rand"
)

// Dataset holds D=3 coordinate columns plus a mass column, the exact
// shape tree.New consumes.
type Dataset struct {
	X, Y, Z, Mass []float64
}

// UniformCube samples n particles of equal mass uniformly inside a
// cube of the given side length centred on the origin, the standard
// "uniform cube" test distribution.
func UniformCube(rng *rand.Rand, n int, side, totalMass float64) *Dataset {
	d := &Dataset{
		X:    make([]float64, n),
		Y:    make([]float64, n),
		Z:    make([]float64, n),
		Mass: make([]float64, n),
	}
	m := totalMass / float64(n)
	half := side / 2
	for i := 0; i < n; i++ {
		d.X[i] = (rng.Float64()*2 - 1) * half
		d.Y[i] = (rng.Float64()*2 - 1) * half
		d.Z[i] = (rng.Float64()*2 - 1) * half
		d.Mass[i] = m
	}
	return d
}

// PlummerSphere samples n particles of equal mass from a Plummer
// density profile with scale radius a, via inverse-transform sampling
// of the enclosed-mass fraction followed by uniform sampling of
// direction over the sphere.
func PlummerSphere(rng *rand.Rand, n int, a, totalMass float64) *Dataset {
	d := &Dataset{
		X:    make([]float64, n),
		Y:    make([]float64, n),
		Z:    make([]float64, n),
		Mass: make([]float64, n),
	}
	m := totalMass / float64(n)
	for i := 0; i < n; i++ {
		x1 := rng.Float64()
		r := a / math.Sqrt(math.Pow(x1, -2.0/3.0)-1)

		costheta := 1 - 2*rng.Float64()
		sintheta := math.Sqrt(1 - costheta*costheta)
		phi := 2 * math.Pi * rng.Float64()

		d.X[i] = r * sintheta * math.Cos(phi)
		d.Y[i] = r * sintheta * math.Sin(phi)
		d.Z[i] = r * costheta
		d.Mass[i] = m
	}
	return d
}

// BoxSize returns a box size comfortably containing every coordinate
// in d, using the same max|coord|*2*(1+eps) margin the tree itself
// uses when deducing a box, useful for callers that want
// to fix the box explicitly rather than pay construction-time
// deduction.
func (d *Dataset) BoxSize() float64 {
	var maxAbs float64
	for _, col := range [][]float64{d.X, d.Y, d.Z} {
		for _, v := range col {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs == 0 {
		return 1
	}
	return maxAbs * 2 * 1.05
}
