package tree

import "math"

func sqrtT[T Float](x T) T {
	return T(math.Sqrt(float64(x)))
}

// exactAcc computes the O(N) direct-summation acceleration on
// particle i from every other particle, with softening eps
// §4.8). It is used only for correctness checking: production code
// paths always go through the tree walk.
func exactAcc[T Float](coords [Dim][]T, mass []T, i int, eps T) [Dim]T {
	var xi [Dim]T
	for d := 0; d < Dim; d++ {
		xi[d] = coords[d][i]
	}
	eps2 := eps * eps
	var acc [Dim]T
	for j := 0; j < len(mass); j++ {
		if j == i {
			continue
		}
		var delta [Dim]T
		var dsq T
		for d := 0; d < Dim; d++ {
			delta[d] = coords[d][j] - xi[d]
			dsq += delta[d] * delta[d]
		}
		dsq += eps2
		invDenom := 1 / (dsq * sqrtT(dsq))
		mj := mass[j]
		for d := 0; d < Dim; d++ {
			acc[d] += mj * delta[d] * invDenom
		}
	}
	return acc
}

// exactPot computes the O(N) direct-summation potential at particle
// i from every other particle, with softening eps.
func exactPot[T Float](coords [Dim][]T, mass []T, i int, eps T) T {
	var xi [Dim]T
	for d := 0; d < Dim; d++ {
		xi[d] = coords[d][i]
	}
	eps2 := eps * eps
	var pot T
	for j := 0; j < len(mass); j++ {
		if j == i {
			continue
		}
		var dsq T
		for d := 0; d < Dim; d++ {
			delta := coords[d][j] - xi[d]
			dsq += delta * delta
		}
		dsq += eps2
		pot += -mass[j] / sqrtT(dsq)
	}
	return pot
}
