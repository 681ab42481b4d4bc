package tree

import (
	"sort"

	"github.com/MichaelSB/rakau/internal/workerpool"
)

// buildPermutation computes perm such that sorting particle i by
// codes[i] yields perm[newPos] == i, i.e. perm maps tree-order
// position to original index. The sort is stable: particles that
// share a code keep their input relative order (
// Open Question (a)).
func buildPermutation(codes []Code) []uint32 {
	n := len(codes)
	perm := make([]uint32, n)
	for i := range perm {
		perm[i] = uint32(i)
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return codes[perm[i]] < codes[perm[j]]
	})
	return perm
}

// invertPermutation computes the inverse of perm in parallel: a
// write-disjoint scatter, since each goroutine only ever writes the
// slots corresponding to its own chunk of perm.
func invertPermutation(perm []uint32, pool *workerpool.Pool) []uint32 {
	inv := make([]uint32, len(perm))
	pool.ParallelFor(len(perm), func(start, end int) {
		for i := start; i < end; i++ {
			inv[perm[i]] = uint32(i)
		}
	})
	return inv
}

// reorderParticles physically permutes the coordinate and mass slices
// into tree (Morton) order, returning new slices; the caller's
// buffers are left untouched (no aliasing with caller
// storage post-construction).
func reorderParticles[T Float](coords [Dim][]T, mass []T, perm []uint32, pool *workerpool.Pool) ([Dim][]T, []T) {
	n := len(perm)
	var outCoords [Dim][]T
	for d := 0; d < Dim; d++ {
		outCoords[d] = make([]T, n)
	}
	outMass := make([]T, n)

	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			src := perm[i]
			for d := 0; d < Dim; d++ {
				outCoords[d][i] = coords[d][src]
			}
			outMass[i] = mass[src]
		}
	})
	return outCoords, outMass
}
