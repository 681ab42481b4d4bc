package tree

import "sort"

// CollLeavesPermutation returns a permutation listing every leaf
// node's index into nodes, ordered by NodeCompare over the leaf's
// Morton code. This is the broad-phase entry point:
// callers walk leaves in spatial order to run AABB-vs-tree queries
// against particle bounding volumes without re-deriving tree
// structure.
func CollLeavesPermutation[T Float](nodes []Node[T]) []uint32 {
	leaves := make([]uint32, 0, len(nodes))
	for i := range nodes {
		if nodes[i].IsLeaf() {
			leaves = append(leaves, uint32(i))
		}
	}
	sort.Slice(leaves, func(a, b int) bool {
		return NodeCompare(nodes[leaves[a]].Code, nodes[leaves[b]].Code, Dim)
	})
	return leaves
}

// CollAABBVertices returns the 2^len(centre) vertices of the
// axis-aligned box centred at centre with the given per-axis full
// sizes (side lengths, not half-extents), each coordinate clamped
// into [lo, hi]. It is dimension generic (exercised at D=2 as well as
// D=3), unlike the rest of this package which fixes D=Dim.
func CollAABBVertices[T Float](centre, sizes []T, lo, hi T) [][]T {
	dim := len(centre)
	verts := make([][]T, 1<<uint(dim))
	for i := range verts {
		v := make([]T, dim)
		for d := 0; d < dim; d++ {
			sign := T(1)
			if (i>>uint(d))&1 == 0 {
				sign = -1
			}
			val := centre[d] + sign*sizes[d]/2
			if val < lo {
				val = lo
			}
			if val > hi {
				val = hi
			}
			v[d] = val
		}
		verts[i] = v
	}
	return verts
}
