package tree

// summarise fills in every node's mass, centre of mass, geometric
// size and per-axis dispersion with a single bottom-up pass over the
// flat node array. Because the array is in depth-first
// pre-order, walking it back-to-front guarantees every node's
// children have already been finalised by the time the node itself is
// processed.
func summarise[T Float](nodes []Node[T], coords [Dim][]T, mass []T, boxSize T) {
	if len(nodes) == 0 {
		return
	}

	mins := make([][Dim]T, len(nodes))
	maxs := make([][Dim]T, len(nodes))

	for i := len(nodes) - 1; i >= 0; i-- {
		n := &nodes[i]
		n.Size = boxSize / T(uint64(1)<<n.Level)

		if n.IsLeaf() {
			var m T
			var comSum [Dim]T
			var lo, hi [Dim]T
			for d := 0; d < Dim; d++ {
				lo[d] = coords[d][n.Begin]
				hi[d] = coords[d][n.Begin]
			}
			for p := n.Begin; p < n.End; p++ {
				pm := mass[p]
				m += pm
				for d := 0; d < Dim; d++ {
					x := coords[d][p]
					comSum[d] += x * pm
					if x < lo[d] {
						lo[d] = x
					}
					if x > hi[d] {
						hi[d] = x
					}
				}
			}
			n.Mass = m
			if m != 0 {
				for d := 0; d < Dim; d++ {
					n.Com[d] = comSum[d] / m
				}
			}
			mins[i], maxs[i] = lo, hi
			continue
		}

		var m T
		var comSum [Dim]T
		lo := [Dim]T{}
		hi := [Dim]T{}
		first := true
		cursor := uint32(i) + uint32(n.ChildOffset)
		for c := uint8(0); c < n.NumChildren; c++ {
			child := &nodes[cursor]
			m += child.Mass
			for d := 0; d < Dim; d++ {
				comSum[d] += child.Com[d] * child.Mass
			}
			if first {
				lo, hi = mins[cursor], maxs[cursor]
				first = false
			} else {
				for d := 0; d < Dim; d++ {
					if mins[cursor][d] < lo[d] {
						lo[d] = mins[cursor][d]
					}
					if maxs[cursor][d] > hi[d] {
						hi[d] = maxs[cursor][d]
					}
				}
			}
			cursor += child.SubtreeSize
		}
		n.Mass = m
		if m != 0 {
			for d := 0; d < Dim; d++ {
				n.Com[d] = comSum[d] / m
			}
		}
		mins[i], maxs[i] = lo, hi
	}

	for i := range nodes {
		for d := 0; d < Dim; d++ {
			nodes[i].Dispersion[d] = maxs[i][d] - mins[i][d]
		}
	}
}
