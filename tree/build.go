package tree

import (
	"github.com/MichaelSB/rakau/internal/workerpool"
)

// parallelFanoutDepth bounds how many top levels of the tree are
// candidates for being built as independent parallel tasks. At or
// above this depth, a subtree is handed to the pool as its own task;
// below it, subtrees recurse serially on whichever goroutine reached
// them. A small constant keeps the fan-out width bounded by roughly
// (2^Dim)^parallelFanoutDepth tasks, which comfortably saturates any
// realistic worker count without the task graph itself becoming the
// bottleneck.
const parallelFanoutDepth = 2

type childRange struct {
	begin, end uint32
	idx        int
}

// partitionChildren scans the codes of particles in [begin, end),
// already sorted by full-resolution Morton code, and groups them into
// contiguous runs sharing the same Dim-bit child slice at the given
// depth. Sortedness by code guarantees the child index is
// non-decreasing across the range, so a single linear scan recovers
// the (at most 2^Dim) non-empty groups in child-index order.
func partitionChildren(begin, end uint32, codes []uint64, depth uint) []childRange {
	ranges := make([]childRange, 0, 1<<uint(Dim))
	cur := begin
	for cur < end {
		ci := childIndex(codes[cur], Dim, Bits, depth)
		start := cur
		cur++
		for cur < end && childIndex(codes[cur], Dim, Bits, depth) == ci {
			cur++
		}
		ranges = append(ranges, childRange{begin: start, end: cur, idx: ci})
	}
	return ranges
}

// nodeCodeOf derives a node's own (sentinel-tagged) Morton code from
// the full-resolution code of any one of its member particles: all
// members share the same top level*Dim bits by construction.
func nodeCodeOf(fullCode uint64, level uint) Code {
	if level == 0 {
		return 1
	}
	shift := (uint(Bits) - level) * uint(Dim)
	prefix := fullCode >> shift
	return uint64(1)<<(level*uint(Dim)) | prefix
}

// sizeOfSubtree counts how many Node entries the subtree rooted at
// [begin, end) at the given level will occupy, without allocating or
// writing anything. buildAt uses this to pre-compute each child's
// disjoint index range before recursing, which is what lets sibling
// subtrees be built concurrently without any node-array aliasing.
func sizeOfSubtree(begin, end uint32, level uint, codes []uint64, leafMax uint) uint32 {
	if end-begin <= uint32(leafMax) || level >= Bits {
		return 1
	}
	ranges := partitionChildren(begin, end, codes, level)
	total := uint32(1)
	for _, r := range ranges {
		total += sizeOfSubtree(r.begin, r.end, level+1, codes, leafMax)
	}
	return total
}

// buildAt fills nodes[idx] and its entire subtree, covering particle
// range [begin, end) at the given level. Sibling subtrees (and, down
// to parallelFanoutDepth, child subtrees) are assigned disjoint,
// pre-computed index ranges, so concurrent writes made by pool tasks
// never touch the same slot.
func buildAt[T Float](nodes []Node[T], idx uint32, begin, end uint32, level uint, codes []uint64, leafMax uint, pool *workerpool.Pool) {
	n := &nodes[idx]
	n.Begin, n.End = begin, end
	n.Level = uint8(level)
	n.Code = nodeCodeOf(codes[begin], level)

	if end-begin <= uint32(leafMax) || level >= Bits {
		n.NumChildren = 0
		n.ChildOffset = 0
		n.SubtreeSize = 1
		return
	}

	ranges := partitionChildren(begin, end, codes, level)
	sizes := make([]uint32, len(ranges))
	for i, r := range ranges {
		sizes[i] = sizeOfSubtree(r.begin, r.end, level+1, codes, leafMax)
	}

	childStart := idx + 1
	offsets := make([]uint32, len(ranges))
	cursor := childStart
	for i := range ranges {
		offsets[i] = cursor
		cursor += sizes[i]
	}

	n.NumChildren = uint8(len(ranges))
	n.ChildOffset = 1

	total := uint32(1)
	for _, s := range sizes {
		total += s
	}
	n.SubtreeSize = total

	if level < parallelFanoutDepth {
		fns := make([]func(), len(ranges))
		for i, r := range ranges {
			i, r := i, r
			fns[i] = func() {
				buildAt(nodes, offsets[i], r.begin, r.end, level+1, codes, leafMax, pool)
			}
		}
		pool.RunAndWait(fns)
	} else {
		for i, r := range ranges {
			buildAt(nodes, offsets[i], r.begin, r.end, level+1, codes, leafMax, pool)
		}
	}
}

// buildNodes constructs the flat, depth-first pre-order node array
// for particles already sorted into Morton order, with codes holding
// each particle's full-resolution (sentinel-free) interleaved code.
func buildNodes[T Float](codes []uint64, leafMax uint, pool *workerpool.Pool) []Node[T] {
	n := uint32(len(codes))
	if n == 0 {
		return nil
	}
	total := sizeOfSubtree(0, n, 0, codes, leafMax)
	nodes := make([]Node[T], total)
	buildAt(nodes, 0, 0, n, 0, codes, leafMax, pool)
	return nodes
}
