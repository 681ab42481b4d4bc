package tree

import "math/bits"

// Node is one entry of the tree's flat, depth-first pre-order node
// array. A leaf has NumChildren == 0 and covers the
// contiguous particle range [Begin, End) in Morton order; an interior
// node's first child sits at index+ChildOffset, and each further child
// follows immediately after its preceding sibling's whole subtree (at
// that sibling's index plus its SubtreeSize).
type Node[T Float] struct {
	Begin, End  uint32
	Code        Code
	Level       uint8
	NumChildren uint8
	ChildOffset int32
	// SubtreeSize is the number of array entries this node's subtree
	// occupies, itself included; the walker uses it to skip an
	// accepted interior node's entire subtree in one step.
	SubtreeSize uint32

	// Summary fields, filled in bottom-up by summarise.
	Mass       T
	Com        [Dim]T
	Size       T
	Dispersion [Dim]T
}

// IsLeaf reports whether n has no children.
func (n *Node[T]) IsLeaf() bool { return n.NumChildren == 0 }

// nodeLevel recovers the depth encoded by a code's leading sentinel
// bit: the highest set bit sits at position level*Dim.
func nodeLevel(code Code, dim int) uint {
	hi := bits.Len64(code)
	if hi == 0 {
		return 0
	}
	return uint(hi-1) / uint(dim)
}

// NodeCompare implements the strict lexicographic ordering over the
// spatial prefix of two node codes. Codes
// at different levels are aligned to the deeper level (left-shifting
// the shallower code by its remaining Dim-bit groups, which
// reproduces that node's first descendant at the deeper level) before
// being compared as plain unsigned integers.
func NodeCompare(c1, c2 Code, dim int) bool {
	l1, l2 := nodeLevel(c1, dim), nodeLevel(c2, dim)
	switch {
	case l1 < l2:
		c1 <<= uint(l2-l1) * uint(dim)
	case l2 < l1:
		c2 <<= uint(l1-l2) * uint(dim)
	}
	return c1 < c2
}
