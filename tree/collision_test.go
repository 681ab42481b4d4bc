package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAABBVerticesClampToBoxBounds(t *testing.T) {
	centre := []float64{9, 9}
	sizes := []float64{4, 4}
	verts := CollAABBVertices(centre, sizes, -10.0, 10.0)

	require.Len(t, verts, 4)
	want := map[[2]float64]bool{
		{7, 7}:   false,
		{7, 10}:  false,
		{10, 7}:  false,
		{10, 10}: false,
	}
	for _, v := range verts {
		want[[2]float64{v[0], v[1]}] = true
	}
	for k, found := range want {
		require.Truef(t, found, "expected vertex %v among clamped corners", k)
	}
}

func TestCollAABBVerticesZeroSizeCollapsesToPoint(t *testing.T) {
	centre := []float64{1, 2, 3}
	sizes := []float64{0, 0, 0}
	verts := CollAABBVertices(centre, sizes, -10.0, 10.0)
	for _, v := range verts {
		require.Equal(t, centre, v)
	}
}

func TestCollLeavesPermutationOverEmptyTreeIsEmpty(t *testing.T) {
	var nodes []Node[float64]
	perm := CollLeavesPermutation(nodes)
	require.Empty(t, perm)
}

func TestLeavesSortedByNodeCompareAndCoverAllParticles(t *testing.T) {
	x, y, z, mass := uniformCube(10000, 1234)
	cfg := DefaultConfig()
	cfg.BoxSize = 2
	tr, err := New(x, y, z, mass, cfg)
	require.NoError(t, err)

	nodes := tr.Nodes()
	leaves := CollLeavesPermutation(nodes)
	require.NotEmpty(t, leaves)

	for i := 1; i < len(leaves); i++ {
		a, b := nodes[leaves[i-1]], nodes[leaves[i]]
		require.True(t, NodeCompare(a.Code, b.Code, Dim))
	}

	total := uint32(0)
	for _, idx := range leaves {
		n := nodes[idx]
		require.True(t, n.IsLeaf())
		total += n.End - n.Begin
	}
	require.Equal(t, uint32(10000), total)
}
