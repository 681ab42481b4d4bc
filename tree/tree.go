package tree

import (
	"math"

	"github.com/MichaelSB/rakau/internal/workerpool"
)

// boxSizeSlack is the fractional margin applied when deducing a box
// size from the input data, deduced as max|coord|*2*(1+eps).
const boxSizeSlack = 0.05

// Tree is an immutable (with respect to particle membership) octree
// over N point masses, built from raw coordinate/mass slices. The
// zero value is a valid, empty tree:
// BoxSize()==0, BoxSizeDeduced()==false, empty permutations, and
// MaxLeafN/Ncrit report the documented defaults.
type Tree[T Float] struct {
	boxSize        T
	boxSizeDeduced bool
	maxLeafN       uint
	ncrit          uint
	mac            MacKind
	split          SplitMode
	workers        int

	coords [Dim][]T
	mass   []T
	nodes  []Node[T]

	perm     []uint32
	invPerm  []uint32
	lastPerm []uint32
}

// New builds a tree over the given x/y/z coordinate and mass slices,
// all of which must have equal length.
func New[T Float](x, y, z, mass []T, cfg Config) (*Tree[T], error) {
	return NewFromColumns([][]T{x, y, z, mass}, cfg)
}

// NewFromColumns builds a tree from Dim coordinate columns followed by
// a mass column (arity Dim+1). This is the entry point that surfaces
// mismatched iterator-list arity ("iterator-list arity != D+1 ->
// ArgumentError naming the mismatch").
func NewFromColumns[T Float](columns [][]T, cfg Config) (*Tree[T], error) {
	if len(columns) != Dim+1 {
		return nil, newArgumentError("expected %d coordinate columns plus one mass column for a %d-dimensional tree, got %d columns", Dim, Dim, len(columns))
	}
	mass := columns[Dim]
	n := len(mass)
	var coords [Dim][]T
	for d := 0; d < Dim; d++ {
		if len(columns[d]) != n {
			return nil, newArgumentError("coordinate column %d has length %d, expected %d to match the mass column", d, len(columns[d]), n)
		}
		coords[d] = columns[d]
	}

	if cfg.MaxLeafN == 0 {
		return nil, newArgumentError("max_leaf_n must be >= 1, got 0")
	}
	if cfg.Ncrit == 0 {
		return nil, newArgumentError("ncrit must be >= 1, got 0")
	}
	if math.IsNaN(cfg.BoxSize) || math.IsInf(cfg.BoxSize, 0) {
		return nil, newArgumentError("box_size must be finite, got %v", cfg.BoxSize)
	}
	if cfg.BoxSize < 0 {
		return nil, newArgumentError("box_size must be >= 0, got %v", cfg.BoxSize)
	}

	pool := workerpool.New(cfg.Workers)
	defer pool.Close()

	boxSize, deduced, err := resolveBoxSize(coords, n, T(cfg.BoxSize))
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return &Tree[T]{
			boxSize:        boxSize,
			boxSizeDeduced: deduced,
			maxLeafN:       cfg.MaxLeafN,
			ncrit:          cfg.Ncrit,
			mac:            cfg.Mac,
			split:          cfg.Split,
			workers:        cfg.Workers,
		}, nil
	}

	codes := make([]uint64, n)
	for p := 0; p < n; p++ {
		var u [Dim]uint64
		for d := 0; d < Dim; d++ {
			v, err := discretise(coords[d][p], boxSize, Bits)
			if err != nil {
				return nil, err
			}
			u[d] = v
		}
		codes[p] = interleave(u[:], Dim, Bits)
	}

	perm := buildPermutation(codes)
	invPerm := invertPermutation(perm, pool)

	sortedCodes := make([]uint64, n)
	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			sortedCodes[i] = codes[perm[i]]
		}
	})

	reCoords, reMass := reorderParticles(coords, mass, perm, pool)
	nodes := buildNodes[T](sortedCodes, cfg.MaxLeafN, pool)
	summarise(nodes, reCoords, reMass, boxSize)

	return &Tree[T]{
		boxSize:        boxSize,
		boxSizeDeduced: deduced,
		maxLeafN:       cfg.MaxLeafN,
		ncrit:          cfg.Ncrit,
		mac:            cfg.Mac,
		split:          cfg.Split,
		workers:        cfg.Workers,
		coords:         reCoords,
		mass:           reMass,
		nodes:          nodes,
		perm:           perm,
		invPerm:        invPerm,
		lastPerm:       perm,
	}, nil
}

// resolveBoxSize implements the box size handling: a
// caller-given positive size is used as-is; a 0 requests deduction
// from the data (max|coord| * 2 * (1+boxSizeSlack)).
func resolveBoxSize[T Float](coords [Dim][]T, n int, given T) (T, bool, error) {
	if given != 0 {
		return given, false, nil
	}
	if n == 0 {
		return 0, false, nil
	}
	var maxAbs T
	for d := 0; d < Dim; d++ {
		for _, x := range coords[d] {
			ax := x
			if ax < 0 {
				ax = -ax
			}
			if ax > maxAbs {
				maxAbs = ax
			}
		}
	}
	if maxAbs == 0 {
		// All particles sit at the origin: fall back to a minimal
		// non-degenerate box rather than failing discretisation.
		return 1, true, nil
	}
	return maxAbs * 2 * (1 + T(boxSizeSlack)), true, nil
}

// BoxSize returns the tree's box size.
func (t *Tree[T]) BoxSize() T { return t.boxSize }

// BoxSizeDeduced reports whether BoxSize was deduced from the input
// rather than supplied by the caller.
func (t *Tree[T]) BoxSizeDeduced() bool { return t.boxSizeDeduced }

// NParts returns the number of particles in the tree.
func (t *Tree[T]) NParts() int { return len(t.mass) }

// MaxLeafN returns the configured leaf size bound, or DefaultMaxLeafN
// for a zero-value (never-constructed) Tree.
func (t *Tree[T]) MaxLeafN() uint {
	if t.maxLeafN == 0 {
		return DefaultMaxLeafN
	}
	return t.maxLeafN
}

// Ncrit returns the configured batch size bound, or DefaultNcrit for a
// zero-value (never-constructed) Tree.
func (t *Tree[T]) Ncrit() uint {
	if t.ncrit == 0 {
		return DefaultNcrit
	}
	return t.ncrit
}

// Perm returns, for each tree-order position, the original index of
// the particle now there.
func (t *Tree[T]) Perm() []uint32 { return t.perm }

// InvPerm returns, for each original index, that particle's tree-order
// position.
func (t *Tree[T]) InvPerm() []uint32 { return t.invPerm }

// LastPerm returns the permutation applied by the most recent
// (re)construction; for a freshly built tree this equals Perm.
func (t *Tree[T]) LastPerm() []uint32 { return t.lastPerm }

// Nodes returns a read-only view over the flat, depth-first pre-order
// node array.
func (t *Tree[T]) Nodes() []Node[T] { return t.nodes }

// Coords returns the axis-d coordinate slice in tree (Morton) order.
func (t *Tree[T]) Coords(axis int) []T { return t.coords[axis] }

// Mass returns the mass slice in tree (Morton) order.
func (t *Tree[T]) Mass() []T { return t.mass }

// Clone returns an independent deep copy of t.
func (t *Tree[T]) Clone() *Tree[T] {
	c := *t
	for d := 0; d < Dim; d++ {
		c.coords[d] = append([]T(nil), t.coords[d]...)
	}
	c.mass = append([]T(nil), t.mass...)
	c.nodes = append([]Node[T](nil), t.nodes...)
	c.perm = append([]uint32(nil), t.perm...)
	c.invPerm = append([]uint32(nil), t.invPerm...)
	c.lastPerm = append([]uint32(nil), t.lastPerm...)
	return &c
}

func (t *Tree[T]) validateMac(theta, eps T) error {
	if theta <= 0 {
		return newDomainError("theta must be > 0, got %v", theta)
	}
	if eps < 0 {
		return newDomainError("softening eps must be >= 0, got %v", eps)
	}
	return nil
}

func (t *Tree[T]) validateIndex(i int) error {
	if i < 0 || i >= len(t.mass) {
		return newDomainError("particle index %d out of range [0, %d)", i, len(t.mass))
	}
	return nil
}

func permuteToOriginal[T Float](ordered []T, perm []uint32) []T {
	out := make([]T, len(ordered))
	for i, orig := range perm {
		out[orig] = ordered[i]
	}
	return out
}

// AccsOrdered computes accelerations indexed in tree (Morton) order.
func (t *Tree[T]) AccsOrdered(theta, eps T) ([Dim][]T, error) {
	if err := t.validateMac(theta, eps); err != nil {
		return [Dim][]T{}, err
	}
	pool := workerpool.New(t.workers)
	defer pool.Close()
	accs, _ := walkAll(t.nodes, t.coords, t.mass, t.Ncrit(), theta, eps, t.mac, t.split, true, false, pool)
	return accs, nil
}

// AccsUnordered computes accelerations permuted back to the caller's
// input order.
func (t *Tree[T]) AccsUnordered(theta, eps T) ([Dim][]T, error) {
	accs, err := t.AccsOrdered(theta, eps)
	if err != nil {
		return [Dim][]T{}, err
	}
	var out [Dim][]T
	for d := 0; d < Dim; d++ {
		out[d] = permuteToOriginal(accs[d], t.perm)
	}
	return out, nil
}

// PotsOrdered computes potentials indexed in tree (Morton) order.
func (t *Tree[T]) PotsOrdered(theta, eps T) ([]T, error) {
	if err := t.validateMac(theta, eps); err != nil {
		return nil, err
	}
	pool := workerpool.New(t.workers)
	defer pool.Close()
	_, pots := walkAll(t.nodes, t.coords, t.mass, t.Ncrit(), theta, eps, t.mac, t.split, false, true, pool)
	return pots, nil
}

// PotsUnordered computes potentials permuted back to the caller's
// input order.
func (t *Tree[T]) PotsUnordered(theta, eps T) ([]T, error) {
	pots, err := t.PotsOrdered(theta, eps)
	if err != nil {
		return nil, err
	}
	return permuteToOriginal(pots, t.perm), nil
}

// ExactAccOrdered computes the direct O(N) acceleration on the
// particle at tree-order index i.
func (t *Tree[T]) ExactAccOrdered(i int, eps T) ([Dim]T, error) {
	if err := t.validateIndex(i); err != nil {
		return [Dim]T{}, err
	}
	if eps < 0 {
		return [Dim]T{}, newDomainError("softening eps must be >= 0, got %v", eps)
	}
	return exactAcc(t.coords, t.mass, i, eps), nil
}

// ExactAccUnordered computes the direct O(N) acceleration on the
// particle at original-order index i.
func (t *Tree[T]) ExactAccUnordered(i int, eps T) ([Dim]T, error) {
	if i < 0 || i >= len(t.invPerm) {
		return [Dim]T{}, newDomainError("particle index %d out of range [0, %d)", i, len(t.invPerm))
	}
	return t.ExactAccOrdered(int(t.invPerm[i]), eps)
}

// ExactPotOrdered computes the direct O(N) potential at the particle
// at tree-order index i.
func (t *Tree[T]) ExactPotOrdered(i int, eps T) (T, error) {
	if err := t.validateIndex(i); err != nil {
		return 0, err
	}
	if eps < 0 {
		return 0, newDomainError("softening eps must be >= 0, got %v", eps)
	}
	return exactPot(t.coords, t.mass, i, eps), nil
}

// ExactPotUnordered computes the direct O(N) potential at the
// particle at original-order index i.
func (t *Tree[T]) ExactPotUnordered(i int, eps T) (T, error) {
	if i < 0 || i >= len(t.invPerm) {
		return 0, newDomainError("particle index %d out of range [0, %d)", i, len(t.invPerm))
	}
	return t.ExactPotOrdered(int(t.invPerm[i]), eps)
}
