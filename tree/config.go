package tree

// MacKind selects the Multipole Acceptance Criterion variant applied
// at every visited interior node during a tree walk.
type MacKind uint8

const (
	// MacBH is the classic Barnes-Hut criterion: size(n)^2 < theta^2 * d^2.
	MacBH MacKind = iota
	// MacBHGeom tightens acceptance by folding in the node's per-axis
	// dispersion, penalising elongated mass distributions.
	MacBHGeom
)

// SplitMode controls how a batch of ncrit targets is dispatched
// across workers during the walk.
type SplitMode uint8

const (
	// SplitNone runs every batch on the calling goroutine.
	SplitNone SplitMode = iota
	// SplitSerial dispatches batches one at a time but still routes
	// each one through the worker pool (useful for measuring pool
	// overhead in isolation).
	SplitSerial
	// SplitParallel dispatches all batches concurrently across the
	// worker pool.
	SplitParallel
)

const (
	// DefaultMaxLeafN is the documented default upper bound on
	// particles per leaf.
	DefaultMaxLeafN = 256
	// DefaultNcrit is the documented default upper bound on a target
	// batch's size.
	DefaultNcrit = 16
)

// Config carries the named, order-independent construction options
// accepted by New. Config has no presence flags except for BoxSize (0
// means "deduce
// from the input") — MaxLeafN and Ncrit are validated as
// given, so an explicit 0 is an ArgumentError rather than silently
// falling back to a default.
// Callers who want the documented defaults should start from
// DefaultConfig rather than the zero value.
type Config struct {
	BoxSize  float64
	MaxLeafN uint
	Ncrit    uint
	Split    SplitMode
	Mac      MacKind
	// Workers bounds the worker pool's goroutine count. 0 means "use
	// available hardware concurrency" (GOMAXPROCS).
	Workers int
}

// DefaultConfig returns a Config with MaxLeafN and Ncrit set to their
// documented defaults and BoxSize left at 0 (deduce).
func DefaultConfig() Config {
	return Config{MaxLeafN: DefaultMaxLeafN, Ncrit: DefaultNcrit}
}
