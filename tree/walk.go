package tree

import (
	"sync"

	"github.com/MichaelSB/rakau/internal/workerpool"
)

// addContribution accumulates the gravitational effect of a source at
// srcPos with mass srcMass on the target at position targetPos,
// softened by eps. The same kernel serves both exact
// per-particle contributions (source = leaf member) and monopole
// contributions (source = an accepted interior node's centre of
// mass).
func addContribution[T Float](accsOut [Dim][]T, potsOut []T, wantAcc, wantPot bool, target uint32, srcPos [Dim]T, srcMass, eps T, targetPos [Dim]T) {
	var delta [Dim]T
	var dsq T
	for d := 0; d < Dim; d++ {
		delta[d] = srcPos[d] - targetPos[d]
		dsq += delta[d] * delta[d]
	}
	dsq += eps * eps

	invR := 1 / sqrtT(dsq)
	if wantPot {
		potsOut[target] += -srcMass * invR
	}
	if wantAcc {
		invDenom := invR * invR * invR
		for d := 0; d < Dim; d++ {
			accsOut[d][target] += srcMass * delta[d] * invDenom
		}
	}
}

// macAccepts evaluates the configured Multipole Acceptance Criterion
// for node n against a squared distance dsq.
func macAccepts[T Float](n *Node[T], mac MacKind, theta, dsq T) bool {
	size := n.Size
	if mac == MacBHGeom {
		maxDisp := n.Dispersion[0]
		for d := 1; d < Dim; d++ {
			if n.Dispersion[d] > maxDisp {
				maxDisp = n.Dispersion[d]
			}
		}
		size += maxDisp
	}
	return size*size < theta*theta*dsq
}

// walkBatch traverses the node array once for the batch of targets
// [batchBegin, batchEnd), which share a single MAC decision per
// visited node computed against the batch centroid, but accumulate
// exact per-target contributions ("vectorised over
// batches of target particles").
func walkBatch[T Float](nodes []Node[T], coords [Dim][]T, mass []T, batchBegin, batchEnd uint32, theta, eps T, mac MacKind, accsOut [Dim][]T, potsOut []T, wantAcc, wantPot bool) {
	var centroid [Dim]T
	count := T(batchEnd - batchBegin)
	for p := batchBegin; p < batchEnd; p++ {
		for d := 0; d < Dim; d++ {
			centroid[d] += coords[d][p]
		}
	}
	for d := 0; d < Dim; d++ {
		centroid[d] /= count
	}

	i := uint32(0)
	for int(i) < len(nodes) {
		n := &nodes[i]

		if n.IsLeaf() {
			for t := batchBegin; t < batchEnd; t++ {
				var targetPos [Dim]T
				for d := 0; d < Dim; d++ {
					targetPos[d] = coords[d][t]
				}
				for s := n.Begin; s < n.End; s++ {
					if s == t {
						continue
					}
					var srcPos [Dim]T
					for d := 0; d < Dim; d++ {
						srcPos[d] = coords[d][s]
					}
					addContribution(accsOut, potsOut, wantAcc, wantPot, t, srcPos, mass[s], eps, targetPos)
				}
			}
			i++
			continue
		}

		var dsq T
		for d := 0; d < Dim; d++ {
			delta := n.Com[d] - centroid[d]
			dsq += delta * delta
		}

		if macAccepts(n, mac, theta, dsq) {
			for t := batchBegin; t < batchEnd; t++ {
				var targetPos [Dim]T
				for d := 0; d < Dim; d++ {
					targetPos[d] = coords[d][t]
				}
				addContribution(accsOut, potsOut, wantAcc, wantPot, t, n.Com, n.Mass, eps, targetPos)
			}
			i += n.SubtreeSize
		} else {
			i++
		}
	}
}

// walkAll dispatches every ncrit-sized batch according to split,
// joining on pool before returning (batches are
// independent and write-disjoint, so no synchronisation is needed
// beyond the join).
func walkAll[T Float](nodes []Node[T], coords [Dim][]T, mass []T, ncrit uint, theta, eps T, mac MacKind, split SplitMode, wantAcc, wantPot bool, pool *workerpool.Pool) ([Dim][]T, []T) {
	n := len(mass)
	var accsOut [Dim][]T
	if wantAcc {
		for d := 0; d < Dim; d++ {
			accsOut[d] = make([]T, n)
		}
	}
	var potsOut []T
	if wantPot {
		potsOut = make([]T, n)
	}
	if n == 0 {
		return accsOut, potsOut
	}

	nc := int(ncrit)
	numBatches := (n + nc - 1) / nc
	runBatch := func(b int) {
		begin := uint32(b * nc)
		end := begin + uint32(nc)
		if int(end) > n {
			end = uint32(n)
		}
		walkBatch(nodes, coords, mass, begin, end, theta, eps, mac, accsOut, potsOut, wantAcc, wantPot)
	}

	switch split {
	case SplitSerial:
		for b := 0; b < numBatches; b++ {
			done := make(chan struct{})
			b := b
			pool.Submit(func() { runBatch(b); close(done) })
			<-done
		}
	case SplitParallel:
		var wg sync.WaitGroup
		for b := 0; b < numBatches; b++ {
			b := b
			wg.Add(1)
			pool.Submit(func() {
				defer wg.Done()
				runBatch(b)
			})
		}
		wg.Wait()
	default: // SplitNone
		for b := 0; b < numBatches; b++ {
			runBatch(b)
		}
	}

	return accsOut, potsOut
}
