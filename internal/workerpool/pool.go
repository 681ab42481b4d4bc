// Package workerpool provides the bounded, explicitly-scoped task
// pool: a caller-controllable worker count (0 meaning "use available
// hardware concurrency"), no suspension points visible to callers, and
// every submitted unit of work joined before the scope that created
// the pool returns. Submit never blocks: a full pool runs the task
// inline on the caller's goroutine instead, so a pool task can safely
// submit more work without risking deadlock.
package workerpool

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool. Tasks may themselves submit
// further tasks (e.g. recursive subtree construction); Submit never
// blocks on the pool being saturated, which is what makes that safe.
type Pool struct {
	jobs    chan func()
	wg      sync.WaitGroup
	done    chan struct{}
	closeOnce sync.Once
	workers int
}

// New creates a pool with the given worker count. A count <= 0 means
// "use GOMAXPROCS".
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		jobs:    make(chan func(), workers*4),
		done:    make(chan struct{}),
		workers: workers,
	}
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
			p.wg.Done()
		case <-p.done:
			return
		}
	}
}

// Submit enqueues fn for execution on the pool. If every worker is
// busy and the queue is full, fn runs inline on the calling goroutine
// instead of blocking: without this, a task that itself calls Submit
// (as recursive tree construction does) could deadlock waiting for a
// worker that is itself blocked submitting.
func (p *Pool) Submit(fn func()) {
	p.wg.Add(1)
	select {
	case p.jobs <- fn:
	default:
		fn()
		p.wg.Done()
	}
}

// Wait blocks until every task submitted so far — including tasks
// submitted by other tasks — has completed.
func (p *Pool) Wait() { p.wg.Wait() }

// RunAndWait submits every fn and blocks until they have all run.
// Unlike a plain Submit-then-Wait, the calling goroutine also drains
// p.jobs itself while it waits, so it keeps making progress on queued
// work instead of just occupying a slot. That matters for recursive
// fan-out: if every real worker is itself parked in a RunAndWait for
// its own children, a bare wg.Wait would deadlock once the queue holds
// more child tasks than free workers, since nothing would be left to
// service it. Having every waiter pull from the shared queue removes
// that dependency on the queue never filling up.
func (p *Pool) RunAndWait(fns []func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		fn := fn
		p.Submit(func() {
			defer wg.Done()
			fn()
		})
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	for {
		select {
		case job, ok := <-p.jobs:
			if ok {
				job()
				p.wg.Done()
			}
		case <-allDone:
			return
		}
	}
}

// Close stops all worker goroutines. The pool must not be used after
// Close returns. Close does not wait for outstanding work; call Wait
// first.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Workers reports the pool's worker count.
func (p *Pool) Workers() int { return p.workers }

// ParallelFor splits [0, n) into up to Workers() contiguous chunks and
// runs fn(start, end) for each chunk concurrently, joining before
// returning. Used wherever a loop writes to disjoint slots of an
// output slice: the inverse-permutation scatter, the gather of sorted
// Morton codes, and the physical reordering of particle arrays.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := p.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		p.Submit(func() { fn(start, end) })
	}
	p.Wait()
}
