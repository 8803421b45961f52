package task

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// An Executor accepts units of work for later execution.
//
// Submit must not block and must not panic; the submitted function
// runs at most once, on a goroutine of the executor's choosing.
type Executor interface {
	Submit(f func())
}

// An ExecutorFunc is a func(func()) that implements the [Executor]
// interface.
type ExecutorFunc func(f func())

// Submit implements the [Executor] interface.
func (e ExecutorFunc) Submit(f func()) { e(f) }

// Compute is the default executor.
// It runs at most GOMAXPROCS units of work in parallel; excess work
// waits for a slot without blocking the submitter.
// Submitted work should not block; use [Blocking] for work that does.
var Compute Executor = newComputePool(int64(runtime.GOMAXPROCS(0)))

// Blocking is an unbounded executor intended for blocking work.
// Every unit of work gets its own goroutine.
var Blocking Executor = ExecutorFunc(func(f func()) { go f() })

type computePool struct {
	sem *semaphore.Weighted
}

func newComputePool(size int64) *computePool {
	return &computePool{sem: semaphore.NewWeighted(size)}
}

func (p *computePool) Submit(f func()) {
	go func() {
		// Acquire with a background context never fails; it only waits.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		f()
	}()
}
