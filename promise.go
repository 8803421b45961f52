package task

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrCanceled is delivered to a [Promise] subscriber that cancels its
// subscription before the promise completes.
var ErrCanceled = errors.New("task: canceled")

// A Promise is a completable, memoized task.
//
// Subscribers attach continuations through the task view returned by
// [Promise.Task]; [Promise.Complete] starts a task whose result
// completes the promise.
// The first terminal result is memoized and broadcast to every
// subscriber; later subscribers observe it immediately.
//
// A subscriber that cancels before completion receives [ErrCanceled];
// the promise, its other subscribers, and the completing task are
// unaffected.
type Promise[T any] struct {
	state atomic.Pointer[promiseState[T]]
	once  atomic.Bool
}

type promiseState[T any] struct {
	done  bool
	value T
	err   error
	subs  map[uuid.UUID]*subscriber[T]
}

type subscriber[T any] struct {
	succeed func(T)
	fail    func(error)
	once    atomic.Bool
}

// deliver invokes one of the subscriber's continuations.
// The first delivery wins; later ones are dropped.
func (sub *subscriber[T]) deliver(v T, err error) {
	if !sub.once.CompareAndSwap(false, true) {
		return
	}
	if err != nil {
		sub.fail(err)
		return
	}
	sub.succeed(v)
}

// NewPromise returns a new, open [Promise].
func NewPromise[T any]() *Promise[T] {
	p := &Promise[T]{}
	p.state.Store(&promiseState[T]{subs: make(map[uuid.UUID]*subscriber[T])})
	return p
}

// Task returns the task view of p.
// Every invocation subscribes a fresh continuation pair; the returned
// [CancelFunc] cancels that subscription only.
func (p *Promise[T]) Task() Task[T] {
	return p.subscribe
}

func (p *Promise[T]) subscribe(succeed func(T), fail func(error)) CancelFunc {
	sub := &subscriber[T]{succeed: succeed, fail: fail}
	key := uuid.New()
	for {
		old := p.state.Load()
		if old.done {
			sub.deliver(old.value, old.err)
			return Nop
		}
		subs := make(map[uuid.UUID]*subscriber[T], len(old.subs)+1)
		for k, s := range old.subs {
			subs[k] = s
		}
		subs[key] = sub
		if p.state.CompareAndSwap(old, &promiseState[T]{subs: subs}) {
			break
		}
	}
	return func() { p.unsubscribe(key, sub) }
}

func (p *Promise[T]) unsubscribe(key uuid.UUID, sub *subscriber[T]) {
	for {
		old := p.state.Load()
		if old.done {
			return
		}
		if _, ok := old.subs[key]; !ok {
			return
		}
		subs := make(map[uuid.UUID]*subscriber[T], len(old.subs)-1)
		for k, s := range old.subs {
			if k != key {
				subs[k] = s
			}
		}
		if p.state.CompareAndSwap(old, &promiseState[T]{subs: subs}) {
			var zero T
			sub.deliver(zero, ErrCanceled)
			return
		}
	}
}

// Complete starts t and feeds its result into p.
// The first terminal result, from any Complete call, closes the
// promise and is broadcast to every subscriber; later results are
// dropped.
func (p *Promise[T]) Complete(t Task[T]) {
	t(
		func(v T) { p.settle(v, nil) },
		func(err error) { var zero T; p.settle(zero, err) },
	)
}

func (p *Promise[T]) settle(v T, err error) {
	if !p.once.CompareAndSwap(false, true) {
		return
	}
	for {
		old := p.state.Load()
		next := &promiseState[T]{done: true, value: v, err: err}
		if p.state.CompareAndSwap(old, next) {
			for _, sub := range old.subs {
				sub.deliver(v, err)
			}
			return
		}
	}
}

// Start runs t immediately against a fresh [Promise] and returns the
// promise's task view.
// The result is memoized: every subscriber, including ones that
// attach after completion, observes the same result.
func Start[T any](t Task[T]) Task[T] {
	p := NewPromise[T]()
	p.Complete(t)
	return p.Task()
}

// Wait runs t and blocks the calling goroutine until it completes,
// returning its result.
//
// Wait must not be called from a loop handler or from a continuation:
// the engine is non-blocking everywhere else, and parking one of its
// goroutines can deadlock the executor.
func Wait[T any](t Task[T]) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	var once atomic.Bool
	t(
		func(v T) {
			if once.CompareAndSwap(false, true) {
				ch <- result{value: v}
			}
		},
		func(err error) {
			if once.CompareAndSwap(false, true) {
				ch <- result{err: err}
			}
		},
	)
	r := <-ch
	return r.value, r.err
}
