package task

import "sync/atomic"

const (
	stepPending = iota
	stepDone
	stepFailed
)

// A Step is the return value of a loop handler.
// It tells the [Loop] what to do next: keep processing events, or
// complete the task.
//
// A Step is created by calling one of the following methods of Loop:
//   - [Loop.Pending]: for staying incomplete and processing the next
//     event;
//   - [Loop.Done]: for completing the task with a value;
//   - [Loop.Fail]: for completing the task with an error;
//   - [Loop.Resolve]: for completing the task with a (value, error)
//     pair.
type Step[T any] struct {
	action int
	value  T
	err    error
}

// A Handler is a deferred piece of work processed by a [Loop], one at
// a time, in signal order.
type Handler[T any] func() Step[T]

const (
	phaseBooting = iota
	phaseIdle
	phasePumping
	phaseDone
)

type loopState[T any] struct {
	phase  int
	events []Handler[T]
}

// A Loop serializes concurrently-arriving signals into a sequence of
// handler invocations, producing one terminal result.
//
// A Loop is created by [New] or [NewVia] for each execution of the
// task they return; the boot function wires signals with [On] or
// [Loop.Event] and returns the cancellation handler.
//
// Handlers wrapped by the same Loop never run concurrently and run in
// the order their signals were fired; they may therefore share state
// without synchronization.
// Signals fired during boot, or from within a handler, are queued and
// processed later; a handler never runs re-entrantly.
// Once a handler completes the task, the queue is discarded and
// further signals are dropped.
type Loop[T any] struct {
	state   atomic.Pointer[loopState[T]]
	exec    Executor
	succeed func(T)
	fail    func(error)
}

// Pending returns a [Step] that keeps the task incomplete, letting
// the [Loop] process the next event.
func (l *Loop[T]) Pending() Step[T] {
	return Step[T]{action: stepPending}
}

// Done returns a [Step] that completes the task with v.
func (l *Loop[T]) Done(v T) Step[T] {
	return Step[T]{action: stepDone, value: v}
}

// Fail returns a [Step] that completes the task with err.
func (l *Loop[T]) Fail(err error) Step[T] {
	return Step[T]{action: stepFailed, err: err}
}

// Resolve returns a [Step] that completes the task with v, or with
// err if err is non-nil.
func (l *Loop[T]) Resolve(v T, err error) Step[T] {
	if err != nil {
		return l.Fail(err)
	}
	return l.Done(v)
}

// Event wraps a [Handler] into a signal.
// Calling the signal, from any goroutine, enqueues one invocation of
// the handler.
func (l *Loop[T]) Event(h Handler[T]) func() {
	return func() { l.enqueue(h) }
}

// On wraps a one-argument handler into a signal carrying a value.
// Calling the signal, from any goroutine, enqueues one invocation of
// the handler with the value the signal was called with.
func On[A, T any](l *Loop[T], h func(A) Step[T]) func(A) {
	return func(a A) {
		l.enqueue(func() Step[T] { return h(a) })
	}
}

// New returns a [Task] backed by a [Loop] pumped on the [Compute]
// executor.
//
// Each time the task is invoked, a fresh Loop is created and boot is
// called with it, synchronously.
// Boot wires signals to child tasks or external events and returns
// the cancellation handler, which the Loop runs like any other
// handler when the execution is canceled.
// No handler runs before boot returns.
func New[T any](boot func(l *Loop[T]) Handler[T]) Task[T] {
	return NewVia(Compute, boot)
}

// NewVia is like [New] but pumps the [Loop] on an explicit
// [Executor].
func NewVia[T any](e Executor, boot func(l *Loop[T]) Handler[T]) Task[T] {
	return func(succeed func(T), fail func(error)) CancelFunc {
		l := &Loop[T]{exec: e, succeed: succeed, fail: fail}
		l.state.Store(&loopState[T]{phase: phaseBooting})

		cancel := l.Event(boot(l))
		l.finishBoot()

		var canceled atomic.Bool
		return func() {
			if canceled.CompareAndSwap(false, true) {
				cancel()
			}
		}
	}
}

func (l *Loop[T]) enqueue(h Handler[T]) {
	for {
		old := l.state.Load()
		if old.phase == phaseDone {
			return
		}
		next := &loopState[T]{phase: old.phase}
		next.events = make([]Handler[T], len(old.events)+1)
		copy(next.events, old.events)
		next.events[len(old.events)] = h
		submit := old.phase == phaseIdle
		if submit {
			next.phase = phasePumping
		}
		if l.state.CompareAndSwap(old, next) {
			if submit {
				l.exec.Submit(l.pump)
			}
			return
		}
	}
}

// finishBoot releases events held during boot and submits the pump if
// any arrived.
func (l *Loop[T]) finishBoot() {
	for {
		old := l.state.Load()
		next := &loopState[T]{phase: phaseIdle, events: old.events}
		submit := len(old.events) != 0
		if submit {
			next.phase = phasePumping
		}
		if l.state.CompareAndSwap(old, next) {
			if submit {
				l.exec.Submit(l.pump)
			}
			return
		}
	}
}

// pump drains the event queue one handler at a time until the queue
// empties or a handler completes the task.
func (l *Loop[T]) pump() {
	for {
		st := l.state.Load()
		if st.phase != phasePumping {
			return
		}

		if len(st.events) == 0 {
			// Sleep; the next signal on the emptied queue resubmits.
			if l.state.CompareAndSwap(st, &loopState[T]{phase: phaseIdle}) {
				return
			}
			continue
		}

		step := runHandler(st.events[0])

		switch step.action {
		case stepPending:
			l.pop()
		case stepDone:
			l.state.Store(&loopState[T]{phase: phaseDone})
			l.succeed(step.value)
			return
		case stepFailed:
			l.state.Store(&loopState[T]{phase: phaseDone})
			l.fail(step.err)
			return
		}
	}
}

// pop removes the front event. Only the pump pops; concurrent signals
// only append, so the front is stable.
func (l *Loop[T]) pop() {
	for {
		old := l.state.Load()
		next := &loopState[T]{phase: phasePumping, events: old.events[1:]}
		if l.state.CompareAndSwap(old, next) {
			return
		}
	}
}

func runHandler[T any](h Handler[T]) Step[T] {
	var step Step[T]
	if err := protect(func() { step = h() }); err != nil {
		return Step[T]{action: stepFailed, err: err}
	}
	return step
}
