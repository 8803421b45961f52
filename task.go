package task

// A Task is a value that describes a one-shot computation.
//
// A Task does nothing until it is invoked.
// Invoking a Task with a pair of continuations starts a fresh execution
// and returns a [CancelFunc] that requests cooperative termination of
// that execution.
// The execution eventually calls exactly one of the two continuations
// with its single terminal result: succeed with a value, or fail with
// an error.
// An execution that is canceled before completion may also call
// neither.
//
// Tasks are re-runnable: invoking the same Task value again starts
// another independent execution, unless the Task explicitly memoizes
// (see [Start] and [Promise]).
//
// A Task must not panic and must not block in the call that starts
// execution.
// Continuations may fire synchronously, inside the starting call, or
// asynchronously from any goroutine; consumers must not assume either.
type Task[T any] func(succeed func(T), fail func(error)) CancelFunc

// A CancelFunc requests cooperative termination of one execution.
//
// A CancelFunc is safe for concurrent use, never blocks, and is
// idempotent: the second and later calls are no-ops, as are calls made
// after the execution completed.
type CancelFunc func()

// Nop is a [CancelFunc] that does nothing.
// Tasks that complete synchronously, or that cannot be canceled,
// return it.
func Nop() {}

// Success returns a [Task] that calls succeed with v synchronously,
// inside the starting call.
func Success[T any](v T) Task[T] {
	return func(succeed func(T), _ func(error)) CancelFunc {
		succeed(v)
		return Nop
	}
}

// Failure returns a [Task] that calls fail with err synchronously,
// inside the starting call.
func Failure[T any](err error) Task[T] {
	return func(_ func(T), fail func(error)) CancelFunc {
		fail(err)
		return Nop
	}
}

// Effect returns a [Task] that evaluates body on the [Compute]
// executor.
// A normal return delivers the value to succeed; a non-nil error, or
// a panic in body, delivers an error to fail.
//
// If succeed itself panics, the execution fails once instead; fail is
// never called after a completed succeed.
//
// Canceling an Effect is a no-op: the work may already be queued or
// running, and it runs to completion and delivers its result as if
// the execution had not been canceled.
func Effect[T any](body func() (T, error)) Task[T] {
	return effectOn(Compute, body)
}

// EffectOff is like [Effect] but evaluates body on the [Blocking]
// executor, which is unbounded and intended for blocking work.
func EffectOff[T any](body func() (T, error)) Task[T] {
	return effectOn(Blocking, body)
}

func effectOn[T any](e Executor, body func() (T, error)) Task[T] {
	return func(succeed func(T), fail func(error)) CancelFunc {
		e.Submit(func() {
			v, err := run(body)
			if err == nil {
				err = protect(func() { succeed(v) })
				if err == nil {
					return
				}
			}
			fail(err)
		})
		return Nop
	}
}
