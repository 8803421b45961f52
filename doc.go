// Package task is a library for representing effects as values.
//
// A [Task] is a description of a computation that yields exactly one
// result, success or failure.
// Nothing happens when a Task is created; invoking it with a pair of
// continuations starts one execution and returns a canceller.
// Because a Task is just a func, an effect becomes an ordinary value:
// it can be stored, passed around, composed, and executed on demand,
// any number of times.
//
// This continuation-passing convention is deliberately chosen over a
// stateful future object.
// A future couples the description of work with one running execution
// and its synchronization; a Task keeps the two apart, which makes
// executions re-runnable and the whole model portable to
// single-threaded runtimes.
// Where future-like memoization is wanted, it is opt-in: [Start] runs
// a task eagerly against a [Promise] and every subscriber of the
// result shares one memoized execution.
//
// # Composing Tasks
//
// Leaf tasks wrap the outside world: [Success] and [Failure] complete
// synchronously, [Effect] and [EffectOff] evaluate a function on an
// [Executor], [After] fires on a [Scheduler].
// Everything else is composition:
//
//   - [Join] runs tasks in parallel and combines all of their values;
//   - [Race] runs tasks in parallel and takes the first success;
//   - [Then] and [Else] sequence a task with a function of its value
//     or of its error;
//   - [Retry] re-runs a failing task under a backoff policy.
//
// Go has no macro layer, so there is no let-style sugar; dependent
// chains are written with nested [Then] calls, or with the [Task.Then]
// and [Task.Else] methods when every step has the same type.
//
// # The Event Loop
//
// Non-trivial combinators face the same problem: results and
// cancellation requests arrive concurrently, from any goroutine, and
// must be reconciled into one terminal result delivered exactly once.
// The [Loop] created by [New] and [NewVia] solves it once.
// Signals enqueue handler invocations onto a lock-free FIFO; a pump
// drains the FIFO one handler at a time on an [Executor].
// Handlers therefore run strictly in signal order, never concurrently,
// and may share unsynchronized state.
// A handler returns a [Step]: stay pending, or complete the task,
// after which remaining and future signals are dropped.
// All of the combinators above are ordinary boot functions over this
// helper, and custom combinators can be built the same way.
//
// # Cancellation
//
// Cancellation is cooperative and best-effort.
// Cancelling an execution invokes the canceller returned by its
// starting call; cancellers are idempotent, safe from any goroutine,
// and no-ops after terminal completion.
// Combinators forward cancellation to whichever children are still
// live, exactly once.
// Cancellation itself delivers no result: an execution whose work is
// stopped calls neither continuation, while work that cannot be
// stopped, such as an [Effect], still completes and delivers.
// The one exception is a [Promise] subscriber that cancels before
// completion: it receives [ErrCanceled], so that its continuation
// pair is not left dangling.
//
// # Blocking
//
// The entire API is non-blocking, with one documented exception:
// [Wait] parks the calling goroutine until the task completes.
// Use it at the edge of the program, never inside a handler or a
// continuation.
package task
