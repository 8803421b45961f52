package task

import (
	"github.com/cenkalti/backoff/v4"
)

// Retry returns a [Task] that runs t and, while it fails, runs it
// again after the delay prescribed by policy, completing with the
// first success or with the error of the last permitted attempt.
//
// Tasks are re-runnable by contract, which makes every task
// retryable; memoized tasks (see [Start]) replay their first result
// and are pointless to retry.
//
// The policy is reset at the start of each execution, so a Retry task
// is itself re-runnable as long as the policy's Reset rewinds it.
// Delays run on the [DefaultScheduler].
func Retry[T any](policy backoff.BackOff, t Task[T]) Task[T] {
	return RetryOn(DefaultScheduler, policy, t)
}

// RetryOn is like [Retry] but waits between attempts on an explicit
// [Scheduler].
func RetryOn[T any](s Scheduler, policy backoff.BackOff, t Task[T]) Task[T] {
	return New(func(l *Loop[T]) Handler[T] {
		canceled := false
		var cancel CancelFunc

		done := On(l, func(v T) Step[T] { return l.Done(v) })

		var attempt func()
		failed := On(l, func(err error) Step[T] {
			if canceled {
				return l.Pending()
			}
			d := policy.NextBackOff()
			if d == backoff.Stop {
				return l.Fail(err)
			}
			cancel = s.Schedule(d, attempt)
			return l.Pending()
		})
		attempt = l.Event(func() Step[T] {
			if canceled {
				return l.Pending()
			}
			cancel = t(done, failed)
			return l.Pending()
		})

		policy.Reset()
		cancel = t(done, failed)

		return func() Step[T] {
			canceled = true
			cancel()
			return l.Pending()
		}
	})
}
