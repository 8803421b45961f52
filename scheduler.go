package task

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// A Scheduler schedules a function call after a delay.
//
// Schedule must not block; the returned [CancelFunc] stops the pending
// call if it has not fired yet, and is a no-op afterwards.
type Scheduler interface {
	Schedule(d time.Duration, f func()) CancelFunc
}

// NewScheduler returns a [Scheduler] backed by the given clock.
// Tests typically pass a [clockwork.FakeClock] to control time.
func NewScheduler(c clockwork.Clock) Scheduler {
	return clockScheduler{clock: c}
}

// DefaultScheduler is the [Scheduler] used by [After] and [Retry].
// It runs on the real clock.
var DefaultScheduler = NewScheduler(clockwork.NewRealClock())

type clockScheduler struct {
	clock clockwork.Clock
}

func (s clockScheduler) Schedule(d time.Duration, f func()) CancelFunc {
	tm := s.clock.AfterFunc(d, f)
	return func() { tm.Stop() }
}

// After returns a [Task] that succeeds with v once d has elapsed on
// the [DefaultScheduler].
// Canceling the task stops the timer; a canceled execution delivers
// nothing.
func After[T any](d time.Duration, v T) Task[T] {
	return AfterOn[T](DefaultScheduler, d, v)
}

// AfterOn is like [After] but runs on an explicit [Scheduler].
func AfterOn[T any](s Scheduler, d time.Duration, v T) Task[T] {
	return func(succeed func(T), _ func(error)) CancelFunc {
		return s.Schedule(d, func() { succeed(v) })
	}
}
