package task_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/leonoel/task"
)

// flaky fails the first failures attempts, then succeeds with the
// attempt number.
func flaky(attempts *atomic.Int32, failures int32) task.Task[int] {
	return func(succeed func(int), fail func(error)) task.CancelFunc {
		if n := attempts.Add(1); n <= failures {
			fail(errBang)
		} else {
			succeed(int(n))
		}
		return task.Nop
	}
}

func TestRetry(t *testing.T) {
	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		fc := clockwork.NewFakeClock()
		sched := task.NewScheduler(fc)

		var attempts atomic.Int32
		results := make(chan int, 1)
		task.RetryOn(sched, backoff.NewConstantBackOff(5*time.Millisecond),
			flaky(&attempts, 2),
		)(func(v int) { results <- v }, func(error) {})

		for range 2 {
			fc.BlockUntil(1)
			fc.Advance(5 * time.Millisecond)
		}

		assert.Equal(t, 3, <-results)
		assert.Equal(t, int32(3), attempts.Load())
	})
	t.Run("PolicyExhausted", func(t *testing.T) {
		fc := clockwork.NewFakeClock()
		sched := task.NewScheduler(fc)

		var attempts atomic.Int32
		failures := make(chan error, 1)
		task.RetryOn(sched,
			backoff.WithMaxRetries(backoff.NewConstantBackOff(5*time.Millisecond), 1),
			flaky(&attempts, 99),
		)(func(int) {}, func(err error) { failures <- err })

		fc.BlockUntil(1)
		fc.Advance(5 * time.Millisecond)

		assert.ErrorIs(t, <-failures, errBang)
		assert.Equal(t, int32(2), attempts.Load())
	})
	t.Run("ImmediateSuccess", func(t *testing.T) {
		var attempts atomic.Int32
		v, err := task.Wait(task.Retry(backoff.NewConstantBackOff(time.Millisecond),
			flaky(&attempts, 0),
		))
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, int32(1), attempts.Load())
	})
	t.Run("CancelWhileWaiting", func(t *testing.T) {
		fc := clockwork.NewFakeClock()
		sched := task.NewScheduler(fc)

		var attempts atomic.Int32
		cancel := task.RetryOn(sched, backoff.NewConstantBackOff(5*time.Millisecond),
			flaky(&attempts, 99),
		)(func(int) {}, func(error) {})

		fc.BlockUntil(1)
		cancel()

		// The pending delay was stopped; no further attempts run.
		fc.Advance(5 * time.Millisecond)

		control := make(chan int, 1)
		task.AfterOn(sched, 5*time.Millisecond, 0)(
			func(v int) { control <- v }, func(error) {},
		)
		fc.Advance(5 * time.Millisecond)
		<-control

		assert.Equal(t, int32(1), attempts.Load())
	})
}
