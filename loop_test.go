package task_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonoel/task"
)

func TestLoopSerialization(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 200

	var inHandler atomic.Bool

	counting := task.New(func(l *task.Loop[int]) task.Handler[int] {
		count := 0 // Unsynchronized; handlers run serially.
		sig := task.On(l, func(int) task.Step[int] {
			if !inHandler.CompareAndSwap(false, true) {
				return l.Fail(assert.AnError)
			}
			count++
			inHandler.Store(false)
			if count == goroutines*perGoroutine {
				return l.Done(count)
			}
			return l.Pending()
		})

		var wg sync.WaitGroup
		for range goroutines {
			wg.Go(func() {
				for i := range perGoroutine {
					sig(i)
				}
			})
		}

		return func() task.Step[int] { return l.Pending() }
	})

	v, err := task.Wait(counting)
	require.NoError(t, err)
	assert.Equal(t, goroutines*perGoroutine, v)
}

func TestLoopHoldsSignalsDuringBoot(t *testing.T) {
	var order []string

	ordered := task.New(func(l *task.Loop[string]) task.Handler[string] {
		done := task.On(l, func(s string) task.Step[string] {
			order = append(order, s)
			if len(order) == 3 {
				return l.Done(order[1] + order[2])
			}
			return l.Pending()
		})

		// Both fire before boot returns; neither handler may run yet.
		done("a")
		done("b")
		order = append(order, "boot")

		return func() task.Step[string] { return l.Pending() }
	})

	v, err := task.Wait(ordered)
	require.NoError(t, err)
	assert.Equal(t, "ab", v)
	assert.Equal(t, []string{"boot", "a", "b"}, order)
}

func TestLoopDropsSignalsAfterCompletion(t *testing.T) {
	var late atomic.Int32
	sigs := make(chan func(int), 1)

	first := task.New(func(l *task.Loop[int]) task.Handler[int] {
		sig := task.On(l, func(v int) task.Step[int] {
			late.Add(1)
			return l.Done(v)
		})
		sigs <- sig
		sig(1)
		return func() task.Step[int] { return l.Pending() }
	})

	v, err := task.Wait(first)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// The loop is terminated; further signals must be dropped.
	sig := <-sigs
	sig(2)
	sig(3)
	assert.Equal(t, int32(1), late.Load())
}

func TestLoopHandlerPanicFailsTask(t *testing.T) {
	boom := task.New(func(l *task.Loop[int]) task.Handler[int] {
		sig := task.On(l, func(int) task.Step[int] {
			panic(errBang)
		})
		sig(0)
		return func() task.Step[int] { return l.Pending() }
	})

	_, err := task.Wait(boom)
	var perr *task.PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errBang, perr.Value())
}

func TestCancellationIdempotence(t *testing.T) {
	cancellations := make(chan struct{}, 8)

	idle := task.New(func(l *task.Loop[int]) task.Handler[int] {
		return func() task.Step[int] {
			cancellations <- struct{}{}
			return l.Pending()
		}
	})

	cancel := idle(func(int) {}, func(error) {})
	cancel()
	cancel()
	cancel()

	<-cancellations
	select {
	case <-cancellations:
		t.Error("cancellation handler ran more than once")
	default:
	}
}

func TestCancelAfterCompletionIsNoop(t *testing.T) {
	cancellations := make(chan struct{}, 1)

	done := task.New(func(l *task.Loop[int]) task.Handler[int] {
		sig := task.On(l, func(v int) task.Step[int] { return l.Done(v) })
		sig(7)
		return func() task.Step[int] {
			cancellations <- struct{}{}
			return l.Pending()
		}
	})

	results := make(chan int, 1)
	cancel := done(func(v int) { results <- v }, func(error) {})

	assert.Equal(t, 7, <-results)

	cancel()
	select {
	case <-cancellations:
		t.Error("cancellation handler ran after terminal completion")
	default:
	}
}

func TestNewVia(t *testing.T) {
	var submissions atomic.Int32
	countingExec := task.ExecutorFunc(func(f func()) {
		submissions.Add(1)
		go f()
	})

	echo := task.NewVia(countingExec, func(l *task.Loop[int]) task.Handler[int] {
		sig := task.On(l, func(v int) task.Step[int] { return l.Done(v) })
		sig(5)
		return func() task.Step[int] { return l.Pending() }
	})

	v, err := task.Wait(echo)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, int32(1), submissions.Load())
}
