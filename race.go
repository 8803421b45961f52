package task

import (
	"slices"
	"strings"
)

// A RaceError is the failure of a [Race] in which no competitor
// succeeded.
// It carries the error of every competitor, in argument order, and
// unwraps to all of them.
type RaceError struct {
	errs []error
}

// Errors returns the error of every competitor, in argument order.
func (e *RaceError) Errors() []error {
	return slices.Clone(e.errs)
}

func (e *RaceError) Error() string {
	if len(e.errs) == 0 {
		return "task: race of no competitors"
	}
	var b strings.Builder
	b.WriteString("task: no competitor succeeded:")
	for _, err := range e.errs {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *RaceError) Unwrap() []error {
	return e.errs
}

// Race returns a [Task] that runs the given tasks in parallel and
// completes with the value of the first one to succeed, canceling
// the others.
//
// If every task fails, the outer task fails with a [*RaceError]
// carrying all of their errors.
// Canceling the outer task cancels every still-live child.
//
// When passed no tasks, Race fails synchronously with an empty
// [*RaceError].
func Race[T any](tasks ...Task[T]) Task[T] {
	if len(tasks) == 0 {
		return Failure[T](&RaceError{})
	}
	return New(func(l *Loop[T]) Handler[T] {
		errs := make([]error, len(tasks))
		filled := make([]bool, len(tasks))
		remaining := len(tasks)
		cancels := make([]CancelFunc, len(tasks))
		cancelAll := func() {
			for _, cancel := range cancels {
				cancel()
			}
		}

		for i, t := range tasks {
			cancels[i] = t(On(l, func(v T) Step[T] {
				cancelAll()
				return l.Done(v)
			}), On(l, func(err error) Step[T] {
				if filled[i] {
					return l.Pending()
				}
				errs[i] = err
				filled[i] = true
				if remaining--; remaining == 0 {
					return l.Fail(&RaceError{errs: errs})
				}
				return l.Pending()
			}))
		}

		return func() Step[T] {
			cancelAll()
			return l.Pending()
		}
	})
}
