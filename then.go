package task

// Then returns a [Task] that runs t and, when it succeeds, runs the
// task returned by f applied to its value, completing with that
// task's result.
//
// A failure of either stage, or a panic in f, fails the outer task.
// Canceling the outer task cancels whichever stage is currently
// running.
func Then[A, B any](t Task[A], f func(A) Task[B]) Task[B] {
	return New(func(l *Loop[B]) Handler[B] {
		canceled := false

		done := On(l, func(v B) Step[B] { return l.Done(v) })
		failed := On(l, func(err error) Step[B] { return l.Fail(err) })

		var cancel CancelFunc
		cancel = t(On(l, func(v A) Step[B] {
			if canceled {
				return l.Pending()
			}
			cancel = f(v)(done, failed)
			return l.Pending()
		}), failed)

		return func() Step[B] {
			canceled = true
			cancel()
			return l.Pending()
		}
	})
}

// Else returns a [Task] that runs t and, when it fails, runs the task
// returned by f applied to its error, completing with that task's
// result.
// A success of either stage completes the outer task with its value.
//
// Canceling the outer task cancels whichever stage is currently
// running.
func Else[T any](t Task[T], f func(error) Task[T]) Task[T] {
	return New(func(l *Loop[T]) Handler[T] {
		canceled := false

		done := On(l, func(v T) Step[T] { return l.Done(v) })
		failed := On(l, func(err error) Step[T] { return l.Fail(err) })

		var cancel CancelFunc
		cancel = t(done, On(l, func(err error) Step[T] {
			if canceled {
				return l.Pending()
			}
			cancel = f(err)(done, failed)
			return l.Pending()
		}))

		return func() Step[T] {
			canceled = true
			cancel()
			return l.Pending()
		}
	})
}

// Then is like the package-level [Then] restricted to a single value
// type, allowing let-style chains of dependent steps:
//
//	Success(6).
//		Then(func(x int) Task[int] { return Success(x * (x + 1)) }).
//		Else(func(err error) Task[int] { return Success(0) })
func (t Task[T]) Then(f func(T) Task[T]) Task[T] {
	return Then(t, f)
}

// Else is like the package-level [Else], as a method.
func (t Task[T]) Else(f func(error) Task[T]) Task[T] {
	return Else(t, f)
}
