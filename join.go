package task

// Join returns a [Task] that runs the given tasks in parallel and,
// when all of them succeed, completes with f applied to their values,
// in argument order.
//
// If any task fails, every other task is canceled and the outer task
// fails with that error.
// Canceling the outer task cancels every still-live child.
//
// When passed no tasks, Join completes synchronously with f applied
// to an empty slice.
func Join[T, R any](f func(values []T) (R, error), tasks ...Task[T]) Task[R] {
	if len(tasks) == 0 {
		return func(succeed func(R), fail func(error)) CancelFunc {
			v, err := run(func() (R, error) { return f(nil) })
			if err != nil {
				fail(err)
			} else {
				succeed(v)
			}
			return Nop
		}
	}
	return New(func(l *Loop[R]) Handler[R] {
		values := make([]T, len(tasks))
		filled := make([]bool, len(tasks))
		remaining := len(tasks)
		cancels := make([]CancelFunc, len(tasks))
		cancelAll := func() {
			for _, cancel := range cancels {
				cancel()
			}
		}

		failed := On(l, func(err error) Step[R] {
			cancelAll()
			return l.Fail(err)
		})

		for i, t := range tasks {
			cancels[i] = t(On(l, func(v T) Step[R] {
				if filled[i] {
					return l.Pending()
				}
				values[i] = v
				filled[i] = true
				if remaining--; remaining == 0 {
					return l.Resolve(f(values))
				}
				return l.Pending()
			}), failed)
		}

		return func() Step[R] {
			cancelAll()
			return l.Pending()
		}
	})
}

// Join2 is like [Join] for two tasks of different types.
func Join2[A, B, R any](f func(A, B) (R, error), ta Task[A], tb Task[B]) Task[R] {
	return New(func(l *Loop[R]) Handler[R] {
		var a A
		var b B
		var aok, bok bool
		remaining := 2
		cancels := make([]CancelFunc, 2)
		cancelAll := func() {
			for _, cancel := range cancels {
				cancel()
			}
		}

		failed := On(l, func(err error) Step[R] {
			cancelAll()
			return l.Fail(err)
		})
		done := func() Step[R] {
			if remaining--; remaining == 0 {
				return l.Resolve(f(a, b))
			}
			return l.Pending()
		}

		cancels[0] = ta(On(l, func(v A) Step[R] {
			if aok {
				return l.Pending()
			}
			a, aok = v, true
			return done()
		}), failed)
		cancels[1] = tb(On(l, func(v B) Step[R] {
			if bok {
				return l.Pending()
			}
			b, bok = v, true
			return done()
		}), failed)

		return func() Step[R] {
			cancelAll()
			return l.Pending()
		}
	})
}

// Join3 is like [Join] for three tasks of different types.
func Join3[A, B, C, R any](f func(A, B, C) (R, error), ta Task[A], tb Task[B], tc Task[C]) Task[R] {
	type ab struct {
		a A
		b B
	}
	return Join2(
		func(x ab, c C) (R, error) { return f(x.a, x.b, c) },
		Join2(func(a A, b B) (ab, error) { return ab{a, b}, nil }, ta, tb),
		tc,
	)
}
