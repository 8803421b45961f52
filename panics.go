package task

import (
	"fmt"
	"runtime/debug"
)

// A PanicError is delivered to a failure continuation when user code
// run by the engine panics: an [Effect] body, a success continuation,
// a loop handler, or a combinator's combining function.
type PanicError struct {
	value any
	stack []byte
}

// Value returns the value the panic was raised with.
func (e *PanicError) Value() any {
	return e.value
}

// Stack returns the stack trace captured when the panic was recovered,
// as formatted by [runtime/debug.Stack].
func (e *PanicError) Stack() []byte {
	return e.stack
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task: panic: %v\n\n%s", e.value, e.stack)
}

// Unwrap returns the panic value if it is an error, or nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// protect calls f, converting a panic into a [*PanicError].
func protect(f func()) (err error) {
	ok := false
	defer func() {
		if ok {
			return
		}
		v := recover()
		if v == nil {
			panic("task: runtime.Goexit is not supported")
		}
		err = &PanicError{value: v, stack: debug.Stack()}
	}()
	f()
	ok = true
	return nil
}

// run calls body, folding a panic into the error return.
func run[T any](body func() (T, error)) (v T, err error) {
	if perr := protect(func() { v, err = body() }); perr != nil {
		var zero T
		return zero, perr
	}
	return v, err
}
