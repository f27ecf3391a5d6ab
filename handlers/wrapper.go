package handlers

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrPanic marks an error recovered from a panic inside a background task.
var ErrPanic = errors.New("unexpected panic")

// PanicError carries the recovered value and stack.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPanic, e.Value)
}

// Unwrap lets callers match with errors.Is(err, ErrPanic).
func (e *PanicError) Unwrap() error {
	return ErrPanic
}

// SafeCall runs fn and converts a panic into a *PanicError so that one bad
// note cannot take down a whole run.
//
// Example:
//
//	err := handlers.SafeCall(func() error {
//	    return processNote(ctx, id)
//	})
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
