package handlers

import (
	"errors"
	"testing"
)

func TestSafeCall(t *testing.T) {
	sentinel := errors.New("boom")
	if err := SafeCall(func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("SafeCall() = %v, want passthrough", err)
	}
	if err := SafeCall(func() error { return nil }); err != nil {
		t.Errorf("SafeCall() = %v, want nil", err)
	}

	err := SafeCall(func() error {
		var n map[string]int
		n["x"] = 1
		return nil
	})
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("SafeCall(panic) = %v, want ErrPanic", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || len(pe.Stack) == 0 {
		t.Errorf("PanicError missing stack: %#v", err)
	}
}
