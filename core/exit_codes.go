package core

import (
	"context"
	"errors"
)

// Process exit codes. Signal exits follow the 128 + signal convention.
const (
	// ExitCodeSuccess indicates the command completed
	ExitCodeSuccess = 0

	// ExitCodeError indicates a runtime failure (network, storage, parse)
	ExitCodeError = 1

	// ExitCodeConfig indicates the command was rejected before doing any work
	// (missing API key, unknown button, bad config file)
	ExitCodeConfig = 2

	// ExitCodeSIGINT indicates the run was cancelled with Ctrl+C (128 + 2)
	ExitCodeSIGINT = 130
)

// ExitCodeFor maps a command error to a process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, context.Canceled):
		return ExitCodeSIGINT
	}
	if _, ok := IsConfigError(err); ok {
		return ExitCodeConfig
	}
	return ExitCodeError
}

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeConfig:
		return "configuration error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	default:
		return "unknown"
	}
}
