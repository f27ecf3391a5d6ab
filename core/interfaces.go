// Package core provides configuration, shared interfaces and shared types
// for cardupdater components.
package core

// Reporter is the interactive surface that receives user-facing feedback.
// In the CLI it writes coloured lines to the terminal; an embedding
// application can route the same calls to toasts, dialogs and a progress bar.
//
// Implementations are called only from the goroutine that owns note
// mutation, so they need no locking of their own.
type Reporter interface {
	// Info shows a transient, non-blocking notice (e.g. "Updated fields: Back").
	Info(message string)

	// Warning shows a problem the user should read (e.g. an HTTP failure).
	Warning(message string)

	// Progress reports that current of total items have been handled.
	Progress(current, total int)
}

// NopReporter discards all feedback. Useful for tests and headless use.
type NopReporter struct{}

// Compile-time check that NopReporter implements Reporter
var _ Reporter = NopReporter{}

// Info does nothing.
func (NopReporter) Info(string) {}

// Warning does nothing.
func (NopReporter) Warning(string) {}

// Progress does nothing.
func (NopReporter) Progress(int, int) {}
