package handlers

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"cardupdater/core"
)

// ConsoleReporter is the terminal implementation of core.Reporter.
// Info lines are green, warnings yellow, and progress is a single line that
// is rewritten in place and finished with a newline on the last item.
//
// Example:
//
//	reporter := handlers.NewConsoleReporter(os.Stdout)
//	reporter.Info("Updated fields: Back")
//	reporter.Progress(3, 5) // "  [3/5]"
type ConsoleReporter struct {
	mu          sync.Mutex
	out         io.Writer
	info        *color.Color
	warn        *color.Color
	progress    *color.Color
	midProgress bool
}

// Compile-time check that ConsoleReporter implements core.Reporter
var _ core.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter writes to out; nil means os.Stdout.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{
		out:      out,
		info:     color.New(color.FgGreen),
		warn:     color.New(color.FgYellow, color.Bold),
		progress: color.New(color.FgHiBlack),
	}
}

// Info prints a notice.
func (r *ConsoleReporter) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endProgressLine()
	r.info.Fprintln(r.out, message)
}

// Warning prints a problem the user should read.
func (r *ConsoleReporter) Warning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endProgressLine()
	r.warn.Fprintln(r.out, "warning: "+message)
}

// Progress rewrites the progress line.
func (r *ConsoleReporter) Progress(current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Fprintf(r.out, "\r  [%d/%d]", current, total)
	r.midProgress = current < total
	if !r.midProgress {
		fmt.Fprintln(r.out)
	}
}

// endProgressLine must be called with r.mu held.
func (r *ConsoleReporter) endProgressLine() {
	if r.midProgress {
		fmt.Fprintln(r.out)
		r.midProgress = false
	}
}
