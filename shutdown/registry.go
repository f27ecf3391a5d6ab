package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CleanupFunc releases one resource at exit.
type CleanupFunc func(ctx context.Context) error

type cleanupEntry struct {
	name     string
	priority int // lower runs first
	fn       CleanupFunc
}

// Registry holds cleanup functions and runs them once, in priority order.
// Entries with equal priority run in registration order.
//
// Typical priorities used by the CLI:
//   - 10: close the note database
//   - 90: flush the logger
type Registry struct {
	mu      sync.Mutex
	entries []cleanupEntry
	closed  bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn. Registering after Run is a no-op.
func (r *Registry) Register(name string, priority int, fn CleanupFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.entries = append(r.entries, cleanupEntry{name: name, priority: priority, fn: fn})
}

// Run calls every registered function, even after failures, and returns the
// errors wrapped with the entry name. Later calls return nil.
func (r *Registry) Run(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	entries := r.sorted()
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.sorted()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// sorted must be called with r.mu held.
func (r *Registry) sorted() []cleanupEntry {
	out := make([]cleanupEntry, len(r.entries))
	copy(out, r.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].priority < out[j].priority })
	return out
}
