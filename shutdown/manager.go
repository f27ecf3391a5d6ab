// Package shutdown turns interrupt signals into context cancellation and
// runs cleanup functions when a command exits.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cardupdater/core"
	"cardupdater/logging"
)

// Manager coordinates one command's lifetime:
//   - the first SIGINT/SIGTERM cancels Context (a bulk run stops after the
//     note in flight)
//   - the second one exits immediately with core.ExitCodeSIGINT
//   - Shutdown runs the registered cleanup functions
//
// Usage:
//
//	m := shutdown.NewManager(logger)
//	m.Register("database", 10, func(ctx context.Context) error { return store.Close() })
//	m.Start()
//	defer m.Shutdown()
//
//	result, err := bulk.Run(m.Context(), ids)
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	signals  *SignalCounter
	registry *Registry
	onFirst  func(os.Signal)
	exit     func(int)

	mu       sync.Mutex
	started  bool
	sigChan  chan os.Signal
	received os.Signal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout bounds the cleanup phase. Default 10 seconds.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) { m.timeout = timeout }
}

// WithParent derives the managed context from parent instead of Background.
func WithParent(parent context.Context) ManagerOption {
	return func(m *Manager) {
		m.cancel()
		m.ctx, m.cancel = context.WithCancel(parent)
	}
}

// WithFirstSignal sets a callback for the first signal, typically a notice
// telling the user the run will stop after the current note.
func WithFirstSignal(fn func(os.Signal)) ManagerOption {
	return func(m *Manager) { m.onFirst = fn }
}

// WithExit replaces os.Exit for the forced path.
func WithExit(exit func(int)) ManagerOption {
	return func(m *Manager) { m.exit = exit }
}

// NewManager returns a Manager that is not yet listening for signals.
func NewManager(logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:   logger,
		timeout:  10 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
		registry: NewRegistry(),
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("Received second signal, exiting immediately")
		_ = m.logger.Sync()
		m.exit(core.ExitCodeSIGINT)
	})
	return m
}

// Context is cancelled on the first signal.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function; lower priority runs first.
func (m *Manager) Register(name string, priority int, fn CleanupFunc) {
	m.registry.Register(name, priority, fn)
}

// Start begins listening for SIGINT and SIGTERM. Extra calls are no-ops.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	m.sigChan = make(chan os.Signal, 2)
	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func(ch <-chan os.Signal) {
		for sig := range ch {
			m.Handle(sig)
		}
	}(m.sigChan)
}

// Handle processes one signal as if it came from the OS.
func (m *Manager) Handle(sig os.Signal) {
	if m.signals.Increment() != 1 {
		return
	}
	m.mu.Lock()
	m.received = sig
	m.mu.Unlock()

	m.logger.Info("Received signal, cancelling", zap.String("signal", sig.String()))
	if m.onFirst != nil {
		m.onFirst(sig)
	}
	m.cancel()
}

// Interrupted reports whether a signal has cancelled the context.
func (m *Manager) Interrupted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received != nil
}

// Shutdown stops signal delivery and runs cleanup within the timeout.
// It is safe to call more than once.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.started && m.sigChan != nil {
		signal.Stop(m.sigChan)
		close(m.sigChan)
		m.sigChan = nil
	}
	m.mu.Unlock()
	defer m.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	errs := m.registry.Run(ctx)
	for _, err := range errs {
		m.logger.Error("Cleanup failed", zap.Error(err))
	}
	return errors.Join(errs...)
}

// RegisteredHandlers returns cleanup names in execution order.
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}
