package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cardupdater/core"
	"cardupdater/db"
	"cardupdater/handlers"
	"cardupdater/logging"
	"cardupdater/responses"
	"cardupdater/runner"
	"cardupdater/shutdown"
)

const defaultConfigPath = "config.json"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	debug      bool
}

// resolveConfigPath picks the config file: the --config flag, then
// CARDUPDATER_CONFIG, then config.json in the working directory.
func resolveConfigPath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	return core.GetEnvOrDefault("CARDUPDATER_CONFIG", defaultConfigPath)
}

// reportedError marks an error the user has already seen through the
// reporter, so main only turns it into an exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// app is everything one command invocation needs. Commands that do not
// touch notes leave database nil.
type app struct {
	cfg        *core.Config
	configPath string
	logger     *logging.Logger
	shutdown   *shutdown.Manager
	reporter   *handlers.ConsoleReporter
	database   *db.Database
	notes      *db.NoteRepository
	history    *db.HistoryRepository
	out        io.Writer
}

// loadConfig reads the config and applies flag overrides.
func loadConfig(opts *globalOptions) (*core.Config, string, error) {
	path := resolveConfigPath(opts.configPath)
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	if opts.dbPath != "" {
		cfg.DatabasePath = opts.dbPath
	}
	return cfg, path, nil
}

// newApp loads configuration, starts logging and signal handling, and opens
// the note database when withDB is set. Call close when done.
func newApp(cmd *cobra.Command, opts *globalOptions, withDB bool) (*app, error) {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:       logging.ResolveLevel(cfg.Debug, cfg.LogLevel),
		FilePath:    cfg.LogFilePath,
		Development: cfg.DevMode,
		Console:     zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		reporter:   handlers.NewConsoleReporter(cmd.OutOrStdout()),
		out:        cmd.OutOrStdout(),
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	a.shutdown = shutdown.NewManager(logger,
		shutdown.WithParent(parent),
		shutdown.WithFirstSignal(func(os.Signal) {
			a.reporter.Warning("Interrupted; stopping after the current note. Press Ctrl+C again to quit now.")
		}),
	)
	a.shutdown.Start()

	logger.Debug("Configuration loaded",
		zap.String("config", cfg.SourcePath),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("prompt_key", cfg.PromptKey),
		zap.Bool("prompt_key_fallback", cfg.PromptKeyFallback),
		zap.Float64("requests_per_minute", cfg.RequestsPerMinute),
		zap.Duration("timeout", cfg.RequestTimeout),
		zap.Int("buttons", len(cfg.Buttons)),
	)

	if withDB {
		database, err := db.Open(cfg.DatabasePath)
		if err != nil {
			a.close()
			return nil, err
		}
		a.database = database
		a.notes = db.NewNoteRepository(database)
		a.history = db.NewHistoryRepository(database)
		a.shutdown.Register("database", 10, func(context.Context) error {
			return database.Close()
		})
	}
	return a, nil
}

// ctx is cancelled by the first SIGINT or SIGTERM.
func (a *app) ctx() context.Context {
	return a.shutdown.Context()
}

// newRunner wires the Responses client, note store and history into a runner.
func (a *app) newRunner() (*runner.Runner, error) {
	client, err := responses.NewClient(responses.ConfigFromCore(a.cfg), a.logger)
	if err != nil {
		return nil, err
	}
	return runner.New(a.cfg, client, a.notes, a.reporter, a.logger,
		runner.WithHistory(a.history)), nil
}

func (a *app) close() {
	a.logger.Debug("Running cleanup", zap.Strings("order", a.shutdown.RegisteredHandlers()))
	if err := a.shutdown.Shutdown(); err != nil {
		a.logger.Warn("Shutdown incomplete", zap.Error(err))
	}
	_ = a.logger.Sync()
}
