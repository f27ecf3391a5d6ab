// Package logging provides the structured logger used across cardupdater.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level written to the log file
	Level zapcore.Level

	// FilePath is the rotating log file; empty disables file output
	FilePath string

	// Development switches the console to the human-readable encoder and
	// lets it show everything down to Level. Otherwise the console only
	// shows warnings and above so it does not drown out command output.
	Development bool

	// Console receives console output; nil means os.Stderr
	Console zapcore.WriteSyncer

	// File overrides the lumberjack writer for FilePath (tests)
	File zapcore.WriteSyncer
}

// Logger wraps zap.Logger and redacts secrets from every message and
// string field before it reaches an encoder.
//
// Example:
//
//	logger, err := logging.New(logging.Options{Level: zapcore.InfoLevel, FilePath: "cardupdater.log"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info("bulk run finished", zap.Int("updated", 4))
type Logger struct {
	zap         *zap.Logger
	logFilePath string
}

// New builds a Logger that tees console and file output.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	file := opts.File
	if file == nil && opts.FilePath != "" {
		if err := ensureWritable(opts.FilePath); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = NewFileWriter(opts.FilePath)
	}

	consoleLevel := opts.Level
	if !opts.Development && consoleLevel < zapcore.WarnLevel {
		consoleLevel = zapcore.WarnLevel
	}

	core := NewTeeCore(TeeConfig{
		ConsoleLevel: consoleLevel,
		FileLevel:    opts.Level,
		Console:      console,
		File:         file,
		Development:  opts.Development,
	})

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)
	return &Logger{zap: zapLogger, logFilePath: opts.FilePath}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(RedactSensitiveData(msg), redactFields(fields)...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(RedactSensitiveData(msg), redactFields(fields)...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(RedactSensitiveData(msg), redactFields(fields)...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(RedactSensitiveData(msg), redactFields(fields)...)
}

// With creates a child logger that adds fields to every entry.
//
// Example:
//
//	callLog := logger.With(zap.String("correlation_id", id), zap.Int64("note_id", note.ID))
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(redactFields(fields)...), logFilePath: l.logFilePath}
}

// Named adds a sub-logger name such as "runner" or "responses".
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name), logFilePath: l.logFilePath}
}

// Enabled reports whether entries at level would be written anywhere.
func (l *Logger) Enabled(level zapcore.Level) bool {
	return l.zap.Core().Enabled(level)
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// LogFilePath returns the path to the log file ("" when file output is off).
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}
	if field.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}
	if field.Type == zapcore.ErrorType {
		if err, ok := field.Interface.(error); ok && err != nil {
			if redacted := RedactSensitiveData(err.Error()); redacted != err.Error() {
				return zap.String(field.Key, redacted)
			}
		}
	}
	return field
}

// ensureWritable fails early when the log file cannot be created, instead of
// letting lumberjack report it on the first write.
func ensureWritable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
