package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newBufferedLogger returns a logger whose console and file outputs are buffers.
func newBufferedLogger(t *testing.T, opts Options) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var console, file bytes.Buffer
	opts.Console = zapcore.AddSync(&console)
	opts.File = zapcore.AddSync(&file)
	logger, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &console, &file
}

func TestNew_FileGetsJSONAtLevel(t *testing.T) {
	logger, console, file := newBufferedLogger(t, Options{Level: zapcore.InfoLevel})

	logger.Debug("hidden")
	logger.Info("bulk run finished", zap.Int("updated", 3))

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("file has %d lines, want 1: %q", len(lines), file.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	if entry[FieldMessage] != "bulk run finished" || entry["updated"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}

	if console.Len() != 0 {
		t.Errorf("console got info output outside development: %q", console.String())
	}
}

func TestNew_ConsoleShowsWarnings(t *testing.T) {
	logger, console, _ := newBufferedLogger(t, Options{Level: zapcore.InfoLevel})
	logger.Warn("request failed")
	if !strings.Contains(console.String(), "request failed") {
		t.Errorf("console = %q, want warning", console.String())
	}
}

func TestNew_DevelopmentConsole(t *testing.T) {
	logger, console, _ := newBufferedLogger(t, Options{Level: zapcore.DebugLevel, Development: true})
	logger.Debug("prompt built", zap.Int("length", 12))
	out := console.String()
	if !strings.Contains(out, "prompt built") {
		t.Errorf("console = %q, want debug entry", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("development console should not be JSON: %q", out)
	}
}

func TestNew_CreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardupdater.log")
	logger, err := New(Options{Level: zapcore.InfoLevel, FilePath: path, Console: zapcore.AddSync(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q", data)
	}
	if logger.LogFilePath() != path {
		t.Errorf("LogFilePath() = %q", logger.LogFilePath())
	}
}

func TestNew_UnwritableLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "x", "app.log")
	if _, err := New(Options{FilePath: path}); err == nil {
		t.Error("New() error = nil for a path in a missing directory")
	}
}

func TestLogger_Redaction(t *testing.T) {
	logger, _, file := newBufferedLogger(t, Options{Level: zapcore.DebugLevel})
	secret := "sk-abcdefghijklmnopqrstuvwxyz012345"

	logger.Info("using key "+secret,
		zap.String("openai_api_key", "plain-value"),
		zap.String("body", "Authorization: Bearer "+secret),
		zap.Error(errors.New("rejected "+secret)),
	)
	logger.With(zap.String("api_key", "x")).Info("child")

	out := file.String()
	if strings.Contains(out, secret) || strings.Contains(out, "plain-value") {
		t.Errorf("secret leaked into log: %s", out)
	}
	if strings.Count(out, RedactedPlaceholder) < 4 {
		t.Errorf("expected redaction placeholders, got: %s", out)
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	if l.Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger reports enabled")
	}
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}

func TestLogger_Named(t *testing.T) {
	logger, _, file := newBufferedLogger(t, Options{Level: zapcore.InfoLevel})
	logger.Named("runner").Info("x")
	if !strings.Contains(file.String(), `"logger":"runner"`) {
		t.Errorf("file = %q, want logger name", file.String())
	}
}
