package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel parses debug, info, warn/warning, error (any case).
// Anything else yields defaultLevel.
func ParseLevel(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return defaultLevel
	}
}

// ResolveLevel picks the file log level: an explicit override wins,
// then debug mode, then info.
func ResolveLevel(debug bool, override string) zapcore.Level {
	fallback := zapcore.InfoLevel
	if debug {
		fallback = zapcore.DebugLevel
	}
	return ParseLevel(override, fallback)
}
