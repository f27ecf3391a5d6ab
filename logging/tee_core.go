package logging

import "go.uber.org/zap/zapcore"

// TeeConfig describes the two outputs of a Logger.
type TeeConfig struct {
	ConsoleLevel zapcore.Level
	FileLevel    zapcore.Level
	Console      zapcore.WriteSyncer
	File         zapcore.WriteSyncer // nil disables file output
	Development  bool
}

// NewTeeCore combines a console core and an optional JSON file core.
// The console is human-readable in development and JSON otherwise.
func NewTeeCore(cfg TeeConfig) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if cfg.Development {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, cfg.Console, cfg.ConsoleLevel)

	if cfg.File == nil {
		return consoleCore
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		cfg.File,
		cfg.FileLevel,
	)
	return zapcore.NewTee(consoleCore, fileCore)
}
