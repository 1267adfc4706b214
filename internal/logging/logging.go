package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select where and how verbosely a logger writes.
type Options struct {
	// Level is debug, info, warn, or error. Empty means info.
	Level string
	// File receives JSON lines when set. The parent directory is created.
	// Empty logs to stderr in console format.
	File string
	// Name is attached to every entry as the logger name.
	Name string
}

// ParseLevel converts a config level string.
func ParseLevel(raw string) (zapcore.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return zapcore.InfoLevel, nil
	}
	switch trimmed {
	case "debug", "info", "warn", "error":
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", raw)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(trimmed)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

// EncoderConfig is the field layout shared by every lumen logger. The
// diagnostics view in the panel parses files written with it.
func EncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// New builds a logger. The returned func flushes buffered entries and should
// be deferred by the caller.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    EncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		cfg.Encoding = "json"
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	if opts.Name != "" {
		logger = logger.Named(opts.Name)
	}
	return logger, func() { _ = logger.Sync() }, nil
}
