// Package log assembles the module's slog pipeline: leveled text output,
// secret redaction, and optional size-based rotation.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the sink and level for New.
type Options struct {
	Level     string
	File      string // empty means stderr
	MaxSizeMB int
	MaxFiles  int
}

// New builds a redacting slog logger. With a file configured the sink
// rotates by size; otherwise records go to stderr.
func New(opts Options) (*slog.Logger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var sink io.Writer = os.Stderr
	if opts.File != "" {
		writer, err := newRotatingWriter(opts)
		if err != nil {
			return nil, err
		}
		sink = writer
	}

	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(handler)), nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}

func newRotatingWriter(opts Options) (*lumberjack.Logger, error) {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 5
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxFiles,
		Compress:   false,
	}, nil
}
