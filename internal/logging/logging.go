// Package logging sets up the zerolog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level string
	// File, when set, receives JSON log lines. Otherwise logs go to Fallback.
	File string
	// Fallback is used when File is empty; nil discards.
	Fallback io.Writer
	// Console switches Fallback output to zerolog's human-readable writer.
	Console bool
}

// New builds a logger and returns a closer for any file it opened.
func New(opts Options) (zerolog.Logger, func() error, error) {
	zerolog.TimestampFieldName = "timestamp"

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noopClose, err
	}

	closer := noopClose
	var w io.Writer = io.Discard
	switch {
	case strings.TrimSpace(opts.File) != "":
		path := filepath.Clean(strings.TrimSpace(opts.File))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), noopClose, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), noopClose, err
		}
		w = f
		closer = f.Close
	case opts.Fallback != nil && opts.Console:
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = opts.Fallback
		w = cw
	case opts.Fallback != nil:
		w = opts.Fallback
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	return logger, closer, nil
}

func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level: %q", s)
	}
	return lvl, nil
}

func noopClose() error { return nil }
