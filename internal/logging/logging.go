// Package logging configures the global zerolog logger: JSON lines to a
// rotated file and, optionally, human-readable output on a console writer.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Setup.
type Options struct {
	Level string // debug, info, warn, error
	File  string // rotated log file; empty disables file logging
	// Console receives pretty output when set, usually os.Stderr.
	Console io.Writer
	// ConsoleLevel, when set, filters console output separately.
	ConsoleLevel string
}

// Setup replaces the global logger. The returned closer flushes the log
// file and must be closed before exit.
func Setup(opts Options) (io.Closer, error) {
	level, err := parseLevel(opts.Level, zerolog.InfoLevel)
	if err != nil {
		return nil, err
	}
	consoleLevel, err := parseLevel(opts.ConsoleLevel, level)
	if err != nil {
		return nil, err
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: lj},
			Level:  level,
		})
		closer = lj
	}

	if opts.Console != nil {
		console := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(opts.Console), TimeFormat: time.Kitchen}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: console},
			Level:  consoleLevel,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	lowest := min(level, consoleLevel)
	zerolog.SetGlobalLevel(lowest)
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lowest).
		With().Timestamp().Logger()

	return closer, nil
}

func parseLevel(s string, fallback zerolog.Level) (zerolog.Level, error) {
	if s == "" {
		return fallback, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
