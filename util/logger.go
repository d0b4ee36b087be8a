package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOptions controls NewLogger.
type LoggerOptions struct {
	Level   string
	Console bool
	Out     io.Writer
}

// NewLogger builds the application logger and installs it as zerolog's global logger.
// Console output is meant for development; everything else gets JSON lines.
func NewLogger(opts LoggerOptions) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
