package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/radix/internal/config"
)

// NewLogger builds the root logger from the log settings. The debug
// flag forces debug level regardless of the configured level.
func NewLogger(settings config.LogSettings, debug bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(settings.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	var out io.Writer = os.Stderr
	if settings.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
