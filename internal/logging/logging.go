// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup parses level (falling back to info), forces debug when verbose is
// set, and installs a console logger writing to w as the global logger.
// A nil w writes to stderr.
func Setup(w io.Writer, level string, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl := ParseLevel(level)
	if verbose {
		lvl = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr,
	}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	zerolog.SetGlobalLevel(lvl)
	return logger
}

// ParseLevel returns the zerolog level named by s, or info when s is empty
// or unknown.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
