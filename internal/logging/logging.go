// Package logging configures zerolog for the CLI and the dev backend.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup returns a JSON logger writing to w at the given level.
// Unknown levels fall back to info.
func Setup(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// SetupConsole returns a human readable logger, used by the CLI.
func SetupConsole(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(cw).Level(parseLevel(level)).With().Timestamp().Logger()
}

// SetupDefault installs logger as the global zerolog logger.
func SetupDefault(logger zerolog.Logger) {
	log.Logger = logger
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}
