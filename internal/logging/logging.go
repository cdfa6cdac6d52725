// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Formats accepted by Setup
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Setup sets the global level and output format and returns the configured logger.
func Setup(level, format string) (zerolog.Logger, error) {
	return setup(os.Stdout, level, format)
}

// SetupTo is Setup writing to out instead of stdout
func SetupTo(out io.Writer, level, format string) (zerolog.Logger, error) {
	return setup(out, level, format)
}

func setup(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(format) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case FormatJSON:
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", format)
	}

	logger := zerolog.New(out).With().Timestamp().Str("service", "compliancelens").Logger()
	log.Logger = logger
	return logger, nil
}

// ParseLevel parses a level name, defaulting to info when empty
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
