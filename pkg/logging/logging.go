package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// Name is the name of the application that the logger is created for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the application name appended to every log line.
	name Name

	// writer is the destination for log output.
	writer io.Writer

	// level is the minimum level to log at.
	level slog.Leveler
}

// NewConfig creates a new logging configuration with sane defaults.
func NewConfig(name Name) *Config {
	return &Config{
		name:   name,
		writer: os.Stdout,
		level:  slog.LevelDebug,
	}
}

// CommonLogger creates the common logger for the application. The logger is
// also installed as the slog default.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("no logging config provided")
	}

	l := slog.New(slog.NewJSONHandler(c.writer, &slog.HandlerOptions{
		Level: c.level,
	})).With(
		slog.String(KeyAppName, string(c.name)),
	)

	slog.SetDefault(l)
	return l, nil
}
