// Package commands contains the CLI commands for the application
package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	LogLevel string
}

type Controller struct {
	Flags *Flags

	// Out receives the user-facing console output. Defaults to stdout.
	Out io.Writer
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// logLevel resolves Flags.LogLevel, falling back to info when it is unset
// or unparseable
func (c *Controller) logLevel() zerolog.Level {
	if c.Flags == nil || c.Flags.LogLevel == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(c.Flags.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// logger derives a component logger from the global one at the configured level
func (c *Controller) logger(component string) zerolog.Logger {
	return log.Logger.With().Timestamp().Str("component", component).Logger().Level(c.logLevel())
}
