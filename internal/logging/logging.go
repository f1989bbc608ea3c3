// Package logging builds the hclog loggers used across swatch.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "swatch"

// Options configures New.
type Options struct {
	Output  io.Writer
	Level   string
	Verbose bool
	Quiet   bool
	JSON    bool
}

// level resolves the effective level. --quiet wins over --verbose, and both
// win over the configured level name.
func (o Options) level() hclog.Level {
	switch {
	case o.Quiet:
		return hclog.Error
	case o.Verbose:
		return hclog.Debug
	}
	if l := hclog.LevelFromString(o.Level); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// New creates the root logger. Output defaults to stderr so that stdout
// stays reserved for results.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		Output:     out,
		Level:      opts.level(),
		JSONFormat: opts.JSON,
	})
}
