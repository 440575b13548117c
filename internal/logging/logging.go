// Package logging builds the structured logger used by the CLI.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "indexed"

// Options configures New.
type Options struct {
	Verbose bool
	Quiet   bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Level returns the log level implied by the verbose and quiet flags.
// Quiet wins over verbose.
func (o Options) Level() hclog.Level {
	switch {
	case o.Quiet:
		return hclog.Error
	case o.Verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// New creates a logger writing to opts.Output.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Output: out,
		Level:  opts.Level(),
	})
}
