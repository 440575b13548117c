package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/jmylchreest/indexed/internal/colour"
	"github.com/jmylchreest/indexed/internal/task"
)

// progressInterval is how often the host samples the tracker.
const progressInterval = 100 * time.Millisecond

// progressRenderer shows tracker snapshots. On a terminal it redraws a single status
// line; elsewhere it logs each stage once at debug level.
type progressRenderer struct {
	out      io.Writer
	logger   hclog.Logger
	terminal bool
	last     colour.Stage
	drawn    bool
}

func newProgressRenderer(out io.Writer, logger hclog.Logger, quiet bool) *progressRenderer {
	return &progressRenderer{
		out:      out,
		logger:   logger,
		terminal: !quiet && isTerminal(out),
	}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *progressRenderer) render(stage colour.Stage, fraction float64) {
	if stage == colour.StageIdle {
		return
	}
	if stage != r.last {
		r.logger.Debug("stage started", "stage", stage.String())
		r.last = stage
	}
	if r.terminal {
		fmt.Fprintf(r.out, "\r%-28s %5.1f%%", stage.String(), fraction*100)
		r.drawn = true
	}
}

func (r *progressRenderer) finish() {
	if r.drawn {
		fmt.Fprint(r.out, "\r\033[K")
		r.drawn = false
	}
}

// runTracked runs fn as a background task and samples tracker until it completes.
func runTracked[T any](ctx context.Context, r *progressRenderer, tracker *colour.Tracker, fn func(context.Context) (T, error)) (T, error) {
	tracker.Reset()
	t := task.Go(ctx, fn)

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	defer r.finish()

	for {
		select {
		case <-t.Done():
			r.render(tracker.Snapshot())
			result, _, err := t.Poll()
			return result, err
		case <-ticker.C:
			r.render(tracker.Snapshot())
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
