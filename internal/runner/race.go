package runner

import (
	"context"
	"fmt"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/script"
)

// finish reports the end of one competitor.
type finish struct {
	index   int
	outcome proc.Outcome
	err     error
}

// runRace starts the commands of an OR group side by side, records the
// outcome of the first one to end and terminates the rest. Losers are reaped
// in the background; the race does not wait for them.
func (r *Runner) runRace(ctx context.Context, g *script.Group) error {
	logger := ctxlog.FromContext(ctx)
	n := len(g.Commands)

	// Buffered so that loser goroutines never block after the race is decided.
	done := make(chan finish, n)
	procs := make([]*proc.Process, 0, n)

	for i := range g.Commands {
		// Each competitor gets its own process group so a signal aimed at
		// one never reaches its siblings.
		p, err := r.launch(ctx, &g.Commands[i], proc.Spec{NewProcessGroup: true})
		if err != nil {
			terminate(ctx, procs, -1)
			return fmt.Errorf("competitor %d: %w", i, err)
		}
		procs = append(procs, p)

		go func() {
			o, err := p.Wait()
			done <- finish{index: i, outcome: o, err: err}
		}()
	}

	select {
	case f := <-done:
		terminate(ctx, procs, f.index)
		if f.err != nil {
			return fmt.Errorf("competitor %d: %w", f.index, f.err)
		}
		logger.Debug("Race decided.", "winner", f.index, "program", procs[f.index].Program(), "outcome", f.outcome)
		r.bindResult(ctx, g, f.outcome)

	case <-ctx.Done():
		terminate(ctx, procs, -1)
		logger.Warn("Race interrupted, all competitors terminated.", "competitors", n)
		r.bindResult(ctx, g, proc.Interrupted)
	}

	return nil
}

// terminate sends SIGTERM to every process except the one at index keep.
// Processes started in their own group are signalled group-wide.
func terminate(ctx context.Context, procs []*proc.Process, keep int) {
	logger := ctxlog.FromContext(ctx)
	for i, p := range procs {
		if i == keep {
			continue
		}
		if err := p.Terminate(); err != nil {
			logger.Warn("Could not terminate process.", "index", i, "program", p.Program(), "error", err)
			continue
		}
		logger.Debug("Process terminated.", "index", i, "pid", p.Pid())
	}
}
