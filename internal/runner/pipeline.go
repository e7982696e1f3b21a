package runner

import (
	"context"
	"fmt"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/script"
)

// runPipeline connects the commands of an AND group stage to stage and
// records the last stage's outcome. When ctx ends first every stage is
// terminated and the outcome is Interrupted.
func (r *Runner) runPipeline(ctx context.Context, g *script.Group) error {
	logger := ctxlog.FromContext(ctx)
	n := len(g.Commands)

	pipes, err := proc.OpenPipes(n - 1)
	if err != nil {
		return err
	}
	defer pipes.Close()

	procs := make([]*proc.Process, 0, n)
	for i := range g.Commands {
		var spec proc.Spec
		if i > 0 {
			spec.Stdin = pipes.Reader(i - 1)
		}
		if i < n-1 {
			spec.Stdout = pipes.Writer(i)
		}

		p, err := r.launch(ctx, &g.Commands[i], spec)
		if err != nil {
			_ = pipes.Close()
			abandon(ctx, procs)
			return fmt.Errorf("stage %d: %w", i, err)
		}
		procs = append(procs, p)
	}

	// The orchestrator never touches the pipes itself. A reader only sees
	// end-of-stream once these copies of the write ends are gone.
	if err := pipes.Close(); err != nil {
		logger.Warn("Closing pipeline endpoints failed.", "error", err)
	}

	outcomes, interrupted, err := await(ctx, procs)
	if err != nil {
		return err
	}
	if interrupted {
		logger.Warn("Pipeline interrupted, all stages terminated.", "stages", n)
		r.bindResult(ctx, g, proc.Interrupted)
		return nil
	}

	logger.Debug("Pipeline finished.", "stages", n, "outcomes", outcomes)
	r.bindResult(ctx, g, outcomes[n-1])
	return nil
}
