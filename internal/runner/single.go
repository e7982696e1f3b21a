package runner

import (
	"context"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/script"
)

// runSingle launches the group's only command with the orchestrator's
// streams and waits for it, or terminates it when ctx ends.
func (r *Runner) runSingle(ctx context.Context, g *script.Group) error {
	p, err := r.launch(ctx, &g.Commands[0], proc.Spec{})
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	outcomes, interrupted, err := await(ctx, []*proc.Process{p})
	if err != nil {
		return err
	}
	if interrupted {
		logger.Warn("Command interrupted and terminated.", "program", p.Program(), "pid", p.Pid())
		r.bindResult(ctx, g, proc.Interrupted)
		return nil
	}

	logger.Debug("Command finished.", "program", p.Program(), "pid", p.Pid(), "outcome", outcomes[0])
	r.bindResult(ctx, g, outcomes[0])
	return nil
}
