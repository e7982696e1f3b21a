// Package runner executes a loaded script: it runs every group in order,
// launches the group's processes, wires pipelines, races alternatives and
// writes pids and outcomes back into the variable store.
package runner

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/whoosh/internal/argv"
	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/script"
	"github.com/specialistvlad/whoosh/internal/vars"
	"golang.org/x/sync/errgroup"
)

// Runner drives a script through a launcher, reading arguments from and
// writing bindings to a variable store.
type Runner struct {
	store    *vars.Store
	launcher *proc.Launcher

	completed atomic.Int64
}

// New creates a runner.
func New(store *vars.Store, launcher *proc.Launcher) *Runner {
	return &Runner{store: store, launcher: launcher}
}

// Completed returns the number of groups that have finished all their
// repetitions so far. It is safe to call while Run is in progress.
func (r *Runner) Completed() int64 {
	return r.completed.Load()
}

// Run executes every group of s in order. Each group, with all its
// repetitions and waits, completes before the next one starts. A launch
// failure or a cancelled context aborts the run.
func (r *Runner) Run(ctx context.Context, s *script.Script) error {
	logger := ctxlog.FromContext(ctx)

	for _, v := range s.Variables {
		r.store.Declare(v.Name, v.Initial)
	}
	// Slots that are only ever bound read as empty until their first write.
	for name := range s.Declared() {
		r.store.Declare(name, "")
	}

	logger.Info("Script started.", "groups", len(s.Groups), "variables", len(s.Variables))
	for i := range s.Groups {
		if err := r.runGroup(ctx, i, &s.Groups[i]); err != nil {
			return err
		}
		r.completed.Add(1)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("script interrupted: %w", err)
	}

	logger.Info("Script finished.", "groups", len(s.Groups))
	return nil
}

// runGroup repeats a group and dispatches every repetition by mode.
func (r *Runner) runGroup(ctx context.Context, index int, g *script.Group) error {
	label := g.Label(index)
	ctx, logger := ctxlog.With(ctx, "group", label)
	logger.Debug("Group started.", "mode", g.Mode, "repeats", g.Repeats, "commands", len(g.Commands))

	for rep := 0; rep < g.Repeats; rep++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("group %s: %w", label, err)
		}

		var err error
		switch {
		case len(g.Commands) == 1:
			err = r.runSingle(ctx, g)
		case len(g.Commands) > 1 && g.Mode == script.ModeAnd:
			err = r.runPipeline(ctx, g)
		case len(g.Commands) > 1 && g.Mode == script.ModeOr:
			err = r.runRace(ctx, g)
		default:
			err = fmt.Errorf("%w: %d commands in mode %s", script.ErrInvalid, len(g.Commands), g.Mode)
		}
		if err != nil {
			return fmt.Errorf("group %s, repetition %d: %w", label, rep+1, err)
		}
	}

	logger.Debug("Group finished.")
	return nil
}

// launch resolves a command's arguments against the store as it is right
// now, starts the process and binds its pid.
func (r *Runner) launch(ctx context.Context, c *script.Command, spec proc.Spec) (*proc.Process, error) {
	args, err := argv.Resolve(c, r.store)
	if err != nil {
		return nil, err
	}
	spec.Argv = args

	p, err := r.launcher.Start(ctx, spec)
	if err != nil {
		return nil, err
	}
	r.bindPid(ctx, c, p)
	return p, nil
}

func (r *Runner) bindPid(ctx context.Context, c *script.Command, p *proc.Process) {
	if c.PidTo == "" || p.Pid() == 0 {
		return
	}
	r.store.SetInt(c.PidTo, p.Pid())
	ctxlog.FromContext(ctx).Debug("Bound pid.", "variable", c.PidTo, "pid", p.Pid())
}

func (r *Runner) bindResult(ctx context.Context, g *script.Group, outcome proc.Outcome) {
	if g.ResultTo == "" {
		return
	}
	r.store.SetInt(g.ResultTo, int(outcome))
	ctxlog.FromContext(ctx).Debug("Bound result.", "variable", g.ResultTo, "outcome", outcome)
}

// abandon kills and reaps processes of a group that cannot be completed.
func abandon(ctx context.Context, procs []*proc.Process) {
	logger := ctxlog.FromContext(ctx)
	for _, p := range procs {
		if err := p.Kill(); err != nil {
			logger.Warn("Could not kill process.", "error", err)
		}
		_, _ = p.Wait()
	}
}

// await waits for all procs and returns their outcomes in order. If ctx ends
// first, the processes are terminated, reaped in the background, and
// interrupted is true.
func await(ctx context.Context, procs []*proc.Process) ([]proc.Outcome, bool, error) {
	results := make([]proc.Outcome, len(procs))
	var waits errgroup.Group
	for i, p := range procs {
		waits.Go(func() error {
			o, err := p.Wait()
			results[i] = o
			return err
		})
	}

	done := make(chan error, 1)
	go func() { done <- waits.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, false, err
		}
		return results, false, nil
	case <-ctx.Done():
		terminate(ctx, procs, -1)
		return nil, true, nil
	}
}
