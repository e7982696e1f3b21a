package app

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/script"
)

// Run loads the configured script and executes it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	s, err := a.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(ctx, a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}

	runErr := a.runner.Run(ctx, s)

	if a.config.PrintVars {
		if err := a.printVars(a.streams.Stderr); err != nil {
			a.logger.Warn("Could not print variables.", "error", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Plan loads the configured script and writes its plan to w without running
// anything.
func (a *App) Plan(ctx context.Context, w io.Writer) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	s, err := a.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	return script.Format(w, s)
}

// printVars writes the final store as sorted name=value lines.
func (a *App) printVars(w io.Writer) error {
	snapshot := a.store.Snapshot()
	for _, name := range slices.Sorted(maps.Keys(snapshot)) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, snapshot[name]); err != nil {
			return err
		}
	}
	return nil
}
