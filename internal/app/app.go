package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/specialistvlad/whoosh/internal/runner"
	"github.com/specialistvlad/whoosh/internal/script"
	"github.com/specialistvlad/whoosh/internal/vars"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	streams proc.Streams
	logger  *slog.Logger
	config  *Config
	loader  script.Loader

	store  *vars.Store
	runner *runner.Runner

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Children inherit
// streams; the app's own logs and reports go to streams.Stderr so that
// stdout stays with the scripted processes.
func NewApp(streams proc.Streams, cfg *Config, loader script.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, streams.Stderr)
	logger.Debug("Logger configured successfully.")

	store := vars.New()
	return &App{
		streams: streams,
		logger:  logger,
		config:  cfg,
		loader:  loader,
		store:   store,
		runner:  runner.New(store, proc.NewLauncher(streams)),
	}
}

// Store returns the application's variable store. This is primarily for testing.
func (a *App) Store() *vars.Store {
	return a.store
}

// load reads and validates the configured script.
func (a *App) load(ctx context.Context) (*script.Script, error) {
	logger := ctxlog.FromContext(ctx)

	s, err := a.loader.Load(ctx, a.config.ScriptPath)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Script loaded and validated.", "path", a.config.ScriptPath, "groups", len(s.Groups))
	return s, nil
}
