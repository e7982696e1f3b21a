package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/whoosh/internal/app"
	"github.com/specialistvlad/whoosh/internal/hclscript"
	"github.com/specialistvlad/whoosh/internal/proc"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes returned through ExitError.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// options collects the flag values shared by all commands.
type options struct {
	logLevel        string
	logFormat       string
	healthcheckPort int
	printVars       bool
}

func (o *options) config(scriptPath string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ScriptPath:      scriptPath,
		LogLevel:        o.logLevel,
		LogFormat:       o.logFormat,
		HealthcheckPort: o.healthcheckPort,
		PrintVars:       o.printVars,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// scriptArg accepts exactly one script path and reports anything else as a
// usage error.
func scriptArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the whoosh command tree. Scripted processes inherit
// streams; help goes to streams.Stdout and diagnostics to streams.Stderr.
func NewRootCommand(streams proc.Streams) *cobra.Command {
	opts := &options{}
	newApp := func(cfg *app.Config) *app.App {
		return app.NewApp(streams, cfg, hclscript.NewLoader(afero.NewOsFs()))
	}

	root := &cobra.Command{
		Use:   "whoosh [flags] SCRIPT",
		Short: "Run groups of processes as sequences, pipelines and races",
		Long: `whoosh runs a script of process groups.

SCRIPT is a single .hcl file or a directory of .hcl files, loaded in
lexical order. Each group runs its commands as a single process, an AND
pipeline (stdout to stdin) or an OR race (first to exit wins), and may
bind process ids and exit outcomes to variables used by later groups.`,
		Args:          scriptArg,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args[0])
			if err != nil {
				return err
			}
			return newApp(cfg).Run(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Logging level: debug, info, warn or error.")
	flags.StringVar(&opts.logFormat, "log-format", "auto", "Log format: text, json or auto (text on a terminal).")
	root.Flags().IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	root.Flags().BoolVar(&opts.printVars, "print-vars", false, "Print the final variables to stderr after the run.")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	root.SetOut(streams.Stdout)
	root.SetErr(streams.Stderr)

	root.AddCommand(&cobra.Command{
		Use:   "plan SCRIPT",
		Short: "Print the groups and commands of a script without running them",
		Args:  scriptArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args[0])
			if err != nil {
				return err
			}
			return newApp(cfg).Plan(cmd.Context(), cmd.OutOrStdout())
		},
	})

	return root
}

// Execute runs the command line in args and translates the outcome into an
// ExitError carrying the process exit code, or nil on success.
func Execute(ctx context.Context, args []string, streams proc.Streams) error {
	root := NewRootCommand(streams)
	root.SetArgs(args)
	return exitError(root.ExecuteContext(ctx))
}

func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitInterrupted, Message: fmt.Sprintf("interrupted: %v", err)}
	default:
		return &ExitError{Code: ExitFailure, Message: err.Error()}
	}
}
