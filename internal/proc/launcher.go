package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"golang.org/x/sys/unix"
)

// ErrLaunch marks orchestrator-level failures (process or pipe creation)
// that abort the whole run.
var ErrLaunch = errors.New("launch failed")

// Streams are the standard streams children inherit when they are not
// connected to a pipe.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the orchestrator's own standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Spec describes one process to launch.
type Spec struct {
	// Argv is the resolved argument vector; Argv[0] is the program path and
	// is executed as is, without a PATH search.
	Argv []string
	// Stdin and Stdout, when set, replace the inherited streams.
	Stdin  *os.File
	Stdout *os.File
	// NewProcessGroup starts the child in a process group of its own.
	// Terminate and Kill then signal the whole group, so whatever the
	// child started goes down with it.
	NewProcessGroup bool
}

// Launcher creates child processes.
type Launcher struct {
	streams Streams
	// env is nil so children inherit the orchestrator's environment.
	env []string
}

// NewLauncher returns a launcher whose children inherit the given streams.
func NewLauncher(streams Streams) *Launcher {
	return &Launcher{streams: streams}
}

// Start launches the process described by spec.
//
// An exec failure (missing or non-executable program) is not an error: the
// returned Process has no pid and its Wait reports NotFound or NotExecutable
// immediately. No process exists in that case, so Pid returns 0 and a pid_to
// binding for the command stays unset. Any other failure wraps ErrLaunch.
func (l *Launcher) Start(ctx context.Context, spec Spec) (*Process, error) {
	logger := ctxlog.FromContext(ctx)
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("%w: empty argument vector", ErrLaunch)
	}
	program := spec.Argv[0]

	cmd := &exec.Cmd{
		Path:   program,
		Args:   spec.Argv,
		Env:    l.env,
		Stdin:  l.streams.Stdin,
		Stdout: l.streams.Stdout,
		Stderr: l.streams.Stderr,
	}
	if spec.Stdin != nil {
		cmd.Stdin = spec.Stdin
	}
	if spec.Stdout != nil {
		cmd.Stdout = spec.Stdout
	}
	if spec.NewProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	if err := cmd.Start(); err != nil {
		if outcome, ok := execFailure(err); ok {
			logger.Warn("Program could not be executed.", "program", program, "error", err, "outcome", outcome)
			return &Process{program: program, outcome: outcome}, nil
		}
		return nil, fmt.Errorf("%w: starting %s: %w", ErrLaunch, program, err)
	}

	logger.Debug("Process started.", "program", program, "pid", cmd.Process.Pid, "argc", len(spec.Argv))
	return &Process{program: program, cmd: cmd, group: spec.NewProcessGroup}, nil
}

// execFailure reports whether a start error came from the exec step in the
// child rather than from process creation, and which outcome stands for it.
func execFailure(err error) (Outcome, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return 0, false
	}
	switch errno {
	case unix.ENOENT:
		return NotFound, true
	case unix.EACCES, unix.EPERM, unix.ENOEXEC, unix.ENOTDIR, unix.EISDIR,
		unix.ELOOP, unix.ENAMETOOLONG, unix.ETXTBSY:
		return NotExecutable, true
	default:
		return 0, false
	}
}

// Process is a launched command.
type Process struct {
	program string
	cmd     *exec.Cmd
	// outcome is fixed up front when the program could not be executed.
	outcome Outcome
	// group is set when the process leads a process group of its own.
	group bool
}

// Program returns the program path the process was launched with.
func (p *Process) Program() string {
	return p.program
}

// Pid returns the process id, or 0 when exec failed and no process exists.
func (p *Process) Pid() int {
	if p.cmd == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait blocks until the process exits and returns its outcome. It must be
// called exactly once. An error means the wait itself failed.
func (p *Process) Wait() (Outcome, error) {
	if p.cmd == nil {
		return p.outcome, nil
	}

	err := p.cmd.Wait()
	if p.cmd.ProcessState == nil {
		return 0, fmt.Errorf("waiting for %s: %w", p.program, err)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// The process was reaped but copying its output failed.
		return outcomeOf(p.cmd.ProcessState), fmt.Errorf("collecting output of %s: %w", p.program, err)
	}
	return outcomeOf(p.cmd.ProcessState), nil
}

// Terminate sends SIGTERM to the process, or to its whole process group when
// it was started in one. A process that already exited is not an error.
func (p *Process) Terminate() error {
	return p.signal(unix.SIGTERM)
}

// Kill sends SIGKILL like Terminate.
func (p *Process) Kill() error {
	return p.signal(unix.SIGKILL)
}

func (p *Process) signal(sig unix.Signal) error {
	if p.cmd == nil {
		return nil
	}
	if p.group {
		// The group outlives its leader as long as any member is left.
		if err := unix.Kill(-p.cmd.Process.Pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("signalling process group of %s (pgid %d): %w", p.program, p.Pid(), err)
		}
		return nil
	}
	if err := p.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signalling %s (pid %d): %w", p.program, p.Pid(), err)
	}
	return nil
}

// Alive reports whether a process with the given pid still exists. It is
// meant for diagnostics and tests; a pid may be reused once reaped.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// GroupAlive reports whether any member of process group pgid still exists.
func GroupAlive(pgid int) bool {
	if pgid <= 0 {
		return false
	}
	err := unix.Kill(-pgid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
