package proc

import (
	"os"
	"strconv"
	"syscall"
)

// Outcome is the representative result of a process: its exit code when it
// exited normally, or the negated signal number when a signal killed it.
type Outcome int

const (
	// NotExecutable is reported when the program exists but could not be
	// executed.
	NotExecutable Outcome = 126
	// NotFound is reported when the program does not exist.
	NotFound Outcome = 127
	// Interrupted is recorded for a race cancelled before any competitor
	// finished. It lies below every negated signal number.
	Interrupted Outcome = -256
)

// Signaled reports whether the process was killed by a signal, and which.
func (o Outcome) Signaled() (syscall.Signal, bool) {
	if o < 0 && o > Interrupted {
		return syscall.Signal(-o), true
	}
	return 0, false
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Interrupted {
		return "interrupted"
	}
	if sig, ok := o.Signaled(); ok {
		return "signal " + sig.String()
	}
	return "exit " + strconv.Itoa(int(o))
}

// outcomeOf converts the state of a reaped process into an Outcome.
func outcomeOf(ps *os.ProcessState) Outcome {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Outcome(-int(ws.Signal()))
	}
	return Outcome(ps.ExitCode())
}
