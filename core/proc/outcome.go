package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Kind classifies how a command finished.
type Kind int

const (
	// Exited means the command ran to completion and returned Code.
	Exited Kind = iota
	// Signaled means the command was killed by Signal.
	Signaled
	// SpawnFailed means no process could be started; Err holds the reason.
	SpawnFailed
	// Detached means a background process was started and not waited on.
	Detached
)

func (k Kind) String() string {
	switch k {
	case Exited:
		return "exited"
	case Signaled:
		return "signaled"
	case SpawnFailed:
		return "spawn_failed"
	case Detached:
		return "detached"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of running one command.
type Outcome struct {
	Kind Kind

	// Code is the exit code when Kind is Exited.
	Code int
	// Signal is the terminating signal when Kind is Signaled.
	Signal syscall.Signal
	// PID is the process ID of a Detached command.
	PID int
	// Err is the reason a command couldn't be spawned.
	Err error
}

// Success reports whether the command exited cleanly with status 0.
func (o Outcome) Success() bool {
	return o.Kind == Exited && o.Code == 0
}

// Status converts the outcome to a shell exit status: the exit code, 128 plus
// the signal number for signals, 1 for spawn failures and 0 for background
// commands.
func (o Outcome) Status() int {
	switch o.Kind {
	case Exited:
		return o.Code
	case Signaled:
		return 128 + int(o.Signal)
	case Detached:
		return 0
	default:
		return 1
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Exited:
		return fmt.Sprintf("exit status %d", o.Code)
	case Signaled:
		return fmt.Sprintf("signal: %v", o.Signal)
	case Detached:
		return fmt.Sprintf("background pid %d", o.PID)
	default:
		return fmt.Sprintf("spawn failed: %v", o.Err)
	}
}

// Exit builds the outcome of a command that returned code.
func Exit(code int) Outcome {
	return Outcome{Kind: Exited, Code: code}
}

func spawnFailed(err error) Outcome {
	return Outcome{Kind: SpawnFailed, Err: err}
}

func fromState(ps *os.ProcessState) Outcome {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Outcome{Kind: Signaled, Signal: ws.Signal()}
	}
	return Exit(ps.ExitCode())
}

// wait blocks until cmd finishes and translates its wait status.
func wait(cmd *exec.Cmd) Outcome {
	err := cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return fromState(exitErr.ProcessState)
	case cmd.ProcessState != nil:
		// I/O copy errors still leave a valid wait status.
		return fromState(cmd.ProcessState)
	default:
		return spawnFailed(err)
	}
}
