// Package proc executes parsed command topologies as OS processes.
//
// Built-ins normally run inside the interpreter. When a topology requires a
// built-in to run in its own process (either stage of a pipeline, or the
// first command of a conditional) the interpreter binary is re-executed with
// a marker in its environment and a state snapshot on descriptor 3; see
// IsReexec, RunReexec and ReadReexecState.
package proc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/josephlewis42/minish/core/shell"
)

// Stdio is the set of standard streams handed to a command.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Builtin runs a command in the calling process. args[0] is the command name.
type Builtin func(stdio Stdio, args []string) int

// Builtins resolves command names to built-ins.
type Builtins interface {
	// LookupBuiltin returns the built-in registered under name, if any.
	LookupBuiltin(name string) (Builtin, bool)

	// ReexecState returns a snapshot handed to a re-executed child so that it
	// can reconstruct the state its built-in reads.
	ReexecState() ([]byte, error)
}

// Dispatcher runs a single command, deciding between built-ins and external
// programs.
type Dispatcher struct {
	Stdio    Stdio
	Builtins Builtins

	// Executable locates the interpreter binary. Defaults to os.Executable.
	Executable func() (string, error)

	// Report prints a diagnostic for a command that failed to start.
	// Defaults to writing "name: error" to Stdio.Stderr.
	Report func(name string, err error)
}

// NewDispatcher creates a dispatcher over the process's own standard streams.
func NewDispatcher(builtins Builtins) *Dispatcher {
	return &Dispatcher{
		Stdio: Stdio{
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		Builtins: builtins,
	}
}

func (d *Dispatcher) lookup(name string) (Builtin, bool) {
	if d.Builtins == nil {
		return nil, false
	}
	return d.Builtins.LookupBuiltin(name)
}

func (d *Dispatcher) report(name string, err error) {
	if d.Report != nil {
		d.Report(name, err)
		return
	}
	if errors.Is(err, exec.ErrNotFound) {
		fmt.Fprintf(d.Stdio.Stderr, "%s: command not found\n", name)
		return
	}
	fmt.Fprintf(d.Stdio.Stderr, "%s: %v\n", name, err)
}

// Dispatch runs spec. Built-ins run synchronously in this process and ignore
// background. External programs are spawned; in the background the child's
// PID is printed and the call returns without waiting.
func (d *Dispatcher) Dispatch(spec shell.CommandSpec, background bool) Outcome {
	if builtin, ok := d.lookup(spec.Name()); ok {
		return Exit(builtin(d.Stdio, spec))
	}

	cmd := d.external(spec, d.Stdio)
	if err := cmd.Start(); err != nil {
		d.report(spec.Name(), err)
		return spawnFailed(err)
	}

	if background {
		pid := cmd.Process.Pid
		fmt.Fprintf(d.Stdio.Stdout, "%d\n", pid)
		go func() {
			// Reap the child so it doesn't linger as a zombie.
			_ = cmd.Wait()
		}()
		return Outcome{Kind: Detached, PID: pid}
	}

	return wait(cmd)
}

// Command builds an unstarted child process for spec wired to stdio. Built-in
// names produce a re-execution of the interpreter, so the built-in's effects
// stay inside the child.
func (d *Dispatcher) Command(spec shell.CommandSpec, stdio Stdio) (*exec.Cmd, error) {
	if _, ok := d.lookup(spec.Name()); ok {
		return d.reexec(spec, stdio)
	}
	return d.external(spec, stdio), nil
}

// start starts cmd, reporting and converting failures. The parent's copies
// of cmd.ExtraFiles are closed once the child has them.
func (d *Dispatcher) start(spec shell.CommandSpec, cmd *exec.Cmd, err error) (*exec.Cmd, Outcome, bool) {
	if err == nil {
		err = cmd.Start()
		for _, f := range cmd.ExtraFiles {
			f.Close()
		}
	}
	if err != nil {
		d.report(spec.Name(), err)
		return nil, spawnFailed(err), false
	}
	return cmd, Outcome{}, true
}

func (d *Dispatcher) external(spec shell.CommandSpec, stdio Stdio) *exec.Cmd {
	cmd := exec.Command(spec.Name(), spec.Args()...)
	setStdio(cmd, stdio)
	return cmd
}

func setStdio(cmd *exec.Cmd, stdio Stdio) {
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
}
