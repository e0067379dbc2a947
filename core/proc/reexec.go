package proc

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/josephlewis42/minish/core/shell"
)

const (
	// EnvReexec marks a process as a re-executed interpreter that must run the
	// built-in named by its arguments and exit.
	EnvReexec = "MINISH_REEXEC"

	// ReexecStateFD is the descriptor a re-executed child reads its state
	// snapshot from. It is the first of exec.Cmd.ExtraFiles.
	ReexecStateFD = 3
)

// IsReexec reports whether the current process was started by reexec.
func IsReexec() bool {
	return os.Getenv(EnvReexec) == "1"
}

// RunReexec runs the built-in in args on the process's standard streams and
// returns its status. main calls this before doing anything else when
// IsReexec is true.
func RunReexec(builtins Builtins, args []string) int {
	stdio := Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if len(args) == 0 {
		fmt.Fprintln(stdio.Stderr, "reexec: missing built-in name")
		return 1
	}

	builtin, ok := builtins.LookupBuiltin(args[0])
	if !ok {
		fmt.Fprintf(stdio.Stderr, "%s: not a shell builtin\n", args[0])
		return 1
	}
	return builtin(stdio, args)
}

// ReadReexecState reads the snapshot the parent passed to a re-executed
// child. Call it at most once.
func ReadReexecState() ([]byte, error) {
	f := os.NewFile(ReexecStateFD, "reexec-state")
	if f == nil {
		return nil, fmt.Errorf("reexec state: descriptor %d unavailable", ReexecStateFD)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reexec state: %w", err)
	}
	return data, nil
}

func (d *Dispatcher) reexec(spec shell.CommandSpec, stdio Stdio) (*exec.Cmd, error) {
	executable := d.Executable
	if executable == nil {
		executable = os.Executable
	}
	self, err := executable()
	if err != nil {
		return nil, fmt.Errorf("locate interpreter: %w", err)
	}

	var state []byte
	if d.Builtins != nil {
		if state, err = d.Builtins.ReexecState(); err != nil {
			return nil, fmt.Errorf("snapshot state: %w", err)
		}
	}
	snapshot, err := stateFile(state)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(self, spec...)
	cmd.Env = append(os.Environ(), EnvReexec+"=1")
	cmd.ExtraFiles = []*os.File{snapshot}
	setStdio(cmd, stdio)
	return cmd, nil
}

// stateFile writes state to an unlinked temporary file positioned at its
// start. The environment is not used because the kernel caps the size of a
// single variable.
func stateFile(state []byte) (*os.File, error) {
	f, err := os.CreateTemp("", "minish-state-*")
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	os.Remove(f.Name())

	if _, err := f.Write(state); err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return f, nil
}
