package proc

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

type testBuiltins map[string]Builtin

func (b testBuiltins) LookupBuiltin(name string) (Builtin, bool) {
	builtin, ok := b[name]
	return builtin, ok
}

// reexecState is what re-executed fake built-ins receive from the parent.
var reexecState = []byte("from-parent")

func (b testBuiltins) ReexecState() ([]byte, error) {
	return reexecState, nil
}

var fakeBuiltins = testBuiltins{
	"chdir": func(stdio Stdio, args []string) int {
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return 1
		}
		return 0
	},
	"where": func(stdio Stdio, args []string) int {
		wd, err := os.Getwd()
		if err != nil {
			return 1
		}
		fmt.Fprintln(stdio.Stdout, wd)
		return 0
	},
	"fail": func(stdio Stdio, args []string) int {
		return 3
	},
	"mark": func(stdio Stdio, args []string) int {
		state, err := ReadReexecState()
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return 1
		}
		if len(state) > 64 {
			fmt.Fprintf(stdio.Stdout, "%d bytes\n", len(state))
			return 0
		}
		fmt.Fprintln(stdio.Stdout, string(state))
		return 0
	},
	"upper": func(stdio Stdio, args []string) int {
		data, err := io.ReadAll(stdio.Stdin)
		if err != nil {
			return 1
		}
		fmt.Fprint(stdio.Stdout, strings.ToUpper(string(data)))
		return 0
	},
}

func TestMain(m *testing.M) {
	// Pipelines and conditionals re-execute the test binary to run built-ins.
	if IsReexec() {
		os.Exit(RunReexec(fakeBuiltins, os.Args[1:]))
	}
	os.Exit(m.Run())
}
