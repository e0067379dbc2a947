package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// ListBuiltins returns the registered built-in names in sorted order.
func ListBuiltins() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:     "cd [DIR]",
		Short:   "Change the shell working directory, HOME by default.",
		MaxArgs: len(args),
	}

	return cmd.Run(s, args, func(dirs []string) int {
		// Arguments after the first are ignored.
		var dir string
		if len(dirs) > 0 {
			dir = dirs[0]
		} else if dir = os.Getenv(EnvHome); dir == "" {
			s.Errorf("%s: HOME not set\n", args[0])
			return 1
		}

		if err := os.Chdir(dir); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = fmt.Errorf("%s: %w", pathErr.Path, pathErr.Err)
			}
			s.Errorf("%s: %v\n", args[0], err)
			return 1
		}

		if wd, err := os.Getwd(); err == nil {
			os.Setenv(EnvPWD, wd)
		}
		return 0
	})
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:     "pwd",
		Short:   "Print the name of the current working directory.",
		MaxArgs: len(args),
	}

	return cmd.Run(s, args, func([]string) int {
		wd, err := os.Getwd()
		if err != nil {
			s.Errorf("%s: %v\n", args[0], err)
			return 1
		}
		fmt.Fprintln(s.Stdout(), wd)
		return 0
	})
}

// History displays or clears the history list.
func History(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:   "history [-c]",
		Short: "Display the history list with line numbers.",
	}
	clear := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(s, args, func([]string) int {
		if *clear {
			s.History.Clear()
			if s.readline != nil {
				s.readline.ResetHistory()
			}
			return 0
		}

		if _, err := s.History.WriteTo(s.Stdout()); err != nil {
			s.Errorf("%s: %v\n", args[0], err)
			return 1
		}
		return 0
	})
}

// Exit quits the shell
func Exit(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:     "exit",
		Short:   "Exit the shell with status 0. Arguments are ignored.",
		MaxArgs: len(args),
	}

	return cmd.Run(s, args, func([]string) int {
		s.exit(0)
		return 0
	})
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
}
