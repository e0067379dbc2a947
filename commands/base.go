package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/term"

	"github.com/josephlewis42/minish/core/config"
)

// SimpleCommand holds the flag handling shared by the built-ins.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// MaxArgs is the number of positional arguments accepted after flags.
	MaxArgs int

	showHelp *bool
	flags    *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses args, if flag parsing was successful call the callback with the
// remaining positional arguments.
func (s *SimpleCommand) Run(sh *Shell, args []string, callback func(args []string) int) int {
	opts := s.Flags()
	if s.showHelp == nil {
		s.showHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(args, nil)
	if err == nil && len(opts.Args()) > s.MaxArgs {
		err = fmt.Errorf("unexpected argument %q", opts.Args()[s.MaxArgs])
	}

	if err != nil {
		sh.Errorf("%s: %v\n", args[0], err)
		s.PrintHelp(sh.Stderr())
		return 1
	}

	if *s.showHelp {
		s.PrintHelp(sh.Stdout())
		return 0
	}

	return callback(opts.Args())
}

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

// ColorPrinter colors output depending on the configured mode and whether
// the destination is a terminal.
type ColorPrinter struct {
	Mode string
	w    io.Writer
}

// NewColorPrinter creates a printer deciding color for output written to w.
func NewColorPrinter(mode string, w io.Writer) *ColorPrinter {
	return &ColorPrinter{Mode: mode, w: w}
}

func (c *ColorPrinter) ShouldColor() bool {
	switch c.Mode {
	case config.ColorNever:
		return false
	case config.ColorAlways:
		return true
	default:
		return IsTerminal(c.w)
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		// fatih/color disables itself when os.Stdout isn't a TTY.
		color.EnableColor()
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
