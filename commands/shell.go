package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/abiosoft/readline"

	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/history"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/proc"
	"github.com/josephlewis42/minish/core/shell"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
)

// reexecState is the part of the shell a re-executed built-in needs.
type reexecState struct {
	Color   string          `json:"color"`
	History json.RawMessage `json:"history"`
}

// Shell is the interpreter: it reads lines, runs them and keeps the history.
type Shell struct {
	Config       *config.Configuration
	History      *history.History
	Parser       *shell.Parser
	Orchestrator *proc.Orchestrator
	Events       *logger.SessionLogger
	Logger       *log.Logger

	stdio     proc.Stdio
	promptClr *ColorPrinter
	errClr    *ColorPrinter
	readline  *readline.Instance

	// exit ends the interpreter process. Defaults to os.Exit.
	exit func(code int)
}

var _ proc.Builtins = (*Shell)(nil)

// NewShell creates an interpreter bound to stdio. events may be nil to skip
// the event log.
func NewShell(cfg *config.Configuration, stdio proc.Stdio, events *logger.SessionLogger) *Shell {
	if events == nil {
		events = logger.NopLogger().NewSession()
	}

	s := &Shell{
		Config:    cfg,
		History:   history.New(cfg.HistorySize),
		Parser:    shell.NewParser(cfg.MaxArgs),
		Events:    events,
		Logger:    log.Default(),
		stdio:     stdio,
		promptClr: NewColorPrinter(cfg.Color, stdio.Stdout),
		errClr:    NewColorPrinter(cfg.Color, stdio.Stderr),
		exit:      os.Exit,
	}

	dispatcher := proc.NewDispatcher(s)
	dispatcher.Stdio = stdio
	dispatcher.Report = s.reportSpawnError
	s.Orchestrator = proc.NewOrchestrator(dispatcher)

	return s
}

func (s *Shell) Stdin() io.Reader {
	return s.stdio.Stdin
}

func (s *Shell) Stdout() io.Writer {
	return s.stdio.Stdout
}

func (s *Shell) Stderr() io.Writer {
	return s.stdio.Stderr
}

// Errorf writes a diagnostic to stderr, bold red when color is enabled.
func (s *Shell) Errorf(format string, a ...interface{}) {
	fmt.Fprint(s.stdio.Stderr, s.errClr.Sprintf(ColorBoldRed, format, a...))
}

func (s *Shell) reportSpawnError(name string, err error) {
	if errors.Is(err, exec.ErrNotFound) {
		s.Errorf("%s: command not found\n", name)
		return
	}
	s.Errorf("%s: %v\n", name, err)
}

// Prompt returns the configured prompt, colored if enabled.
func (s *Shell) Prompt() string {
	return s.promptClr.Sprintf(ColorBoldGreen, "%s", s.Config.Prompt)
}

// LookupBuiltin implements proc.Builtins. The returned built-in runs against
// this shell with its streams replaced by the ones it is given.
func (s *Shell) LookupBuiltin(name string) (proc.Builtin, bool) {
	builtin, ok := AllBuiltins[name]
	if !ok {
		return nil, false
	}

	return func(stdio proc.Stdio, args []string) int {
		view := *s
		view.stdio = stdio
		view.errClr = NewColorPrinter(s.Config.Color, stdio.Stderr)
		return builtin.Main(&view, args)
	}, true
}

// ReexecState implements proc.Builtins. It passes the history down so that
// `history` run in a child prints the same list, and the color mode so its
// diagnostics match the parent's.
func (s *Shell) ReexecState() ([]byte, error) {
	entries, err := s.History.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(reexecState{
		Color:   s.Config.Color,
		History: entries,
	})
}

func (s *Shell) truncate(line string) string {
	if limit := s.Config.MaxLineLength; limit > 0 && len(line) > limit {
		return line[:limit]
	}
	return line
}

// RunLine executes one input line and returns its exit status.
func (s *Shell) RunLine(line string) int {
	line = s.truncate(line)
	s.History.Append(line)

	start := time.Now()
	topo, err := s.Parser.Parse(line)
	if errors.Is(err, shell.ErrNoop) {
		return 0
	}
	if err != nil {
		s.Errorf("minish: %v\n", err)
		return 1
	}

	outcome := s.Orchestrator.Run(topo)
	s.logCommand(line, topo, outcome, time.Since(start))
	return outcome.Status()
}

func (s *Shell) logCommand(line string, topo shell.Topology, outcome proc.Outcome, elapsed time.Duration) {
	var programs []string
	for _, spec := range topo.Specs() {
		programs = append(programs, spec.Name())
	}

	err := s.Events.LogCommand(logger.Command{
		Line:     line,
		Topology: topo.Kind(),
		Programs: programs,
		Outcome:  outcome.Kind.String(),
		Status:   outcome.Status(),
		PID:      outcome.PID,
		Duration: elapsed,
	})
	if err != nil {
		s.Logger.Printf("record command: %v", err)
	}
}

// Run reads and executes lines until end of input. Terminals get a readline
// prompt; other input is read line by line without one.
func (s *Shell) Run() int {
	if !IsTerminal(s.stdio.Stdin) {
		return s.runScript()
	}

	cfg := &readline.Config{
		Prompt:       s.Prompt(),
		HistoryLimit: s.Config.HistorySize,
		Stdin:        readline.NewCancelableStdin(s.stdio.Stdin),
		Stdout:       s.stdio.Stdout,
		Stderr:       s.stdio.Stderr,
		FuncIsTerminal: func() bool {
			return true
		},
	}
	if err := cfg.Init(); err != nil {
		s.Errorf("minish: %v\n", err)
		return 1
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		s.Errorf("minish: %v\n", err)
		return 1
	}
	defer rl.Close()
	s.readline = rl

	for {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return 0
		case err != nil:
			s.Errorf("minish: %v\n", err)
			return 1
		}

		s.RunLine(line)
	}
}

func (s *Shell) runScript() int {
	r := bufio.NewReader(s.stdio.Stdin)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			s.RunLine(strings.TrimSuffix(line, "\n"))
		}
		switch {
		case errors.Is(err, io.EOF):
			return 0
		case err != nil:
			s.Errorf("minish: %v\n", err)
			return 1
		}
	}
}

// RunReexec runs the built-in named by args[0] in a re-executed interpreter,
// restoring the state its parent passed down.
func RunReexec(args []string) int {
	cfg := config.Default()
	state, err := readReexecState()
	if err != nil {
		log.Printf("restore shell state: %v", err)
	} else if state.Color != "" {
		cfg.Color = state.Color
	}

	s := NewShell(cfg, proc.Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}, nil)
	if err == nil && len(state.History) > 0 {
		restored, err := history.Restore(0, state.History)
		if err != nil {
			s.Logger.Printf("restore history: %v", err)
		} else {
			s.History = restored
		}
	}

	return proc.RunReexec(s, args)
}

func readReexecState() (*reexecState, error) {
	data, err := proc.ReadReexecState()
	if err != nil {
		return nil, err
	}

	var state reexecState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
