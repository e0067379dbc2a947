package shell

import "strings"

// CommandSpec is an argv-style command: the program name followed by its
// arguments. A CommandSpec that reaches the orchestrator is never empty.
type CommandSpec []string

// Name returns the program name, or the empty string for an empty spec.
func (c CommandSpec) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments following the program name.
func (c CommandSpec) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

func (c CommandSpec) String() string {
	return strings.Join(c, " ")
}

// Topology describes how one or two commands parsed from a line are combined.
// Exactly one of Standalone, Pipeline or Conditional is produced per line.
type Topology interface {
	// Kind is a short, stable name for the topology used in logs.
	Kind() string

	// Specs lists the commands in the topology in execution order.
	Specs() []CommandSpec

	isTopology()
}

// Standalone runs a single command, optionally without waiting for it.
type Standalone struct {
	Spec       CommandSpec
	Background bool
}

// Pipeline connects Left's standard output to Right's standard input.
type Pipeline struct {
	Left  CommandSpec
	Right CommandSpec
}

// Conditional runs Second only if First exits cleanly with status 0.
type Conditional struct {
	First  CommandSpec
	Second CommandSpec
}

func (Standalone) Kind() string  { return "standalone" }
func (Pipeline) Kind() string    { return "pipeline" }
func (Conditional) Kind() string { return "conditional" }

func (t Standalone) Specs() []CommandSpec  { return []CommandSpec{t.Spec} }
func (t Pipeline) Specs() []CommandSpec    { return []CommandSpec{t.Left, t.Right} }
func (t Conditional) Specs() []CommandSpec { return []CommandSpec{t.First, t.Second} }

func (Standalone) isTopology()  {}
func (Pipeline) isTopology()    {}
func (Conditional) isTopology() {}

var (
	_ Topology = Standalone{}
	_ Topology = Pipeline{}
	_ Topology = Conditional{}
)
