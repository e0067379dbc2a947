package proc

import (
	"fmt"
	"os"

	"github.com/josephlewis42/minish/core/shell"
)

// Orchestrator executes a Topology. It is the only place that decides which
// commands run in a child process and which run in the interpreter itself:
//
//   - Standalone: built-ins in process, externals in a child.
//   - Pipeline: both stages in children joined by an OS pipe.
//   - Conditional: the first command in a child, the second in process.
type Orchestrator struct {
	*Dispatcher
}

// NewOrchestrator wraps a dispatcher.
func NewOrchestrator(d *Dispatcher) *Orchestrator {
	return &Orchestrator{Dispatcher: d}
}

// Run executes topo and returns its outcome.
func (o *Orchestrator) Run(topo shell.Topology) Outcome {
	switch t := topo.(type) {
	case shell.Standalone:
		return o.Dispatch(t.Spec, t.Background)
	case shell.Pipeline:
		return o.runPipeline(t)
	case shell.Conditional:
		return o.runConditional(t)
	default:
		return spawnFailed(fmt.Errorf("unknown topology %T", topo))
	}
}

// runPipeline always waits for both stages; the outcome is the right
// stage's.
func (o *Orchestrator) runPipeline(t shell.Pipeline) Outcome {
	r, w, err := os.Pipe()
	if err != nil {
		o.report("pipe", err)
		return spawnFailed(err)
	}

	// Children receive dups of r and w as their stdio. Every other descriptor
	// is close-on-exec, so neither child holds the end it doesn't use.
	leftCmd, err := o.Command(t.Left, Stdio{Stdin: o.Stdio.Stdin, Stdout: w, Stderr: o.Stdio.Stderr})
	left, _, leftStarted := o.start(t.Left, leftCmd, err)

	rightCmd, err := o.Command(t.Right, Stdio{Stdin: r, Stdout: o.Stdio.Stdout, Stderr: o.Stdio.Stderr})
	right, rightOutcome, rightStarted := o.start(t.Right, rightCmd, err)

	// The reader sees EOF only once every write end is closed, including ours.
	r.Close()
	w.Close()

	if leftStarted {
		wait(left)
	}
	if rightStarted {
		rightOutcome = wait(right)
	}
	return rightOutcome
}

func (o *Orchestrator) runConditional(t shell.Conditional) Outcome {
	firstCmd, err := o.Command(t.First, o.Stdio)
	first, outcome, started := o.start(t.First, firstCmd, err)
	if !started {
		return outcome
	}

	if outcome = wait(first); !outcome.Success() {
		return outcome
	}

	return o.Dispatch(t.Second, false)
}
