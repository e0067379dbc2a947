// Package shell turns a line of input into a process topology.
//
// The grammar is deliberately small: words are separated by spaces and
// newlines, a single `|` splits a line into a two stage pipeline, `&&` splits
// it into a conditional pair, and a trailing `&` token runs a lone command in
// the background. There is no quoting, escaping, expansion or redirection.
//
// Only the first operator on a line is honoured. Anything after it, including
// further operators, is tokenized into the second command verbatim.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	OpPipe       = "|"
	OpAnd        = "&&"
	OpBackground = "&"

	// DefaultMaxArgs is the number of tokens kept per command when the caller
	// doesn't configure one.
	DefaultMaxArgs = 10
)

// ErrNoop is returned when a line has no program to run.
var ErrNoop = errors.New("empty command")

// SyntaxError reports an operator without a command after it.
type SyntaxError struct {
	Near string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Near)
}

// Family is the kind of topology a line will produce.
type Family int

const (
	FamilySimple Family = iota
	FamilyPipeline
	FamilyConditional
)

func (f Family) String() string {
	switch f {
	case FamilySimple:
		return "simple"
	case FamilyPipeline:
		return "pipeline"
	case FamilyConditional:
		return "conditional"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n'
}

// Tokenize splits s on spaces and newlines, keeping at most max tokens.
// Tokens past the limit are dropped. A max below one keeps nothing.
func Tokenize(s string, max int) []string {
	if max < 1 {
		return nil
	}
	tokens := make([]string, 0, max)
	for _, tok := range strings.FieldsFunc(s, isSpace) {
		if len(tokens) == max {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Detect classifies a line. A pipe anywhere wins over `&&`.
func Detect(line string) Family {
	switch {
	case strings.Contains(line, OpPipe):
		return FamilyPipeline
	case strings.Contains(line, OpAnd):
		return FamilyConditional
	default:
		return FamilySimple
	}
}

// Parser builds topologies from input lines.
type Parser struct {
	// MaxArgs bounds the tokens kept for each command.
	MaxArgs int
}

// NewParser creates a parser keeping at most maxArgs tokens per command.
func NewParser(maxArgs int) *Parser {
	if maxArgs < 1 {
		maxArgs = DefaultMaxArgs
	}
	return &Parser{MaxArgs: maxArgs}
}

// Parse converts line into a Topology. It returns ErrNoop when the line has
// no primary command and a *SyntaxError when an operator has nothing after it.
func (p *Parser) Parse(line string) (Topology, error) {
	switch Detect(line) {
	case FamilyPipeline:
		return p.parsePipeline(line)
	case FamilyConditional:
		return p.parseConditional(line)
	default:
		return p.parseSimple(line)
	}
}

func (p *Parser) parsePipeline(line string) (Topology, error) {
	idx := strings.Index(line, OpPipe)
	left := CommandSpec(Tokenize(line[:idx], p.MaxArgs))
	right := CommandSpec(Tokenize(line[idx+len(OpPipe):], p.MaxArgs))

	if len(left) == 0 {
		return nil, ErrNoop
	}
	if len(right) == 0 {
		return nil, &SyntaxError{Near: OpPipe}
	}
	return Pipeline{Left: left, Right: right}, nil
}

// parseConditional splits at the first `&` and then skips exactly one more
// byte, which is the second `&` for well formed input. A stray single `&`
// earlier in the line therefore eats the byte after it.
func (p *Parser) parseConditional(line string) (Topology, error) {
	idx := strings.Index(line, OpBackground)
	rest := line[idx+len(OpBackground):]
	if len(rest) > 0 {
		rest = rest[1:]
	}

	first := CommandSpec(Tokenize(line[:idx], p.MaxArgs))
	second := CommandSpec(Tokenize(rest, p.MaxArgs))

	if len(first) == 0 {
		return nil, ErrNoop
	}
	if len(second) == 0 {
		return nil, &SyntaxError{Near: OpAnd}
	}
	return Conditional{First: first, Second: second}, nil
}

func (p *Parser) parseSimple(line string) (Topology, error) {
	var (
		spec       CommandSpec
		background bool
	)
	for _, tok := range Tokenize(line, p.MaxArgs) {
		if tok == OpBackground {
			background = true
			break
		}
		spec = append(spec, tok)
	}

	if len(spec) == 0 {
		return nil, ErrNoop
	}
	return Standalone{Spec: spec, Background: background}, nil
}
