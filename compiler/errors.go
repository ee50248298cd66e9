package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnbalanced is returned by the translator when braces and control
// constructs do not pair up.
var ErrUnbalanced = errors.New("unbalanced control construct")

// Phase names the front-end pass that produced a diagnostic.
type Phase string

const (
	PhaseLexical   Phase = "lexical"
	PhaseSyntax    Phase = "syntax"
	PhaseSemantic  Phase = "semantic"
	PhaseTranslate Phase = "translate"
)

// Diagnostic is a single problem found in the source.
type Diagnostic struct {
	Pos     Position
	Near    string // lexeme the problem was found at, empty for end of input
	Message string
}

func (d Diagnostic) String() string {
	switch {
	case d.Near != "":
		return fmt.Sprintf("[line %d] Error at '%s': %s", d.Pos.Line, d.Near, d.Message)
	default:
		return fmt.Sprintf("[line %d] Error: %s", d.Pos.Line, d.Message)
	}
}

// Error collects the diagnostics of one failed pass.
type Error struct {
	Phase       Phase
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return fmt.Sprintf("%s errors:\n%s", e.Phase, strings.Join(lines, "\n"))
}

// Diagnostics extracts the diagnostics carried by err, if any.
func Diagnostics(err error) []Diagnostic {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Diagnostics
	}
	return nil
}

// diagnosticAt builds a diagnostic positioned at tok.
func diagnosticAt(tok Token, format string, args ...interface{}) Diagnostic {
	d := Diagnostic{Pos: tok.Pos, Message: fmt.Sprintf(format, args...)}
	if tok.Type != TokenEOF {
		d.Near = tok.Lexeme
	}
	return d
}
