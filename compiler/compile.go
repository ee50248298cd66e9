package compiler

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("vci.compiler")

// Result is the output of a successful compilation.
type Result struct {
	Tokens []Token // the token stream, ending with EOF
	Code   []Token // the VCI
}

// Compiler runs the front end (lexer, syntax check, semantic check) and the
// translator. Its semantic scope persists across Compile calls, so a
// session can compile one line at a time.
type Compiler struct {
	sema       *SemanticAnalyzer
	translator Translator
}

// NewCompiler creates a compiler with an empty scope.
func NewCompiler() *Compiler {
	return &Compiler{sema: NewSemanticAnalyzer()}
}

// Semantics returns the compiler's semantic scope.
func (c *Compiler) Semantics() *SemanticAnalyzer {
	return c.sema
}

// Compile translates src. Any lexical, syntax or semantic error aborts
// before translation.
func (c *Compiler) Compile(src string) (*Result, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	if err := CheckSyntax(tokens); err != nil {
		return nil, err
	}
	if err := c.sema.Analyze(tokens); err != nil {
		return nil, err
	}
	code, err := c.translator.Translate(tokens)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	log.Debugf("compiled %d tokens into %d instructions", len(tokens), len(code))
	return &Result{Tokens: tokens, Code: code}, nil
}

// Compile translates a complete program with a fresh scope.
func Compile(src string) ([]Token, error) {
	res, err := NewCompiler().Compile(src)
	if err != nil {
		return nil, err
	}
	return res.Code, nil
}
