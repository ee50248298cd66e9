package server

import (
	"sort"
	"strings"

	"github.com/chazu/vci/compiler"
)

// declaration is a name introduced by var or program.
type declaration struct {
	Name    string
	Program bool
	Tok     compiler.Token // the name token
}

// document is an open file and what the front end found in it.
type document struct {
	text         string
	tokens       []compiler.Token
	declarations map[string]declaration
	diagnostics  []compiler.Diagnostic
}

// analyze runs the lexer, syntax checker and semantic checker over text.
// Semantic diagnostics are only reported for text that is otherwise well
// formed, but declarations are always collected for completion.
func analyze(text string) *document {
	doc := &document{text: text, declarations: make(map[string]declaration)}

	tokens, err := compiler.Tokenize(text)
	doc.tokens = tokens
	doc.diagnostics = append(doc.diagnostics, compiler.Diagnostics(err)...)

	if err := compiler.CheckSyntax(tokens); err != nil {
		doc.diagnostics = append(doc.diagnostics, compiler.Diagnostics(err)...)
	}
	if len(doc.diagnostics) == 0 {
		if err := compiler.CheckSemantics(tokens); err != nil {
			doc.diagnostics = append(doc.diagnostics, compiler.Diagnostics(err)...)
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		kw := tokens[i].Type
		if (kw != compiler.TokenVar && kw != compiler.TokenProgram) || tokens[i+1].Type != compiler.TokenIdentifier {
			continue
		}
		name := tokens[i+1]
		if _, ok := doc.declarations[name.Lexeme]; !ok {
			doc.declarations[name.Lexeme] = declaration{
				Name:    name.Lexeme,
				Program: kw == compiler.TokenProgram,
				Tok:     name,
			}
		}
	}
	return doc
}

// names returns the declared names in sorted order.
func (d *document) names() []string {
	names := make([]string, 0, len(d.declarations))
	for name := range d.declarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// uses returns every identifier token spelled name, declaration included.
func (d *document) uses(name string) []compiler.Token {
	var out []compiler.Token
	for _, tok := range d.tokens {
		if tok.Type == compiler.TokenIdentifier && tok.Lexeme == name {
			out = append(out, tok)
		}
	}
	return out
}

var keywordDocs = map[string]string{
	"and":     "Logical conjunction. Both operands are evaluated.",
	"or":      "Logical disjunction. Both operands are evaluated.",
	"not":     "Logical negation.",
	"if":      "`if cond { ... } else { ... }` runs the first block when cond is true.",
	"else":    "Alternative block of an `if`.",
	"while":   "`while cond { ... }` repeats the block while cond is true.",
	"print":   "`print expr;` writes the value of expr on its own line.",
	"input":   "`input name;` reads a line into name, as a number when it parses as one.",
	"program": "`program name;` declares a program name.",
	"var":     "`var name;` or `var name = expr;` declares a variable.",
	"true":    "Boolean literal.",
	"false":   "Boolean literal.",
	"null":    "The null value.",
}

// keywordDoc describes a reserved word.
func keywordDoc(word string) string {
	if doc, ok := keywordDocs[word]; ok {
		return doc
	}
	return "Reserved word."
}

func lowerHasPrefix(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
