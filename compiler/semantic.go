package compiler

// ---------------------------------------------------------------------------
// Semantic checker: declaration-before-use over the flat token stream
// ---------------------------------------------------------------------------

// SemanticAnalyzer checks that every identifier is declared before it is
// used and that no name is declared twice. It keeps its scope across calls
// to Analyze so an interactive session can feed it one line at a time.
type SemanticAnalyzer struct {
	diags []Diagnostic

	// Declared names and the line they were declared on
	variables map[string]int
	programs  map[string]int
}

// NewSemanticAnalyzer creates a new semantic analyzer.
func NewSemanticAnalyzer() *SemanticAnalyzer {
	return &SemanticAnalyzer{
		variables: make(map[string]int),
		programs:  make(map[string]int),
	}
}

// Declare registers a variable declared outside the analyzed tokens.
func (s *SemanticAnalyzer) Declare(name string, line int) {
	s.variables[name] = line
}

// Variables returns the declared variable names with their declaration line.
func (s *SemanticAnalyzer) Variables() map[string]int {
	return s.variables
}

// Programs returns the declared program names with their declaration line.
func (s *SemanticAnalyzer) Programs() map[string]int {
	return s.programs
}

func (s *SemanticAnalyzer) errorAt(tok Token, format string, args ...interface{}) {
	s.diags = append(s.diags, diagnosticAt(tok, format, args...))
}

// Analyze checks tokens, adding their declarations to the analyzer's scope.
// Declarations made by a failing call are discarded.
func (s *SemanticAnalyzer) Analyze(tokens []Token) error {
	s.diags = nil
	var addedVars, addedPrograms []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case TokenVar:
			if i+1 >= len(tokens) || tokens[i+1].Type != TokenIdentifier {
				s.errorAt(tok, "Expect variable name after 'var'.")
				continue
			}
			name := tokens[i+1]
			i++
			if _, ok := s.variables[name.Lexeme]; ok {
				s.errorAt(name, "Variable already declared: %s", name.Lexeme)
				continue
			}
			if _, ok := s.programs[name.Lexeme]; ok {
				s.errorAt(name, "Name already used by program: %s", name.Lexeme)
				continue
			}
			s.variables[name.Lexeme] = name.Line()
			addedVars = append(addedVars, name.Lexeme)

		case TokenProgram:
			if i+1 >= len(tokens) || tokens[i+1].Type != TokenIdentifier {
				s.errorAt(tok, "Expect program name after 'program'.")
				continue
			}
			name := tokens[i+1]
			i++
			if _, ok := s.programs[name.Lexeme]; ok {
				s.errorAt(name, "Program already declared: %s", name.Lexeme)
				continue
			}
			if _, ok := s.variables[name.Lexeme]; ok {
				s.errorAt(name, "Name already used by variable: %s", name.Lexeme)
				continue
			}
			s.programs[name.Lexeme] = name.Line()
			addedPrograms = append(addedPrograms, name.Lexeme)

		case TokenIdentifier:
			if _, ok := s.variables[tok.Lexeme]; !ok {
				s.errorAt(tok, "Undefined variable: %s", tok.Lexeme)
			}
		}
	}
	if len(s.diags) > 0 {
		for _, name := range addedVars {
			delete(s.variables, name)
		}
		for _, name := range addedPrograms {
			delete(s.programs, name)
		}
		return &Error{Phase: PhaseSemantic, Diagnostics: s.diags}
	}
	return nil
}

// CheckSemantics runs a fresh analyzer over tokens.
func CheckSemantics(tokens []Token) error {
	return NewSemanticAnalyzer().Analyze(tokens)
}
