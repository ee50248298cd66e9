package compiler

import (
	"strings"
	"testing"
)

func analyze(t *testing.T, s *SemanticAnalyzer, src string) error {
	t.Helper()
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	return s.Analyze(tokens)
}

func TestSemanticAnalyzer_DeclaredVariables(t *testing.T) {
	s := NewSemanticAnalyzer()
	err := analyze(t, s, "var x = 1;\nvar y;\ny = x + 1;\nprint y;")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if line := s.Variables()["y"]; line != 2 {
		t.Errorf("y declared on line %d, want 2", line)
	}
}

func TestSemanticAnalyzer_UndefinedVariable(t *testing.T) {
	err := CheckSemantics(mustTokenize(t, "print total;"))
	diags := Diagnostics(err)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	if got := diags[0].String(); got != "[line 1] Error at 'total': Undefined variable: total" {
		t.Errorf("diagnostic = %q", got)
	}
}

func TestSemanticAnalyzer_UseBeforeDeclaration(t *testing.T) {
	err := CheckSemantics(mustTokenize(t, "x = 1;\nvar x;"))
	if err == nil {
		t.Fatal("expected error for use before declaration")
	}
	if !strings.Contains(err.Error(), "Undefined variable: x") {
		t.Errorf("error = %v", err)
	}
}

func TestSemanticAnalyzer_Redeclaration(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"var a; var a;", "Variable already declared: a"},
		{"program p; program p;", "Program already declared: p"},
		{"var p; program p;", "Name already used by variable: p"},
		{"program p; var p;", "Name already used by program: p"},
	}

	for _, tc := range tests {
		err := CheckSemantics(mustTokenize(t, tc.src))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("CheckSemantics(%q) = %v, want %q", tc.src, err, tc.want)
		}
	}
}

func TestSemanticAnalyzer_ReportsEveryError(t *testing.T) {
	err := CheckSemantics(mustTokenize(t, "print a;\nprint b;\nvar c; var c;"))
	if got := len(Diagnostics(err)); got != 3 {
		t.Errorf("got %d diagnostics, want 3: %v", got, err)
	}
}

func TestSemanticAnalyzer_ScopePersists(t *testing.T) {
	s := NewSemanticAnalyzer()
	if err := analyze(t, s, "var n = 1;"); err != nil {
		t.Fatal(err)
	}
	if err := analyze(t, s, "print n;"); err != nil {
		t.Errorf("second line error: %v", err)
	}
}

func TestSemanticAnalyzer_RollsBackFailedLine(t *testing.T) {
	s := NewSemanticAnalyzer()
	if err := analyze(t, s, "var a; print missing;"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.Variables()["a"]; ok {
		t.Error("declaration from failed line was kept")
	}
	// The name is free again.
	if err := analyze(t, s, "var a;"); err != nil {
		t.Errorf("redeclaring after rollback: %v", err)
	}
}

func TestSemanticAnalyzer_Declare(t *testing.T) {
	s := NewSemanticAnalyzer()
	s.Declare("restored", 0)
	if err := analyze(t, s, "print restored;"); err != nil {
		t.Errorf("Analyze error: %v", err)
	}
}

func mustTokenize(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	return tokens
}
