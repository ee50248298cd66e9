package compiler

import (
	"errors"
	"strings"
	"testing"
)

func checkSyntax(t *testing.T, src string) error {
	t.Helper()
	tokens, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	return CheckSyntax(tokens)
}

func TestCheckSyntaxValid(t *testing.T) {
	tests := []string{
		`var x;`,
		`var x = 1 + 2 * (3 - 4);`,
		`program demo;`,
		`print "hi";`,
		`input x;`,
		`x = -x;`,
		`if (a > b and not c) { print a; }`,
		`if a { print 1; } else { print 2; }`,
		`while (i < 10) { i = i + 1; if (i % 2 == 0) { print i; } }`,
		`print null != false or true;`,
		`1 + 2;`,
		``,
		`# only a comment`,
	}

	for _, src := range tests {
		if err := checkSyntax(t, src); err != nil {
			t.Errorf("CheckSyntax(%q) error: %v", src, err)
		}
	}
}

func TestCheckSyntaxErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 1`, "[line 1] Error: Expect ';' after value."},
		{`var = 3;`, "[line 1] Error at '=': Expect variable name."},
		{`program;`, "[line 1] Error at ';': Expect program name."},
		{`if (x) print x;`, "[line 1] Error at 'print': Expect '{' before if body."},
		{`while x { print x;`, "[line 1] Error: Expect '}' after while body."},
		{`print (1 + 2;`, "[line 1] Error at ';': Expect ')' after expression."},
		{`input 3;`, "[line 1] Error at '3': Expect variable name after 'input'."},
		{`x = y = 3;`, "[line 1] Error at '=': Expect ';' after assignment."},
		{`print x = 3;`, "[line 1] Error at '=': Expect ';' after value."},
		{`print * 2;`, "[line 1] Error at '*': Expect expression."},
	}

	for _, tc := range tests {
		err := checkSyntax(t, tc.src)
		if err == nil {
			t.Errorf("CheckSyntax(%q) succeeded, want %q", tc.src, tc.want)
			continue
		}
		diags := Diagnostics(err)
		if len(diags) == 0 || diags[0].String() != tc.want {
			t.Errorf("CheckSyntax(%q) = %v, want %q", tc.src, diags, tc.want)
		}
	}
}

func TestCheckSyntaxRecovers(t *testing.T) {
	src := "print ;\nvar ;\nprint 1;\nif (true) { print ; }\nprint 2;"
	err := checkSyntax(t, src)

	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if ce.Phase != PhaseSyntax {
		t.Errorf("phase = %s, want %s", ce.Phase, PhaseSyntax)
	}
	if len(ce.Diagnostics) != 3 {
		t.Fatalf("got %d diagnostics, want 3: %v", len(ce.Diagnostics), ce.Diagnostics)
	}
	for i, line := range []int{1, 2, 4} {
		if ce.Diagnostics[i].Pos.Line != line {
			t.Errorf("diagnostic %d on line %d, want %d", i, ce.Diagnostics[i].Pos.Line, line)
		}
	}
	if !strings.HasPrefix(err.Error(), "syntax errors:\n") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCheckSyntaxAppendsEOF(t *testing.T) {
	tokens := []Token{
		{Type: TokenPrint, Lexeme: "print"},
		{Type: TokenNumber, Lexeme: "1", Literal: 1.0},
		{Type: TokenSemicolon, Lexeme: ";"},
	}
	if err := CheckSyntax(tokens); err != nil {
		t.Errorf("CheckSyntax error: %v", err)
	}
}
