package compiler

import (
	"errors"
	"testing"
)

func TestCompileStopsAtFirstFailingPhase(t *testing.T) {
	tests := []struct {
		src   string
		phase Phase
	}{
		{`print "open;`, PhaseLexical},
		{`print 1`, PhaseSyntax},
		{`print nope;`, PhaseSemantic},
	}

	for _, tc := range tests {
		_, err := Compile(tc.src)
		var ce *Error
		if !errors.As(err, &ce) {
			t.Errorf("Compile(%q) error = %v, want *Error", tc.src, err)
			continue
		}
		if ce.Phase != tc.phase {
			t.Errorf("Compile(%q) phase = %s, want %s", tc.src, ce.Phase, tc.phase)
		}
	}
}

func TestCompileProgram(t *testing.T) {
	code, err := Compile(`program demo; var x = 0; while (x < 3) { print x; x = x + 1; }`)
	if err != nil {
		t.Fatal(err)
	}
	want := `demo PROGRAM x 0 = x 3 < 19 WHILE x PRINT x x 1 + = 5 END`
	if got := render(code); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCompilerSessionScope(t *testing.T) {
	c := NewCompiler()
	if _, err := c.Compile(`var total = 0;`); err != nil {
		t.Fatal(err)
	}
	res, err := c.Compile(`total = total + 5;`)
	if err != nil {
		t.Fatalf("second line error: %v", err)
	}
	if res.Tokens[len(res.Tokens)-1].Type != TokenEOF {
		t.Error("Result.Tokens does not end with EOF")
	}
	if got := render(res.Code); got != `total total 5 + =` {
		t.Errorf("code = %q", got)
	}
	if _, ok := c.Semantics().Variables()["total"]; !ok {
		t.Error("total missing from compiler scope")
	}
}
