package compiler

import (
	"errors"
	"strings"
	"testing"
)

// render writes a VCI compactly: operands and operators by lexeme,
// keyword instructions by kind.
func render(code []Token) string {
	parts := make([]string, len(code))
	for i, tok := range code {
		switch tok.Type {
		case TokenIdentifier, TokenNumber, TokenString, TokenAddress:
			parts[i] = tok.Lexeme
		default:
			if IsKeyword(tok.Lexeme) || tok.Lexeme == "" || tok.Type == TokenNegate ||
				tok.Type == TokenIf || tok.Type == TokenElse || tok.Type == TokenWhile || tok.Type == TokenEnd {
				parts[i] = tok.Type.String()
			} else {
				parts[i] = tok.Lexeme
			}
		}
	}
	return strings.Join(parts, " ")
}

func translate(t *testing.T, src string) []Token {
	t.Helper()
	code, err := Translate(mustTokenize(t, src))
	if err != nil {
		t.Fatalf("Translate(%q) error: %v", src, err)
	}
	return code
}

func TestTranslateExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print 1 + 2 * 3;`, `1 2 3 * + PRINT`},
		{`print (1 + 2) * 3;`, `1 2 + 3 * PRINT`},
		{`print 10 - 4 - 3;`, `10 4 - 3 - PRINT`},
		{`print 7 % 4 / 2;`, `7 4 % 2 / PRINT`},
		{`print a < b == c >= d;`, `a b < c == d >= PRINT`},
		{`print not true and false;`, `TRUE NOT FALSE AND PRINT`},
		{`print not not a;`, `a NOT NOT PRINT`},
		{`print a or b and c;`, `a b c AND OR PRINT`},
		{`print -x * 2;`, `x NEGATE 2 * PRINT`},
		{`print 1 - -2;`, `1 2 NEGATE - PRINT`},
		{`print "x" + null;`, `"x" NULL + PRINT`},
		{`x = y + 1;`, `x y 1 + =`},
		{`var x = 5;`, `x 5 =`},
		{`var x;`, `x`},
		{`print 1 + "x";`, `1 "x" + PRINT`},
	}

	for _, tc := range tests {
		if got := render(translate(t, tc.src)); got != tc.want {
			t.Errorf("Translate(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestTranslateStatements(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`program demo;`, `demo PROGRAM`},
		{`var n; input n;`, `n n INPUT`},
		{`print 1; print 2;`, `1 PRINT 2 PRINT`},
	}

	for _, tc := range tests {
		if got := render(translate(t, tc.src)); got != tc.want {
			t.Errorf("Translate(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestTranslateIf(t *testing.T) {
	code := translate(t, `var x = 5; if (x > 3) { print "big"; }`)
	want := `x 5 = x 3 > 10 IF "big" PRINT`
	if got := render(code); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	// The false branch lands on the end of the sequence.
	if addr, _ := code[6].Address(); addr != len(code) {
		t.Errorf("if target = %d, want %d", addr, len(code))
	}
}

func TestTranslateIfElse(t *testing.T) {
	code := translate(t, `var x = 5; if (x > 3) { print "big"; } else { print "small"; }`)
	want := `x 5 = x 3 > 12 IF "big" PRINT 14 ELSE "small" PRINT`
	if got := render(code); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	if code[12].Lexeme != `"small"` {
		t.Errorf("if target %d holds %s, want the else body", 12, code[12])
	}
}

func TestTranslateWhile(t *testing.T) {
	code := translate(t, `var x = 0; while (x < 3) { print x; x = x + 1; }`)
	want := `x 0 = x 3 < 17 WHILE x PRINT x x 1 + = 3 END`
	if got := render(code); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	// The back edge returns to the first token of the condition.
	if code[3].Lexeme != "x" {
		t.Errorf("loop start holds %s", code[3])
	}
}

func TestTranslateNested(t *testing.T) {
	code := translate(t, `var a = 1; var b = 2; if (a < b) { while (a < b) { a = a + 1; } }`)
	want := `a 1 = b 2 = a b < 23 IF a b < 23 WHILE a a 1 + = 11 END`
	if got := render(code); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestTranslateElseWithNestedIf(t *testing.T) {
	src := `if a { print 1; } else { if b { print 2; } else { print 3; } }`
	code := translate(t, src)
	want := `a 7 IF 1 PRINT 16 ELSE b 14 IF 2 PRINT 16 ELSE 3 PRINT`
	if got := render(code); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestTranslateNoPlaceholdersRemain(t *testing.T) {
	src := `var i = 0;
while (i < 10) {
  if (i % 2 == 0) { print i; } else { print -i; }
  i = i + 1;
}
print "done";`
	code := translate(t, src)
	for i, tok := range code {
		if tok.Type == TokenEmpty {
			t.Errorf("placeholder left at %d", i)
		}
		if tok.Type == TokenAddress {
			addr, err := tok.Address()
			if err != nil || addr < 0 || addr > len(code) {
				t.Errorf("address %s at %d out of range", tok.Lexeme, i)
			}
		}
	}
}

func TestTranslateDeterministic(t *testing.T) {
	tokens := mustTokenize(t, `var x = 0; while (x < 3) { if (x == 1) { print x; } x = x + 1; }`)
	tr := new(Translator)
	first, err := tr.Translate(tokens)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tr.Translate(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if render(first) != render(second) {
		t.Errorf("translations differ:\n%s\n%s", render(first), render(second))
	}
}

func TestTranslateKeepsPositions(t *testing.T) {
	code := translate(t, "var x = 1;\nif (x > 0) {\n  print x;\n}")
	for _, tok := range code {
		if tok.Type == TokenPrint && tok.Line() != 3 {
			t.Errorf("PRINT on line %d, want 3", tok.Line())
		}
	}
}

func TestTranslateUnbalanced(t *testing.T) {
	tests := []string{
		`if (true) { print 1;`,
		`print 1; }`,
		`{ print 1; }`,
		`while true`,
	}

	for _, src := range tests {
		_, err := Translate(mustTokenize(t, src))
		if !errors.Is(err, ErrUnbalanced) {
			t.Errorf("Translate(%q) error = %v, want ErrUnbalanced", src, err)
		}
	}
}
