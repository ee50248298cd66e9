package compiler

import (
	"errors"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( ) { } , . ; + - * / % = == != ! > >= < <=`
	expected := []struct {
		typ TokenType
		lex string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenSemicolon, ";"},
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenAssign, "="},
		{TokenEqualEqual, "=="},
		{TokenBangEqual, "!="},
		{TokenNot, "!"},
		{TokenGreater, ">"},
		{TokenGreaterEqual, ">="},
		{TokenLess, "<"},
		{TokenLessEqual, "<="},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Lexeme != exp.lex {
			t.Errorf("token[%d] lexeme = %q, want %q", i, tok.Lexeme, exp.lex)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"and", TokenAnd},
		{"or", TokenOr},
		{"not", TokenNot},
		{"if", TokenIf},
		{"else", TokenElse},
		{"while", TokenWhile},
		{"print", TokenPrint},
		{"input", TokenInput},
		{"program", TokenProgram},
		{"var", TokenVar},
		{"true", TokenTrue},
		{"false", TokenFalse},
		{"null", TokenNull},
		{"iffy", TokenIdentifier},
		{"_tmp1", TokenIdentifier},
		{"Print", TokenIdentifier},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != tc.want {
			t.Errorf("Lexer(%q): type = %v, want %v", tc.input, tok.Type, tc.want)
		}
		if tok.Lexeme != tc.input {
			t.Errorf("Lexer(%q): lexeme = %q", tc.input, tok.Lexeme)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"0", 0},
		{"3.14", 3.14},
		{"007", 7},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != TokenNumber {
			t.Errorf("Lexer(%q): type = %v, want NUMBER", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %v, want %v", tc.input, tok.Literal, tc.want)
		}
	}

	// A trailing dot is not part of the number.
	tokens, err := Tokenize("1.")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 3 || tokens[0].Lexeme != "1" || tokens[1].Type != TokenDot {
		t.Errorf("Tokenize(\"1.\") = %v", tokens)
	}
}

func TestLexerStrings(t *testing.T) {
	tok := NewLexer(`"hello world"`).NextToken()
	if tok.Type != TokenString {
		t.Fatalf("type = %v, want STRING", tok.Type)
	}
	if tok.Lexeme != `"hello world"` {
		t.Errorf("lexeme = %q", tok.Lexeme)
	}
	if tok.Literal != "hello world" {
		t.Errorf("literal = %v", tok.Literal)
	}

	// Operator text inside a string stays a string.
	tok = NewLexer(`"+"`).NextToken()
	if tok.Type != TokenString || tok.Literal != "+" {
		t.Errorf("got %v", tok)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := Tokenize(`print "oops;`)
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Phase != PhaseLexical {
		t.Fatalf("error = %v, want lexical *Error", err)
	}
	if ce.Diagnostics[0].Message != "unterminated string" {
		t.Errorf("message = %q", ce.Diagnostics[0].Message)
	}
}

func TestLexerCommentsAndPositions(t *testing.T) {
	input := "var x; # declare\n  print x;"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenType{TokenVar, TokenIdentifier, TokenSemicolon, TokenPrint, TokenIdentifier, TokenSemicolon, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i].Type, typ)
		}
	}

	p := tokens[3]
	if p.Pos.Line != 2 || p.Pos.Column != 3 {
		t.Errorf("print at %d:%d, want 2:3", p.Pos.Line, p.Pos.Column)
	}
	if tokens[1].Pos.Column != 5 {
		t.Errorf("x at column %d, want 5", tokens[1].Pos.Column)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	tokens, err := Tokenize("var x @ 1;")
	diags := Diagnostics(err)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1", diags)
	}
	if diags[0].Pos.Column != 7 {
		t.Errorf("column = %d, want 7", diags[0].Pos.Column)
	}
	// Scanning continues past the bad character.
	if tokens[len(tokens)-1].Type != TokenEOF || len(tokens) != 5 {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestKeywordsSorted(t *testing.T) {
	words := Keywords()
	for i := 1; i < len(words); i++ {
		if words[i-1] > words[i] {
			t.Fatalf("Keywords not sorted: %v", words)
		}
	}
	if !IsKeyword("while") || IsKeyword("loop") {
		t.Error("IsKeyword mismatch")
	}
}
