package compiler

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for VCI source
// ---------------------------------------------------------------------------

// Lexer tokenizes VCI source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // column of the current character (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// single consumes the current character and returns a token for it.
func (l *Lexer) single(t TokenType, pos Position) Token {
	lexeme := string(l.ch)
	l.readChar()
	return Token{Type: t, Lexeme: lexeme, Pos: pos}
}

// pair returns the two-character token when the next character is '=',
// otherwise the one-character token.
func (l *Lexer) pair(one, two TokenType, pos Position) Token {
	first := l.ch
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return Token{Type: two, Lexeme: string(first) + "=", Pos: pos}
	}
	return Token{Type: one, Lexeme: string(first), Pos: pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	if l.atEnd() {
		return Token{Type: TokenEOF, Lexeme: "", Pos: pos}
	}

	switch l.ch {
	case '(':
		return l.single(TokenLParen, pos)
	case ')':
		return l.single(TokenRParen, pos)
	case '{':
		return l.single(TokenLBrace, pos)
	case '}':
		return l.single(TokenRBrace, pos)
	case ',':
		return l.single(TokenComma, pos)
	case '.':
		return l.single(TokenDot, pos)
	case ';':
		return l.single(TokenSemicolon, pos)
	case '+':
		return l.single(TokenPlus, pos)
	case '-':
		return l.single(TokenMinus, pos)
	case '*':
		return l.single(TokenStar, pos)
	case '/':
		return l.single(TokenSlash, pos)
	case '%':
		return l.single(TokenPercent, pos)
	case '!':
		return l.pair(TokenNot, TokenBangEqual, pos)
	case '=':
		return l.pair(TokenAssign, TokenEqualEqual, pos)
	case '<':
		return l.pair(TokenLess, TokenLessEqual, pos)
	case '>':
		return l.pair(TokenGreater, TokenGreaterEqual, pos)
	case '"':
		return l.readString(pos)
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(pos)
	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifierOrKeyword(pos)
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenError, Lexeme: fmt.Sprintf("unexpected character: %c", ch), Pos: pos}
}

// skipWhitespaceAndComments skips whitespace and '#' line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch l.ch {
		case ' ', '\t', '\n', '\r':
			l.readChar()
		case '#':
			for l.ch != '\n' && !l.atEnd() {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readString reads a double-quoted string literal. Strings may span lines.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // consume opening "
	start := l.pos
	for l.ch != '"' && !l.atEnd() {
		l.readChar()
	}
	if l.atEnd() {
		return Token{Type: TokenError, Lexeme: "unterminated string", Pos: pos}
	}
	value := l.input[start:l.pos]
	l.readChar() // consume closing "
	return Token{Type: TokenString, Lexeme: `"` + value + `"`, Literal: value, Pos: pos}
}

// readNumber reads a number literal: digits with an optional fraction.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lexeme := l.input[start:l.pos]
	n, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return Token{Type: TokenError, Lexeme: fmt.Sprintf("invalid number %s", lexeme), Pos: pos}
	}
	return Token{Type: TokenNumber, Lexeme: lexeme, Literal: n, Pos: pos}
}

// readIdentifierOrKeyword reads an identifier or reserved word.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	lexeme := l.input[start:l.pos]
	if tokType, ok := reservedWords[lexeme]; ok {
		return Token{Type: tokType, Lexeme: lexeme, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Lexeme: lexeme, Pos: pos}
}

// Helper functions

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize scans the whole input. The returned slice always ends with an
// EOF token; lexical errors are skipped over and reported together.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var (
		tokens []Token
		diags  []Diagnostic
	)
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			diags = append(diags, Diagnostic{Pos: tok.Pos, Message: tok.Lexeme})
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	if len(diags) > 0 {
		return tokens, &Error{Phase: PhaseLexical, Diagnostics: diags}
	}
	return tokens, nil
}
