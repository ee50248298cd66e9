package compiler

import (
	"fmt"
	"sort"
	"strconv"
)

// ---------------------------------------------------------------------------
// Token types for the VCI language
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier // foo, total_1
	TokenString     // "hello"
	TokenNumber     // 42, 3.14

	// Punctuation
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenComma     // ,
	TokenDot       // .
	TokenSemicolon // ;

	// Operators
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenPercent      // %
	TokenAssign       // =
	TokenEqualEqual   // ==
	TokenBangEqual    // !=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenLess         // <
	TokenLessEqual    // <=

	// Keywords
	TokenAnd
	TokenOr
	TokenNot // not, !
	TokenIf
	TokenElse
	TokenWhile
	TokenPrint
	TokenInput
	TokenProgram
	TokenVar
	TokenTrue
	TokenFalse
	TokenNull
	TokenThen
	TokenEnd // also the loop back-edge instruction
	TokenReturn

	// Synthetic tokens produced by the translator
	TokenAddress // absolute jump target, lexeme is the decimal index
	TokenEmpty   // unresolved jump placeholder
	TokenNegate  // prefix minus
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenError:        "ERROR",
	TokenIdentifier:   "IDENTIFIER",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenSemicolon:    ";",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenPercent:      "%",
	TokenAssign:       "=",
	TokenEqualEqual:   "==",
	TokenBangEqual:    "!=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenWhile:        "WHILE",
	TokenPrint:        "PRINT",
	TokenInput:        "INPUT",
	TokenProgram:      "PROGRAM",
	TokenVar:          "VAR",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenNull:         "NULL",
	TokenThen:         "THEN",
	TokenEnd:          "END",
	TokenReturn:       "RETURN",
	TokenAddress:      "ADDRESS",
	TokenEmpty:        "EMPTY",
	TokenNegate:       "NEGATE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Valid reports whether t is one of the declared token types.
func (t TokenType) Valid() bool {
	_, ok := tokenNames[t]
	return ok
}

// IsOperand reports whether tokens of this type are emitted as-is into the
// instruction sequence.
func (t TokenType) IsOperand() bool {
	switch t {
	case TokenIdentifier, TokenNumber, TokenString, TokenTrue, TokenFalse, TokenNull:
		return true
	}
	return false
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token represents a lexical token. Tokens are also the instructions of a
// VCI: the translator emits the source tokens it keeps plus synthetic
// address, placeholder and keyword tokens.
type Token struct {
	Type    TokenType
	Lexeme  string   // the raw text
	Literal any      // float64 for numbers, string for strings, nil otherwise
	Pos     Position // start position
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int {
	return t.Pos.Line
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Lexeme)
	case TokenEmpty:
		return "EMPTY"
	}
	if len(t.Lexeme) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Lexeme[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
}

// AddressToken returns a synthetic token holding the jump target addr.
func AddressToken(addr int, pos Position) Token {
	return Token{Type: TokenAddress, Lexeme: strconv.Itoa(addr), Literal: float64(addr), Pos: pos}
}

// Address decodes the jump target of an address token.
func (t Token) Address() (int, error) {
	if t.Type != TokenAddress {
		return 0, fmt.Errorf("%s is not an address", t)
	}
	return strconv.Atoi(t.Lexeme)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"and":     TokenAnd,
	"or":      TokenOr,
	"not":     TokenNot,
	"if":      TokenIf,
	"else":    TokenElse,
	"while":   TokenWhile,
	"print":   TokenPrint,
	"input":   TokenInput,
	"program": TokenProgram,
	"var":     TokenVar,
	"true":    TokenTrue,
	"false":   TokenFalse,
	"null":    TokenNull,
	"then":    TokenThen,
	"end":     TokenEnd,
	"return":  TokenReturn,
}

// Keywords returns the reserved words of the language, sorted.
func Keywords() []string {
	words := make([]string, 0, len(reservedWords))
	for w := range reservedWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	_, ok := reservedWords[word]
	return ok
}
