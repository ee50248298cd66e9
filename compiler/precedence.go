package compiler

// Operator binding powers, keyed by lexeme. Higher binds tighter.
var precedence = map[string]int{
	"neg": 70,
	"*":   60,
	"/":   60,
	"%":   60,
	"+":   50,
	"-":   50,
	">":   40,
	">=":  40,
	"<":   40,
	"<=":  40,
	"==":  40,
	"!=":  40,
	"not": 30,
	"!":   30,
	"and": 20,
	"or":  10,
	"=":   0,
}

// Precedence returns the binding power of the operator spelled lexeme.
func Precedence(lexeme string) (int, bool) {
	p, ok := precedence[lexeme]
	return p, ok
}

// isOperator reports whether tok is an operator the translator reorders.
// String literals never count even when their text matches.
func isOperator(tok Token) bool {
	if tok.Type.IsOperand() {
		return false
	}
	_, ok := precedence[tok.Lexeme]
	return ok
}

// isPrefix reports whether tok is a prefix unary operator.
func isPrefix(tok Token) bool {
	return tok.Type == TokenNot || tok.Type == TokenNegate
}
