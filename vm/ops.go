package vm

import (
	"math"

	"github.com/chazu/vci/compiler"
)

// binaryOp applies the binary operator op to a (pushed first) and b.
// Assignment is handled by the executor, not here.
func binaryOp(op compiler.Token, a, b Value) (Value, error) {
	if a.Kind() == KindIdent || b.Kind() == KindIdent {
		return Null, invalidOperands(op.Lexeme, a, b)
	}

	switch op.Type {
	case compiler.TokenPlus:
		if x, ok := a.Number(); ok {
			if y, ok := b.Number(); ok {
				return NumberValue(x + y), nil
			}
		}
		// Anything else concatenates textual forms.
		return StringValue(a.String() + b.String()), nil

	case compiler.TokenEqualEqual:
		return BoolValue(a.Equal(b)), nil

	case compiler.TokenBangEqual:
		return BoolValue(!a.Equal(b)), nil

	case compiler.TokenAnd, compiler.TokenOr:
		x, ok1 := a.Bool()
		y, ok2 := b.Bool()
		if !ok1 || !ok2 {
			return Null, invalidOperands(op.Lexeme, a, b)
		}
		if op.Type == compiler.TokenAnd {
			return BoolValue(x && y), nil
		}
		return BoolValue(x || y), nil
	}

	x, ok1 := a.Number()
	y, ok2 := b.Number()
	if !ok1 || !ok2 {
		return Null, invalidOperands(op.Lexeme, a, b)
	}

	switch op.Type {
	case compiler.TokenMinus:
		return NumberValue(x - y), nil
	case compiler.TokenStar:
		return NumberValue(x * y), nil
	case compiler.TokenSlash:
		// Division by zero yields ±Inf or NaN.
		return NumberValue(x / y), nil
	case compiler.TokenPercent:
		return NumberValue(math.Mod(x, y)), nil
	case compiler.TokenGreater:
		return BoolValue(x > y), nil
	case compiler.TokenGreaterEqual:
		return BoolValue(x >= y), nil
	case compiler.TokenLess:
		return BoolValue(x < y), nil
	case compiler.TokenLessEqual:
		return BoolValue(x <= y), nil
	}
	return Null, invalidOperands(op.Lexeme, a, b)
}

// unaryOp applies a prefix operator.
func unaryOp(op compiler.Token, a Value) (Value, error) {
	switch op.Type {
	case compiler.TokenNot:
		if x, ok := a.Bool(); ok {
			return BoolValue(!x), nil
		}
	case compiler.TokenNegate:
		if x, ok := a.Number(); ok {
			return NumberValue(-x), nil
		}
	}
	return Null, invalidOperand(op.Lexeme, a)
}

// isBinary reports whether t is executed by binaryOp.
func isBinary(t compiler.TokenType) bool {
	switch t {
	case compiler.TokenPlus, compiler.TokenMinus, compiler.TokenStar, compiler.TokenSlash,
		compiler.TokenPercent, compiler.TokenEqualEqual, compiler.TokenBangEqual,
		compiler.TokenGreater, compiler.TokenGreaterEqual, compiler.TokenLess,
		compiler.TokenLessEqual, compiler.TokenAnd, compiler.TokenOr:
		return true
	}
	return false
}
