package compiler

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Translator: token stream -> VCI
// ---------------------------------------------------------------------------

// construct is an open if/else/while on the construct stack.
type construct struct {
	kind         TokenType // TokenIf, TokenElse or TokenWhile
	awaitingBody bool      // header seen, '{' not yet
}

// Translator turns a token stream into a VCI in a single left-to-right
// pass. Operators are reordered to postfix by precedence; control flow is
// emitted as placeholder slots that are overwritten with absolute
// addresses once the end of the construct is reached.
//
// The construct and address stacks move in lock-step: if and else own one
// address (their placeholder), while owns two (loop start, then its
// placeholder).
type Translator struct {
	out        []Token
	operators  []Token
	constructs []construct
	addresses  []int
	deferred   []Token // print/input keywords waiting for the end of their statement
}

// Translate produces the VCI for tokens. Identical inputs always produce
// identical sequences.
func Translate(tokens []Token) ([]Token, error) {
	return new(Translator).Translate(tokens)
}

// Translate resets the translator and produces the VCI for tokens.
func (t *Translator) Translate(tokens []Token) ([]Token, error) {
	*t = Translator{}
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Type.IsOperand():
			t.emit(tok)

		case tok.Type == TokenLParen:
			t.operators = append(t.operators, tok)

		case tok.Type == TokenRParen:
			t.closeParen()

		case tok.Type == TokenMinus && prefixPosition(tokens, i):
			t.pushOperator(Token{Type: TokenNegate, Lexeme: "neg", Pos: tok.Pos})

		case isOperator(tok):
			t.pushOperator(tok)

		case tok.Type == TokenSemicolon:
			t.endStatement()

		case tok.Type == TokenPrint || tok.Type == TokenInput:
			t.deferred = append(t.deferred, tok)

		case tok.Type == TokenProgram:
			if i+1 < len(tokens) && tokens[i+1].Type == TokenIdentifier {
				t.emit(tokens[i+1])
				i++
			}
			t.emit(tok)

		case tok.Type == TokenIf:
			t.constructs = append(t.constructs, construct{kind: TokenIf, awaitingBody: true})

		case tok.Type == TokenWhile:
			t.addresses = append(t.addresses, len(t.out))
			t.constructs = append(t.constructs, construct{kind: TokenWhile, awaitingBody: true})

		case tok.Type == TokenLBrace:
			if err := t.openBody(tok); err != nil {
				return nil, err
			}

		case tok.Type == TokenRBrace:
			var next *Token
			if i+1 < len(tokens) {
				next = &tokens[i+1]
			}
			consumed, err := t.closeBody(tok, next)
			if err != nil {
				return nil, err
			}
			if consumed {
				i++
			}
		}
	}

	t.flushOperators()
	t.out = append(t.out, t.deferred...)
	t.deferred = nil

	if len(t.constructs) > 0 {
		open := t.constructs[len(t.constructs)-1]
		return nil, fmt.Errorf("%w: %s left open at end of input", ErrUnbalanced, open.kind)
	}
	return t.out, nil
}

func (t *Translator) emit(tok Token) {
	t.out = append(t.out, tok)
}

// pushOperator emits every held-back operator that binds at least as
// tightly as tok, then holds tok back. Prefix operators have no left
// operand, so they are held back without emitting anything.
func (t *Translator) pushOperator(tok Token) {
	if !isPrefix(tok) {
		p := precedence[tok.Lexeme]
		for len(t.operators) > 0 {
			top := t.operators[len(t.operators)-1]
			if top.Type == TokenLParen || precedence[top.Lexeme] < p {
				break
			}
			t.emit(top)
			t.operators = t.operators[:len(t.operators)-1]
		}
	}
	t.operators = append(t.operators, tok)
}

func (t *Translator) closeParen() {
	for len(t.operators) > 0 {
		top := t.operators[len(t.operators)-1]
		t.operators = t.operators[:len(t.operators)-1]
		if top.Type == TokenLParen {
			return
		}
		t.emit(top)
	}
}

// flushOperators emits every held-back operator. Stray parentheses are
// dropped.
func (t *Translator) flushOperators() {
	for len(t.operators) > 0 {
		top := t.operators[len(t.operators)-1]
		t.operators = t.operators[:len(t.operators)-1]
		if top.Type != TokenLParen {
			t.emit(top)
		}
	}
}

// endStatement finishes the expression of a statement, then the deferred
// print/input keywords that consume it.
func (t *Translator) endStatement() {
	t.flushOperators()
	t.out = append(t.out, t.deferred...)
	t.deferred = nil
}

// placeholder appends an unresolved jump slot and remembers its address.
func (t *Translator) placeholder(pos Position) {
	t.addresses = append(t.addresses, len(t.out))
	t.emit(Token{Type: TokenEmpty, Pos: pos})
}

// patch resolves the most recent placeholder to target.
func (t *Translator) patch(target int, pos Position) error {
	slot, err := t.popAddress(pos)
	if err != nil {
		return err
	}
	t.out[slot] = AddressToken(target, t.out[slot].Pos)
	return nil
}

func (t *Translator) popAddress(pos Position) (int, error) {
	if len(t.addresses) == 0 {
		return 0, fmt.Errorf("%w: no pending jump at line %d", ErrUnbalanced, pos.Line)
	}
	addr := t.addresses[len(t.addresses)-1]
	t.addresses = t.addresses[:len(t.addresses)-1]
	return addr, nil
}

// openBody handles '{'. For if and while it ends the condition and emits
// the conditional jump; the '{' of an else body emits nothing.
func (t *Translator) openBody(tok Token) error {
	if len(t.constructs) == 0 {
		return fmt.Errorf("%w: '{' without if/while at line %d", ErrUnbalanced, tok.Line())
	}
	top := &t.constructs[len(t.constructs)-1]
	if !top.awaitingBody {
		return nil
	}
	top.awaitingBody = false

	t.flushOperators()
	t.placeholder(tok.Pos)
	t.emit(instruction(top.kind, tok.Pos))
	return nil
}

// closeBody handles '}'. next is the token after it, if any; closeBody
// reports whether it consumed next (an else keyword).
func (t *Translator) closeBody(tok Token, next *Token) (bool, error) {
	if len(t.constructs) == 0 {
		return false, fmt.Errorf("%w: '}' without open block at line %d", ErrUnbalanced, tok.Line())
	}
	top := t.constructs[len(t.constructs)-1]
	t.constructs = t.constructs[:len(t.constructs)-1]
	if top.awaitingBody {
		return false, fmt.Errorf("%w: '}' before body of %s at line %d", ErrUnbalanced, top.kind, tok.Line())
	}

	switch top.kind {
	case TokenIf:
		if next != nil && next.Type == TokenElse {
			// False branch lands after the ELSE jump pair emitted below.
			if err := t.patch(len(t.out)+2, tok.Pos); err != nil {
				return false, err
			}
			t.constructs = append(t.constructs, construct{kind: TokenElse})
			t.placeholder(next.Pos)
			t.emit(instruction(TokenElse, next.Pos))
			return true, nil
		}
		return false, t.patch(len(t.out), tok.Pos)

	case TokenElse:
		return false, t.patch(len(t.out), tok.Pos)

	case TokenWhile:
		// Exit lands after the back-edge pair emitted below.
		if err := t.patch(len(t.out)+2, tok.Pos); err != nil {
			return false, err
		}
		start, err := t.popAddress(tok.Pos)
		if err != nil {
			return false, err
		}
		t.emit(AddressToken(start, tok.Pos))
		t.emit(instruction(TokenEnd, tok.Pos))
		return false, nil
	}
	return false, fmt.Errorf("%w: unexpected construct %s", ErrUnbalanced, top.kind)
}

// instruction builds a synthetic keyword instruction.
func instruction(kind TokenType, pos Position) Token {
	return Token{Type: kind, Lexeme: kind.String(), Pos: pos}
}

// prefixPosition reports whether the token at i starts an operand, i.e.
// a '-' there is a negation rather than a subtraction.
func prefixPosition(tokens []Token, i int) bool {
	if i == 0 {
		return true
	}
	prev := tokens[i-1]
	switch prev.Type {
	case TokenIdentifier, TokenNumber, TokenString, TokenTrue, TokenFalse, TokenNull, TokenRParen:
		return false
	}
	return true
}
