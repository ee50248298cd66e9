package compiler

// ---------------------------------------------------------------------------
// Syntax checker: recursive descent over the token stream
// ---------------------------------------------------------------------------

// syntaxChecker walks the grammar without building any structure. It only
// answers whether the token stream is well formed.
type syntaxChecker struct {
	tokens  []Token
	current int
	diags   []Diagnostic
}

// errSyntax unwinds the checker back to the enclosing declaration after a
// diagnostic has been recorded.
type errSyntax struct{}

// CheckSyntax reports every statement of tokens that does not match the
// grammar. tokens must end with an EOF token.
func CheckSyntax(tokens []Token) error {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		tokens = append(append([]Token(nil), tokens...), Token{Type: TokenEOF})
	}
	c := &syntaxChecker{tokens: tokens}
	for !c.atEnd() {
		c.declarationOrSync()
	}
	if len(c.diags) > 0 {
		return &Error{Phase: PhaseSyntax, Diagnostics: c.diags}
	}
	return nil
}

func (c *syntaxChecker) declarationOrSync() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errSyntax); !ok {
				panic(r)
			}
			c.synchronize()
		}
	}()
	c.declaration()
}

// synchronize skips to the next statement boundary.
func (c *syntaxChecker) synchronize() {
	for !c.atEnd() {
		switch c.advance().Type {
		case TokenSemicolon, TokenRBrace:
			return
		}
		switch c.peek().Type {
		case TokenVar, TokenProgram, TokenPrint, TokenInput, TokenIf, TokenWhile, TokenRBrace:
			return
		}
	}
}

func (c *syntaxChecker) declaration() {
	switch {
	case c.match(TokenVar):
		c.consume(TokenIdentifier, "Expect variable name.")
		if c.match(TokenAssign) {
			c.expression()
		}
		c.consume(TokenSemicolon, "Expect ';' after variable declaration.")
	case c.match(TokenProgram):
		c.consume(TokenIdentifier, "Expect program name.")
		c.consume(TokenSemicolon, "Expect ';' after program name.")
	default:
		c.statement()
	}
}

func (c *syntaxChecker) statement() {
	switch {
	case c.match(TokenPrint):
		c.expression()
		c.consume(TokenSemicolon, "Expect ';' after value.")
	case c.match(TokenInput):
		c.consume(TokenIdentifier, "Expect variable name after 'input'.")
		c.consume(TokenSemicolon, "Expect ';' after input target.")
	case c.match(TokenIf):
		c.expression()
		c.block("if")
		if c.match(TokenElse) {
			c.block("else")
		}
	case c.match(TokenWhile):
		c.expression()
		c.block("while")
	case c.check(TokenIdentifier) && c.peekNext().Type == TokenAssign:
		c.advance()
		c.advance()
		c.expression()
		c.consume(TokenSemicolon, "Expect ';' after assignment.")
	default:
		c.expression()
		c.consume(TokenSemicolon, "Expect ';' after expression.")
	}
}

func (c *syntaxChecker) block(construct string) {
	c.consume(TokenLBrace, "Expect '{' before "+construct+" body.")
	for !c.check(TokenRBrace) && !c.atEnd() {
		c.declarationOrSync()
	}
	c.consume(TokenRBrace, "Expect '}' after "+construct+" body.")
}

func (c *syntaxChecker) expression() {
	c.or()
}

func (c *syntaxChecker) or() {
	c.and()
	for c.match(TokenOr) {
		c.and()
	}
}

func (c *syntaxChecker) and() {
	c.not()
	for c.match(TokenAnd) {
		c.not()
	}
}

func (c *syntaxChecker) not() {
	if c.match(TokenNot) {
		c.not()
		return
	}
	c.equality()
}

func (c *syntaxChecker) equality() {
	c.comparison()
	for c.match(TokenEqualEqual, TokenBangEqual) {
		c.comparison()
	}
}

func (c *syntaxChecker) comparison() {
	c.term()
	for c.match(TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual) {
		c.term()
	}
}

func (c *syntaxChecker) term() {
	c.factor()
	for c.match(TokenPlus, TokenMinus) {
		c.factor()
	}
}

func (c *syntaxChecker) factor() {
	c.unary()
	for c.match(TokenStar, TokenSlash, TokenPercent) {
		c.unary()
	}
}

func (c *syntaxChecker) unary() {
	if c.match(TokenMinus) {
		c.unary()
		return
	}
	c.primary()
}

func (c *syntaxChecker) primary() {
	switch {
	case c.match(TokenNumber, TokenString, TokenIdentifier, TokenTrue, TokenFalse, TokenNull):
		return
	case c.match(TokenLParen):
		c.expression()
		c.consume(TokenRParen, "Expect ')' after expression.")
		return
	}
	if c.check(TokenAssign) {
		c.fail(c.peek(), "Assignment is only allowed as a statement.")
	}
	c.fail(c.peek(), "Expect expression.")
}

// Helpers

func (c *syntaxChecker) match(types ...TokenType) bool {
	for _, t := range types {
		if c.check(t) {
			c.advance()
			return true
		}
	}
	return false
}

func (c *syntaxChecker) check(t TokenType) bool {
	if c.atEnd() {
		return false
	}
	return c.peek().Type == t
}

func (c *syntaxChecker) advance() Token {
	if !c.atEnd() {
		c.current++
	}
	return c.tokens[c.current-1]
}

func (c *syntaxChecker) atEnd() bool {
	return c.peek().Type == TokenEOF
}

func (c *syntaxChecker) peek() Token {
	return c.tokens[c.current]
}

func (c *syntaxChecker) peekNext() Token {
	if c.current+1 >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[c.current+1]
}

func (c *syntaxChecker) consume(t TokenType, message string) Token {
	if c.check(t) {
		return c.advance()
	}
	c.fail(c.peek(), message)
	return Token{}
}

func (c *syntaxChecker) fail(tok Token, message string) {
	c.diags = append(c.diags, diagnosticAt(tok, "%s", message))
	panic(errSyntax{})
}
