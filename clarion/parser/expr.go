package parser

import "fmt"

// exprStops are never swallowed by a failing operand; the enclosing rule
// owns them.
var exprStops = []TokenKind{
	TokenNewline, TokenSemicolon, TokenComma, TokenRParen, TokenRBrace, TokenRBracket, TokenEOF,
	TokenEnd, TokenThen, TokenOf, TokenOrof, TokenTo, TokenBy, TokenTimes, TokenElse, TokenElsif, TokenDot,
}

var (
	orOps             = []TokenKind{TokenOr, TokenXor}
	andOps            = []TokenKind{TokenAnd}
	comparisonOps     = []TokenKind{TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE, TokenRefAssign}
	concatOps         = []TokenKind{TokenAmpersand}
	additiveOps       = []TokenKind{TokenPlus, TokenMinus}
	multiplicativeOps = []TokenKind{TokenStar, TokenSlash, TokenPercent, TokenCaret}
)

// parseExpression parses a full condition expression. Line breaks are
// significant unless the caller switched to SkipBreaks.
func (p *Parser) parseExpression() *Node {
	defer p.enter("expression")()
	return p.parseOr()
}

// parseBinary parses `next (op next)*` iteratively. Each operator pair
// produces a new node whose left child is everything parsed so far, which
// keeps chains left associative.
func (p *Parser) parseBinary(kind NodeKind, ops []TokenKind, next func() *Node) *Node {
	left := next()
	for p.match(ops...) {
		node := p.startNode(kind)
		node.AddChild(left)
		p.eat(node)
		node.AddChild(next())
		left = p.finishNode(node)
	}
	return left
}

func (p *Parser) parseOr() *Node {
	return p.parseBinary(KindOrExpr, orOps, p.parseAnd)
}

func (p *Parser) parseAnd() *Node {
	return p.parseBinary(KindAndExpr, andOps, p.parseNot)
}

func (p *Parser) parseNot() *Node {
	if !p.match(TokenNot, TokenTilde) {
		return p.parseComparison()
	}
	node := p.startNode(KindNotExpr)
	p.eat(node)
	node.AddChild(p.parseNot())
	return p.finishNode(node)
}

func (p *Parser) parseComparison() *Node {
	return p.parseBinary(KindComparisonExpr, comparisonOps, p.parseConcat)
}

func (p *Parser) parseConcat() *Node {
	return p.parseBinary(KindConcatExpr, concatOps, p.parseAdditive)
}

func (p *Parser) parseAdditive() *Node {
	return p.parseBinary(KindAdditiveExpr, additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() *Node {
	return p.parseBinary(KindMultiplicativeExpr, multiplicativeOps, p.parseUnary)
}

func (p *Parser) parseUnary() *Node {
	if !p.match(TokenPlus, TokenMinus) {
		return p.parseFactor()
	}
	node := p.startNode(KindUnaryExpr)
	p.eat(node)
	node.AddChild(p.parseUnary())
	return p.finishNode(node)
}

func (p *Parser) parseFactor() *Node {
	switch p.predict(factor) {
	case factorCall:
		return p.parseFunctionCall()
	case factorProperty:
		return p.parseProperty()
	case factorReference:
		return p.parseReference()
	case factorFieldEquate:
		node := p.startNode(KindFieldEquate)
		p.eat(node)
		return p.finishNode(node)
	case factorLiteral:
		return p.parseLiteral()
	case factorGroup:
		return p.parseParenExpr()
	}
	return p.expressionError()
}

func (p *Parser) expressionError() *Node {
	msg := fmt.Sprintf("expected expression, got %s", p.peek())
	if p.match(exprStops...) {
		return p.errorNode(msg, exprStops)
	}
	return p.skipOne(msg)
}

var literalKinds = map[TokenKind]NodeKind{
	TokenIntLiteral:    KindIntegerLiteral,
	TokenRealLiteral:   KindRealLiteral,
	TokenStringLiteral: KindStringLiteral,
	TokenPicture:       KindPictureLiteral,
}

// parseLiteral wraps one literal token. Its text is not interpreted.
func (p *Parser) parseLiteral() *Node {
	node := p.startNode(literalKinds[p.peek().Kind])
	p.eat(node)
	return p.finishNode(node)
}

func (p *Parser) parseParenExpr() *Node {
	defer p.setMode(SkipBreaks)()
	node := p.startNode(KindParenExpr)
	opener := p.eat(node)
	node.AddChild(p.parseExpression())
	if !p.check(TokenRParen) {
		p.errorf([]TokenKind{TokenRParen}, "expected ) to close ( at %s, got %s", opener.Span.Start, p.peek())
		return p.finishNode(node)
	}
	p.eat(node)
	return p.finishNode(node)
}

// parseDotted parses `name(.name)*`, including the SELF. and PARENT.
// qualifiers.
func (p *Parser) parseDotted() *Node {
	node := p.startNode(KindDottedIdentifier)
	p.eat(node)
	for p.check(TokenDot) && isLabel(p.peekN(1).Kind) {
		p.eat(node)
		p.eat(node)
	}
	return p.finishNode(node)
}

// parseReference parses a dotted name with optional `[i, j]` subscripts.
func (p *Parser) parseReference() *Node {
	ref := p.parseDotted()
	for p.check(TokenLBracket) {
		ref = p.parseSubscript(ref)
	}
	return ref
}

func (p *Parser) parseSubscript(base *Node) *Node {
	defer p.setMode(SkipBreaks)()
	node := p.startNode(KindSubscript)
	node.AddChild(base)
	opener := p.eat(node)
	for {
		node.AddChild(p.parseExpression())
		if !p.check(TokenComma) {
			break
		}
		p.eat(node)
	}
	if !p.check(TokenRBracket) {
		p.errorf([]TokenKind{TokenRBracket}, "expected ] to close [ at %s, got %s", opener.Span.Start, p.peek())
		return p.finishNode(node)
	}
	p.eat(node)
	return p.finishNode(node)
}

func (p *Parser) parseFunctionCall() *Node {
	defer p.enter("call")()
	node := p.startNode(KindFunctionCall)
	node.AddChild(p.parseDotted())
	node.AddChild(p.parseArguments())
	return p.finishNode(node)
}

// parseArguments parses `(a, , b)`. Arguments may be left empty.
func (p *Parser) parseArguments() *Node {
	defer p.setMode(SkipBreaks)()
	node := p.startNode(KindArguments)
	opener := p.eat(node)
	for !p.check(TokenRParen) && !p.match(structuralStops...) {
		if p.check(TokenComma) {
			p.eat(node)
			continue
		}
		progress := p.mustProgress(node)
		node.AddChild(p.parseExpression())
		if !progress() {
			break
		}
		if !p.check(TokenComma) {
			break
		}
		p.eat(node)
	}
	if !p.check(TokenRParen) {
		p.errorf([]TokenKind{TokenRParen}, "expected ) to close ( at %s, got %s", opener.Span.Start, p.peek())
		return p.finishNode(node)
	}
	p.eat(node)
	return p.finishNode(node)
}

// parseProperty parses `target{PROP:Name[, index]}`.
func (p *Parser) parseProperty() *Node {
	defer p.enter("property")()
	node := p.startNode(KindPropertyAccess)
	if p.check(TokenFieldEquate) {
		target := p.startNode(KindFieldEquate)
		p.eat(target)
		node.AddChild(p.finishNode(target))
	} else {
		node.AddChild(p.parseDotted())
	}

	defer p.setMode(SkipBreaks)()
	opener := p.eat(node)
	if p.expect(node, TokenIdent) {
		for p.check(TokenColon) {
			p.eat(node)
			if !p.expect(node, TokenIdent) {
				break
			}
		}
	}
	if p.check(TokenComma) {
		p.eat(node)
		node.AddChild(p.parseExpression())
	}
	if !p.check(TokenRBrace) {
		p.errorf([]TokenKind{TokenRBrace}, "expected } to close { at %s, got %s", opener.Span.Start, p.peek())
		return p.finishNode(node)
	}
	p.eat(node)
	return p.finishNode(node)
}
