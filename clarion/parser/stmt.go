package parser

import "fmt"

// statementStoppers end a statement list when an open block accepts them.
var statementStoppers = []TokenKind{
	TokenEnd, TokenDot, TokenElse, TokenElsif, TokenOf, TokenOrof, TokenWhile, TokenUntil,
}

// parseStatementList parses statements until EOF, a definition head or a
// closer that belongs to an open block. Closers nobody waits for are
// reported and skipped with the rest of their line.
func (p *Parser) parseStatementList() *Node {
	defer p.enter("statements")()
	node := p.startNode(KindStatementList)
	for {
		p.skipBlank(node)
		if p.check(TokenEOF) || p.atDefinitionStart() {
			break
		}
		if p.match(statementStoppers...) {
			if p.closes(p.peek().Kind) {
				break
			}
			node.AddChild(p.errorNode(fmt.Sprintf("unexpected %s with no open block", p.peek()), lineAnchors))
			continue
		}
		progress := p.mustProgress(node)
		node.AddChild(p.parseStatement())
		if !progress() {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) parseStatement() *Node {
	defer p.enter("statement")()
	tok := p.peek()
	switch tok.Kind {
	case TokenReturn:
		return p.parseReturn()
	case TokenIf:
		return p.parseIf()
	case TokenCase:
		return p.parseCase()
	case TokenLoop:
		return p.parseLoop()
	case TokenDo:
		return p.parseDo()
	case TokenBreak:
		return p.parseJump(KindBreakStmt)
	case TokenCycle:
		return p.parseJump(KindCycleStmt)
	case TokenExit:
		return p.parseJump(KindExitStmt)
	case TokenInclude:
		return p.parseInclude()
	case TokenSelf, TokenParent, TokenFieldEquate:
		return p.parseIdentStatement()
	}
	if isLabel(tok.Kind) {
		return p.parseIdentStatement()
	}
	return p.errorNode(fmt.Sprintf("expected statement, got %s", tok), lineAnchors)
}

// atStatementEnd reports whether the current statement has no more
// operands.
func (p *Parser) atStatementEnd() bool {
	return p.match(TokenNewline, TokenSemicolon) || p.match(implicitEnds...)
}

// endsLine reports whether the last token below n is a line break or a
// semicolon.
func endsLine(n *Node) bool {
	for n != nil && len(n.Children) > 0 {
		n = n.Children[len(n.Children)-1]
	}
	if n == nil || n.Token == nil {
		return false
	}
	return n.Token.Kind == TokenNewline || n.Token.Kind == TokenSemicolon
}

func (p *Parser) parseIdentStatement() *Node {
	switch p.predict(identStatement) {
	case identAssignment:
		node := p.startNode(KindAssignStmt)
		node.AddChild(p.parseFactor())
		if !p.match(assignOps...) {
			node.AddChild(p.errorNode(fmt.Sprintf("expected assignment operator, got %s", p.peek()), lineAnchors, assignOps...))
			p.endStatement(node)
			return p.finishNode(node)
		}
		p.eat(node)
		node.AddChild(p.parseExpression())
		p.endStatement(node)
		return p.finishNode(node)
	case identCall:
		node := p.startNode(KindCallStmt)
		node.AddChild(p.parseFunctionCall())
		p.endStatement(node)
		return p.finishNode(node)
	case identBareCall:
		node := p.startNode(KindCallStmt)
		node.AddChild(p.parseDotted())
		p.endStatement(node)
		return p.finishNode(node)
	}
	return p.errorNode(fmt.Sprintf("expected assignment or call, got %s", p.peek()), lineAnchors)
}

func (p *Parser) parseReturn() *Node {
	node := p.startNode(KindReturnStmt)
	p.eat(node)
	if !p.atStatementEnd() {
		node.AddChild(p.parseExpression())
	}
	p.endStatement(node)
	return p.finishNode(node)
}

// parseDo parses `DO routine`. The routine name may be left out.
func (p *Parser) parseDo() *Node {
	node := p.startNode(KindDoStmt)
	p.eat(node)
	if isLabel(p.peek().Kind) {
		node.AddChild(p.parseDotted())
	}
	p.endStatement(node)
	return p.finishNode(node)
}

// parseJump parses BREAK, CYCLE and EXIT with an optional loop label.
func (p *Parser) parseJump(kind NodeKind) *Node {
	node := p.startNode(kind)
	p.eat(node)
	if isLabel(p.peek().Kind) {
		p.eat(node)
	}
	p.endStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseIf() *Node {
	defer p.enter("if")()
	node := p.startNode(KindIfStmt)
	opener := p.eat(node)
	node.AddChild(p.parseExpression())

	switch p.predict(ifBody) {
	case ifSingle:
		p.parseIfSingle(node)
	case ifBlock:
		p.parseIfBlock(node, opener)
	default:
		p.errorf([]TokenKind{TokenThen, TokenNewline}, "expected THEN, statement or line break after IF condition, got %s", p.peek())
		p.parseIfBlock(node, opener)
	}
	return p.finishNode(node)
}

// parseIfSingle parses `IF c THEN stmt [ELSIF c stmt] [ELSE stmt] [.]`.
// The clauses must continue the line of the statement before them.
func (p *Parser) parseIfSingle(node *Node) {
	if p.check(TokenThen) {
		p.eat(node)
	}
	last := p.parseStatement()
	node.AddChild(last)
	for !endsLine(last) && p.check(TokenElsif) {
		clause := p.startNode(KindElsifClause)
		p.eat(clause)
		clause.AddChild(p.parseExpression())
		if p.check(TokenThen) {
			p.eat(clause)
		}
		last = p.parseStatement()
		clause.AddChild(last)
		node.AddChild(p.finishNode(clause))
	}
	if !endsLine(last) && p.check(TokenElse) {
		clause := p.startNode(KindElseClause)
		p.eat(clause)
		last = p.parseStatement()
		clause.AddChild(last)
		node.AddChild(p.finishNode(clause))
	}
	if endsLine(last) {
		return
	}
	if p.check(TokenDot) {
		p.eat(node)
	}
	p.endStatement(node)
}

func (p *Parser) parseIfBlock(node *Node, opener Token) {
	if p.check(TokenThen) {
		p.eat(node)
	}
	if p.match(TokenNewline, TokenSemicolon) {
		p.eat(node)
	}
	closeIf := p.openBlock(opener, TokenElsif, TokenElse, TokenEnd, TokenDot)
	defer closeIf()

	node.AddChild(p.parseStatementList())
	for p.check(TokenElsif) {
		clause := p.startNode(KindElsifClause)
		p.eat(clause)
		clause.AddChild(p.parseExpression())
		if p.check(TokenThen) {
			p.eat(clause)
		}
		if p.match(TokenNewline, TokenSemicolon) {
			p.eat(clause)
		}
		clause.AddChild(p.parseStatementList())
		node.AddChild(p.finishNode(clause))
	}
	if p.check(TokenElse) {
		node.AddChild(p.parseElse())
	}
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
}

func (p *Parser) parseElse() *Node {
	clause := p.startNode(KindElseClause)
	p.eat(clause)
	if p.match(TokenNewline, TokenSemicolon) {
		p.eat(clause)
	}
	clause.AddChild(p.parseStatementList())
	return p.finishNode(clause)
}

func (p *Parser) parseCase() *Node {
	defer p.enter("case")()
	node := p.startNode(KindCaseStmt)
	opener := p.eat(node)
	node.AddChild(p.parseExpression())

	switch p.predict(caseLead) {
	case caseDirect:
		p.skipBlank(node)
	case caseWildcardsOf:
		p.skipBlank(node)
		node.AddChild(p.parseWildcards(TokenOf))
	case caseWildcardsEnd:
		p.skipBlank(node)
		node.AddChild(p.parseWildcards(TokenElse, TokenEnd))
	default:
		node.AddChild(p.errorNode(fmt.Sprintf("expected OF, ELSE or END in CASE, got %s", p.peek()),
			[]TokenKind{TokenOf, TokenElse, TokenEnd}, TokenOf))
	}

	closeCase := p.openBlock(opener, TokenOf, TokenOrof, TokenElse, TokenEnd, TokenDot)
	defer closeCase()
	for p.match(TokenOf, TokenOrof) {
		node.AddChild(p.parseOfClause())
	}
	if p.check(TokenElse) {
		node.AddChild(p.parseElse())
	}
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	return p.finishNode(node)
}

// parseWildcards collects the tokens between a CASE selector and its first
// branch without giving them structure.
func (p *Parser) parseWildcards(until ...TokenKind) *Node {
	node := p.startNode(KindOpaque)
	for !p.check(TokenEOF) && !p.match(until...) {
		p.eat(node)
	}
	return p.finishNode(node)
}

// parseOfClause parses `OF v [TO w] [OROF v ...]` and the statements of the
// branch. OROF on a line of its own starts a clause of its own.
func (p *Parser) parseOfClause() *Node {
	defer p.enter("of")()
	node := p.startNode(KindOfClause)
	p.eat(node)
	node.AddChild(p.parseCaseValue())
	for p.check(TokenOrof) {
		p.eat(node)
		node.AddChild(p.parseCaseValue())
	}
	if p.match(TokenNewline, TokenSemicolon) {
		p.eat(node)
	}
	node.AddChild(p.parseStatementList())
	return p.finishNode(node)
}

func (p *Parser) parseCaseValue() *Node {
	value := p.parseExpression()
	if !p.check(TokenTo) {
		return value
	}
	node := p.startNode(KindCaseRange)
	node.AddChild(value)
	p.eat(node)
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

func (p *Parser) parseLoop() *Node {
	defer p.enter("loop")()
	node := p.startNode(KindLoopStmt)
	opener := p.eat(node)

	switch p.predict(loopHeader) {
	case loopBare:
	case loopCondition:
		node.AddChild(p.parseLoopCondition())
	case loopCounter:
		node.AddChild(p.parseLoopCounter())
	case loopTimes:
		header := p.startNode(KindLoopHeader)
		header.AddChild(p.parseExpression())
		p.expect(header, TokenTimes)
		node.AddChild(p.finishNode(header))
	default:
		node.AddChild(p.errorNode(fmt.Sprintf("expected loop header or line break, got %s", p.peek()), lineAnchors))
	}
	p.endStatement(node)

	closeLoop := p.openBlock(opener, TokenEnd, TokenDot, TokenWhile, TokenUntil)
	node.AddChild(p.parseStatementList())
	closeLoop()

	switch {
	case p.match(TokenWhile, TokenUntil):
		node.AddChild(p.parseLoopCondition())
		p.endStatement(node)
	case p.closeBlock(node, opener):
		p.endStatement(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseLoopCondition() *Node {
	header := p.startNode(KindLoopHeader)
	p.eat(header)
	header.AddChild(p.parseExpression())
	return p.finishNode(header)
}

// parseLoopCounter parses `i = first TO last [BY step]`.
func (p *Parser) parseLoopCounter() *Node {
	header := p.startNode(KindLoopHeader)
	header.AddChild(p.parseFactor())
	p.expect(header, TokenEQ)
	header.AddChild(p.parseExpression())
	if p.expect(header, TokenTo) {
		header.AddChild(p.parseExpression())
	}
	if p.check(TokenBy) {
		p.eat(header)
		header.AddChild(p.parseExpression())
	}
	return p.finishNode(header)
}
