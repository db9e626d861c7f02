package parser

import (
	"fmt"
	"strings"
)

func (p *Parser) parseFile() *Node {
	defer p.enter("file")()

	switch p.cursor.Peek(0, SkipBreaks).Kind {
	case TokenProgram:
		return p.parseProgram()
	case TokenMember:
		return p.parseMember()
	}

	node := p.startNode(KindMember)
	p.skipBlank(node)
	if !p.check(TokenEOF) && !p.headerOptional {
		p.errorExpected(TokenProgram, TokenMember)
	}
	p.parseMemberBody(node)
	return p.finishNode(node)
}

func (p *Parser) parseProgram() *Node {
	defer p.enter("program")()
	node := p.startNode(KindProgram)
	p.skipBlank(node)
	p.eat(node)
	p.endStatement(node)

	node.AddChild(p.parseDataSection())
	if p.check(TokenCode) {
		node.AddChild(p.parseCodeSection())
		for p.atRoutineStart() {
			node.AddChild(p.parseRoutine())
		}
	}
	p.parseDefinitions(node)
	return p.finishNode(node)
}

// parseDefinitions parses the procedures that follow the global part of a
// PROGRAM unit.
func (p *Parser) parseDefinitions(node *Node) {
	for {
		p.skipBlank(node)
		if p.check(TokenEOF) {
			return
		}
		progress := p.mustProgress(node)
		switch {
		case p.atRoutineStart():
			node.AddChild(p.parseRoutine())
		case p.atDefinitionStart():
			node.AddChild(p.parseProcedure())
		default:
			node.AddChild(p.errorNode(fmt.Sprintf("expected procedure definition, got %s", p.peek()),
				lineAnchors, TokenProcedure))
		}
		if !progress() {
			return
		}
	}
}

func (p *Parser) parseMember() *Node {
	defer p.enter("member")()
	node := p.startNode(KindMember)
	p.skipBlank(node)
	p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	p.endStatement(node)
	p.parseMemberBody(node)
	return p.finishNode(node)
}

// parseMemberBody parses the interleaved declarations, statements and
// definitions of a MEMBER module.
func (p *Parser) parseMemberBody(node *Node) {
	for !p.check(TokenEOF) {
		progress := p.mustProgress(node)
		switch p.predict(memberItem) {
		case itemBlank:
			p.eat(node)
		case itemDefinition:
			node.AddChild(p.parseProcedure())
		case itemRoutine:
			node.AddChild(p.parseRoutine())
		case itemMap:
			node.AddChild(p.parseMap())
		case itemDeclaration:
			node.AddChild(p.parseDeclaration())
		case itemStatement:
			node.AddChild(p.parseStatement())
		default:
			node.AddChild(p.errorNode(fmt.Sprintf("expected declaration, statement or definition, got %s", p.peek()),
				lineAnchors))
		}
		if !progress() {
			return
		}
	}
}

func (p *Parser) parseMap() *Node {
	defer p.enter("map")()
	node := p.startNode(KindMap)
	opener := p.eat(node)
	p.endStatement(node)
	closeMap := p.openBlock(opener, TokenEnd, TokenDot)
	p.parseMapEntries(node)
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	closeMap()
	return p.finishNode(node)
}

func (p *Parser) parseModule() *Node {
	defer p.enter("module")()
	node := p.startNode(KindModule)
	opener := p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	} else {
		p.errorExpected(TokenLParen)
	}
	p.endStatement(node)
	closeModule := p.openBlock(opener, TokenEnd, TokenDot)
	p.parseMapEntries(node)
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	closeModule()
	return p.finishNode(node)
}

func (p *Parser) parseMapEntries(node *Node) {
	for {
		progress := p.mustProgress(node)
		switch p.predict(mapEntry) {
		case mapBlank:
			p.eat(node)
		case mapPrototype:
			node.AddChild(p.parsePrototype())
		case mapLegacy:
			node.AddChild(p.parseLegacyPrototype())
		case mapModule:
			node.AddChild(p.parseModule())
		case mapInclude:
			node.AddChild(p.parseInclude())
		case mapClose, mapEnd:
			return
		default:
			node.AddChild(p.errorNode(fmt.Sprintf("expected procedure prototype, got %s", p.peek()),
				lineAnchors, TokenProcedure, TokenModule, TokenEnd))
		}
		if !progress() {
			return
		}
	}
}

// parsePrototype parses `Name PROCEDURE(params),returnType,attributes` in a
// MAP, MODULE or CLASS.
func (p *Parser) parsePrototype() *Node {
	defer p.enter("prototype")()
	node := p.startNode(KindPrototype)
	node.AddChild(p.parseLabel())
	p.eat(node)
	if p.check(TokenLParen) {
		node.AddChild(p.parseParameters())
	}
	p.parseProcedureTail(node)
	p.endStatement(node)
	return p.finishNode(node)
}

// parseLegacyPrototype parses the keyword-less form `Name(params),type`.
func (p *Parser) parseLegacyPrototype() *Node {
	defer p.enter("prototype")()
	node := p.startNode(KindPrototype)
	node.AddChild(p.parseLabel())
	if p.check(TokenLParen) {
		node.AddChild(p.parseParameters())
	}
	p.parseProcedureTail(node)
	p.endStatement(node)
	return p.finishNode(node)
}

// procedureAttributes are the names that may follow a parameter list
// without being a return type.
var procedureAttributes = map[string]bool{
	"VIRTUAL": true, "DERIVED": true, "PRIVATE": true, "PROTECTED": true,
	"PROC": true, "NAME": true, "C": true, "PASCAL": true, "RAW": true,
	"TYPE": true, "DLL": true, "EXTERNAL": true, "REPLACE": true,
	"STATIC": true, "FINAL": true, "LINK": true, "EXPORT": true,
}

// parseProcedureTail parses the optional `, returnType` and the attribute
// list after a procedure head.
func (p *Parser) parseProcedureTail(node *Node) {
	if !p.check(TokenComma) {
		return
	}
	next := p.peekN(1)
	isType := false
	switch next.Kind {
	case TokenIdent:
		isType = !procedureAttributes[strings.ToUpper(next.Literal)]
	case TokenStar, TokenAmpersand, TokenQuestion:
		isType = true
	}
	if isType {
		rt := p.startNode(KindReturnType)
		p.eat(rt)
		for p.match(TokenStar, TokenAmpersand, TokenQuestion) {
			p.eat(rt)
		}
		if p.check(TokenIdent) {
			p.eat(rt)
		} else if next.Kind != TokenQuestion {
			p.errorExpected(TokenIdent)
		}
		node.AddChild(p.finishNode(rt))
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
}

func (p *Parser) parseParameters() *Node {
	defer p.setMode(SkipBreaks)()
	node := p.startNode(KindParameterList)
	opener := p.eat(node)
	for !p.check(TokenRParen) && !p.match(structuralStops...) {
		node.AddChild(p.parseParameter())
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

// structuralStops end any bracketed run that was left open.
var structuralStops = []TokenKind{
	TokenEOF, TokenCode, TokenData, TokenEnd, TokenProcedure, TokenFunction, TokenRoutine,
}

// parseParameter takes the tokens of one parameter up to the next comma or
// closing parenthesis. Types, names and default values are not told apart.
func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)
	depth := 0
	for !p.match(structuralStops...) {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket:
			depth++
		case TokenRParen, TokenRBracket:
			if depth == 0 {
				return p.finishNode(node)
			}
			depth--
		case TokenComma:
			if depth == 0 {
				return p.finishNode(node)
			}
		}
		p.eat(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseProcedure() *Node {
	defer p.enter("procedure")()
	defer p.scope()()
	node := p.startNode(KindProcedure)
	node.AddChild(p.parseLabel())
	p.eat(node)
	if p.check(TokenLParen) {
		node.AddChild(p.parseParameters())
	}
	p.parseProcedureTail(node)
	p.endStatement(node)
	p.skipBlank(node)

	switch p.predict(procedureBody) {
	case bodyDataCode:
		node.AddChild(p.parseDataSection())
		node.AddChild(p.parseCodeSection())
	case bodyCode:
		node.AddChild(p.parseCodeSection())
	case bodyNoCode:
		node.AddChild(p.parseDataSection())
	default:
		p.errorf([]TokenKind{TokenCode}, "expected local data or CODE, got %s", p.peek())
		node.AddChild(p.parseDataSection())
		if p.check(TokenCode) {
			node.AddChild(p.parseCodeSection())
		}
	}

	for p.atRoutineStart() {
		node.AddChild(p.parseRoutine())
	}
	return p.finishNode(node)
}

func (p *Parser) parseRoutine() *Node {
	defer p.enter("routine")()
	defer p.scope()()
	node := p.startNode(KindRoutine)
	node.AddChild(p.parseLabel())
	p.eat(node)
	p.endStatement(node)
	p.skipBlank(node)

	switch p.predict(routineShape) {
	case routineDataCode:
		node.AddChild(p.parseRoutineData())
		node.AddChild(p.parseCodeSection())
	case routineData:
		node.AddChild(p.parseRoutineData())
	case routineCode:
		node.AddChild(p.parseCodeSection())
	case routineStatements:
		node.AddChild(p.parseStatementList())
	case routineEmpty:
	default:
		node.AddChild(p.errorNode(fmt.Sprintf("expected DATA, CODE or statements, got %s", p.peek()),
			lineAnchors, TokenData, TokenCode))
		node.AddChild(p.parseStatementList())
	}
	return p.finishNode(node)
}

func (p *Parser) parseRoutineData() *Node {
	defer p.enter("data")()
	node := p.startNode(KindDataSection)
	p.eat(node)
	p.endStatement(node)
	p.parseDataEntries(node)
	return p.finishNode(node)
}

func (p *Parser) parseCodeSection() *Node {
	defer p.enter("code")()
	node := p.startNode(KindCodeSection)
	p.expect(node, TokenCode)
	p.endStatement(node)
	node.AddChild(p.parseStatementList())
	return p.finishNode(node)
}

// parseDataSection parses declarations up to CODE, the next definition or
// EOF. It returns nil when there are none.
func (p *Parser) parseDataSection() *Node {
	defer p.enter("data")()
	node := p.startNode(KindDataSection)
	p.parseDataEntries(node)
	if len(node.Children) == 0 {
		return nil
	}
	return p.finishNode(node)
}

func (p *Parser) parseDataEntries(node *Node) {
	for {
		progress := p.mustProgress(node)
		alt := p.predict(dataEntry)
		switch alt {
		case entryBlank:
			p.eat(node)
		case entryEnd:
			return
		case entryClose:
			if len(p.blocks) > 0 {
				return
			}
			node.AddChild(p.errorNode(fmt.Sprintf("unexpected %s with no open structure", p.peek()), lineAnchors))
		case -1:
			if p.check(TokenMap) {
				node.AddChild(p.parseMap())
				break
			}
			node.AddChild(p.errorNode(fmt.Sprintf("expected declaration, got %s", p.peek()), lineAnchors))
		default:
			node.AddChild(p.parseDeclarationOf(alt))
		}
		if !progress() {
			return
		}
	}
}

// parseDeclaration parses one declaration line or structure.
func (p *Parser) parseDeclaration() *Node {
	alt := p.predict(dataEntry)
	switch alt {
	case entryBlank, entryEnd, entryClose, -1:
		return p.errorNode(fmt.Sprintf("expected declaration, got %s", p.peek()), lineAnchors)
	}
	return p.parseDeclarationOf(alt)
}

func (p *Parser) parseDeclarationOf(alt int) *Node {
	defer p.enter("declaration")()
	switch alt {
	case entryVariable:
		return p.parseVariable()
	case entryEquate:
		return p.parseEquate()
	case entryItemize:
		return p.parseItemize()
	case entryStructure:
		return p.parseStructure()
	case entryClass:
		return p.parseClass()
	case entryWindow:
		return p.parseWindow()
	case entryInclude:
		return p.parseInclude()
	}
	panic(fmt.Sprintf("dataEntry alternative %d is not a declaration", alt))
}

func (p *Parser) parseVariable() *Node {
	node := p.startNode(KindVariableDecl)
	node.AddChild(p.parseLabel())
	node.AddChild(p.parseTypeSpec())
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)
	return p.finishNode(node)
}

// parseTypeSpec parses `[&]Type[(args)]`; the arguments stay opaque.
func (p *Parser) parseTypeSpec() *Node {
	node := p.startNode(KindTypeSpec)
	if p.check(TokenAmpersand) {
		p.eat(node)
	}
	if t := p.peek(); t.Kind == TokenIdent || t.Kind.IsKeyword() {
		p.eat(node)
	} else {
		p.errorf(nil, "expected type name, got %s", t)
	}
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseEquate() *Node {
	node := p.startNode(KindEquate)
	node.AddChild(p.parseLabel())
	p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseItemize() *Node {
	node := p.startNode(KindItemize)
	if !p.check(TokenItemize) {
		node.AddChild(p.parseLabel())
	}
	return p.parseStructureBody(node)
}

func (p *Parser) parseStructure() *Node {
	node := p.startNode(KindStructure)
	if !isStructureKeyword(p.peek().Kind) || isStructureKeyword(p.peekN(1).Kind) {
		node.AddChild(p.parseLabel())
	}
	return p.parseStructureBody(node)
}

func isStructureKeyword(kind TokenKind) bool {
	switch kind {
	case TokenGroup, TokenQueue, TokenRecord, TokenFile:
		return true
	}
	return false
}

// parseStructureBody parses the keyword, arguments and attributes of an
// END-closed data structure followed by its entries.
func (p *Parser) parseStructureBody(node *Node) *Node {
	defer p.enter("structure")()
	opener := p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)
	closeStructure := p.openBlock(opener, TokenEnd, TokenDot)
	p.parseDataEntries(node)
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	closeStructure()
	return p.finishNode(node)
}

func (p *Parser) parseClass() *Node {
	defer p.enter("class")()
	node := p.startNode(KindClass)
	node.AddChild(p.parseLabel())
	opener := p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)

	closeClass := p.openBlock(opener, TokenEnd, TokenDot)
	defer closeClass()
	for {
		progress := p.mustProgress(node)
		switch p.predict(classMember) {
		case memberBlank:
			p.eat(node)
		case memberMethod:
			node.AddChild(p.parsePrototype())
		case memberField:
			node.AddChild(p.parseVariable())
		case memberStructure:
			node.AddChild(p.parseStructure())
		case memberEquate:
			node.AddChild(p.parseEquate())
		case memberInclude:
			node.AddChild(p.parseInclude())
		case memberDefinition, memberClose:
			if p.closeBlock(node, opener) {
				p.endStatement(node)
			}
			return p.finishNode(node)
		default:
			node.AddChild(p.errorNode(fmt.Sprintf("expected method or field, got %s", p.peek()), lineAnchors))
		}
		if !progress() {
			p.closeBlock(node, opener)
			return p.finishNode(node)
		}
	}
}

// parseInclude parses INCLUDE('file'[,'section'])[,ONCE] as a declaration
// or a statement.
func (p *Parser) parseInclude() *Node {
	node := p.startNode(KindInclude)
	p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	} else {
		p.errorExpected(TokenLParen)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)
	return p.finishNode(node)
}

// parseLabel parses a name, dotted for Class.Method definitions.
func (p *Parser) parseLabel() *Node {
	node := p.startNode(KindLabel)
	if !isLabel(p.peek().Kind) {
		p.errorf(labelKinds[:1], "expected label, got %s", p.peek())
		return p.finishNode(node)
	}
	p.eat(node)
	for p.check(TokenDot) && isLabel(p.peekN(1).Kind) {
		p.eat(node)
		p.eat(node)
	}
	return p.finishNode(node)
}

// parseAttributes parses a run of `,NAME[(args)]` attributes. Only the
// names are checked; arguments stay opaque.
func (p *Parser) parseAttributes() *Node {
	node := p.startNode(KindAttributeList)
	for p.check(TokenComma) {
		p.eat(node)
		node.AddChild(p.parseAttribute())
	}
	return p.finishNode(node)
}

var attributeAnchors = []TokenKind{TokenComma, TokenNewline, TokenSemicolon}

func (p *Parser) parseAttribute() *Node {
	node := p.startNode(KindAttribute)
	name := p.peek()
	if name.Kind != TokenIdent && !name.Kind.IsKeyword() {
		node.AddChild(p.errorNode(fmt.Sprintf("expected attribute name, got %s", name), attributeAnchors, TokenIdent))
		return p.finishNode(node)
	}
	p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	return p.finishNode(node)
}

// parseParenOpaque consumes '(' and every token up to the matching ')' into
// node; the inner tokens form one Opaque child. The run may not cross a
// line break.
func (p *Parser) parseParenOpaque(node *Node) {
	opener := p.eat(node)
	inner := p.startNode(KindOpaque)
	depth := 1
	for {
		switch p.peek().Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				node.AddChild(p.finishNode(inner))
				p.eat(node)
				return
			}
		case TokenNewline, TokenEOF:
			node.AddChild(p.finishNode(inner))
			p.errorf([]TokenKind{TokenRParen}, "expected ) to close ( at %s, got %s", opener.Span.Start, p.peek())
			return
		}
		p.eat(inner)
	}
}
