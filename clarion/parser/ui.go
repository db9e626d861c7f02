package parser

import (
	"fmt"
	"slices"
	"strings"
)

// controlNames are the control statements recognized inside window
// structures. Other names followed by arguments degrade to UnknownContent.
var controlNames = map[string]bool{
	"BUTTON": true, "PROMPT": true, "ENTRY": true, "STRING": true, "LIST": true,
	"CHECK": true, "RADIO": true, "COMBO": true, "SPIN": true, "TEXT": true,
	"IMAGE": true, "BOX": true, "LINE": true, "ELLIPSE": true, "REGION": true,
	"PANEL": true, "PROGRESS": true, "OLE": true, "VBX": true, "CUSTOM": true,
}

// containment lists the children each structure may hold. Violations are
// reported but still parsed.
var containment = map[TokenKind][]NodeKind{
	TokenWindow:      {KindMenubar, KindToolbar, KindSheet, KindUIGroup, KindOption, KindControl},
	TokenApplication: {KindMenubar, KindToolbar, KindSheet, KindUIGroup, KindOption, KindControl},
	TokenMenubar:     {KindMenu, KindItem},
	TokenMenu:        {KindMenu, KindItem},
	TokenToolbar:     {KindSheet, KindUIGroup, KindOption, KindControl},
	TokenSheet:       {KindTab},
	TokenTab:         {KindSheet, KindUIGroup, KindOption, KindControl},
	TokenGroup:       {KindSheet, KindUIGroup, KindOption, KindControl},
	TokenOption:      {KindUIGroup, KindControl},
}

// checkContainment reports kind appearing inside a container that does not
// allow it. TokenEOF stands for a fragment without a container.
func (p *Parser) checkContainment(container TokenKind, kind NodeKind) {
	allowed, ok := containment[container]
	if !ok || slices.Contains(allowed, kind) {
		return
	}
	p.errorf(nil, "%s is not allowed in %s", strings.ToUpper(p.peek().Literal), container)
}

// parseWindow parses `[Label] WINDOW|APPLICATION(title),attrs` and its body
// up to END.
func (p *Parser) parseWindow() *Node {
	defer p.enter("window")()
	node := p.startNode(KindWindow)
	if next := p.peekN(1).Kind; !p.match(TokenWindow, TokenApplication) || next == TokenWindow || next == TokenApplication {
		node.AddChild(p.parseLabel())
	}
	opener := p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)

	closeWindow := p.openBlock(opener, TokenEnd, TokenDot)
	p.parseUIBody(node, opener.Kind)
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	closeWindow()
	return p.finishNode(node)
}

var uiContainerKinds = map[int]NodeKind{
	uiMenubar: KindMenubar,
	uiMenu:    KindMenu,
	uiToolbar: KindToolbar,
	uiSheet:   KindSheet,
	uiTab:     KindTab,
	uiGroup:   KindUIGroup,
	uiOption:  KindOption,
}

// parseUIBody parses structure lines into node until a closer or anything
// that cannot belong to a window.
func (p *Parser) parseUIBody(node *Node, container TokenKind) {
	for {
		progress := p.mustProgress(node)
		alt := p.predict(uiItem)
		switch alt {
		case uiBlank:
			p.eat(node)
		case uiClose, uiOutside:
			return
		case uiMenubar, uiMenu, uiToolbar, uiSheet, uiTab, uiGroup, uiOption:
			kind := uiContainerKinds[alt]
			p.checkContainment(container, kind)
			node.AddChild(p.parseUIContainer(kind))
		case uiItemEntry:
			p.checkContainment(container, KindItem)
			node.AddChild(p.parseUIItem())
		case uiControl:
			if !controlNames[strings.ToUpper(p.peek().Literal)] {
				node.AddChild(p.parseUnknownContent())
				break
			}
			p.checkContainment(container, KindControl)
			node.AddChild(p.parseControl())
		case uiBare:
			control := p.startNode(KindControl)
			p.eat(control)
			p.endStatement(control)
			node.AddChild(p.finishNode(control))
		case uiUnknown:
			node.AddChild(p.parseUnknownContent())
		default:
			node.AddChild(p.errorNode(fmt.Sprintf("expected window control, got %s", p.peek()), lineAnchors))
		}
		if !progress() {
			return
		}
	}
}

func (p *Parser) parseUIContainer(kind NodeKind) *Node {
	defer p.enter(strings.ToLower(kind.String()))()
	node := p.startNode(kind)
	opener := p.eat(node)
	if p.check(TokenLParen) {
		p.parseParenOpaque(node)
	}
	if p.check(TokenComma) {
		node.AddChild(p.parseAttributes())
	}
	p.endStatement(node)

	closeContainer := p.openBlock(opener, TokenEnd, TokenDot)
	p.parseUIBody(node, opener.Kind)
	if p.closeBlock(node, opener) {
		p.endStatement(node)
	}
	closeContainer()
	return p.finishNode(node)
}

// parseUIItem parses a menu ITEM line; items have no body.
func (p *Parser) parseUIItem() *Node {
	node := p.startNode(KindItem)
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

func (p *Parser) parseControl() *Node {
	node := p.startNode(KindControl)
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

// parseUnknownContent keeps an unrecognized line as one opaque node.
func (p *Parser) parseUnknownContent() *Node {
	node := p.startNode(KindUnknownContent)
	for !p.check(TokenEOF) && !p.match(lineAnchors...) {
		p.eat(node)
	}
	p.endStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseUIFragment() *Node {
	defer p.enter("ui")()
	node := p.startNode(KindUIFragment)
	p.skipBlank(node)
	switch p.predict(uiFragment) {
	case fragmentWindow:
		node.AddChild(p.parseWindow())
	case fragmentItems:
		p.parseUIBody(node, TokenEOF)
	case fragmentEmpty:
	default:
		node.AddChild(p.errorNode(fmt.Sprintf("expected window or window controls, got %s", p.peek()), lineAnchors))
	}
	p.skipBlank(node)
	if !p.check(TokenEOF) {
		node.AddChild(p.errorNode(fmt.Sprintf("unexpected %s after window structure", p.peek()), nil))
	}
	return p.finishNode(node)
}
