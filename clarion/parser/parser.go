package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("clw.parser")

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithPredictionCache shares c between parses. Without it every parse
// starts from an empty cache.
func WithPredictionCache(c *PredictionCache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// WithMaxLookahead bounds the tokens one decision may examine.
func WithMaxLookahead(n int) Option {
	return func(p *Parser) {
		p.maxLookahead = max(n, 1)
	}
}

// WithTrace logs every decision outcome to the clw.parser logger at debug
// level.
func WithTrace() Option {
	return func(p *Parser) {
		p.trace = true
	}
}

// WithHeaderOptional accepts a file without a PROGRAM or MEMBER header,
// as INCLUDE files are written, without reporting it. The root is still a
// Member node.
func WithHeaderOptional() Option {
	return func(p *Parser) {
		p.headerOptional = true
	}
}

type parseFunc func(*Parser) *Node

// Parser holds the state of one parse. It is created by the Parse*
// functions and never shared.
type Parser struct {
	file           string
	cache          *PredictionCache
	maxLookahead   int
	trace          bool
	headerOptional bool

	cursor *Cursor
	mode   Mode
	diags  Diagnostics
	rules  []string
	blocks []openBlock
}

// openBlock is a construct waiting for one of its closers.
type openBlock struct {
	opener  Token
	closers []TokenKind
}

func newParser(opts []Option) *Parser {
	p := &Parser{
		maxLookahead: DefaultMaxLookahead,
		mode:         HonorBreaks,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = NewPredictionCache()
	}
	return p
}

func (p *Parser) run(tokens []Token, entry parseFunc) (*Node, Diagnostics) {
	p.cursor = NewCursor(tokens)
	root := entry(p)
	return root, p.diags
}

// ParseFile parses a PROGRAM or MEMBER compilation unit. It always returns
// a tree; problems are reported in the diagnostics.
func ParseFile(tokens []Token, opts ...Option) (*Node, Diagnostics) {
	return newParser(opts).run(tokens, (*Parser).parseFile)
}

// ParseUIFragment parses the tokens of one WINDOW or APPLICATION structure,
// or of a run of UI body lines, outside of any file.
func ParseUIFragment(tokens []Token, opts ...Option) (*Node, Diagnostics) {
	return newParser(opts).run(tokens, (*Parser).parseUIFragment)
}

// ParseStatements parses a run of executable statements.
func ParseStatements(tokens []Token, opts ...Option) (*Node, Diagnostics) {
	return newParser(opts).run(tokens, (*Parser).parseStatementFragment)
}

// ParseExpression parses one expression. Line breaks are insignificant.
func ParseExpression(tokens []Token, opts ...Option) (*Node, Diagnostics) {
	return newParser(opts).run(tokens, (*Parser).parseExpressionFragment)
}

// ParseSource lexes src and parses it as a file.
func ParseSource(src []byte, opts ...Option) (*Node, Diagnostics) {
	p := newParser(opts)
	return p.run(Tokenize(src, p.file), (*Parser).parseFile)
}

// ParseReader reads r to the end and parses it as a file. The error is
// non-nil only when reading fails.
func ParseReader(r io.Reader, opts ...Option) (*Node, Diagnostics, error) {
	p := newParser(opts)
	tokens, err := ReadTokens(r, p.file)
	if err != nil {
		return nil, nil, err
	}
	root, diags := p.run(tokens, (*Parser).parseFile)
	return root, diags, nil
}

func (p *Parser) parseStatementFragment() *Node {
	list := p.parseStatementList()
	for !p.check(TokenEOF) {
		tok := p.peek()
		list.AddChild(p.errorNode(fmt.Sprintf("unexpected %s", tok), lineAnchors))
		p.skipBlank(list)
		list.AddChild(p.parseStatementList())
	}
	return p.finishNode(list)
}

func (p *Parser) parseExpressionFragment() *Node {
	defer p.setMode(SkipBreaks)()
	expr := p.parseExpression()
	if !p.check(TokenEOF) {
		node := p.startNode(KindError)
		node.AddChild(expr)
		node.AddChild(p.errorNode(fmt.Sprintf("unexpected %s after expression", p.peek()), nil))
		return p.finishNode(node)
	}
	return expr
}

func (p *Parser) peek() Token {
	return p.cursor.Peek(0, p.mode)
}

func (p *Parser) peekN(n int) Token {
	return p.cursor.Peek(n, p.mode)
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) advance() Token {
	tok, _ := p.cursor.Consume(p.mode)
	return tok
}

func (p *Parser) leaf(tok Token) *Node {
	return &Node{Kind: KindToken, Token: &tok, Start: tok.Index, Stop: tok.Index, Span: tok.Span}
}

// eat consumes the next token into n. EOF is never consumed.
func (p *Parser) eat(n *Node) Token {
	tok := p.advance()
	if tok.Kind != TokenEOF {
		n.AddChild(p.leaf(tok))
	}
	return tok
}

// expect consumes a token of the given kind into n, or reports it missing.
func (p *Parser) expect(n *Node, kind TokenKind) bool {
	if p.check(kind) {
		p.eat(n)
		return true
	}
	p.errorExpected(kind)
	return false
}

func isLabel(kind TokenKind) bool {
	return slices.Contains(labelKinds, kind)
}

// setMode switches the line break visibility and returns the restore
// function.
func (p *Parser) setMode(m Mode) func() {
	saved := p.mode
	p.mode = m
	return func() {
		p.mode = saved
	}
}

// enter pushes a rule name for diagnostics and returns the pop function.
func (p *Parser) enter(rule string) func() {
	p.rules = append(p.rules, rule)
	return func() {
		p.rules = p.rules[:len(p.rules)-1]
	}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// finishNode sets the token range of n from its children. A node without
// tokens sits empty in front of the next token.
func (p *Parser) finishNode(n *Node) *Node {
	var first, last *Node
	for _, child := range n.Children {
		if child.IsEmpty() {
			continue
		}
		if first == nil {
			first = child
		}
		last = child
	}
	if first == nil {
		next := p.peek()
		n.Start = next.Index
		n.Stop = next.Index - 1
		n.Span = Span{Start: next.Span.Start, End: next.Span.Start}
		return n
	}
	n.Start = first.Start
	n.Stop = last.Stop
	n.Span = Span{Start: first.Span.Start, End: last.Span.End}
	return n
}

func tokenRange(tok Token) Range {
	return Range{Start: tok.Index, Stop: tok.Index, Span: tok.Span}
}

func (p *Parser) report(kind DiagnosticKind, rng Range, msg string, expected []TokenKind, decision string) {
	p.diags = append(p.diags, Diagnostic{
		Kind:      kind,
		Range:     rng,
		Message:   msg,
		RuleStack: slices.Clone(p.rules),
		Expected:  expected,
		Decision:  decision,
	})
}

// errorf reports a SyntaxError at the next token without consuming
// anything.
func (p *Parser) errorf(expected []TokenKind, format string, args ...any) {
	p.report(SyntaxError, tokenRange(p.peek()), fmt.Sprintf(format, args...), expected, "")
}

func (p *Parser) errorExpected(expected ...TokenKind) {
	p.errorf(expected, "expected %s, got %s", expectedString(expected), p.peek())
}

var lineAnchors = []TokenKind{TokenNewline, TokenSemicolon}

// errorNode reports msg at the next token, then skips to the first anchor
// or EOF. The skipped tokens become the children of the returned error
// node, which stays in the tree where the failure happened.
func (p *Parser) errorNode(msg string, anchors []TokenKind, expected ...TokenKind) *Node {
	tok := p.peek()
	node := &Node{
		Kind: KindError,
		Error: &Error{
			Message:  msg,
			Expected: expected,
			Got:      &tok,
		},
	}
	p.report(SyntaxError, tokenRange(tok), msg, expected, "")
	p.recoverTo(node, anchors)
	return p.finishNode(node)
}

func (p *Parser) recoverTo(node *Node, anchors []TokenKind) {
	first := p.peek()
	last := first
	skipped := 0
	for !p.check(TokenEOF) && !p.match(anchors...) {
		last = p.eat(node)
		skipped++
	}
	if skipped == 0 {
		return
	}
	p.report(RecoveryAttempt,
		Range{Start: first.Index, Stop: last.Index, Span: Span{Start: first.Span.Start, End: last.Span.End}},
		fmt.Sprintf("skipped %d token(s) to resynchronize at %s", skipped, p.peek()),
		anchors, "")
}

// skipOne wraps the next token in an error node.
func (p *Parser) skipOne(msg string) *Node {
	tok := p.peek()
	node := &Node{Kind: KindError, Error: &Error{Message: msg, Got: &tok}}
	p.report(SyntaxError, tokenRange(tok), msg, nil, "")
	p.eat(node)
	p.report(RecoveryAttempt, tokenRange(tok), fmt.Sprintf("skipped %s", tok), nil, "")
	return p.finishNode(node)
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end. When nothing was consumed the next token is skipped into an
// error node under n; the result is false only at EOF.
func (p *Parser) mustProgress(n *Node) func() bool {
	saved := p.cursor.Index()
	return func() bool {
		if p.cursor.Index() != saved {
			return true
		}
		if p.check(TokenEOF) {
			return false
		}
		n.AddChild(p.skipOne(fmt.Sprintf("unexpected %s", p.peek())))
		return true
	}
}

// skipBlank consumes empty lines and stray semicolons into n.
func (p *Parser) skipBlank(n *Node) {
	for p.match(TokenNewline, TokenSemicolon) {
		p.eat(n)
	}
}

// implicitEnds end a statement without being consumed by it.
var implicitEnds = []TokenKind{
	TokenEOF, TokenEnd, TokenDot, TokenElse, TokenElsif, TokenOf, TokenOrof,
}

// endStatement consumes the line break or semicolon that ends a statement
// or declaration line.
func (p *Parser) endStatement(n *Node) {
	switch {
	case p.match(TokenNewline, TokenSemicolon):
		p.eat(n)
	case p.match(implicitEnds...):
	default:
		n.AddChild(p.errorNode(fmt.Sprintf("expected end of statement, got %s", p.peek()), lineAnchors, TokenNewline))
		if p.match(TokenNewline, TokenSemicolon) {
			p.eat(n)
		}
	}
}

// openBlock records that opener waits for one of closers and returns the
// function that forgets it again.
func (p *Parser) openBlock(opener Token, closers ...TokenKind) func() {
	p.blocks = append(p.blocks, openBlock{opener: opener, closers: closers})
	depth := len(p.blocks)
	return func() {
		p.blocks = p.blocks[:depth-1]
	}
}

// scope hides the open blocks of the enclosing definition.
func (p *Parser) scope() func() {
	saved := p.blocks
	p.blocks = nil
	return func() {
		p.blocks = saved
	}
}

// closes reports whether an open block accepts kind as a closer.
func (p *Parser) closes(kind TokenKind) bool {
	for _, b := range p.blocks {
		if slices.Contains(b.closers, kind) {
			return true
		}
	}
	return false
}

// closeBlock consumes the END or '.' of the block opened by opener, or
// reports it missing.
func (p *Parser) closeBlock(n *Node, opener Token) bool {
	if p.match(TokenEnd, TokenDot) {
		p.eat(n)
		return true
	}
	p.errorf([]TokenKind{TokenEnd}, "missing END for %s opened at %s, got %s",
		strings.ToUpper(opener.Literal), opener.Span.Start, p.peek())
	return false
}

// atDefinitionStart reports whether a procedure, method or routine head
// starts at the next token.
func (p *Parser) atDefinitionStart() bool {
	i := 0
	if !isLabel(p.peekN(i).Kind) {
		return false
	}
	for p.peekN(i+1).Kind == TokenDot && isLabel(p.peekN(i+2).Kind) {
		i += 2
	}
	switch p.peekN(i + 1).Kind {
	case TokenProcedure, TokenFunction, TokenRoutine:
		return true
	}
	return false
}

func (p *Parser) atRoutineStart() bool {
	return isLabel(p.peek().Kind) && p.peekN(1).Kind == TokenRoutine
}

// predict resolves d at the cursor and reports the informational outcomes
// of the resolution. It returns -1 when no alternative matches.
func (p *Parser) predict(d *Decision) int {
	mode := d.Mode
	if d.Contextual {
		mode = p.mode
	}
	pred, cached := p.cache.lookup(d, mode, p.cursor)
	if !cached {
		pred = d.simulate(p.cursor, mode, p.maxLookahead)
		p.cache.store(d, mode, pred)
	}
	if p.trace {
		log.Debugf("%s at %s: %s after %d token(s) (cached %t)",
			d.Name, p.cursor.Peek(0, mode).Span.Start, d.altName(pred.alt), len(pred.window), cached)
	}
	if pred.ambiguous || pred.fullDepth {
		p.reportPrediction(d, mode, pred)
	}
	return pred.alt
}

func (d *Decision) altName(i int) string {
	if i < 0 || i >= len(d.alts) {
		return "no alternative"
	}
	return d.alts[i].name
}

func (p *Parser) reportPrediction(d *Decision, mode Mode, pred prediction) {
	m := p.cursor.Mark()
	first := p.cursor.Peek(0, mode)
	last := first
	for range len(pred.window) {
		last, _ = p.cursor.Consume(mode)
	}
	p.cursor.Rewind(m)

	names := make([]string, len(pred.viable))
	for i, alt := range pred.viable {
		names[i] = d.altName(alt)
	}
	var msg string
	if pred.fullDepth {
		msg = fmt.Sprintf("%s used the full lookahead depth of %d tokens; candidates %s, chose %s",
			d.Name, len(pred.window), strings.Join(names, ", "), d.altName(pred.alt))
	} else {
		msg = fmt.Sprintf("ambiguous %s: %s all match, chose %s",
			d.Name, strings.Join(names, ", "), d.altName(pred.alt))
	}
	rng := Range{Start: first.Index, Stop: last.Index, Span: Span{Start: first.Span.Start, End: last.Span.End}}
	p.report(Ambiguity, rng, msg, nil, d.Name)
}
