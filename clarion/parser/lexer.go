package parser

import (
	"fmt"
	"io"
)

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		pos:    0,
		line:   1,
		column: 1,
	}
}

// Tokenize lexes the whole input. Whitespace is dropped; comments,
// continuations and line breaks are kept. The result always ends with EOF
// and every token's Index is its position in the slice.
func Tokenize(input []byte, file string) []Token {
	l := NewLexer(input, file)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Kind == TokenWhitespace {
			continue
		}
		tok.Index = len(tokens)
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

// ReadTokens reads r to the end and tokenizes it. The only error is a read
// failure of r.
func ReadTokens(r io.Reader, file string) ([]Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return Tokenize(data, file), nil
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) makeToken(kind TokenKind, start Position) Token {
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: l.Position()},
		Literal: string(l.input[start.Offset:l.pos]),
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	switch {
	case ch == ' ' || ch == '\t' || ch == '\f':
		for c := l.peek(); c == ' ' || c == '\t' || c == '\f'; c = l.peek() {
			l.advance()
		}
		return l.makeToken(TokenWhitespace, startPos)
	case ch == '\r' && l.peekN(1) == '\n':
		l.advanceN(2)
		return l.makeToken(TokenNewline, startPos)
	case ch == '\n' || ch == '\r':
		l.advance()
		return l.makeToken(TokenNewline, startPos)
	case ch == '!':
		l.skipToLineEnd()
		return l.makeToken(TokenComment, startPos)
	case ch == '|':
		return l.scanContinuation(startPos)
	case ch == '\'':
		return l.scanString(startPos)
	case ch == '?' && isIdentStart(l.peekN(1)):
		l.advance()
		l.scanIdentTail()
		return l.makeToken(TokenFieldEquate, startPos)
	case ch == '@' && isLetter(l.peekN(1)):
		return l.scanPicture(startPos)
	case isIdentStart(ch):
		l.advance()
		l.scanIdentTail()
		tok := l.makeToken(TokenIdent, startPos)
		tok.Kind = LookupKeyword(tok.Literal)
		return tok
	case isDigit(ch):
		return l.scanNumber(startPos)
	}

	return l.scanOperator(startPos)
}

func (l *Lexer) skipToLineEnd() {
	for l.pos < len(l.input) && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
}

// scanContinuation consumes '|', anything up to the end of the line and
// the line break itself, so the logical line continues.
func (l *Lexer) scanContinuation(start Position) Token {
	l.advance()
	l.skipToLineEnd()
	if l.peek() == '\r' && l.peekN(1) == '\n' {
		l.advanceN(2)
	} else if l.peek() == '\n' || l.peek() == '\r' {
		l.advance()
	}
	return l.makeToken(TokenContinuation, start)
}

func (l *Lexer) scanString(start Position) Token {
	l.advance()
	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '\n' || ch == '\r' {
			return l.makeToken(TokenError, start)
		}
		l.advance()
		if ch == '\'' {
			if l.peek() == '\'' {
				l.advance()
				continue
			}
			return l.makeToken(TokenStringLiteral, start)
		}
	}
	return l.makeToken(TokenError, start)
}

func (l *Lexer) scanPicture(start Position) Token {
	l.advance()
	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == ',' || ch == ')' || ch == '\'' {
			break
		}
		l.advance()
	}
	return l.makeToken(TokenPicture, start)
}

func (l *Lexer) scanIdentTail() {
	for {
		ch := l.peek()
		if isIdentPart(ch) {
			l.advance()
			continue
		}
		if ch == ':' && isIdentPart(l.peekN(1)) {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) scanNumber(start Position) Token {
	for isHexDigit(l.peek()) {
		l.advance()
	}
	switch l.peek() {
	case 'h', 'H':
		l.advance()
		return l.makeToken(TokenIntLiteral, start)
	}
	lit := l.input[start.Offset:l.pos]
	for _, c := range lit {
		if !isDigit(c) {
			// hex digits without the h suffix: the letters start an identifier
			l.rewindTo(start)
			for isDigit(l.peek()) {
				l.advance()
			}
			return l.makeToken(TokenIntLiteral, start)
		}
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		if (l.peek() == 'e' || l.peek() == 'E') && (isDigit(l.peekN(1)) || ((l.peekN(1) == '-' || l.peekN(1) == '+') && isDigit(l.peekN(2)))) {
			l.advanceN(2)
			for isDigit(l.peek()) {
				l.advance()
			}
		}
		return l.makeToken(TokenRealLiteral, start)
	}
	return l.makeToken(TokenIntLiteral, start)
}

func (l *Lexer) rewindTo(p Position) {
	l.pos = p.Offset
	l.line = p.Line
	l.column = p.Column
}

var threeCharOps = map[string]TokenKind{
	":=:": TokenDeepAssign,
}

var twoCharOps = map[string]TokenKind{
	"<>": TokenNE,
	"~=": TokenNE,
	"<=": TokenLE,
	">=": TokenGE,
	"=<": TokenLE,
	"=>": TokenGE,
	"+=": TokenPlusAssign,
	"-=": TokenMinusAssign,
	"*=": TokenStarAssign,
	"/=": TokenSlashAssign,
	"&=": TokenRefAssign,
}

var oneCharOps = map[byte]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	',': TokenComma,
	';': TokenSemicolon,
	'.': TokenDot,
	':': TokenColon,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'^': TokenCaret,
	'&': TokenAmpersand,
	'~': TokenTilde,
	'?': TokenQuestion,
	'=': TokenEQ,
	'<': TokenLT,
	'>': TokenGT,
}

func (l *Lexer) scanOperator(start Position) Token {
	if l.pos+3 <= len(l.input) {
		if kind, ok := threeCharOps[string(l.input[l.pos:l.pos+3])]; ok {
			l.advanceN(3)
			return l.makeToken(kind, start)
		}
	}
	if l.pos+2 <= len(l.input) {
		if kind, ok := twoCharOps[string(l.input[l.pos:l.pos+2])]; ok {
			l.advanceN(2)
			return l.makeToken(kind, start)
		}
	}
	if kind, ok := oneCharOps[l.peek()]; ok {
		l.advance()
		return l.makeToken(kind, start)
	}
	l.advance()
	return l.makeToken(TokenError, start)
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
