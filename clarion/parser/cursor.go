package parser

import "errors"

// ErrUnexpectedEndOfInput is returned by Cursor.Consume at end of file.
var ErrUnexpectedEndOfInput = errors.New("unexpected end of input")

// Mode selects which tokens a lookahead query sees.
type Mode int

const (
	// SkipBreaks hides comments, continuations and line breaks.
	SkipBreaks Mode = iota
	// HonorBreaks hides comments and continuations; line breaks are visible.
	HonorBreaks
)

func (m Mode) String() string {
	if m == HonorBreaks {
		return "honor-breaks"
	}
	return "skip-breaks"
}

func (m Mode) skips(kind TokenKind) bool {
	if kind.IsTrivia() {
		return true
	}
	return m == SkipBreaks && kind == TokenNewline
}

// Mark is an opaque cursor position returned by Cursor.Mark.
type Mark int

// Cursor is a position in a token sequence. The sequence must end with an
// EOF token. A Cursor belongs to one parse and is not safe for concurrent
// use.
type Cursor struct {
	tokens []Token
	pos    int
}

func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: ensureEOF(tokens)}
}

// ensureEOF returns tokens unchanged when they already end with EOF and
// carry their slice positions as Index; otherwise a fixed-up copy.
func ensureEOF(tokens []Token) []Token {
	n := len(tokens)
	ok := n > 0 && tokens[n-1].Kind == TokenEOF
	for i := 0; ok && i < n; i++ {
		ok = tokens[i].Index == i
	}
	if ok {
		return tokens
	}
	out := make([]Token, n, n+1)
	copy(out, tokens)
	for i := range out {
		out[i].Index = i
	}
	if n == 0 || out[n-1].Kind != TokenEOF {
		eof := Token{Kind: TokenEOF, Index: n}
		if n > 0 {
			end := out[n-1].Span.End
			eof.Span = Span{Start: end, End: end}
		}
		out = append(out, eof)
	}
	return out
}

func (c *Cursor) Tokens() []Token {
	return c.tokens
}

// Index returns the raw index of the next token, trivia included.
func (c *Cursor) Index() int {
	return c.pos
}

func (c *Cursor) Mark() Mark {
	return Mark(c.pos)
}

func (c *Cursor) Rewind(m Mark) {
	c.pos = int(m)
}

// skip returns the raw index of the first token at or after i visible in mode.
func (c *Cursor) skip(i int, mode Mode) int {
	last := len(c.tokens) - 1
	for i < last && mode.skips(c.tokens[i].Kind) {
		i++
	}
	if i > last {
		return last
	}
	return i
}

// Peek returns the token offset positions ahead of the cursor, counting only
// tokens visible in mode. Peeking past the end yields EOF.
func (c *Cursor) Peek(offset int, mode Mode) Token {
	i := c.skip(c.pos, mode)
	for ; offset > 0; offset-- {
		if c.tokens[i].Kind == TokenEOF {
			return c.tokens[i]
		}
		i = c.skip(i+1, mode)
	}
	return c.tokens[i]
}

// Consume skips tokens invisible in mode, then returns and moves past the
// next token. At EOF it returns the EOF token and ErrUnexpectedEndOfInput
// without moving.
func (c *Cursor) Consume(mode Mode) (Token, error) {
	i := c.skip(c.pos, mode)
	tok := c.tokens[i]
	if tok.Kind == TokenEOF {
		c.pos = i
		return tok, ErrUnexpectedEndOfInput
	}
	c.pos = i + 1
	return tok, nil
}
