package parser

// ExtractTokens copies tokens[start..stop] (inclusive) into a standalone
// stream for ParseUIFragment or ParseStatements. Indexes are rebased to the
// copy and an EOF token is appended after the last one.
func ExtractTokens(tokens []Token, start, stop int) []Token {
	start = max(start, 0)
	stop = min(stop, len(tokens)-1)
	var out []Token
	for i := start; i <= stop; i++ {
		if tokens[i].Kind == TokenEOF {
			break
		}
		tok := tokens[i]
		tok.Index = len(out)
		out = append(out, tok)
	}
	eof := Token{Kind: TokenEOF, Index: len(out)}
	if n := len(out); n > 0 {
		end := out[n-1].Span.End
		eof.Span = Span{Start: end, End: end}
	}
	return append(out, eof)
}

// NodeTokens returns the tokens covered by n as a standalone stream.
func NodeTokens(tokens []Token, n *Node) []Token {
	return ExtractTokens(tokens, n.Start, n.Stop)
}
