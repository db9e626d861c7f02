package outline

import (
	"strings"

	"github.com/dhamidi/clw/clarion/parser"
)

// Walk visits every symbol depth first. Returning false from fn skips the
// children of the visited symbol.
func Walk(symbols []Symbol, fn func(Symbol) bool) {
	for _, s := range symbols {
		if fn(s) {
			Walk(s.Children, fn)
		}
	}
}

// SymbolAt returns the chain of symbols enclosing line:col, outermost
// first. The result is empty when no symbol contains the position.
func SymbolAt(symbols []Symbol, line, col int) []Symbol {
	var path []Symbol
	for {
		found := false
		for _, s := range symbols {
			if s.Contains(line, col) {
				path = append(path, s)
				symbols = s.Children
				found = true
				break
			}
		}
		if !found {
			return path
		}
	}
}

// Find returns the symbols that Match name.
func Find(symbols []Symbol, name string) []Symbol {
	var out []Symbol
	Walk(symbols, func(s Symbol) bool {
		if Match(s, name) {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Match reports whether s is called name, ignoring case. A name without a
// dot also matches the method part of Class.Method definitions.
func Match(s Symbol, name string) bool {
	if strings.EqualFold(s.Name, name) {
		return true
	}
	if s.Kind != KindMethod || strings.Contains(name, ".") {
		return false
	}
	i := strings.LastIndexByte(s.Name, '.')
	return i >= 0 && strings.EqualFold(s.Name[i+1:], name)
}

// WindowOutline re-derives the outline of a window by parsing its tokens
// on their own with parser.ParseUIFragment. Token ranges in the result
// refer to tokens, like the ones of win.
func WindowOutline(tokens []parser.Token, win *parser.Node, opts ...parser.Option) (Symbol, parser.Diagnostics) {
	fragment, diags := parser.ParseUIFragment(parser.NodeTokens(tokens, win), opts...)
	w := fragment.FirstChildOfKind(parser.KindWindow)
	if w == nil {
		return Symbol{}, diags
	}
	s, _ := symbol(w)
	shift(&s, win.Start)
	return s, diags
}

func shift(s *Symbol, offset int) {
	s.Start += offset
	s.Stop += offset
	for i := range s.Children {
		shift(&s.Children[i], offset)
	}
}
