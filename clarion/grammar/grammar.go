// Package grammar holds the reference grammar of Clarion expressions in
// EBNF and an Earley recognizer that checks token streams against it. The
// hand-written parser is tested for agreement with it.
package grammar

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/clw/clarion/parser"
)

//go:embed expression.ebnf
var expressionSource string

// Start is the start production of the expression grammar.
const Start = "Expression"

// Source returns the EBNF text of the expression grammar.
func Source() string {
	return expressionSource
}

// Expression parses and verifies the expression grammar.
func Expression() (ebnf.Grammar, error) {
	return Load("expression.ebnf", expressionSource, Start)
}

// Load parses an EBNF grammar and verifies that every production is
// defined and reachable from start.
func Load(name, src, start string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(name, strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse grammar %s: %w", name, err)
	}
	if err := ebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar %s: %w", name, err)
	}
	return g, nil
}

// Kinds returns the kind names of the tokens the grammar sees: trivia,
// line breaks and EOF are dropped.
func Kinds(tokens []parser.Token) []string {
	var kinds []string
	for _, tok := range tokens {
		if tok.Kind.IsTrivia() || tok.Kind == parser.TokenNewline || tok.Kind == parser.TokenEOF {
			continue
		}
		kinds = append(kinds, tok.Kind.String())
	}
	return kinds
}
