// Package parser provides an error-tolerant parser for Clarion source code.
//
// # Overview
//
// The parser turns a token sequence into a concrete syntax tree (CST) that
// keeps every consumed token as a leaf. It is designed for editor tooling,
// where incomplete or malformed input is the normal case: every entry point
// returns a tree together with a list of diagnostics and never fails on bad
// input.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│   Parser    │────▶ *Node
//	│  (bytes)    │     │  ([]Token)  │     │             │────▶ Diagnostics
//	└─────────────┘     └─────────────┘     └──────┬──────┘
//	                                               │
//	                                        ┌──────▼──────┐
//	                                        │ Prediction  │
//	                                        │   Cache     │
//	                                        └─────────────┘
//
// # Line Breaks
//
// Line breaks end statements and declarations, except inside parentheses,
// brackets and braces. Lookahead queries take a Mode: SkipBreaks hides line
// breaks, HonorBreaks shows them. Comments and continuation markers are
// hidden in both modes.
//
// # Prediction
//
// Grammar forks that a fixed number of tokens cannot resolve, such as the
// single-line and block forms of IF, are described as a Decision: an ordered
// list of token patterns. The parser simulates all patterns over the
// upcoming tokens at once and stops as soon as one remains. When several
// patterns match, the first one listed wins and an Ambiguity diagnostic is
// recorded. Outcomes are memoized in a PredictionCache keyed by the token
// kinds that were examined; one cache can be shared by concurrent parses:
//
//	cache := parser.NewPredictionCache()
//	root, diags := parser.ParseFile(tokens, parser.WithPredictionCache(cache))
//
// # Recovery
//
// When a rule fails, the parser records a SyntaxError, skips to an anchor
// token such as the end of the line and leaves a KindError node holding the
// skipped tokens where the failure happened. END and '.' close whichever
// block is innermost; an END that no open block expects is reported and
// skipped instead of closing an enclosing structure.
//
// # Window Structures
//
// WINDOW and APPLICATION structures are parsed as part of a file and, on
// their own, by ParseUIFragment:
//
//	tokens := parser.NodeTokens(all, windowNode)
//	fragment, diags := parser.ParseUIFragment(tokens)
//
// Attribute arguments are kept as opaque token runs.
package parser
