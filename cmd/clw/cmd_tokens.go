package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/format"
)

func newTokensCmd() *cobra.Command {
	var outputFormat string
	var trivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a Clarion source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			tokens := src.tokens
			if !trivia {
				tokens = significant(tokens)
			}
			return encode(cmd, outputFormat, &format.Result{File: src.path, Tokens: tokens})
		},
	}

	addFormatFlag(cmd, &outputFormat, "tree")
	cmd.Flags().BoolVar(&trivia, "trivia", false, "include comments and line continuations")

	return cmd
}

func significant(tokens []parser.Token) []parser.Token {
	out := make([]parser.Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Kind.IsTrivia() {
			out = append(out, tok)
		}
	}
	return out
}
