package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/grammar"
	"github.com/dhamidi/clw/clarion/parser"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the reference grammar of Clarion expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := grammar.Expression(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), grammar.Source())
			return nil
		},
	}
	cmd.AddCommand(newGrammarCheckCmd())
	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <expression>...",
		Short: "Check expressions against both the reference grammar and the parser",
		Long: `Check expressions against both the reference grammar and the parser.

Each argument is one expression. The exit status is non-zero when the
grammar and the parser disagree on any of them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Expression()
			if err != nil {
				return err
			}
			r, err := grammar.NewRecognizer(g, grammar.Start)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var disagree []string
			for _, src := range args {
				tokens := parser.Tokenize([]byte(src), "<arg>")
				inGrammar := r.Accepts(grammar.Kinds(tokens))
				_, diags := parser.ParseExpression(tokens)
				parsed := !diags.HasErrors()
				fmt.Fprintf(out, "%s\tgrammar=%s\tparser=%s\t%s\n",
					verdict(inGrammar == parsed), verdict(inGrammar), verdict(parsed), src)
				if inGrammar != parsed {
					disagree = append(disagree, src)
				}
			}
			if len(disagree) > 0 {
				return fmt.Errorf("grammar and parser disagree on: %s", strings.Join(disagree, "; "))
			}
			return nil
		},
	}
}

func verdict(ok bool) string {
	if ok {
		return "ok"
	}
	return "no"
}
