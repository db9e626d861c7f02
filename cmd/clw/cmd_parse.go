package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/format"
)

var entryPoints = map[string]func([]parser.Token, ...parser.Option) (*parser.Node, parser.Diagnostics){
	"file":       parser.ParseFile,
	"ui":         parser.ParseUIFragment,
	"statements": parser.ParseStatements,
	"expression": parser.ParseExpression,
}

func newParseCmd() *cobra.Command {
	var outputFormat string
	var as string
	var trace bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Clarion source and dump the syntax tree and diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parse, ok := entryPoints[as]
			if !ok {
				return fmt.Errorf("unknown entry point: %s (expected file, ui, statements or expression)", as)
			}
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			opts := src.options()
			if trace {
				opts = append(opts, parser.WithTrace())
			}

			root, diags := parse(src.tokens, opts...)
			err = encode(cmd, outputFormat, &format.Result{
				File:        src.path,
				Root:        root,
				Diagnostics: diags,
			})
			if err != nil {
				return err
			}
			return failOnErrors(src.path, diags)
		},
	}

	addFormatFlag(cmd, &outputFormat, "tree")
	cmd.Flags().StringVar(&as, "as", "file", "entry point (file, ui, statements, expression)")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every prediction decision at debug level")

	return cmd
}
