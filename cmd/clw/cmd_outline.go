package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/format"
)

func newOutlineCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the procedures, data and windows declared in a Clarion source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			root, diags := parser.ParseFile(src.tokens, src.options()...)
			return encode(cmd, outputFormat, &format.Result{
				File:        src.path,
				Symbols:     outline.Build(root),
				Diagnostics: diags.Errors(),
			})
		},
	}

	addFormatFlag(cmd, &outputFormat, "tree")

	return cmd
}
