package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/format"
)

func newUICmd() *cobra.Command {
	var outputFormat string
	var fragment bool

	cmd := &cobra.Command{
		Use:   "ui <file>",
		Short: "Outline the windows of a Clarion source",
		Long: `Outline the windows of a Clarion source.

Every WINDOW and APPLICATION structure of the file is parsed again on its
own. With --fragment the whole input is taken as a UI fragment, such as a
window pasted from a form designer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			if fragment {
				root, diags := parser.ParseUIFragment(src.tokens, src.options()...)
				err := encode(cmd, outputFormat, &format.Result{
					File:        src.path,
					Symbols:     outline.Build(root),
					Diagnostics: diags,
				})
				if err != nil {
					return err
				}
				return failOnErrors(src.path, diags)
			}

			root, diags := parser.ParseFile(src.tokens, src.options()...)
			if diags.HasErrors() {
				if err := encode(cmd, outputFormat, &format.Result{File: src.path, Diagnostics: diags.Errors()}); err != nil {
					return err
				}
				return failOnErrors(src.path, diags)
			}
			windows := root.Find(parser.KindWindow)
			if len(windows) == 0 {
				return fmt.Errorf("%s: no WINDOW or APPLICATION structure", src.path)
			}

			var symbols []outline.Symbol
			var all parser.Diagnostics
			for _, win := range windows {
				s, wd := outline.WindowOutline(src.tokens, win, src.options()...)
				symbols = append(symbols, s)
				all = append(all, wd...)
			}
			err = encode(cmd, outputFormat, &format.Result{
				File:        src.path,
				Symbols:     symbols,
				Diagnostics: all,
			})
			if err != nil {
				return err
			}
			return failOnErrors(src.path, all)
		},
	}

	addFormatFlag(cmd, &outputFormat, "tree")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "parse the input as a bare UI fragment")

	return cmd
}
