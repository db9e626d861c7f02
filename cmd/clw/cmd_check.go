package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/codebase"
	"github.com/dhamidi/clw/config"
	"github.com/dhamidi/clw/format"
)

func newCheckCmd() *cobra.Command {
	var outputFormat string
	var timeout time.Duration
	var workers int
	var ambiguity bool
	var order bool

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse every source of a workspace and report problems",
		Long: `Parse every source of a workspace and report problems.

The workspace is the directory holding the nearest .clw.toml or .clw.yaml
above dir, or dir itself. Syntax errors and MEMBER, MODULE and INCLUDE
references that name no file of the workspace are reported. The exit
status is non-zero when there are any.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, err := config.Discover(dir)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			cfg.LSP.ShowAmbiguity = ambiguity
			return runCheck(cmd, cfg, outputFormat, timeout, order)
		},
	}

	addFormatFlag(cmd, &outputFormat, "line")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", time.Minute, "give up after this long")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "files parsed in parallel (default from config)")
	cmd.Flags().BoolVar(&ambiguity, "ambiguity", false, "also report ambiguous decisions")
	cmd.Flags().BoolVar(&order, "order", false, "print the units in dependency order")

	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.Config, outputFormat string, timeout time.Duration, order bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c := codebase.New(cfg)
	if err := c.ScanAll(ctx); err != nil {
		return fmt.Errorf("scan %s: %w", cfg.Root, err)
	}

	var errors int
	for _, path := range c.Files() {
		diags := c.Diagnostics(path)
		errors += len(diags.Errors())
		if len(diags) == 0 {
			continue
		}
		if err := encode(cmd, outputFormat, &format.Result{File: path, Diagnostics: diags}); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	unresolved := c.Unresolved()
	for _, ref := range unresolved {
		fmt.Fprintf(out, "%s:%s: %s: no file %q in the workspace\n",
			ref.From.Path, ref.Span.Start, ref.Kind, ref.Name)
	}

	if order {
		for _, u := range c.UnitsInOrder() {
			rel, err := filepath.Rel(cfg.Root, u.Path)
			if err != nil {
				rel = u.Path
			}
			fmt.Fprintf(out, "%s\t%s\n", u.Kind, rel)
		}
	}

	if errors > 0 || len(unresolved) > 0 {
		return fmt.Errorf("%d syntax error(s), %d unresolved reference(s) in %d file(s)",
			errors, len(unresolved), len(c.Files()))
	}
	return nil
}
