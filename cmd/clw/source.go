package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/config"
	"github.com/dhamidi/clw/format"
)

// source is one input file, tokenized, with the config that applies to it.
type source struct {
	path   string
	tokens []parser.Token
	cfg    *config.Config
}

// readSource reads path, or standard input for "-", and finds the config
// of the directory it lives in.
func readSource(path string) (*source, error) {
	var tokens []parser.Token
	dir := filepath.Dir(path)
	if path == "-" {
		var err error
		tokens, err = parser.ReadTokens(os.Stdin, "<stdin>")
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		dir = "."
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		tokens = parser.Tokenize(data, path)
	}

	cfg, err := config.Discover(dir)
	if err != nil {
		return nil, err
	}
	return &source{path: path, tokens: tokens, cfg: cfg}, nil
}

func (s *source) options() []parser.Option {
	if s.path == "-" {
		return append(s.cfg.ParserOptions(), parser.WithFile("<stdin>"))
	}
	return s.cfg.OptionsFor(s.path)
}

// addFormatFlag registers --format on cmd with def as the default.
func addFormatFlag(cmd *cobra.Command, name *string, def string) {
	cmd.Flags().StringVarP(name, "format", "f", def, "output format ("+strings.Join(format.Names, ", ")+")")
}

func encode(cmd *cobra.Command, name string, r *format.Result) error {
	enc := format.New(name, cmd.OutOrStdout())
	if enc == nil {
		return fmt.Errorf("unknown format: %s", name)
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

// failOnErrors turns syntax errors into a non-zero exit status once the
// output has been written.
func failOnErrors(path string, diags parser.Diagnostics) error {
	if n := len(diags.Errors()); n > 0 {
		return fmt.Errorf("%s: %d syntax error(s)", path, n)
	}
	return nil
}
