// Package config loads the workspace settings shared by the CLI and the
// language server from .clw.toml or .clw.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/clw/clarion/parser"
)

// DefaultAddress is where the tcp and websocket transports listen when no
// address is configured.
const DefaultAddress = "localhost:7998"

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{".clw.toml", ".clw.yaml", ".clw.yml"}

type Config struct {
	// Root is the directory holding the config file, or the directory
	// passed to Default.
	Root string `toml:"-" yaml:"-"`
	// File is the path the config was loaded from; empty for defaults.
	File string `toml:"-" yaml:"-"`

	Extensions []string `toml:"extensions" yaml:"extensions"`
	Exclude    []string `toml:"exclude" yaml:"exclude"`
	Workers    int      `toml:"workers" yaml:"workers"`
	Parser     Parser   `toml:"parser" yaml:"parser"`
	LSP        LSP      `toml:"lsp" yaml:"lsp"`
}

type Parser struct {
	MaxLookahead int  `toml:"max_lookahead" yaml:"max_lookahead"`
	Trace        bool `toml:"trace" yaml:"trace"`
}

type LSP struct {
	Transport     string `toml:"transport" yaml:"transport"`
	Address       string `toml:"address" yaml:"address"`
	ShowAmbiguity bool   `toml:"show_ambiguity" yaml:"show_ambiguity"`
	ShowRecovery  bool   `toml:"show_recovery" yaml:"show_recovery"`
}

// Default returns the settings used when root has no config file.
func Default(root string) *Config {
	cfg := &Config{Root: root}
	cfg.applyDefaults()
	return cfg
}

// Discover walks up from dir to the first directory holding one of
// FileNames and loads it. Without a config file it returns Default(dir).
func Discover(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	for d := abs; ; d = filepath.Dir(d) {
		for _, name := range FileNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	return Default(abs), nil
}

// Load reads a TOML or YAML config file, picked by extension, and checks
// it against Schema before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := validate(path, raw); err != nil {
			return nil, err
		}
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := validate(path, raw); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.Root = filepath.Dir(path)
	cfg.File = path
	cfg.applyDefaults()
	return &cfg, nil
}

func validate(path string, raw map[string]any) error {
	if raw == nil {
		raw = map[string]any{}
	}
	if err := schema.Validate(raw); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("invalid config %s: %w", path, ve)
		}
		return fmt.Errorf("validate %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".clw", ".inc", ".equ", ".int"}
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LSP.Transport == "" {
		c.LSP.Transport = "stdio"
	}
	if c.LSP.Address == "" && c.LSP.Transport != "stdio" {
		c.LSP.Address = DefaultAddress
	}
}

// ParserOptions translates the parser section into parser options.
func (c *Config) ParserOptions() []parser.Option {
	var opts []parser.Option
	if c.Parser.MaxLookahead > 0 {
		opts = append(opts, parser.WithMaxLookahead(c.Parser.MaxLookahead))
	}
	if c.Parser.Trace {
		opts = append(opts, parser.WithTrace())
	}
	return opts
}

// OptionsFor returns the parser options for the file at path. Files other
// than .clw are include files and need no PROGRAM or MEMBER header.
func (c *Config) OptionsFor(path string) []parser.Option {
	opts := append(c.ParserOptions(), parser.WithFile(path))
	if !strings.EqualFold(filepath.Ext(path), ".clw") {
		opts = append(opts, parser.WithHeaderOptional())
	}
	return opts
}

// Matches reports whether path is a source file of the workspace: it has
// one of the configured extensions and no element of its path relative to
// Root matches an exclude pattern.
func (c *Config) Matches(path string) bool {
	if !slices.ContainsFunc(c.Extensions, func(ext string) bool {
		return strings.EqualFold(filepath.Ext(path), ext)
	}) {
		return false
	}
	return !c.Excluded(path)
}

// Excluded reports whether any element of path below Root matches one of
// the exclude patterns.
func (c *Config) Excluded(path string) bool {
	rel, err := filepath.Rel(c.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	for _, elem := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range c.Exclude {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}
