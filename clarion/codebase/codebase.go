// Package codebase keeps the parsed Clarion files of a workspace. All
// parses share one prediction cache.
package codebase

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/tliron/commonlog"
	"golang.org/x/crypto/blake2b"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/config"
	"github.com/dhamidi/clw/project"
)

var log = commonlog.GetLogger("clw.codebase")

type Codebase struct {
	mu      sync.RWMutex
	cfg     *config.Config
	cache   *parser.PredictionCache
	files   map[string]*FileInfo
	project *project.Project
	version atomic.Uint64
}

type FileInfo struct {
	Path        string
	Content     []byte
	Hash        [blake2b.Size256]byte
	Tokens      []parser.Token
	Root        *parser.Node
	Diagnostics parser.Diagnostics
	Symbols     []outline.Symbol

	// version orders updates of the same path by when they started.
	version uint64
}

// Location is a symbol found in a file. Container names the enclosing
// symbol, if any.
type Location struct {
	Path      string
	Symbol    outline.Symbol
	Container string
}

func New(cfg *config.Config) *Codebase {
	return &Codebase{
		cfg:     cfg,
		cache:   parser.NewPredictionCache(),
		files:   make(map[string]*FileInfo),
		project: project.New(cfg.Root),
	}
}

func (c *Codebase) RootDir() string {
	return c.cfg.Root
}

func (c *Codebase) Config() *config.Config {
	return c.cfg
}

// ScanAll parses every source file below the root on up to
// Config.Workers goroutines.
func (c *Codebase) ScanAll(ctx context.Context) error {
	var paths []string
	err := filepath.WalkDir(c.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != c.cfg.Root && (strings.HasPrefix(d.Name(), ".") || c.cfg.Excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.cfg.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	semaphore := make(chan struct{}, max(c.cfg.Workers, 1))
	var wg sync.WaitGroup
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			if err := c.ScanFile(path); err != nil {
				log.Warningf("scan %s: %s", path, err)
			}
		}()
	}
	wg.Wait()
	log.Infof("scanned %d file(s) below %s", len(paths), c.cfg.Root)
	return ctx.Err()
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the new text of path. It reports false
// without parsing when the content is unchanged, and when an update of
// path that started later has already been stored.
func (c *Codebase) UpdateFile(path string, content []byte) bool {
	version := c.version.Add(1)
	hash := blake2b.Sum256(content)
	c.mu.RLock()
	old := c.files[path]
	c.mu.RUnlock()
	if old != nil && old.Hash == hash {
		return false
	}

	f := c.parse(path, content)
	f.Hash = hash
	f.version = version
	return c.store(f)
}

func (c *Codebase) store(f *FileInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.files[f.Path]; cur != nil && (cur.version > f.version || cur.Hash == f.Hash) {
		log.Debugf("dropped stale parse of %s", f.Path)
		return false
	}
	c.files[f.Path] = f
	c.project.Add(f.Path, f.Root)
	return true
}

// parse runs outside the lock; only the prediction cache is shared.
func (c *Codebase) parse(path string, content []byte) *FileInfo {
	tokens := parser.Tokenize(content, path)
	opts := append(c.cfg.OptionsFor(path), parser.WithPredictionCache(c.cache))
	root, diags := parser.ParseFile(tokens, opts...)
	log.Debugf("parsed %s: %d token(s), %d diagnostic(s)", path, len(tokens), len(diags))
	return &FileInfo{
		Path:        path,
		Content:     content,
		Tokens:      tokens,
		Root:        root,
		Diagnostics: diags,
		Symbols:     outline.Build(root),
	}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
	c.project.Remove(path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the known paths in sorted order.
func (c *Codebase) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Diagnostics returns the diagnostics of path that editors should show:
// syntax errors always, ambiguities and recovery notes when enabled.
func (c *Codebase) Diagnostics(path string) parser.Diagnostics {
	f := c.GetFile(path)
	if f == nil {
		return nil
	}
	var out parser.Diagnostics
	for _, d := range f.Diagnostics {
		switch d.Kind {
		case parser.Ambiguity:
			if !c.cfg.LSP.ShowAmbiguity {
				continue
			}
		case parser.RecoveryAttempt:
			if !c.cfg.LSP.ShowRecovery {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func (c *Codebase) Symbols(path string) []outline.Symbol {
	f := c.GetFile(path)
	if f == nil {
		return nil
	}
	return f.Symbols
}

// Unresolved returns the MEMBER, MODULE and INCLUDE references that name
// no file of the workspace.
func (c *Codebase) Unresolved() []project.Reference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project.Unresolved()
}

// Unit returns the unit named by a file name, such as "app.clw".
func (c *Codebase) Unit(name string) *project.Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project.Unit(name)
}

// UnitsInOrder returns the units so that every unit comes after the
// files it includes or calls into.
func (c *Codebase) UnitsInOrder() []*project.Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project.UnitsInOrder()
}

// SymbolAt returns the symbols enclosing line:col in path, outermost
// first.
func (c *Codebase) SymbolAt(path string, line, col int) []outline.Symbol {
	return outline.SymbolAt(c.Symbols(path), line, col)
}

// WordAt returns the name under line:col, joining dotted parts such as
// MyClass.Init. It returns "" when the position is not on a name.
func (c *Codebase) WordAt(path string, line, col int) string {
	f := c.GetFile(path)
	if f == nil {
		return ""
	}
	i := tokenAt(f.Tokens, line, col)
	if i < 0 || !isName(f.Tokens[i]) {
		return ""
	}
	start, stop := i, i
	for start >= 2 && f.Tokens[start-1].Kind == parser.TokenDot && isName(f.Tokens[start-2]) {
		start -= 2
	}
	for stop+2 < len(f.Tokens) && f.Tokens[stop+1].Kind == parser.TokenDot && isName(f.Tokens[stop+2]) {
		stop += 2
	}
	var b strings.Builder
	for _, tok := range f.Tokens[start : stop+1] {
		b.WriteString(tok.Literal)
	}
	return b.String()
}

func tokenAt(tokens []parser.Token, line, col int) int {
	for i, tok := range tokens {
		start, end := tok.Span.Start, tok.Span.End
		if start.Line > line {
			break
		}
		if start.Line == line && start.Column <= col && (end.Line > line || col < end.Column) {
			return i
		}
	}
	return -1
}

func isName(tok parser.Token) bool {
	return tok.Kind == parser.TokenIdent || tok.Kind == parser.TokenFieldEquate
}

// Definition finds the definitions called name across the workspace.
// Prototypes are returned only when nothing else matches. For a dotted
// name like SELF.Count the last part is tried when the whole name is not
// found.
func (c *Codebase) Definition(name string) []Location {
	locs := c.find(name)
	if len(locs) == 0 {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			locs = c.find(name[i+1:])
		}
	}
	var defs []Location
	for _, loc := range locs {
		if loc.Symbol.Kind != outline.KindPrototype {
			defs = append(defs, loc)
		}
	}
	if len(defs) == 0 {
		return locs
	}
	return defs
}

func (c *Codebase) find(name string) []Location {
	var out []Location
	for _, path := range c.Files() {
		for _, loc := range c.locations(path) {
			if outline.Match(loc.Symbol, name) {
				out = append(out, loc)
			}
		}
	}
	return out
}

// locations flattens the symbols of path, skipping the compilation unit
// and MAP wrappers.
func (c *Codebase) locations(path string) []Location {
	var out []Location
	var walk func(symbols []outline.Symbol, container string)
	walk = func(symbols []outline.Symbol, container string) {
		for _, s := range symbols {
			switch s.Kind {
			case outline.KindProgram, outline.KindMember, outline.KindMap:
				walk(s.Children, container)
				continue
			}
			out = append(out, Location{Path: path, Symbol: s, Container: container})
			walk(s.Children, s.Name)
		}
	}
	walk(c.Symbols(path), "")
	return out
}

// WorkspaceSymbols ranks every symbol of the workspace against query with
// a case-insensitive fuzzy match, closest first. An empty query lists all
// symbols.
func (c *Codebase) WorkspaceSymbols(query string) []Location {
	var all []Location
	for _, path := range c.Files() {
		all = append(all, c.locations(path)...)
	}
	if query == "" {
		return all
	}

	names := make([]string, len(all))
	for i, loc := range all {
		names[i] = loc.Symbol.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]Location, len(ranks))
	for i, r := range ranks {
		out[i] = all[r.OriginalIndex]
	}
	return out
}
