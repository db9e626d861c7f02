package codebase

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/config"
)

const lsName = "clw"

var lspLog = commonlog.GetLogger("clw.lsp")

type LSPServer struct {
	codebase *Codebase
	watcher  *FileWatcher
	handler  protocol.Handler
	server   *server.Server
	version  string
	notify   glsp.NotifyFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentDefinition:     ls.textDocumentDefinition,
		WorkspaceSymbol:            ls.workspaceSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// Run serves on the transport named by cfg: stdio, tcp or websocket.
func (ls *LSPServer) Run(cfg *config.Config) error {
	switch cfg.LSP.Transport {
	case "tcp":
		return ls.server.RunTCP(cfg.LSP.Address)
	case "websocket":
		return ls.server.RunWebSocket(cfg.LSP.Address)
	}
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	}

	cfg, err := config.Discover(rootDir)
	if err != nil {
		lspLog.Warningf("%s; using defaults", err)
		cfg = config.Default(rootDir)
	}
	ls.codebase = New(cfg)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.notify = ctx.Notify
	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		lspLog.Errorf("scan: %s", err)
	}
	for _, path := range ls.codebase.Files() {
		ls.publishDiagnostics(path)
	}

	watcher, err := NewFileWatcher(ls.codebase)
	if err != nil {
		lspLog.Warningf("file watching disabled: %s", err)
		return nil
	}
	watcher.OnChange = ls.publishDiagnostics
	if err := watcher.Start(); err != nil {
		lspLog.Warningf("file watching disabled: %s", err)
		return nil
	}
	ls.watcher = watcher
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		err := ls.watcher.Stop()
		ls.watcher = nil
		return err
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.update(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(path, []byte(textChange.Text))
		}
	}
	return nil
}

// textDocumentDidClose drops unsaved edits by reading the file back.
func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if err := ls.codebase.ScanFile(path); err != nil {
		lspLog.Infof("close %s: %s", path, err)
		ls.codebase.RemoveFile(path)
	}
	ls.publishDiagnostics(path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(path, []byte(*params.Text))
	} else {
		if err := ls.codebase.ScanFile(path); err != nil {
			lspLog.Warningf("save %s: %s", path, err)
			return nil
		}
		ls.publishDiagnostics(path)
	}
	return nil
}

func (ls *LSPServer) update(path string, content []byte) {
	if ls.codebase.UpdateFile(path, content) {
		ls.publishDiagnostics(path)
	}
}

func (ls *LSPServer) publishDiagnostics(path string) {
	if ls.notify == nil {
		return
	}
	diagnostics := []protocol.Diagnostic{}
	for _, d := range ls.codebase.Diagnostics(path) {
		diagnostics = append(diagnostics, toProtocolDiagnostic(d))
	}
	ls.notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	return toDocumentSymbols(ls.codebase.Symbols(path)), nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line, col := fromPosition(params.Position)

	text := ls.codebase.Hover(path, line, col)
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line, col := fromPosition(params.Position)
	word := ls.codebase.WordAt(path, line, col)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, loc := range ls.codebase.Definition(word) {
		locations = append(locations, protocol.Location{
			URI:   pathToURI(loc.Path),
			Range: toRange(loc.Symbol.Span),
		})
	}
	return locations, nil
}

func (ls *LSPServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	var symbols []protocol.SymbolInformation
	for _, loc := range ls.codebase.WorkspaceSymbols(params.Query) {
		info := protocol.SymbolInformation{
			Name: loc.Symbol.Name,
			Kind: toSymbolKind(loc.Symbol.Kind),
			Location: protocol.Location{
				URI:   pathToURI(loc.Path),
				Range: toRange(loc.Symbol.Span),
			},
		}
		if loc.Container != "" {
			container := loc.Container
			info.ContainerName = &container
		}
		symbols = append(symbols, info)
	}
	return symbols, nil
}

// Hover describes the name under line:col, or the innermost symbol
// enclosing the position when it is not on a name.
func (c *Codebase) Hover(path string, line, col int) string {
	if word := c.WordAt(path, line, col); word != "" {
		if defs := c.Definition(word); len(defs) > 0 {
			return describe(defs[0], path)
		}
	}
	enclosing := c.SymbolAt(path, line, col)
	if len(enclosing) == 0 {
		return ""
	}
	return describe(Location{Path: path, Symbol: enclosing[len(enclosing)-1]}, path)
}

func describe(loc Location, from string) string {
	s := loc.Symbol
	var b strings.Builder
	fmt.Fprintf(&b, "```clarion\n%s %s", strings.ToUpper(s.Kind.String()), s.Name)
	if s.Detail != "" {
		b.WriteString(" " + s.Detail)
	}
	b.WriteString("\n```\n")
	if loc.Container != "" {
		fmt.Fprintf(&b, "in `%s` ", loc.Container)
	}
	if loc.Path != from {
		fmt.Fprintf(&b, "from %s ", filepath.Base(loc.Path))
	}
	fmt.Fprintf(&b, "at line %d", s.Span.Start.Line)
	return b.String()
}

func toProtocolDiagnostic(d parser.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	switch d.Kind {
	case parser.Ambiguity:
		severity = protocol.DiagnosticSeverityWarning
	case parser.RecoveryAttempt:
		severity = protocol.DiagnosticSeverityInformation
	}
	source := lsName
	code := d.Kind.String()
	return protocol.Diagnostic{
		Range:    toRange(d.Range.Span),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  d.Message,
	}
}

func toDocumentSymbols(symbols []outline.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		ds := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toSymbolKind(s.Kind),
			Range:          toRange(s.Span),
			SelectionRange: toRange(s.Span),
			Children:       toDocumentSymbols(s.Children),
		}
		if s.Detail != "" {
			detail := s.Detail
			ds.Detail = &detail
		}
		if ds.Name == "" {
			ds.Name = s.Kind.String()
		}
		out = append(out, ds)
	}
	return out
}

func toSymbolKind(kind outline.Kind) protocol.SymbolKind {
	switch kind {
	case outline.KindProgram, outline.KindMember:
		return protocol.SymbolKindFile
	case outline.KindMap, outline.KindModule, outline.KindInclude:
		return protocol.SymbolKindModule
	case outline.KindPrototype, outline.KindProcedure, outline.KindRoutine:
		return protocol.SymbolKindFunction
	case outline.KindMethod:
		return protocol.SymbolKindMethod
	case outline.KindClass:
		return protocol.SymbolKindClass
	case outline.KindField:
		return protocol.SymbolKindField
	case outline.KindVariable:
		return protocol.SymbolKindVariable
	case outline.KindStructure:
		return protocol.SymbolKindStruct
	case outline.KindEquate:
		return protocol.SymbolKindConstant
	case outline.KindItemize:
		return protocol.SymbolKindEnum
	}
	return protocol.SymbolKindObject
}

// fromPosition converts a zero-based LSP position to a 1-based line and
// column.
func fromPosition(p protocol.Position) (int, int) {
	return int(p.Line) + 1, int(p.Character) + 1
}

func toRange(span parser.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(span.Start),
		End:   toPosition(span.End),
	}
}

func toPosition(p parser.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(p.Line-1, 0)),
		Character: protocol.UInteger(max(p.Column-1, 0)),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
