// Package outline derives a symbol tree from a parsed Clarion file. It only
// looks at the generic CST shape: labels, attributes and node kinds.
package outline

import (
	"strings"

	"github.com/dhamidi/clw/clarion/parser"
)

type Kind int

const (
	KindProgram Kind = iota
	KindMember
	KindMap
	KindModule
	KindPrototype
	KindProcedure
	KindMethod
	KindRoutine
	KindClass
	KindField
	KindVariable
	KindStructure
	KindEquate
	KindItemize
	KindInclude
	KindWindow
	KindMenubar
	KindMenu
	KindItem
	KindToolbar
	KindSheet
	KindTab
	KindGroup
	KindOption
	KindControl
)

var kindNames = map[Kind]string{
	KindProgram:   "program",
	KindMember:    "member",
	KindMap:       "map",
	KindModule:    "module",
	KindPrototype: "prototype",
	KindProcedure: "procedure",
	KindMethod:    "method",
	KindRoutine:   "routine",
	KindClass:     "class",
	KindField:     "field",
	KindVariable:  "variable",
	KindStructure: "structure",
	KindEquate:    "equate",
	KindItemize:   "itemize",
	KindInclude:   "include",
	KindWindow:    "window",
	KindMenubar:   "menubar",
	KindMenu:      "menu",
	KindItem:      "item",
	KindToolbar:   "toolbar",
	KindSheet:     "sheet",
	KindTab:       "tab",
	KindGroup:     "group",
	KindOption:    "option",
	KindControl:   "control",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Symbol is one named construct. Start and Stop are the token range of the
// node it was derived from.
type Symbol struct {
	Name     string
	Kind     Kind
	Detail   string
	Start    int
	Stop     int
	Span     parser.Span
	Children []Symbol
}

// Contains reports whether line:col (1-based) falls inside the symbol.
func (s Symbol) Contains(line, col int) bool {
	start, end := s.Span.Start, s.Span.End
	if line < start.Line || line > end.Line {
		return false
	}
	if line == start.Line && col < start.Column {
		return false
	}
	if line == end.Line && col >= end.Column {
		return false
	}
	return true
}

// Build returns the symbols of a tree returned by parser.ParseFile or
// parser.ParseUIFragment. For files the compilation unit is the single
// top-level symbol.
func Build(root *parser.Node) []Symbol {
	if root == nil {
		return nil
	}
	var unit Symbol
	switch root.Kind {
	case parser.KindProgram:
		unit = symbolFor(root, KindProgram, "PROGRAM", "")
	case parser.KindMember:
		unit = symbolFor(root, KindMember, "MEMBER", moduleName(root))
	case parser.KindUIFragment:
		return collectUI(root)
	default:
		return collect(root)
	}
	unit.Children = collect(root)
	return []Symbol{unit}
}

// collect turns the children of n into symbols. Sections are flattened
// into their parent.
func collect(n *parser.Node) []Symbol {
	var out []Symbol
	for _, child := range n.Children {
		switch child.Kind {
		case parser.KindDataSection:
			out = append(out, collect(child)...)
		default:
			if s, ok := symbol(child); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func symbol(n *parser.Node) (Symbol, bool) {
	switch n.Kind {
	case parser.KindMap:
		s := symbolFor(n, KindMap, "MAP", "")
		s.Children = collect(n)
		return s, true
	case parser.KindModule:
		s := symbolFor(n, KindModule, moduleName(n), "")
		s.Children = collect(n)
		return s, true
	case parser.KindPrototype:
		return symbolFor(n, KindPrototype, parser.ProcedureName(n), signature(n)), true
	case parser.KindProcedure:
		name := parser.ProcedureName(n)
		kind := KindProcedure
		if strings.Contains(name, ".") {
			kind = KindMethod
		}
		s := symbolFor(n, kind, name, signature(n))
		s.Children = collect(n)
		return s, true
	case parser.KindRoutine:
		s := symbolFor(n, KindRoutine, parser.ProcedureName(n), "")
		s.Children = collect(n)
		return s, true
	case parser.KindClass:
		s := symbolFor(n, KindClass, parser.LabelText(n), attributeNames(n))
		for _, member := range collect(n) {
			switch member.Kind {
			case KindVariable:
				member.Kind = KindField
			case KindPrototype:
				member.Kind = KindMethod
			}
			s.Children = append(s.Children, member)
		}
		return s, true
	case parser.KindVariableDecl:
		detail := ""
		if ts := n.FirstChildOfKind(parser.KindTypeSpec); ts != nil {
			detail = ts.Text()
		}
		return symbolFor(n, KindVariable, parser.LabelText(n), detail), true
	case parser.KindStructure:
		s := symbolFor(n, KindStructure, parser.LabelText(n), parser.Keyword(n))
		s.Children = collect(n)
		return s, true
	case parser.KindItemize:
		s := symbolFor(n, KindItemize, parser.LabelText(n), "ITEMIZE")
		s.Children = collect(n)
		return s, true
	case parser.KindEquate:
		detail := ""
		if value := n.FirstChildOfKind(parser.KindOpaque); value != nil {
			detail = value.Text()
		}
		return symbolFor(n, KindEquate, parser.LabelText(n), detail), true
	case parser.KindInclude:
		return symbolFor(n, KindInclude, moduleName(n), "INCLUDE"), true
	case parser.KindWindow:
		s := symbolFor(n, KindWindow, parser.LabelText(n), windowTitle(n))
		if s.Name == "" {
			s.Name = parser.Keyword(n)
		}
		s.Children = collectUI(n)
		return s, true
	}
	return Symbol{}, false
}

var uiKinds = map[parser.NodeKind]Kind{
	parser.KindMenubar: KindMenubar,
	parser.KindMenu:    KindMenu,
	parser.KindItem:    KindItem,
	parser.KindToolbar: KindToolbar,
	parser.KindSheet:   KindSheet,
	parser.KindTab:     KindTab,
	parser.KindUIGroup: KindGroup,
	parser.KindOption:  KindOption,
	parser.KindControl: KindControl,
}

// collectUI lists the structures and controls of a window body. Controls
// are named by their USE equate when they have one.
func collectUI(n *parser.Node) []Symbol {
	var out []Symbol
	for _, child := range n.Children {
		if child.Kind == parser.KindWindow {
			s, _ := symbol(child)
			out = append(out, s)
			continue
		}
		kind, ok := uiKinds[child.Kind]
		if !ok {
			continue
		}
		keyword := parser.Keyword(child)
		name := parser.UseEquate(child)
		if name == "" {
			name = windowTitle(child)
		}
		if name == "" {
			name = keyword
		}
		s := symbolFor(child, kind, name, keyword)
		s.Children = collectUI(child)
		out = append(out, s)
	}
	return out
}

func symbolFor(n *parser.Node, kind Kind, name, detail string) Symbol {
	return Symbol{
		Name:   name,
		Kind:   kind,
		Detail: detail,
		Start:  n.Start,
		Stop:   n.Stop,
		Span:   n.Span,
	}
}

// signature renders the parameter list and return type of a procedure head.
func signature(n *parser.Node) string {
	var b strings.Builder
	if params := n.FirstChildOfKind(parser.KindParameterList); params != nil {
		b.WriteString(params.Text())
	}
	if rt := n.FirstChildOfKind(parser.KindReturnType); rt != nil {
		b.WriteString(rt.Text())
	}
	return b.String()
}

func attributeNames(n *parser.Node) string {
	var names []string
	for _, attr := range parser.Attributes(n) {
		if name := parser.AttributeName(attr); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// moduleName returns the first string literal in the opaque argument of a
// MEMBER, MODULE or INCLUDE, without quotes.
func moduleName(n *parser.Node) string {
	if name := windowTitle(n); name != "" {
		return name
	}
	if arg := n.FirstChildOfKind(parser.KindOpaque); arg != nil {
		return arg.Text()
	}
	return ""
}

// windowTitle returns the string argument of a window, menu or control.
func windowTitle(n *parser.Node) string {
	arg := n.FirstChildOfKind(parser.KindOpaque)
	if arg == nil {
		return ""
	}
	for _, tok := range arg.Tokens() {
		if tok.Kind == parser.TokenStringLiteral {
			return unquote(tok.Literal)
		}
	}
	return ""
}

func unquote(lit string) string {
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		lit = lit[1 : len(lit)-1]
	}
	return strings.ReplaceAll(lit, "''", "'")
}
