package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota
	KindToken

	// Compilation units
	KindProgram
	KindMember
	KindMap
	KindModule
	KindPrototype

	// Declarations
	KindDataSection
	KindVariableDecl
	KindTypeSpec
	KindStructure
	KindEquate
	KindItemize
	KindInclude
	KindClass
	KindAttributeList
	KindAttribute
	KindOpaque

	// Procedures
	KindProcedure
	KindRoutine
	KindLabel
	KindParameterList
	KindParameter
	KindReturnType
	KindCodeSection

	// Statements
	KindStatementList
	KindReturnStmt
	KindAssignStmt
	KindCallStmt
	KindDoStmt
	KindIfStmt
	KindElsifClause
	KindElseClause
	KindCaseStmt
	KindOfClause
	KindCaseRange
	KindLoopStmt
	KindLoopHeader
	KindBreakStmt
	KindCycleStmt
	KindExitStmt

	// Expressions
	KindOrExpr
	KindAndExpr
	KindNotExpr
	KindComparisonExpr
	KindConcatExpr
	KindAdditiveExpr
	KindMultiplicativeExpr
	KindUnaryExpr
	KindParenExpr
	KindFunctionCall
	KindArguments
	KindDottedIdentifier
	KindSubscript
	KindPropertyAccess
	KindFieldEquate
	KindIntegerLiteral
	KindRealLiteral
	KindStringLiteral
	KindPictureLiteral

	// UI sub-language
	KindUIFragment
	KindWindow
	KindMenubar
	KindMenu
	KindItem
	KindToolbar
	KindSheet
	KindTab
	KindUIGroup
	KindOption
	KindControl
	KindUnknownContent
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindToken:              "Token",
	KindProgram:            "Program",
	KindMember:             "Member",
	KindMap:                "Map",
	KindModule:             "Module",
	KindPrototype:          "Prototype",
	KindDataSection:        "DataSection",
	KindVariableDecl:       "VariableDecl",
	KindTypeSpec:           "TypeSpec",
	KindStructure:          "Structure",
	KindEquate:             "Equate",
	KindItemize:            "Itemize",
	KindInclude:            "Include",
	KindClass:              "Class",
	KindAttributeList:      "AttributeList",
	KindAttribute:          "Attribute",
	KindOpaque:             "Opaque",
	KindProcedure:          "Procedure",
	KindRoutine:            "Routine",
	KindLabel:              "Label",
	KindParameterList:      "ParameterList",
	KindParameter:          "Parameter",
	KindReturnType:         "ReturnType",
	KindCodeSection:        "CodeSection",
	KindStatementList:      "StatementList",
	KindReturnStmt:         "ReturnStmt",
	KindAssignStmt:         "AssignStmt",
	KindCallStmt:           "CallStmt",
	KindDoStmt:             "DoStmt",
	KindIfStmt:             "IfStmt",
	KindElsifClause:        "ElsifClause",
	KindElseClause:         "ElseClause",
	KindCaseStmt:           "CaseStmt",
	KindOfClause:           "OfClause",
	KindCaseRange:          "CaseRange",
	KindLoopStmt:           "LoopStmt",
	KindLoopHeader:         "LoopHeader",
	KindBreakStmt:          "BreakStmt",
	KindCycleStmt:          "CycleStmt",
	KindExitStmt:           "ExitStmt",
	KindOrExpr:             "OrExpr",
	KindAndExpr:            "AndExpr",
	KindNotExpr:            "NotExpr",
	KindComparisonExpr:     "ComparisonExpr",
	KindConcatExpr:         "ConcatExpr",
	KindAdditiveExpr:       "AdditiveExpr",
	KindMultiplicativeExpr: "MultiplicativeExpr",
	KindUnaryExpr:          "UnaryExpr",
	KindParenExpr:          "ParenExpr",
	KindFunctionCall:       "FunctionCall",
	KindArguments:          "Arguments",
	KindDottedIdentifier:   "DottedIdentifier",
	KindSubscript:          "Subscript",
	KindPropertyAccess:     "PropertyAccess",
	KindFieldEquate:        "FieldEquate",
	KindIntegerLiteral:     "IntegerLiteral",
	KindRealLiteral:        "RealLiteral",
	KindStringLiteral:      "StringLiteral",
	KindPictureLiteral:     "PictureLiteral",
	KindUIFragment:         "UIFragment",
	KindWindow:             "Window",
	KindMenubar:            "Menubar",
	KindMenu:               "Menu",
	KindItem:               "Item",
	KindToolbar:            "Toolbar",
	KindSheet:              "Sheet",
	KindTab:                "Tab",
	KindUIGroup:            "UIGroup",
	KindOption:             "Option",
	KindControl:            "Control",
	KindUnknownContent:     "UnknownContent",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is one CST node. Token leaves have Kind == KindToken and no
// children. Start and Stop are inclusive token indices; Stop < Start marks
// a node that consumed no tokens.
type Node struct {
	Kind     NodeKind
	Span     Span
	Start    int
	Stop     int
	Children []*Node
	Token    *Token
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) IsToken() bool {
	return n.Kind == KindToken
}

// IsEmpty reports whether the node consumed no tokens.
func (n *Node) IsEmpty() bool {
	return n.Stop < n.Start
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// FirstToken returns the first direct token child of the given kind.
func (n *Node) FirstToken(kind TokenKind) *Token {
	for _, child := range n.Children {
		if child.Kind == KindToken && child.Token.Kind == kind {
			return child.Token
		}
	}
	return nil
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Tokens returns every token leaf below n in source order.
func (n *Node) Tokens() []Token {
	var out []Token
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			out = append(out, *c.Token)
		}
		return true
	})
	return out
}

// Text joins the literals of the significant tokens below n, separated by
// single spaces where the source had a gap.
func (n *Node) Text() string {
	var b strings.Builder
	var prev *Token
	for _, tok := range n.Tokens() {
		if tok.Kind == TokenNewline {
			continue
		}
		if prev != nil && prev.Span.End.Offset != tok.Span.Start.Offset {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Literal)
		t := tok
		prev = &t
	}
	return b.String()
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the descendants of n (n included) of the given kind.
func (n *Node) Find(kind NodeKind) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Errors returns the error nodes below n.
func (n *Node) Errors() []*Node {
	return n.Find(KindError)
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeIndent(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.writeIndent(&b, 0, true)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if showPositions {
		b.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		if n.Token.Kind == TokenNewline {
			b.WriteString(" <newline>")
		} else {
			b.WriteString(" " + n.Token.Literal)
		}
	}
	if n.Error != nil {
		b.WriteString(" ERROR: " + n.Error.Message)
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}
