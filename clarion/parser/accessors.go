package parser

import "strings"

// LabelText returns the dotted name in the Label child of a definition or
// declaration, or "" when there is none.
func LabelText(n *Node) string {
	if n == nil {
		return ""
	}
	if label := n.FirstChildOfKind(KindLabel); label != nil {
		return label.Text()
	}
	return ""
}

// ProcedureName returns the name of a procedure, method, routine or
// prototype.
func ProcedureName(n *Node) string {
	switch n.Kind {
	case KindProcedure, KindRoutine, KindPrototype:
		return LabelText(n)
	}
	return ""
}

// IfIsBlock reports whether an IF statement uses the END-closed block form.
func IfIsBlock(n *Node) bool {
	return n.Kind == KindIfStmt && n.FirstChildOfKind(KindStatementList) != nil
}

// BinaryOperands splits a binary expression into its operands and operator.
// ok is false for nodes that are not binary expressions.
func BinaryOperands(n *Node) (left *Node, op Token, right *Node, ok bool) {
	switch n.Kind {
	case KindOrExpr, KindAndExpr, KindComparisonExpr, KindConcatExpr,
		KindAdditiveExpr, KindMultiplicativeExpr:
	default:
		return nil, Token{}, nil, false
	}
	if len(n.Children) != 3 || !n.Children[1].IsToken() {
		return nil, Token{}, nil, false
	}
	return n.Children[0], *n.Children[1].Token, n.Children[2], true
}

// WindowControls returns the controls of a window or UI container in source
// order, nested containers included.
func WindowControls(n *Node) []*Node {
	var out []*Node
	for _, child := range n.Children {
		child.Walk(func(c *Node) bool {
			if c.Kind == KindControl {
				out = append(out, c)
			}
			return true
		})
	}
	return out
}

// Keyword returns the upper-cased literal of the first token directly below
// n that is not part of its label.
func Keyword(n *Node) string {
	for _, child := range n.Children {
		if child.IsToken() && child.Token.Kind != TokenNewline {
			return strings.ToUpper(child.Token.Literal)
		}
	}
	return ""
}

// AttributeName returns the upper-cased name of an Attribute node.
func AttributeName(n *Node) string {
	if n.Kind != KindAttribute {
		return ""
	}
	return Keyword(n)
}

// Attributes returns the attributes attached to n.
func Attributes(n *Node) []*Node {
	list := n.FirstChildOfKind(KindAttributeList)
	if list == nil {
		return nil
	}
	return list.ChildrenOfKind(KindAttribute)
}

// Attribute returns the first attribute of n with the given name, ignoring
// case.
func Attribute(n *Node, name string) *Node {
	for _, attr := range Attributes(n) {
		if strings.EqualFold(AttributeName(attr), name) {
			return attr
		}
	}
	return nil
}

// UseEquate returns the field equate named in the USE attribute of a
// control, such as "?OkButton".
func UseEquate(n *Node) string {
	use := Attribute(n, "USE")
	if use == nil {
		return ""
	}
	for _, tok := range use.Tokens() {
		if tok.Kind == TokenFieldEquate {
			return tok.Literal
		}
	}
	return ""
}
