package parser

import (
	"strings"
	"testing"
)

// sexpr renders an expression tree with explicit grouping.
func sexpr(n *Node) string {
	if left, op, right, ok := BinaryOperands(n); ok {
		return "(" + sexpr(left) + " " + strings.ToUpper(op.Literal) + " " + sexpr(right) + ")"
	}
	switch n.Kind {
	case KindUnaryExpr, KindNotExpr:
		return "(" + strings.ToUpper(n.Children[0].Token.Literal) + " " + sexpr(n.Children[1]) + ")"
	case KindParenExpr:
		return sexpr(n.Children[1])
	}
	return n.Text()
}

func parseExpr(t *testing.T, src string) (*Node, Diagnostics) {
	t.Helper()
	return ParseExpression(Tokenize([]byte(src), "expr.clw"))
}

func TestParseExpressionKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"42", KindIntegerLiteral},
		{"3.5", KindRealLiteral},
		{"'text'", KindStringLiteral},
		{"@n10.2", KindPictureLiteral},
		{"x", KindDottedIdentifier},
		{"SELF.Count", KindDottedIdentifier},
		{"PARENT.Init", KindDottedIdentifier},
		{"?OkButton", KindFieldEquate},
		{"f()", KindFunctionCall},
		{"SELF.Kill(1)", KindFunctionCall},
		{"x{PROP:Text}", KindPropertyAccess},
		{"?List{PROP:Items, 2}", KindPropertyAccess},
		{"Q.Items[i + 1]", KindSubscript},
		{"(x)", KindParenExpr},
		{"-x", KindUnaryExpr},
		{"~x", KindNotExpr},
		{"NOT x", KindNotExpr},
		{"a + b", KindAdditiveExpr},
		{"a * b", KindMultiplicativeExpr},
		{"a & b", KindConcatExpr},
		{"a >= b", KindComparisonExpr},
		{"a AND b", KindAndExpr},
		{"a OR b", KindOrExpr},
		{"a XOR b", KindOrExpr},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, diags := parseExpr(t, tt.input)
			if root.Kind != tt.kind {
				t.Errorf("kind = %v, want %v\n%s", root.Kind, tt.kind, root)
			}
			if diags.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
		})
	}
}

func TestParseExpressionShape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a - b - c", "((a - b) - c)"},
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"a / (b - c)", "(a / (b - c))"},
		{"a * b / c % d", "(((a * b) / c) % d)"},
		{"-a + b", "((- a) + b)"},
		{"a = 1 AND b <> 2 OR c", "(((a = 1) AND (b <> 2)) OR c)"},
		{"NOT a AND b", "((NOT a) AND b)"},
		{"'Name: ' & Name & '!'", "(('Name: ' & Name) & '!')"},
		{"f(a, , b) + 1", "(f(a, , b) + 1)"},
		{"SELF.Count + PARENT.Count", "(SELF.Count + PARENT.Count)"},
		{"(a +\n b) * c", "((a + b) * c)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, diags := parseExpr(t, tt.input)
			if diags.HasErrors() {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if got := sexpr(root); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseExpressionLongChain(t *testing.T) {
	src := "a" + strings.Repeat(" + a", 10000)
	root, diags := parseExpr(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags[0])
	}
	depth := 0
	for n := root; n.Kind == KindAdditiveExpr; n = n.Children[0] {
		depth++
	}
	if depth != 10000 {
		t.Errorf("left spine depth = %d, want 10000", depth)
	}
}

func TestParseExpressionErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"a +", "expected expression, got end of file"},
		{"a b", `unexpected "b" after expression`},
		{"f(a", "expected ) to close ( at 1:2"},
		{"(a", "expected ) to close ( at 1:1"},
		{"x{PROP:Text", "expected } to close { at 1:2"},
		{"a[1", "expected ] to close [ at 1:2"},
		{"*", "expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, diags := parseExpr(t, tt.input)
			if root == nil {
				t.Fatal("no tree returned")
			}
			errs := diags.Errors()
			if len(errs) == 0 {
				t.Fatalf("no errors reported\n%s", root)
			}
			if !strings.Contains(errs[0].Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", errs[0].Message, tt.message)
			}
		})
	}
}

func TestExpressionErrorKeepsStopToken(t *testing.T) {
	root, diags := ParseStatements(Tokenize([]byte("x = \nRETURN\n"), "expr.clw"))
	if len(diags.Errors()) != 1 {
		t.Fatalf("errors = %v", diags.Errors())
	}
	if n := len(root.Find(KindReturnStmt)); n != 1 {
		t.Errorf("found %d RETURN statements after the error, want 1\n%s", n, root)
	}
}
