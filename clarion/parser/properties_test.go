package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// propertySources mixes clean files with ones that need recovery.
var propertySources = map[string]string{
	"program": sampleProgram,
	"member":  sampleMember,
	"window":  "  MEMBER\nMain PROCEDURE\n" + sampleWindow + "  CODE\n  RETURN\n",
	"trivia": "  PROGRAM ! entry point\n" +
		"Total LONG | continued\n" +
		"  ,DIM(3)\n" +
		"  CODE\n" +
		"  Total[1] = 1 + | line\n" +
		"    2\n",
	"open class":       "  MEMBER('app')\nMyClass  CLASS\nInit       PROCEDURE\n",
	"dangling if":      "  PROGRAM\n  CODE\n  IF a THEN\n",
	"bad expression":   "  PROGRAM\n  CODE\n  x = (1 +\n  RETURN\n",
	"stray closers":    "  PROGRAM\n  CODE\n  END END\n  ELSE\n  x = 1\n",
	"open parameters":  "  MEMBER\nP PROCEDURE(LONG a\n  CODE\n  RETURN\n",
	"case without of":  "  PROGRAM\n  CODE\n  CASE x\n  END\n",
	"loop bad counter": "  PROGRAM\n  CODE\n  LOOP i = TO 3\n  END\n",
	"unclosed window":  "  PROGRAM\nW WINDOW('x')\n  BUTTON('OK')\n  CODE\n",
	"nested brackets":  "  PROGRAM\n  CODE\n  a{b[c(d\n",
	"no header":        "x = 1\nP PROCEDURE\n  CODE\n",
}

// checkCoverage verifies that the children of every node are ordered,
// disjoint and leave only line breaks and trivia uncovered.
func checkCoverage(t *testing.T, tokens []Token, n *Node) {
	t.Helper()
	if n.IsToken() || n.IsEmpty() {
		return
	}
	prev := n.Start - 1
	for _, child := range n.Children {
		if child.IsEmpty() {
			continue
		}
		if child.Start <= prev {
			t.Errorf("%v child %v at %d overlaps the previous child ending at %d", n.Kind, child.Kind, child.Start, prev)
			return
		}
		for i := prev + 1; i < child.Start; i++ {
			if k := tokens[i].Kind; !k.IsTrivia() && k != TokenNewline {
				t.Errorf("%v leaves token %d (%s) uncovered", n.Kind, i, tokens[i])
			}
		}
		prev = child.Stop
		checkCoverage(t, tokens, child)
	}
	if prev != n.Stop {
		t.Errorf("%v ends at %d but its last child ends at %d", n.Kind, n.Stop, prev)
	}
}

// checkTokensOnce verifies that every significant token is in the tree
// exactly once.
func checkTokensOnce(t *testing.T, tokens []Token, root *Node) {
	t.Helper()
	seen := make(map[int]int)
	for _, tok := range root.Tokens() {
		seen[tok.Index]++
	}
	for _, tok := range tokens {
		switch {
		case tok.Kind == TokenEOF, tok.Kind.IsTrivia():
			if seen[tok.Index] != 0 {
				t.Errorf("token %d (%s) is in the tree", tok.Index, tok)
			}
		case tok.Kind == TokenNewline:
			if seen[tok.Index] > 1 {
				t.Errorf("line break %d appears %d times", tok.Index, seen[tok.Index])
			}
		default:
			if seen[tok.Index] != 1 {
				t.Errorf("token %d (%s) appears %d times", tok.Index, tok, seen[tok.Index])
			}
		}
	}
}

func TestTreeCoversTokens(t *testing.T) {
	for name, src := range propertySources {
		t.Run(name, func(t *testing.T) {
			tokens := Tokenize([]byte(src), name+".clw")
			root, _ := ParseFile(tokens)
			checkCoverage(t, tokens, root)
			checkTokensOnce(t, tokens, root)
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	shared := NewPredictionCache()
	for name, src := range propertySources {
		t.Run(name, func(t *testing.T) {
			tokens := Tokenize([]byte(src), name+".clw")
			first, firstDiags := ParseFile(tokens)
			second, secondDiags := ParseFile(tokens, WithPredictionCache(shared))
			third, thirdDiags := ParseFile(tokens, WithPredictionCache(shared))
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("cached parse differs:\n%s", diff)
			}
			if diff := cmp.Diff(second, third); diff != "" {
				t.Errorf("warm cache parse differs:\n%s", diff)
			}
			if diff := cmp.Diff(firstDiags, secondDiags); diff != "" {
				t.Errorf("cached diagnostics differ:\n%s", diff)
			}
			if diff := cmp.Diff(secondDiags, thirdDiags); diff != "" {
				t.Errorf("warm cache diagnostics differ:\n%s", diff)
			}
		})
	}
}

func TestRecoveryKeepsPartialTrees(t *testing.T) {
	for name, src := range propertySources {
		t.Run(name, func(t *testing.T) {
			root, diags := ParseFile(Tokenize([]byte(src), name+".clw"))
			if root == nil {
				t.Fatal("no tree")
			}
			// Every error node in the tree has a matching diagnostic.
			if len(root.Errors()) > len(diags.Errors()) {
				t.Errorf("%d error nodes but %d errors", len(root.Errors()), len(diags.Errors()))
			}
		})
	}
}

func FuzzParseFile(f *testing.F) {
	for _, src := range propertySources {
		f.Add(src)
	}
	f.Fuzz(func(t *testing.T, src string) {
		tokens := Tokenize([]byte(src), "fuzz.clw")
		first, diags := ParseFile(tokens)
		second, _ := ParseFile(tokens)
		if first.String() != second.String() {
			t.Fatal("parse is not deterministic")
		}
		if len(first.Errors()) > 0 && !diags.HasErrors() {
			t.Error("error nodes without errors")
		}
		checkCoverage(t, tokens, first)
	})
}
