package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
)

const source = `  PROGRAM
Count LONG
  CODE
  Main()

Main PROCEDURE
  CODE
  x = (1 +
  RETURN
`

func parse(t *testing.T) *Result {
	t.Helper()
	tokens := parser.Tokenize([]byte(source), "main.clw")
	root, diags := parser.ParseFile(tokens)
	require.True(t, diags.HasErrors(), "source should have a syntax error")
	return &Result{
		File:        "main.clw",
		Root:        root,
		Diagnostics: diags,
		Symbols:     outline.Build(root),
	}
}

func TestTreeEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreeEncoder(&buf, false).Encode(parse(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Program\n"), "tree first:\n%s", out)
	assert.Contains(t, out, "  procedure Main\n")
	assert.Contains(t, out, "  variable Count LONG\n")
	assert.Contains(t, out, ": SyntaxError: ")
}

func TestTreeEncoderPositions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreeEncoder(&buf, true).Encode(parse(t)))
	assert.Contains(t, buf.String(), "procedure Main [6:1-")
}

func TestTreeEncoderTokens(t *testing.T) {
	r := &Result{Tokens: parser.Tokenize([]byte("x = 1"), "t.clw")}
	text, err := (&TreeEncoder{result: r}).MarshalText()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, `1:1      Identifier     "x"`, lines[0])
	assert.Equal(t, "1:6      EOF            end of file", lines[5])
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(parse(t)))

	var doc struct {
		File string `json:"file"`
		Tree struct {
			Kind   string `json:"kind"`
			Tokens struct{ Start, Stop int }
		} `json:"tree"`
		Symbols []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"children"`
		} `json:"symbols"`
		Diagnostics []struct {
			Kind string `json:"kind"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "main.clw", doc.File)
	assert.Equal(t, "Program", doc.Tree.Kind)
	require.Len(t, doc.Symbols, 1)
	require.Len(t, doc.Symbols[0].Children, 2)
	assert.Equal(t, "Main", doc.Symbols[0].Children[1].Name)
	assert.Equal(t, "procedure", doc.Symbols[0].Children[1].Kind)
	require.NotEmpty(t, doc.Diagnostics)
	assert.Equal(t, "SyntaxError", doc.Diagnostics[0].Kind)
}

func TestCBOREncoder(t *testing.T) {
	r := parse(t)
	var first, second bytes.Buffer
	require.NoError(t, NewCBOREncoder(&first).Encode(r))
	require.NoError(t, NewCBOREncoder(&second).Encode(r))
	assert.Equal(t, first.Bytes(), second.Bytes(), "encoding is not deterministic")

	var decoded document
	require.NoError(t, cbor.Unmarshal(first.Bytes(), &decoded))
	assert.Equal(t, newDocument(r), &decoded)
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf).Encode(parse(t)))
	out := buf.String()

	assert.Contains(t, out, "symbol\tPROGRAM/Main\tprocedure\t6:1\t-\n")
	assert.Contains(t, out, "symbol\tPROGRAM/Count\tvariable\t2:1\tLONG\n")
	assert.Regexp(t, `(?m)^main\.clw:8:\d+: SyntaxError: .+$`, out)
}

func TestLineEncoderTokens(t *testing.T) {
	var buf bytes.Buffer
	r := &Result{Tokens: parser.Tokenize([]byte("a\n"), "t.clw")}
	require.NoError(t, NewLineEncoder(&buf).Encode(r))
	assert.Equal(t, "token\t1:1\tIdentifier\ta\ntoken\t1:2\tNewline\t\\n\ntoken\t2:1\tEOF\t-\n", buf.String())
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		assert.NotNil(t, New(name, &bytes.Buffer{}), name)
	}
	assert.Nil(t, New("xml", &bytes.Buffer{}))
}

func TestJSONDiagnostic(t *testing.T) {
	root, diags := parser.ParseExpression(parser.Tokenize([]byte("a +"), "expr.clw"))
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(&Result{Root: root, Diagnostics: diags.Errors()}))

	s := buf.String()
	for _, want := range []string{`"kind": "SyntaxError"`, `"message": "expected expression, got end of file"`, `"ruleStack": [`} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, `"file"`)
}
