package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `  PROGRAM
  MAP
Main PROCEDURE
  END
  CODE
  Main()

Main PROCEDURE
  CODE
  RETURN
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func run(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.clw": mainSource})

	out, err := run(newParseCmd(), filepath.Join(dir, "app.clw"))
	require.NoError(t, err)
	assert.Regexp(t, `^Program\n`, out)
	assert.Contains(t, out, "  Procedure\n")
}

func TestParseCmdFailsOnSyntaxErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.clw": "  PROGRAM\nx LONG\n  END\n  CODE\n"})
	path := filepath.Join(dir, "bad.clw")

	out, err := run(newParseCmd(), "--format", "line", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 syntax error(s)")
	assert.Contains(t, out, path+":3:3: ")
}

func TestParseCmdUnknownEntryPoint(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.clw": mainSource})
	_, err := run(newParseCmd(), "--as", "report", filepath.Join(dir, "app.clw"))
	assert.ErrorContains(t, err, "unknown entry point: report")
}

func TestTokensCmd(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.clw": "! header\n  PROGRAM\n"})
	path := filepath.Join(dir, "app.clw")

	out, err := run(newTokensCmd(), "--format", "line", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "header")
	assert.Contains(t, out, "\tEOF\t")

	out, err = run(newTokensCmd(), "--format", "line", "--trivia", path)
	require.NoError(t, err)
	assert.Contains(t, out, "header")
}

func TestOutlineCmd(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.clw": mainSource})

	out, err := run(newOutlineCmd(), "--format", "line", filepath.Join(dir, "app.clw"))
	require.NoError(t, err)
	assert.Contains(t, out, "symbol\tPROGRAM/MAP/Main\tprototype\t")
	assert.Contains(t, out, "symbol\tPROGRAM/Main\tprocedure\t8:1\t")
}

func TestUICmdFragment(t *testing.T) {
	dir := writeFiles(t, map[string]string{"form.clw": "  BUTTON('OK'),USE(?Ok)\n  ENTRY(@n5)\n"})

	out, err := run(newUICmd(), "--fragment", filepath.Join(dir, "form.clw"))
	require.NoError(t, err)
	assert.Equal(t, "control ?Ok BUTTON\ncontrol ENTRY ENTRY\n", out)
}

func TestUICmdWithoutWindow(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.clw": mainSource})
	_, err := run(newUICmd(), filepath.Join(dir, "app.clw"))
	assert.ErrorContains(t, err, "no WINDOW or APPLICATION structure")
}

func TestCheckCmd(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app.clw": mainSource,
		"inc.inc": "Limit EQUATE(10)\n",
	})

	out, err := run(newCheckCmd(), "--order", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "program\tapp.clw\n")
	assert.Contains(t, out, "source\tinc.inc\n")
}

func TestCheckCmdReportsUnresolved(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app.clw": "  PROGRAM\n  MAP\n    MODULE('gone.clw')\nGone PROCEDURE\n    END\n  END\n  CODE\n",
	})

	out, err := run(newCheckCmd(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unresolved reference(s)")
	assert.Contains(t, out, `MODULE: no file "gone.clw" in the workspace`)
}

func TestGrammarCmd(t *testing.T) {
	out, err := run(newGrammarCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Expression     = AndExpr")
}

func TestGrammarCheckCmd(t *testing.T) {
	out, err := run(newGrammarCmd(), "check", "a + 1", "a +")
	require.NoError(t, err)
	assert.Equal(t, "ok\tgrammar=ok\tparser=ok\ta + 1\nok\tgrammar=no\tparser=no\ta +\n", out)
}
