package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/clw/clarion/outline"
)

// LineEncoder writes one tab separated record per token and symbol, and
// diagnostics in the file:line:col form editors and grep understand.
type LineEncoder struct {
	w      io.Writer
	result *Result
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(r *Result) error {
	e.result = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	r := e.result

	for _, tok := range r.Tokens {
		fmt.Fprintf(&sb, "token\t%s\t%s\t%s\n", tok.Span.Start, tok.Kind, orDash(tok.Literal))
	}

	e.writeSymbols(&sb, r.Symbols, "")

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&sb, "%s:%s: %s: %s\n", e.file(), d.Range.Span.Start, d.Kind, d.Message)
	}

	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeSymbols(sb *strings.Builder, symbols []outline.Symbol, parent string) {
	for _, s := range symbols {
		path := s.Name
		if parent != "" {
			path = parent + "/" + s.Name
		}
		fmt.Fprintf(sb, "symbol\t%s\t%s\t%s\t%s\n", path, s.Kind, s.Span.Start, orDash(s.Detail))
		e.writeSymbols(sb, s.Children, path)
	}
}

func (e *LineEncoder) file() string {
	if e.result.File == "" {
		return "-"
	}
	return e.result.File
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return escaper.Replace(s)
}

var escaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)
