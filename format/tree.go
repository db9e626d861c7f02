package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/clw/clarion/outline"
)

// TreeEncoder writes the human readable form: one token per line, the CST
// indented by depth, the outline indented by nesting and diagnostics last.
type TreeEncoder struct {
	w         io.Writer
	positions bool
	result    *Result
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(r *Result) error {
	e.result = r
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	r := e.result

	for _, tok := range r.Tokens {
		fmt.Fprintf(&sb, "%-8s %-14s %s\n", tok.Span.Start, tok.Kind, tok)
	}

	if r.Root != nil {
		if e.positions {
			sb.WriteString(r.Root.StringWithPositions())
		} else {
			sb.WriteString(r.Root.String())
		}
	}

	e.writeSymbols(&sb, r.Symbols, 0)

	for _, d := range r.Diagnostics {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}

	return []byte(sb.String()), nil
}

func (e *TreeEncoder) writeSymbols(sb *strings.Builder, symbols []outline.Symbol, depth int) {
	for _, s := range symbols {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(sb, "%s %s", s.Kind, s.Name)
		if s.Detail != "" {
			sb.WriteString(" " + s.Detail)
		}
		if e.positions {
			sb.WriteString(" [" + s.Span.Start.String() + "-" + s.Span.End.String() + "]")
		}
		sb.WriteByte('\n')
		e.writeSymbols(sb, s.Children, depth+1)
	}
}
