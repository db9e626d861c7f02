// Package format renders parse results for the command line: as an indented
// tree, as compiler-style lines, or as a JSON or CBOR document.
package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
)

// Result is what one command produced for one file. Encoders render the
// parts that are set.
type Result struct {
	File        string
	Tokens      []parser.Token
	Root        *parser.Node
	Diagnostics parser.Diagnostics
	Symbols     []outline.Symbol
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(r *Result) error
}

// New returns the encoder registered for name, or nil.
func New(name string, w io.Writer) Encoder {
	switch name {
	case "tree":
		return NewTreeEncoder(w, false)
	case "positions":
		return NewTreeEncoder(w, true)
	case "json":
		return NewJSONEncoder(w)
	case "cbor":
		return NewCBOREncoder(w)
	case "line":
		return NewLineEncoder(w)
	}
	return nil
}

// Names lists the formats New accepts.
var Names = []string{"tree", "positions", "json", "cbor", "line"}
