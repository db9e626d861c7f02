package format

import (
	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
)

// document is the shape shared by the JSON and CBOR encoders. The CBOR
// encoder reads the json tags.
type document struct {
	File        string          `json:"file,omitempty"`
	Tokens      []docToken      `json:"tokens,omitempty"`
	Tree        *docNode        `json:"tree,omitempty"`
	Symbols     []docSymbol     `json:"symbols,omitempty"`
	Diagnostics []docDiagnostic `json:"diagnostics,omitempty"`
}

type docNode struct {
	Kind      string     `json:"kind"`
	Span      *docSpan   `json:"span,omitempty"`
	Tokens    *docRange  `json:"tokens,omitempty"`
	Token     string     `json:"token,omitempty"`
	TokenKind string     `json:"tokenKind,omitempty"`
	Error     *docError  `json:"error,omitempty"`
	Children  []*docNode `json:"children,omitempty"`
}

type docSpan struct {
	Start docPosition `json:"start"`
	End   docPosition `json:"end"`
}

type docPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type docRange struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

type docError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

type docToken struct {
	Kind    string  `json:"kind"`
	Literal string  `json:"literal,omitempty"`
	Span    docSpan `json:"span"`
}

type docSymbol struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Detail   string      `json:"detail,omitempty"`
	Span     docSpan     `json:"span"`
	Tokens   docRange    `json:"tokens"`
	Children []docSymbol `json:"children,omitempty"`
}

type docDiagnostic struct {
	Kind      string   `json:"kind"`
	Message   string   `json:"message"`
	Span      docSpan  `json:"span"`
	Tokens    docRange `json:"tokens"`
	RuleStack []string `json:"ruleStack,omitempty"`
	Expected  []string `json:"expected,omitempty"`
	Decision  string   `json:"decision,omitempty"`
}

func newDocument(r *Result) *document {
	doc := &document{File: r.File}
	for _, tok := range r.Tokens {
		doc.Tokens = append(doc.Tokens, docToken{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Span:    spanToDoc(tok.Span),
		})
	}
	if r.Root != nil {
		doc.Tree = nodeToDoc(r.Root)
	}
	doc.Symbols = symbolsToDoc(r.Symbols)
	for _, d := range r.Diagnostics {
		dd := docDiagnostic{
			Kind:     d.Kind.String(),
			Message:  d.Message,
			Span:     spanToDoc(d.Range.Span),
			Tokens:   docRange{Start: d.Range.Start, Stop: d.Range.Stop},
			Decision: d.Decision,
		}
		if len(d.RuleStack) > 0 {
			dd.RuleStack = d.RuleStack
		}
		for _, exp := range d.Expected {
			dd.Expected = append(dd.Expected, exp.String())
		}
		doc.Diagnostics = append(doc.Diagnostics, dd)
	}
	return doc
}

func spanToDoc(s parser.Span) docSpan {
	return docSpan{
		Start: docPosition{Line: s.Start.Line, Column: s.Start.Column},
		End:   docPosition{Line: s.End.Line, Column: s.End.Column},
	}
}

func nodeToDoc(n *parser.Node) *docNode {
	dn := &docNode{
		Kind: n.Kind.String(),
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		span := spanToDoc(n.Span)
		dn.Span = &span
	}
	if !n.IsEmpty() && n.Token == nil {
		dn.Tokens = &docRange{Start: n.Start, Stop: n.Stop}
	}

	if n.Token != nil {
		dn.Token = n.Token.Literal
		dn.TokenKind = n.Token.Kind.String()
	}

	if n.Error != nil {
		dn.Error = &docError{
			Message: n.Error.Message,
		}
		for _, exp := range n.Error.Expected {
			dn.Error.Expected = append(dn.Error.Expected, exp.String())
		}
		if n.Error.Got != nil {
			dn.Error.Got = n.Error.Got.String()
		}
	}

	if len(n.Children) > 0 {
		dn.Children = make([]*docNode, len(n.Children))
		for i, child := range n.Children {
			dn.Children[i] = nodeToDoc(child)
		}
	}

	return dn
}

func symbolsToDoc(symbols []outline.Symbol) []docSymbol {
	if len(symbols) == 0 {
		return nil
	}
	out := make([]docSymbol, len(symbols))
	for i, s := range symbols {
		out[i] = docSymbol{
			Name:     s.Name,
			Kind:     s.Kind.String(),
			Detail:   s.Detail,
			Span:     spanToDoc(s.Span),
			Tokens:   docRange{Start: s.Start, Stop: s.Stop},
			Children: symbolsToDoc(s.Children),
		}
	}
	return out
}
