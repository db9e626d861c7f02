package parser

import (
	"fmt"
	"strings"
)

type DiagnosticKind int

const (
	SyntaxError DiagnosticKind = iota
	Ambiguity
	RecoveryAttempt
)

func (k DiagnosticKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case Ambiguity:
		return "Ambiguity"
	case RecoveryAttempt:
		return "RecoveryAttempt"
	}
	return "Unknown"
}

// IsError reports whether editors should show the diagnostic by default.
func (k DiagnosticKind) IsError() bool {
	return k == SyntaxError
}

// Range is an inclusive range of token indices plus its source span.
// Stop < Start describes an empty range positioned before token Start.
type Range struct {
	Start int
	Stop  int
	Span  Span
}

type Diagnostic struct {
	Kind      DiagnosticKind
	Range     Range
	Message   string
	RuleStack []string
	Expected  []TokenKind
	Decision  string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Range.Span.Start, d.Kind, d.Message)
	if len(d.RuleStack) > 0 {
		fmt.Fprintf(&b, " (in %s)", strings.Join(d.RuleStack, " > "))
	}
	return b.String()
}

type Diagnostics []Diagnostic

// Errors returns only the SyntaxError entries.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.OfKind(SyntaxError)
}

func (ds Diagnostics) OfKind(kind DiagnosticKind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Kind == SyntaxError {
			return true
		}
	}
	return false
}

func expectedString(kinds []TokenKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
