package outline

import (
	"strings"
	"testing"

	"github.com/dhamidi/clw/clarion/parser"
	"github.com/google/go-cmp/cmp"
)

const program = `  PROGRAM

  MAP
Main    PROCEDURE
Helper  PROCEDURE(LONG pCount, *STRING pName),LONG,PROC
    MODULE('util.clw')
Util      PROCEDURE(<STRING pOpt>),STRING
    END
  END

GlobalCount  LONG
Customer     GROUP,PRE(Cus)
Name           STRING(40)
Id             LONG
             END
Colors       ITEMIZE,PRE(Color)
Red            EQUATE
Green          EQUATE
             END
MaxItems     EQUATE(100)

  CODE
  Main()

Main  PROCEDURE
Loc   STRING(20)
  CODE
  DO Setup
  RETURN

Setup ROUTINE
  Loc = Helper(1, Loc)

Helper  PROCEDURE(LONG pCount, *STRING pName)
  CODE
  RETURN pCount
`

const member = `  MEMBER('app')

MyClass  CLASS,TYPE
Count      LONG
Init       PROCEDURE(LONG start)
         END

MyClass.Init PROCEDURE(LONG start)
  CODE
  SELF.Count = start

LocalProc PROCEDURE
Win WINDOW('Orders'),AT(,,100,50)
  MENUBAR
    MENU('&File')
      ITEM('E&xit'),USE(?Exit)
    END
  END
  BUTTON('OK'),USE(?Ok)
  PROMPT('Name:')
  END
  CODE
  RETURN
`

func build(t *testing.T, src string) ([]Symbol, []parser.Token, *parser.Node) {
	t.Helper()
	tokens := parser.Tokenize([]byte(src), "test.clw")
	root, diags := parser.ParseFile(tokens)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	return Build(root), tokens, root
}

// shape renders the outline as indented "kind name" lines.
func shape(symbols []Symbol) string {
	var b strings.Builder
	var walk func([]Symbol, int)
	walk = func(symbols []Symbol, depth int) {
		for _, s := range symbols {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(s.Kind.String() + " " + s.Name + "\n")
			walk(s.Children, depth+1)
		}
	}
	walk(symbols, 0)
	return b.String()
}

func TestBuildProgram(t *testing.T) {
	symbols, _, _ := build(t, program)
	want := `program PROGRAM
  map MAP
    prototype Main
    prototype Helper
    module util.clw
      prototype Util
  variable GlobalCount
  structure Customer
    variable Name
    variable Id
  itemize Colors
    equate Red
    equate Green
  equate MaxItems
  procedure Main
    variable Loc
    routine Setup
  procedure Helper
`
	if diff := cmp.Diff(want, shape(symbols)); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDetails(t *testing.T) {
	symbols, _, _ := build(t, program)
	tests := []struct {
		name   string
		kind   Kind
		detail string
	}{
		{"Helper", KindPrototype, "(LONG pCount, *STRING pName),LONG"},
		{"GlobalCount", KindVariable, "LONG"},
		{"Name", KindVariable, "STRING(40)"},
		{"Customer", KindStructure, "GROUP"},
		{"MaxItems", KindEquate, "100"},
	}
	for _, tt := range tests {
		var found *Symbol
		for _, s := range Find(symbols, tt.name) {
			if s.Kind == tt.kind {
				found = &s
				break
			}
		}
		if found == nil {
			t.Errorf("no %v %s", tt.kind, tt.name)
			continue
		}
		if found.Detail != tt.detail {
			t.Errorf("%s: detail = %q, want %q", tt.name, found.Detail, tt.detail)
		}
	}
}

func TestBuildMember(t *testing.T) {
	symbols, _, _ := build(t, member)
	want := `member MEMBER
  class MyClass
    field Count
    method Init
  method MyClass.Init
  procedure LocalProc
    window Win
      menubar MENUBAR
        menu &File
          item ?Exit
      control ?Ok
      control Name:
`
	if diff := cmp.Diff(want, shape(symbols)); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
	if symbols[0].Detail != "app" {
		t.Errorf("member detail = %q, want app", symbols[0].Detail)
	}
	class := Find(symbols, "MyClass")[0]
	if class.Detail != "TYPE" {
		t.Errorf("class detail = %q", class.Detail)
	}
}

func TestFind(t *testing.T) {
	symbols, _, _ := build(t, member)
	tests := []struct {
		name string
		want int
	}{
		{"init", 2},
		{"MyClass.Init", 1},
		{"localproc", 1},
		{"?ok", 1},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := len(Find(symbols, tt.name)); got != tt.want {
			t.Errorf("Find(%q) = %d symbols, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSymbolAt(t *testing.T) {
	symbols, _, _ := build(t, program)
	tests := []struct {
		line, col int
		want      string
	}{
		{32, 3, "PROGRAM/Main/Setup"},
		{26, 1, "PROGRAM/Main/Loc"},
		{13, 16, "PROGRAM/Customer/Name"},
		{7, 11, "PROGRAM/MAP/util.clw/Util"},
	}
	for _, tt := range tests {
		var names []string
		for _, s := range SymbolAt(symbols, tt.line, tt.col) {
			names = append(names, s.Name)
		}
		if got := strings.Join(names, "/"); got != tt.want {
			t.Errorf("SymbolAt(%d, %d) = %s, want %s", tt.line, tt.col, got, tt.want)
		}
	}
	if got := SymbolAt(nil, 1, 1); len(got) != 0 {
		t.Errorf("SymbolAt on no symbols = %v", got)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	symbols, _, _ := build(t, program)
	var names []string
	Walk(symbols, func(s Symbol) bool {
		names = append(names, s.Name)
		return s.Kind == KindProgram
	})
	if got := strings.Join(names, ","); got != "PROGRAM,MAP,GlobalCount,Customer,Colors,MaxItems,Main,Helper" {
		t.Errorf("walked %s", got)
	}
}

func TestWindowOutline(t *testing.T) {
	symbols, tokens, root := build(t, member)
	win := root.Find(parser.KindWindow)[0]
	got, diags := WindowOutline(tokens, win)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := Find(symbols, "Win")[0]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("window outline differs (-file +fragment):\n%s", diff)
	}
}

func TestBuildUIFragment(t *testing.T) {
	root, _ := parser.ParseUIFragment(parser.Tokenize([]byte("BUTTON('OK'),USE(?Ok)\nENTRY(@n5)\n"), "ui.clw"))
	if got := shape(Build(root)); got != "control ?Ok\ncontrol ENTRY\n" {
		t.Errorf("fragment outline:\n%s", got)
	}
}

func TestKindString(t *testing.T) {
	if KindRoutine.String() != "routine" || Kind(99).String() != "unknown" {
		t.Errorf("unexpected names %s %s", KindRoutine, Kind(99))
	}
}
