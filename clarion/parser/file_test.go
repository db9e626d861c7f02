package parser

import (
	"strings"
	"testing"
)

const sampleProgram = `  PROGRAM

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
  IF GlobalCount > 1 THEN Loc = 'x'.
  DO Setup
  RETURN

Setup ROUTINE
  Loc = Helper(1, Loc)

Helper  PROCEDURE(LONG pCount, *STRING pName)
  CODE
  LOOP pCount TIMES
    pName = pName & '!'
  END
  RETURN pCount
`

const sampleMember = `  MEMBER('app')

  MAP
LocalProc PROCEDURE
  END

MyClass  CLASS,TYPE
Count      LONG
Name       &STRING
Init       PROCEDURE(LONG start)
Kill       PROCEDURE,VIRTUAL
         END

ModCount LONG

MyClass.Init PROCEDURE(LONG start)
  CODE
  SELF.Count = start

MyClass.Kill PROCEDURE
  CODE
  PARENT.Kill

LocalProc PROCEDURE
  CODE
  CASE ModCount
  OF 1
    RETURN
  END
`

func parseSrc(t *testing.T, src string) (*Node, Diagnostics) {
	t.Helper()
	return ParseFile(Tokenize([]byte(src), "test.clw"))
}

func TestParseProgram(t *testing.T) {
	root, diags := parseSrc(t, sampleProgram)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if root.Kind != KindProgram {
		t.Fatalf("root = %v, want Program", root.Kind)
	}

	data := root.FirstChildOfKind(KindDataSection)
	if data == nil {
		t.Fatal("missing global data")
	}
	if m := data.FirstChildOfKind(KindMap); m == nil {
		t.Error("MAP not in global data")
	} else if got := len(m.Find(KindPrototype)); got != 3 {
		t.Errorf("prototypes = %d, want 3", got)
	}
	for kind, want := range map[NodeKind]int{
		KindVariableDecl: 1,
		KindStructure:    1,
		KindItemize:      1,
		KindEquate:       1,
	} {
		if got := len(data.ChildrenOfKind(kind)); got != want {
			t.Errorf("%v declarations = %d, want %d", kind, got, want)
		}
	}

	procs := root.ChildrenOfKind(KindProcedure)
	if len(procs) != 2 {
		t.Fatalf("procedures = %d, want 2", len(procs))
	}
	if ProcedureName(procs[0]) != "Main" || ProcedureName(procs[1]) != "Helper" {
		t.Errorf("procedure names = %q, %q", ProcedureName(procs[0]), ProcedureName(procs[1]))
	}
	routines := procs[0].ChildrenOfKind(KindRoutine)
	if len(routines) != 1 || ProcedureName(routines[0]) != "Setup" {
		t.Errorf("routines of Main = %v", routines)
	}
	if root.FirstChildOfKind(KindCodeSection) == nil {
		t.Error("missing program CODE section")
	}
}

func TestParseMember(t *testing.T) {
	root, diags := parseSrc(t, sampleMember)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if root.Kind != KindMember {
		t.Fatalf("root = %v, want Member", root.Kind)
	}
	class := root.FirstChildOfKind(KindClass)
	if class == nil {
		t.Fatal("missing class")
	}
	if got := len(class.ChildrenOfKind(KindPrototype)); got != 2 {
		t.Errorf("methods = %d, want 2", got)
	}
	if got := len(class.ChildrenOfKind(KindVariableDecl)); got != 2 {
		t.Errorf("fields = %d, want 2", got)
	}
	if Attribute(class, "type") == nil {
		t.Error("missing TYPE attribute")
	}

	var names []string
	for _, proc := range root.ChildrenOfKind(KindProcedure) {
		names = append(names, ProcedureName(proc))
	}
	if got := strings.Join(names, ","); got != "MyClass.Init,MyClass.Kill,LocalProc" {
		t.Errorf("procedures = %s", got)
	}
}

func TestParseFileHeaders(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    NodeKind
		message string
	}{
		{"empty", "", KindMember, ""},
		{"blank lines", "\n\n", KindMember, ""},
		{"member without module", "  MEMBER\n", KindMember, ""},
		{"no header", "x = 1\n", KindMember, `expected PROGRAM or MEMBER, got "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, diags := parseSrc(t, tt.input)
			if root.Kind != tt.kind {
				t.Errorf("root = %v, want %v", root.Kind, tt.kind)
			}
			errs := diags.Errors()
			if tt.message == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) == 0 || errs[0].Message != tt.message {
				t.Errorf("errors = %v, want %q", errs, tt.message)
			}
		})
	}
}

func TestHeaderlessFileKeepsStatements(t *testing.T) {
	root, _ := parseSrc(t, "x = 1\n")
	if len(root.Find(KindAssignStmt)) != 1 {
		t.Errorf("assignment lost\n%s", root)
	}
}

func TestHeaderOptional(t *testing.T) {
	src := "MaxOrders EQUATE(10)\nOrderQ QUEUE\nID LONG\n  END\n"
	root, diags := ParseSource([]byte(src), WithHeaderOptional())
	if len(diags.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", diags.Errors())
	}
	if root.Kind != KindMember || len(root.Find(KindEquate)) != 1 {
		t.Errorf("declarations lost\n%s", root)
	}
}

func TestUnmatchedEndInClass(t *testing.T) {
	src := "  MEMBER('app')\nMyClass  CLASS\nInit       PROCEDURE\nCount      LONG\n"
	root, diags := parseSrc(t, src)

	errs := diags.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if !strings.Contains(errs[0].Message, "missing END for CLASS opened at 2:10") {
		t.Errorf("message = %q", errs[0].Message)
	}
	class := root.FirstChildOfKind(KindClass)
	if class == nil {
		t.Fatalf("no partial class\n%s", root)
	}
	if len(class.ChildrenOfKind(KindPrototype)) != 1 || len(class.ChildrenOfKind(KindVariableDecl)) != 1 {
		t.Errorf("class children lost\n%s", class)
	}
}

func TestEndDoesNotCloseEnclosingStructure(t *testing.T) {
	src := "  PROGRAM\nx LONG\n  END\ny LONG\n  CODE\n"
	root, diags := parseSrc(t, src)
	errs := diags.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, `unexpected "END" with no open structure`) {
		t.Fatalf("errors = %v", errs)
	}
	data := root.FirstChildOfKind(KindDataSection)
	if got := len(data.ChildrenOfKind(KindVariableDecl)); got != 2 {
		t.Errorf("variables = %d, want 2", got)
	}
	if root.FirstChildOfKind(KindCodeSection) == nil {
		t.Error("CODE section lost")
	}
}

func TestNestedStructures(t *testing.T) {
	src := `  PROGRAM
Orders   QUEUE,PRE(Ord)
Id         LONG
Address    GROUP
Street       STRING(40)
           END
         END
Lines    FILE,DRIVER('TOPSPEED'),PRE(Lin)
Record     RECORD
Qty          LONG
           END
         END
  CODE
`
	root, diags := parseSrc(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	structs := root.Find(KindStructure)
	if len(structs) != 4 {
		t.Fatalf("structures = %d, want 4\n%s", len(structs), root)
	}
	if LabelText(structs[3]) != "Record" {
		t.Errorf("RECORD label = %q", LabelText(structs[3]))
	}
}

func wrapRoutine(body string) string {
	return "  MEMBER\nMain PROCEDURE\n  CODE\n  DO R\nR ROUTINE\n" + body
}

func TestRoutineShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		kinds []NodeKind
	}{
		{"statements", "  x = 1\n", []NodeKind{KindStatementList}},
		{"data and code", "  DATA\nt LONG\n  CODE\n  t = 1\n", []NodeKind{KindDataSection, KindCodeSection}},
		{"code", "  CODE\n  x = 1\n", []NodeKind{KindCodeSection}},
		{"data", "  DATA\nt LONG\n", []NodeKind{KindDataSection}},
		{"local class and code", "  DATA\nC CLASS\nM PROCEDURE\n  END\n  CODE\n  x = 1\n", []NodeKind{KindDataSection, KindCodeSection}},
		{"local map and code", "  DATA\n  MAP\nHelper PROCEDURE\n  END\n  CODE\n  Helper()\n", []NodeKind{KindDataSection, KindCodeSection}},
		{"empty", "", nil},
		{"empty before procedure", "Other PROCEDURE\n  CODE\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, diags := parseSrc(t, wrapRoutine(tt.body))
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			routines := root.Find(KindRoutine)
			if len(routines) != 1 {
				t.Fatalf("routines = %d, want 1\n%s", len(routines), root)
			}
			var got []NodeKind
			for _, child := range routines[0].Children {
				if !child.IsToken() && child.Kind != KindLabel {
					got = append(got, child.Kind)
				}
			}
			if len(got) != len(tt.kinds) {
				t.Fatalf("children = %v, want %v", got, tt.kinds)
			}
			for i := range got {
				if got[i] != tt.kinds[i] {
					t.Errorf("child %d = %v, want %v", i, got[i], tt.kinds[i])
				}
			}
		})
	}
}

func TestProcedureBodyShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data bool
		code bool
	}{
		{"data and code", "  MEMBER\nP PROCEDURE\nx LONG\n  CODE\n  x = 1\n", true, true},
		{"code only", "  MEMBER\nP PROCEDURE\n  CODE\n  RETURN\n", false, true},
		{"data only", "  MEMBER\nP PROCEDURE\nx LONG\n", true, false},
		{"empty", "  MEMBER\nP PROCEDURE\nQ PROCEDURE\n  CODE\n", false, false},
		{"local class", "  MEMBER('app')\nP PROCEDURE\nThisWindow CLASS(WindowManager)\nInit PROCEDURE(),BYTE,PROC,DERIVED\nKill PROCEDURE(),BYTE,PROC,DERIVED\n  END\n  CODE\n  x = 1\n", true, true},
		{"local class with group", "  MEMBER\nP PROCEDURE\nC CLASS\nG GROUP\nA LONG\n  END\nCount LONG\n  END\n  CODE\n  x = 1\n", true, true},
		{"local map", "  MEMBER\nP PROCEDURE\n  MAP\nHelper PROCEDURE\n  END\n  CODE\n  Helper()\n", true, true},
		{"local map with module", "  MEMBER\nP PROCEDURE\n  MAP\n    MODULE('util.clw')\nHelper PROCEDURE(LONG),LONG\n    END\n  END\n  CODE\n  x = Helper(1)\n", true, true},
		{"local class without code", "  MEMBER\nP PROCEDURE\nC CLASS\nM PROCEDURE\n  END\nQ PROCEDURE\n  CODE\n", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, diags := parseSrc(t, tt.src)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			proc := root.FirstChildOfKind(KindProcedure)
			if got := proc.FirstChildOfKind(KindDataSection) != nil; got != tt.data {
				t.Errorf("data = %t, want %t\n%s", got, tt.data, proc)
			}
			if got := proc.FirstChildOfKind(KindCodeSection) != nil; got != tt.code {
				t.Errorf("code = %t, want %t\n%s", got, tt.code, proc)
			}
		})
	}
}

func TestLocalClassInProgramRoutine(t *testing.T) {
	src := "  PROGRAM\n  MAP\n  END\n  CODE\n  Main()\n" +
		"Main PROCEDURE\n  CODE\n  DO R\n" +
		"R ROUTINE\n  DATA\nC CLASS\nM PROCEDURE\n  END\n  CODE\n  x = 1\n"
	root, diags := parseSrc(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v\n%s", diags.Errors(), root)
	}
	routines := root.Find(KindRoutine)
	if len(routines) != 1 {
		t.Fatalf("routines = %d, want 1\n%s", len(routines), root)
	}
	code := routines[0].FirstChildOfKind(KindCodeSection)
	if code == nil {
		t.Fatalf("routine has no CODE section\n%s", routines[0])
	}
	if len(code.Find(KindAssignStmt)) != 1 {
		t.Errorf("assignment not under the routine CODE section\n%s", root)
	}
	classes := routines[0].Find(KindClass)
	if len(classes) != 1 || len(classes[0].Find(KindPrototype)) != 1 {
		t.Errorf("class method prototype missing\n%s", routines[0])
	}
}

func TestPrototypeTails(t *testing.T) {
	src := "  MEMBER\n  MAP\nF PROCEDURE(LONG a, <STRING b>),*STRING,NAME('f')\nG PROCEDURE,VIRTUAL\nH(LONG),LONG\nK FUNCTION(),?\n  END\n"
	root, diags := parseSrc(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Errors())
	}
	protos := root.Find(KindPrototype)
	if len(protos) != 4 {
		t.Fatalf("prototypes = %d, want 4", len(protos))
	}
	tests := []struct {
		name       string
		params     int
		returnType bool
		attribute  string
	}{
		{"F", 2, true, "NAME"},
		{"G", 0, false, "VIRTUAL"},
		{"H", 1, true, ""},
		{"K", 0, true, ""},
	}
	for i, tt := range tests {
		proto := protos[i]
		if got := ProcedureName(proto); got != tt.name {
			t.Errorf("prototype %d name = %q, want %q", i, got, tt.name)
		}
		params := 0
		if list := proto.FirstChildOfKind(KindParameterList); list != nil {
			for _, p := range list.ChildrenOfKind(KindParameter) {
				if !p.IsEmpty() {
					params++
				}
			}
		}
		if params != tt.params {
			t.Errorf("%s: parameters = %d, want %d", tt.name, params, tt.params)
		}
		if got := proto.FirstChildOfKind(KindReturnType) != nil; got != tt.returnType {
			t.Errorf("%s: return type = %t, want %t", tt.name, got, tt.returnType)
		}
		if tt.attribute != "" && Attribute(proto, tt.attribute) == nil {
			t.Errorf("%s: missing attribute %s", tt.name, tt.attribute)
		}
	}
}

func TestAttributeNameRequired(t *testing.T) {
	root, diags := parseSrc(t, "  PROGRAM\nx LONG,'bad',DIM(3)\n  CODE\n")
	errs := diags.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "expected attribute name") {
		t.Fatalf("errors = %v", errs)
	}
	decl := root.Find(KindVariableDecl)[0]
	if Attribute(decl, "DIM") == nil {
		t.Errorf("attribute after the bad one lost\n%s", decl)
	}
}

func TestParseSource(t *testing.T) {
	root, diags := ParseSource([]byte(sampleMember), WithFile("member.clw"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := root.Span.Start.File; got != "member.clw" {
		t.Errorf("File = %q, want member.clw", got)
	}
}

func TestParseReader(t *testing.T) {
	root, diags, err := ParseReader(strings.NewReader(sampleProgram))
	if err != nil || root == nil || len(diags) != 0 {
		t.Fatalf("ParseReader = %v, %v, %v", root, diags, err)
	}
	if _, _, err := ParseReader(failingReader{}); err == nil {
		t.Error("expected the read error to be returned")
	}
}
