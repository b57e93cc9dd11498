package parser

import (
	"testing"

	"github.com/zeb33n/zeblang/internal/ast"
	zerrors "github.com/zeb33n/zeblang/internal/errors"
)

func parseOneLine(t *testing.T, line string) ast.Statement {
	t.Helper()
	stmts, errs := Parse(line)
	if len(errs) != 0 {
		t.Fatalf("Parse(%q) errors: %v", line, errs)
	}
	if len(stmts) != 1 {
		t.Fatalf("Parse(%q) = %d statements, want 1", line, len(stmts))
	}
	return stmts[0]
}

func TestOperatorPrecedenceLeftAssociative(t *testing.T) {
	// a + b * c - d should fold as ((a + (b * c)) - d).
	stmt := parseOneLine(t, "exit a + b * c - d")
	exit, ok := stmt.(*ast.Exit)
	if !ok {
		t.Fatalf("got %T, want *ast.Exit", stmt)
	}
	want := "((a + (b * c)) - d)"
	if got := exit.Value.String(); got != want {
		t.Errorf("expr = %s, want %s", got, want)
	}
}

func TestOperatorPrecedenceSameLevelLeftFolds(t *testing.T) {
	// a - b - c should fold as ((a - b) - c), not right-associated.
	stmt := parseOneLine(t, "exit a - b - c")
	exit := stmt.(*ast.Exit)
	want := "((a - b) - c)"
	if got := exit.Value.String(); got != want {
		t.Errorf("expr = %s, want %s", got, want)
	}
}

func TestParseAssignment(t *testing.T) {
	stmt := parseOneLine(t, "x = 1 + 2")
	a, ok := stmt.(*ast.Assign)
	if !ok {
		t.Fatalf("got %T, want *ast.Assign", stmt)
	}
	if a.Name != "x" {
		t.Errorf("Name = %s, want x", a.Name)
	}
	if a.Value.String() != "(1 + 2)" {
		t.Errorf("Value = %s", a.Value.String())
	}
}

func TestParseIndexedAssignment(t *testing.T) {
	stmt := parseOneLine(t, "arr[1 + 2] = 9")
	a, ok := stmt.(*ast.AssignIndex)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignIndex", stmt)
	}
	if a.Name != "arr" || a.Index.String() != "(1 + 2)" || a.Value.String() != "9" {
		t.Errorf("unexpected AssignIndex: %#v", a)
	}
}

func TestParseFuncAndCall(t *testing.T) {
	stmt := parseOneLine(t, "foo blah(alpha, beta)")
	f, ok := stmt.(*ast.Func)
	if !ok {
		t.Fatalf("got %T, want *ast.Func", stmt)
	}
	if f.Name != "blah" || len(f.Params) != 2 || f.Params[0] != "alpha" || f.Params[1] != "beta" {
		t.Errorf("unexpected Func: %#v", f)
	}

	stmt2 := parseOneLine(t, "exit blah(1, 2)")
	exit := stmt2.(*ast.Exit)
	call, ok := exit.Value.(*ast.Callable)
	if !ok {
		t.Fatalf("got %T, want *ast.Callable", exit.Value)
	}
	if call.Name != "blah" || len(call.Args) != 2 {
		t.Errorf("unexpected Callable: %#v", call)
	}
}

func TestParseArrayLiteralAndPreAlloc(t *testing.T) {
	stmt := parseOneLine(t, "a = [1, 2, 3]")
	arr := stmt.(*ast.Assign).Value.(*ast.Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("len(Elements) = %d, want 3", len(arr.Elements))
	}

	stmt2 := parseOneLine(t, "b = [size 4]")
	pre := stmt2.(*ast.Assign).Value.(*ast.PreAllocArray)
	if pre.Size != 4 {
		t.Errorf("Size = %d, want 4", pre.Size)
	}
}

func TestParseFor(t *testing.T) {
	stmt := parseOneLine(t, "for i in range(n)")
	f, ok := stmt.(*ast.For)
	if !ok {
		t.Fatalf("got %T, want *ast.For", stmt)
	}
	if f.Name != "i" {
		t.Errorf("Name = %s, want i", f.Name)
	}
	call, ok := f.Iterable.(*ast.Callable)
	if !ok || call.Name != "range" {
		t.Errorf("Iterable = %#v", f.Iterable)
	}
}

func TestParseClosers(t *testing.T) {
	cases := map[string]ast.Statement{
		"fi":    &ast.EndIf{},
		"elihw": &ast.EndWhile{},
		"rof":   &ast.EndFor{},
		"oof":   &ast.EndFunc{},
	}
	for line, want := range cases {
		got := parseOneLine(t, line)
		if got.String() != want.String() {
			t.Errorf("Parse(%q) = %T, want %T", line, got, want)
		}
	}
}

func TestParseDeterminism(t *testing.T) {
	line := "exit a + b * c == d - e / f"
	s1, errs1 := Parse(line)
	s2, errs2 := Parse(line)
	if len(errs1) != 0 || len(errs2) != 0 {
		t.Fatalf("unexpected errors: %v %v", errs1, errs2)
	}
	if s1[0].String() != s2[0].String() {
		t.Errorf("two parses differ: %s vs %s", s1[0].String(), s2[0].String())
	}
}

func TestBlockMatchingAcrossProgram(t *testing.T) {
	src := `i = 10
while i
  i = i - 1
elihw
if i
  exit 1
fi
exit 0
`
	stmts, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	var whileDepth, ifDepth int
	for _, s := range stmts {
		switch s.(type) {
		case *ast.While:
			whileDepth++
		case *ast.EndWhile:
			whileDepth--
		case *ast.If:
			ifDepth++
		case *ast.EndIf:
			ifDepth--
		}
	}
	if whileDepth != 0 || ifDepth != 0 {
		t.Errorf("unbalanced blocks: whileDepth=%d ifDepth=%d", whileDepth, ifDepth)
	}
}

func TestParseSyntaxErrorCarriesLineNumber(t *testing.T) {
	_, errs := Parse("x = 1\ny 2\n")
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1 error", errs)
	}
	syn, ok := errs[0].(*zerrors.SyntaxError)
	if !ok {
		t.Fatalf("err = %T, want *errors.SyntaxError", errs[0])
	}
	if syn.Line != 2 {
		t.Errorf("Line = %d, want 2", syn.Line)
	}
}
