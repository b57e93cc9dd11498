package interp

import (
	"strings"
	"testing"

	"github.com/zeb33n/zeblang/internal/parser"
)

// bufferConsole collects Print output for assertions, playing the role
// of platform.Console in tests.
type bufferConsole struct {
	lines []string
}

func (b *bufferConsole) Print(s string) { b.lines = append(b.lines, s) }

func runSource(t *testing.T, src string) (int32, *bufferConsole) {
	t.Helper()
	stmts, errs := parser.Parse(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	console := &bufferConsole{}
	result, err := New(console).Run(stmts)
	if err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	return result, console
}

func TestNestedWhileWithInnerMutation(t *testing.T) {
	src := `i = 10
out = 0
while i
  out = out + 2
  j = 2
  while j
    out = out + 1
    j = j - 1
  elihw
  i = i - 1
elihw
exit out
`
	got, _ := runSource(t, src)
	if got != 40 {
		t.Errorf("exit = %d, want 40", got)
	}
}

func TestArraysAndIndexing(t *testing.T) {
	src := `y = 1 * 1
array_1 = [y, 2, 3]
array_2 = [3, 4, 5, 4 - array_1[2]]
array_3 = [1+1, 4 * 2, 0, 0, 0, 0]
exit array_1[0] + array_2[3] + array_3[1]
`
	got, _ := runSource(t, src)
	if got != 10 {
		t.Errorf("exit = %d, want 10", got)
	}
}

func TestMutableArrayIndex(t *testing.T) {
	src := `array_1 = [1, 2, 3, 4]
array_2 = [0, 2, 3, 4, 1]
array_1[2 + array_2[4]] = array_1[1] * 4
exit array_1[3]
`
	got, _ := runSource(t, src)
	if got != 8 {
		t.Errorf("exit = %d, want 8", got)
	}
}

func TestIfElseViaTwoIfs(t *testing.T) {
	src := `ex = 1
why = 2
x = 0
y = 21
if ex == why
  x = y
fi
if y != x
  x = 3
  y = y - 19
fi
exit x + y
`
	got, _ := runSource(t, src)
	if got != 5 {
		t.Errorf("exit = %d, want 5", got)
	}
}

func TestRecursionAndMultipleFunctions(t *testing.T) {
	src := `foo blah(alpha, beta)
  return alpha + beta
oof
foo main()
  return blah(1, 2)
oof
exit main()
`
	got, _ := runSource(t, src)
	if got != 3 {
		t.Errorf("exit = %d, want 3", got)
	}
}

func TestPrecedence(t *testing.T) {
	src := `x = 1 + 2 * 3 + 1 * 2 * 1
y = 4 * 1 + 2 * 1 - 2 * 1
z = 1 + 1 - 1 + 1 - 1 * 1
exit x + y * z
`
	got, _ := runSource(t, src)
	if got != 13 {
		t.Errorf("exit = %d, want 13", got)
	}
}

func TestForLoopOverRange(t *testing.T) {
	src := `total = 0
for i in range(5)
  total = total + i
rof
exit total
`
	got, _ := runSource(t, src)
	if got != 10 {
		t.Errorf("exit = %d, want 10", got)
	}
}

func TestPrintReturnsItsArgument(t *testing.T) {
	src := `x = print(42)
exit x
`
	got, console := runSource(t, src)
	if got != 42 {
		t.Errorf("exit = %d, want 42", got)
	}
	if len(console.lines) != 1 || console.lines[0] != "42" {
		t.Errorf("console lines = %v, want [42]", console.lines)
	}
}

func TestPrintArray(t *testing.T) {
	src := `a = [1, 2, 3]
x = print(a)
exit 0
`
	_, console := runSource(t, src)
	if len(console.lines) != 1 || console.lines[0] != "1,2,3" {
		t.Errorf("console lines = %v, want [1,2,3]", console.lines)
	}
}

func TestArraysAreCopiedAcrossCallBoundary(t *testing.T) {
	src := `foo mutate(a)
  a[0] = 99
  return a[0]
oof
arr = [1, 2, 3]
x = mutate(arr)
exit arr[0]
`
	got, _ := runSource(t, src)
	if got != 1 {
		t.Errorf("exit = %d, want 1 (caller's array must be unaffected)", got)
	}
}

func TestArraysShareWithinScopeThroughAlias(t *testing.T) {
	src := `arr = [1, 2, 3]
alias = arr
alias[0] = 99
exit arr[0]
`
	got, _ := runSource(t, src)
	if got != 99 {
		t.Errorf("exit = %d, want 99 (alias must share the backing array)", got)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	stmts, errs := parser.Parse("exit nope\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	_, err := New(&bufferConsole{}).Run(stmts)
	if err == nil || !strings.Contains(err.Error(), "undefined variable") {
		t.Errorf("err = %v, want undefined variable error", err)
	}
}

func TestOutOfRangeIndexIsRuntimeError(t *testing.T) {
	stmts, errs := parser.Parse("a = [1, 2]\nexit a[5]\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	_, err := New(&bufferConsole{}).Run(stmts)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("err = %v, want out of range error", err)
	}
}

func TestExitDefaultsToZero(t *testing.T) {
	got, _ := runSource(t, "x = 1\n")
	if got != 0 {
		t.Errorf("exit = %d, want 0", got)
	}
}

func TestExitInsideFunctionOnlyEndsTheCall(t *testing.T) {
	// exit inside a function terminates only that call, like return, not
	// the whole program.
	src := `foo early(x)
  if x
    exit 777
  fi
  return 1
oof
y = early(1)
exit y
`
	got, _ := runSource(t, src)
	if got != 777 {
		t.Errorf("exit = %d, want 777 (function's own exit value)", got)
	}
}
