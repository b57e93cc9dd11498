package interp

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/zeb33n/zeblang/internal/parser"
)

// TestFixturePrintOutput snapshot-tests the console output of a handful
// of representative Zeblang programs, the same go-snaps pattern the
// teacher repo uses for its own fixture suite
// (internal/interp/fixture_test.go's snaps.MatchSnapshot call).
func TestFixturePrintOutput(t *testing.T) {
	fixtures := []struct {
		name string
		src  string
	}{
		{
			name: "print_each_element_of_a_range",
			src: `for i in range(4)
  x = print(i)
rof
exit 0
`,
		},
		{
			name: "print_fibonacci_via_recursion",
			src: `foo fib(n)
  if n == 0
    return 0
  fi
  if n == 1
    return 1
  fi
  return fib(n - 1) + fib(n - 2)
oof
i = 0
while i != 7
  x = print(fib(i))
  i = i + 1
elihw
exit 0
`,
		},
		{
			name: "print_array_after_mutation",
			src: `a = [10, 20, 30]
a[1] = a[1] + 5
x = print(a)
exit 0
`,
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			stmts, errs := parser.Parse(f.src)
			if len(errs) != 0 {
				t.Fatalf("parse errors: %v", errs)
			}
			console := &bufferConsole{}
			if _, err := New(console).Run(stmts); err != nil {
				t.Fatalf("interpret error: %v", err)
			}
			snaps.MatchSnapshot(t, strings.Join(console.lines, "\n"))
		})
	}
}
