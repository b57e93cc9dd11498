package asmgen

import (
	"strings"
	"testing"

	"github.com/zeb33n/zeblang/internal/parser"
)

func mustGenerate(t *testing.T, src string) string {
	t.Helper()
	stmts, errs := parser.Parse(src)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	asm, err := New().Generate(stmts)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return asm
}

func TestGenerateEmitsEntryPointAndExitSyscall(t *testing.T) {
	asm := mustGenerate(t, "exit 7\n")
	if !strings.Contains(asm, "global _start") {
		t.Error("missing _start entry point")
	}
	if !strings.Contains(asm, "mov rax, 60") || !strings.Contains(asm, "syscall") {
		t.Error("missing exit syscall sequence")
	}
}

func TestGenerateFallsThroughToZeroExit(t *testing.T) {
	asm := mustGenerate(t, "x = 1\n")
	if strings.Count(asm, "mov rdi, 0") != 1 {
		t.Errorf("expected exactly one implicit zero-exit, got asm:\n%s", asm)
	}
}

func TestGenerateIfEmitsConditionalJump(t *testing.T) {
	asm := mustGenerate(t, "x = 1\nif x\n  exit 1\nfi\nexit 0\n")
	if !strings.Contains(asm, "je endif0") {
		t.Errorf("missing if-skip jump, asm:\n%s", asm)
	}
}

func TestGenerateWhileEmitsLoopLabels(t *testing.T) {
	asm := mustGenerate(t, "i = 0\nwhile i\n  i = i - 1\nelihw\nexit 0\n")
	for _, want := range []string{"wexp0:", "loop0:", "exit0:"} {
		if !strings.Contains(asm, want) {
			t.Errorf("missing label %q, asm:\n%s", want, asm)
		}
	}
}

func TestGenerateArrayLiteralUsesSentinel(t *testing.T) {
	asm := mustGenerate(t, "a = [1, 2, 3]\nexit a[0]\n")
	if !strings.Contains(asm, "0x7F") {
		t.Errorf("array literal should be terminated with the 0x7F sentinel, asm:\n%s", asm)
	}
}

func TestGeneratePrintEmitsWriteSyscall(t *testing.T) {
	asm := mustGenerate(t, "x = print(5)\nexit 0\n")
	if !strings.Contains(asm, "mov rdi, 1") || !strings.Contains(asm, "mov rsi, msg") {
		t.Errorf("print should write to fd 1 via the msg buffer, asm:\n%s", asm)
	}
}

func TestGenerateFunctionUsesCallRetConvention(t *testing.T) {
	src := `foo blah(alpha, beta)
  return alpha + beta
oof
exit blah(1, 2)
`
	asm := mustGenerate(t, src)
	if !strings.Contains(asm, "call FUNC_blah_1") {
		t.Errorf("call site should call the registered entry label, asm:\n%s", asm)
	}
	if !strings.Contains(asm, "push rbp") || !strings.Contains(asm, "pop rbp") {
		t.Errorf("function body should save/restore rbp, asm:\n%s", asm)
	}
	if !strings.Contains(asm, "ret") {
		t.Errorf("function body should return via ret, asm:\n%s", asm)
	}
}

func TestGenerateUndefinedFunctionIsAnError(t *testing.T) {
	stmts, errs := parser.Parse("exit ghost(1)\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := New().Generate(stmts); err == nil {
		t.Error("expected an error calling an undeclared function")
	}
}

func TestGenerateReturnOutsideFunctionIsAnError(t *testing.T) {
	stmts, errs := parser.Parse("return 1\n")
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if _, err := New().Generate(stmts); err == nil {
		t.Error("expected an error for a top-level return")
	}
}
