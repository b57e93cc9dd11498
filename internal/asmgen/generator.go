// Package asmgen emits x86-64 assembly for a Linux syscall ABI,
// targeting NASM syntax: the exit syscall (60) to terminate and the
// write syscall (1) to stdout for print.
//
// Value discipline: every expression leaves exactly one 64-bit value on
// top of the machine stack. Variable reads/writes are always expressed
// relative to rsp, using a compile-time-tracked logical stack-slot
// counter.
package asmgen

import (
	"fmt"
	"strings"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
)

// funcInfo is what a call site needs to know about a declared function:
// its entry label and how many arguments it expects.
type funcInfo struct {
	label      string
	paramCount int
}

// Generator accumulates assembly text while walking the statement
// stream once.
type Generator struct {
	asm strings.Builder

	sp    int // logical stack-slot counter
	level int // indent level

	loops, ifs, equalitys, prints, funcCounter int

	vars  map[string]int // name -> stack slot, scoped to the current context
	funcs map[string]*funcInfo

	// Non-empty while emitting a function body; genReturn uses it to
	// reject a return outside of any function.
	curFunc string
}

// New creates a Generator with an empty top-level variable table.
func New() *Generator {
	return &Generator{
		vars:  make(map[string]int),
		funcs: make(map[string]*funcInfo),
		level: 1,
	}
}

func indent(level int) string { return strings.Repeat("    ", level) }

func (g *Generator) generic(cmd string) {
	g.asm.WriteString(indent(g.level))
	g.asm.WriteString(cmd)
	g.asm.WriteString("\n")
}

func (g *Generator) label(name string) {
	g.asm.WriteString(name)
	g.asm.WriteString(":\n")
}

func (g *Generator) push(reg string) {
	g.generic("push " + reg)
	g.sp++
}

func (g *Generator) pop(reg string) {
	g.generic("pop " + reg)
	g.sp--
}

// Generate emits a complete assembly source file for the given program.
func (g *Generator) Generate(stmts []ast.Statement) (string, error) {
	if err := g.registerFuncs(stmts); err != nil {
		return "", err
	}

	g.asm.WriteString("section .data\n    msg: db 0, 0, 0, 0, 10\n")
	g.asm.WriteString("section .text\n    global _start\n_start:\n")

	i := 0
	for i < len(stmts) {
		next, err := g.genStatement(stmts, i)
		if err != nil {
			return "", err
		}
		i = next
	}

	// A program that falls off the end without an explicit exit
	// terminates with status 0, matching the interpreter's default.
	g.generic("mov rax, 60")
	g.generic("mov rdi, 0")
	g.generic("syscall")

	return g.asm.String(), nil
}

// registerFuncs assigns every top-level function a unique entry label
// before any code is emitted, so forward-referenced calls (declaration
// appearing after use in source order) still resolve.
func (g *Generator) registerFuncs(stmts []ast.Statement) error {
	i := 0
	for i < len(stmts) {
		f, ok := stmts[i].(*ast.Func)
		if !ok {
			i++
			continue
		}
		_, next, err := collectBlock(stmts, i)
		if err != nil {
			return err
		}
		g.funcCounter++
		g.funcs[f.Name] = &funcInfo{
			label:      fmt.Sprintf("FUNC_%s_%d", f.Name, g.funcCounter),
			paramCount: len(f.Params),
		}
		i = next
	}
	return nil
}

// genStatement emits one statement (recursing into block bodies as
// needed) and returns the index of the next statement to process.
func (g *Generator) genStatement(stmts []ast.Statement, i int) (int, error) {
	switch s := stmts[i].(type) {
	case *ast.Exit:
		if err := g.genExit(s); err != nil {
			return 0, err
		}
		return i + 1, nil

	case *ast.Assign:
		if err := g.genAssign(s); err != nil {
			return 0, err
		}
		return i + 1, nil

	case *ast.AssignIndex:
		if err := g.genAssignIndex(s); err != nil {
			return 0, err
		}
		return i + 1, nil

	case *ast.If:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, err
		}
		if err := g.genIf(s, body); err != nil {
			return 0, err
		}
		return next, nil

	case *ast.While:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, err
		}
		if err := g.genWhile(s, body); err != nil {
			return 0, err
		}
		return next, nil

	case *ast.For:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, err
		}
		if err := g.genFor(s, body); err != nil {
			return 0, err
		}
		return next, nil

	case *ast.Func:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, err
		}
		if err := g.genFunc(s, body); err != nil {
			return 0, err
		}
		return next, nil

	case *ast.Return:
		if err := g.genReturn(s); err != nil {
			return 0, err
		}
		return i + 1, nil

	default:
		return 0, &errors.RuntimeError{Message: fmt.Sprintf("asmgen: unsupported statement %T", stmts[i])}
	}
}

func (g *Generator) varAddr(name string) (string, error) {
	slot, ok := g.vars[name]
	if !ok {
		return "", &errors.RuntimeError{Message: fmt.Sprintf("asmgen: undeclared variable %q", name)}
	}
	return fmt.Sprintf("[rsp + %d]", (g.sp-slot-1)*8), nil
}

func (g *Generator) genExpr(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.Value:
		g.generic("mov rax, " + e.Literal)
		g.push("rax")

	case *ast.Var:
		addr, err := g.varAddr(e.Name)
		if err != nil {
			return err
		}
		g.generic("mov rax, " + addr)
		g.push("rax")

	case *ast.Infix:
		if err := g.genExpr(e.Left); err != nil {
			return err
		}
		if err := g.genExpr(e.Right); err != nil {
			return err
		}
		g.pop("rbx")
		g.pop("rax")
		switch e.Op {
		case "+":
			g.generic("add rax, rbx")
		case "-":
			g.generic("sub rax, rbx")
		case "*":
			g.generic("imul rbx")
		case "/":
			g.generic("xor rdx, rdx")
			g.generic("idiv rbx")
		case "%":
			g.generic("xor rdx, rdx")
			g.generic("idiv rbx")
			g.generic("mov rax, rdx")
		case "==":
			g.genEquality()
		case "!=":
			g.genEquality()
			g.generic("xor rax, 1")
		default:
			return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: invalid operator %q", e.Op)}
		}
		g.push("rax")

	case *ast.Callable:
		return g.genCallable(e)

	case *ast.Array:
		for _, el := range e.Elements {
			if err := g.genExpr(el); err != nil {
				return err
			}
		}
		g.generic("mov rax, 0x7F")
		g.push("rax")

	case *ast.PreAllocArray:
		for n := 0; n < e.Size+1; n++ {
			g.push("0x7F")
		}

	case *ast.Index:
		return g.genIndexRead(e)

	default:
		return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: unsupported expression %T", expr)}
	}
	return nil
}

func (g *Generator) genEquality() {
	g.generic("cmp rax, rbx")
	g.generic(fmt.Sprintf("je EQUALITY%d", g.equalitys))
	g.generic("mov rax, 0")
	g.generic(fmt.Sprintf("jmp ENDEQ%d", g.equalitys))
	g.label(fmt.Sprintf("EQUALITY%d", g.equalitys))
	g.level++
	g.generic("mov rax, 1")
	g.level--
	g.label(fmt.Sprintf("ENDEQ%d", g.equalitys))
	g.equalitys++
}

func (g *Generator) genIndexRead(e *ast.Index) error {
	if err := g.genExpr(e.Subscript); err != nil {
		return err
	}
	g.pop("rbx")
	g.generic("mov rax, 8")
	g.generic("imul rbx")
	g.generic("mov rcx, rax")
	g.generic("mov rax, rsp")
	g.generic("sub rax, rcx")
	slot, ok := g.vars[e.Name]
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: undeclared variable %q", e.Name)}
	}
	g.generic(fmt.Sprintf("mov rax, [rax + %d]", (g.sp-slot-1)*8))
	g.push("rax")
	return nil
}

func (g *Generator) genAssign(s *ast.Assign) error {
	if _, exists := g.vars[s.Name]; !exists {
		g.vars[s.Name] = g.sp
		return g.genExpr(s.Value)
	}
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	g.pop("rax")
	addr, err := g.varAddr(s.Name)
	if err != nil {
		return err
	}
	g.generic("mov " + addr + ", rax")
	return nil
}

func (g *Generator) genAssignIndex(s *ast.AssignIndex) error {
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	if err := g.genExpr(s.Index); err != nil {
		return err
	}
	g.pop("rcx")
	g.pop("rbx")
	g.generic("mov rax, 8")
	g.generic("imul rcx")
	g.generic("mov rcx, rax")
	g.generic("mov rax, rsp")
	g.generic("sub rax, rcx")
	slot, ok := g.vars[s.Name]
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: undeclared variable %q", s.Name)}
	}
	g.generic(fmt.Sprintf("mov [rax + %d], rbx", (g.sp-slot-1)*8))
	return nil
}

func (g *Generator) genExit(s *ast.Exit) error {
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	g.generic("mov rax, 60")
	g.pop("rdi")
	g.generic("syscall")
	return nil
}

func (g *Generator) genIf(s *ast.If, body []ast.Statement) error {
	if err := g.genExpr(s.Cond); err != nil {
		return err
	}
	g.pop("rax")
	g.generic("cmp rax, 0")
	n := g.ifs
	g.ifs++
	g.generic(fmt.Sprintf("je endif%d", n))
	i := 0
	for i < len(body) {
		next, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
	}
	g.label(fmt.Sprintf("endif%d", n))
	return nil
}

func (g *Generator) genWhile(s *ast.While, body []ast.Statement) error {
	n := g.loops
	g.loops++
	g.label(fmt.Sprintf("wexp%d", n))
	g.level++
	if err := g.genExpr(s.Cond); err != nil {
		return err
	}
	g.pop("rax")
	g.generic("mov rbx, 0")
	g.generic("cmp rax, rbx")
	g.generic(fmt.Sprintf("je exit%d", n))
	g.generic(fmt.Sprintf("jmp loop%d", n))
	g.level--
	g.label(fmt.Sprintf("loop%d", n))
	g.level++
	i := 0
	for i < len(body) {
		next, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
	}
	g.generic(fmt.Sprintf("jmp wexp%d", n))
	g.level--
	g.label(fmt.Sprintf("exit%d", n))
	return nil
}

// genFor evaluates the iterable once into a synthetic array slot, then
// walks it word by word until the 0x7F terminator is observed.
func (g *Generator) genFor(s *ast.For, body []ast.Statement) error {
	n := g.loops
	g.loops++

	arrName := fmt.Sprintf("!FORARRAY%d", n)
	g.vars[arrName] = g.sp
	if err := g.genExpr(s.Iterable); err != nil {
		return err
	}
	g.generic("mov rax, 0x7F")
	g.push("rax")

	g.vars[s.Name] = g.sp
	g.push("0x7F")

	g.generic("mov r8, 0")
	g.label(fmt.Sprintf("FOR%d", n))
	g.level++

	g.generic("mov rcx, r8")
	g.generic("mov rax, 8")
	g.generic("imul rcx")
	g.generic("mov rcx, rax")
	g.generic("mov rax, rsp")
	g.generic("sub rax, rcx")
	arrSlot := g.vars[arrName]
	g.generic(fmt.Sprintf("mov rax, [rax + %d]", (g.sp-arrSlot-1)*8))
	loopVarAddr, err := g.varAddr(s.Name)
	if err != nil {
		return err
	}
	g.generic("mov " + loopVarAddr + ", rax")
	g.generic("inc r8")

	g.generic("mov rax, " + loopVarAddr)
	g.generic("cmp rax, 0x7F")
	g.generic(fmt.Sprintf("je ENDFOR%d", n))

	i := 0
	for i < len(body) {
		next, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
	}

	g.generic(fmt.Sprintf("jmp FOR%d", n))
	g.level--
	g.label(fmt.Sprintf("ENDFOR%d", n))
	return nil
}

// genCallable lowers a call expression: print (inline digit-splitting
// write syscall), range (materializes an array used only by For), or a
// user-defined function (call/ret convention, see genFunc).
func (g *Generator) genCallable(e *ast.Callable) error {
	switch e.Name {
	case "print":
		if len(e.Args) != 1 {
			return &errors.RuntimeError{Message: "print expects exactly one argument"}
		}
		if err := g.genExpr(e.Args[0]); err != nil {
			return err
		}
		g.genPrint()
		return nil

	case "range":
		if len(e.Args) != 1 {
			return &errors.RuntimeError{Message: "range expects exactly one argument"}
		}
		if err := g.genExpr(e.Args[0]); err != nil {
			return err
		}
		g.genRange()
		return nil

	default:
		return g.genCall(e)
	}
}

// genPrint loads the top-of-stack value and writes its decimal digits
// (0-999) followed by a newline via the write syscall, via a three-digit
// ASCII-splitting routine.
func (g *Generator) genPrint() {
	g.generic("mov rax, [rsp]")
	g.generic("mov rbx, 100")
	g.generic("idiv rbx")
	g.generic("mov rcx, rax")
	g.generic("mov rax, rdx")
	g.generic("xor rdx, rdx")
	g.generic("mov rbx, 10")
	g.generic("idiv rbx")
	g.generic("mov rbx, rax")
	g.generic("mov eax, edx")

	g.generic("add eax, '0'")
	g.generic("shl eax, 16")
	g.generic("mov ah, bl")
	g.generic("mov al, cl")
	g.generic("cmp al, 0")
	g.generic(fmt.Sprintf("je DIG2ASCII%d", g.prints))
	g.generic("add eax, '00'")
	g.generic(fmt.Sprintf("jmp ASCIIEX%d", g.prints))
	g.label(fmt.Sprintf("DIG2ASCII%d", g.prints))
	g.level++
	g.generic("cmp ah, 0")
	g.generic(fmt.Sprintf("je ASCIIEX%d", g.prints))
	g.generic("add ah, '0'")
	g.level--
	g.label(fmt.Sprintf("ASCIIEX%d", g.prints))

	g.generic("mov [msg], eax")
	g.generic("mov rax, 1")
	g.generic("mov rdi, 1")
	g.generic("mov rsi, msg")
	g.generic("mov rdx, 5")
	g.generic("syscall")
	g.generic("xor rax, rax")
	g.generic("xor rbx, rbx")
	g.generic("xor rcx, rcx")
	g.generic("xor rdx, rdx")
	g.prints++
}

// genRange materializes range(n)'s 0..n-1 sequence as a terminated array
// on the stack, for consumption by a For loop.
func (g *Generator) genRange() {
	g.pop("rax")
	g.generic("mov rbx, 0")
	n := g.loops
	g.loops++
	g.label(fmt.Sprintf("range%d", n))
	g.level++
	g.push("rbx")
	g.generic("inc rbx")
	g.generic("cmp rax, rbx")
	g.generic(fmt.Sprintf("je rangeend%d", n))
	g.generic(fmt.Sprintf("jmp range%d", n))
	g.level--
	g.label(fmt.Sprintf("rangeend%d", n))
	g.generic("mov rax, 0x7F")
	g.push("rax")
}

// genFunc lowers a function definition using a conventional call/ret
// frame: a jump around the body, a prologue that saves rbp, a fresh
// per-function variable table and slot counter, and a fallthrough
// epilogue for a body that never reaches an explicit Return.
//
// Parameters were pushed by the caller before the call, so they live
// above the saved return address and saved rbp; genFunc records them at
// negative slot numbers chosen so the ordinary (sp - slot - 1)*8
// addressing formula resolves to their true rbp-relative offset without
// a second addressing scheme.
func (g *Generator) genFunc(s *ast.Func, body []ast.Statement) error {
	info, ok := g.funcs[s.Name]
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: function %q was not pre-registered", s.Name)}
	}

	skipLabel := "SKIP_" + info.label
	g.generic("jmp " + skipLabel)
	g.label(info.label)

	savedVars, savedSp, savedFunc := g.vars, g.sp, g.curFunc

	g.generic("push rbp")
	g.generic("mov rbp, rsp")

	g.vars = make(map[string]int)
	g.sp = 0
	g.curFunc = s.Name
	n := len(s.Params)
	for i, p := range s.Params {
		g.vars[p] = i - n - 2
	}

	g.level++
	j := 0
	for j < len(body) {
		next, err := g.genStatement(body, j)
		if err != nil {
			return err
		}
		j = next
	}

	// Fallthrough epilogue: a body that never executes an explicit
	// Return yields 0, matching the interpreter's default.
	g.generic("mov rax, 0")
	g.generic("mov rsp, rbp")
	g.generic("pop rbp")
	g.generic("ret")
	g.level--

	g.vars, g.sp, g.curFunc = savedVars, savedSp, savedFunc

	g.label(skipLabel)
	return nil
}

// genReturn evaluates its operand, then unwinds the current frame and
// transfers control back to the call site via ret.
func (g *Generator) genReturn(s *ast.Return) error {
	if g.curFunc == "" {
		return &errors.RuntimeError{Message: "asmgen: return outside of a function"}
	}
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	g.pop("rax")
	g.generic("mov rsp, rbp")
	g.generic("pop rbp")
	g.generic("ret")
	return nil
}

// genCall lowers a user-defined function call: arguments are pushed
// left to right, then `call` transfers control (pushing the return
// address the way the callee's `ret` expects). The callee's frame
// absorbs its own locals but leaves the caller's pushed arguments in
// place, so the call site drops them and pushes the single returned
// word, preserving the one-value-per-expression stack discipline.
func (g *Generator) genCall(e *ast.Callable) error {
	info, ok := g.funcs[e.Name]
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("asmgen: undefined function %q", e.Name)}
	}
	if len(e.Args) != info.paramCount {
		return &errors.RuntimeError{Message: fmt.Sprintf("function %q expects %d argument(s), got %d", e.Name, info.paramCount, len(e.Args))}
	}
	for _, a := range e.Args {
		if err := g.genExpr(a); err != nil {
			return err
		}
	}
	g.generic("call " + info.label)
	if len(e.Args) > 0 {
		g.generic(fmt.Sprintf("add rsp, %d", 8*len(e.Args)))
		g.sp -= len(e.Args)
	}
	g.push("rax")
	return nil
}
