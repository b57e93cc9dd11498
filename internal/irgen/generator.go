// Package irgen emits a generic, LLVM-like SSA-form intermediate
// representation for Zeblang programs. It follows the alloca/load/store
// style real clang output uses at -O0 (rather than hand-built phi
// nodes): every variable is a stack slot, and a mem2reg pass is assumed
// to run downstream.
//
// This emitter covers if, while, for, arrays, print and user-defined
// functions, using real basic blocks and branch instructions for
// control flow.
package irgen

import (
	"fmt"
	"strings"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
)

type funcSig struct {
	params []string
}

// Generator accumulates IR text for one module. Register and
// basic-block counters are per-function (reset in genFunctionIR),
// mirroring real LLVM's function-local %N numbering.
type Generator struct {
	ir strings.Builder

	level int
	ssa   int
	blk   int

	vars     map[string]string // name -> alloca pointer register
	arrayLen map[string]int    // name -> static element count, for arrays only

	funcs map[string]*funcSig
}

func New() *Generator {
	return &Generator{funcs: make(map[string]*funcSig)}
}

func (g *Generator) generic(line string) {
	g.ir.WriteString(strings.Repeat("    ", g.level))
	g.ir.WriteString(line)
	g.ir.WriteString("\n")
}

func (g *Generator) raw(line string) { g.ir.WriteString(line + "\n") }

func (g *Generator) newReg() string {
	r := fmt.Sprintf("%%t%d", g.ssa)
	g.ssa++
	return r
}

func (g *Generator) newLabel(prefix string) string {
	l := fmt.Sprintf("%s%d", prefix, g.blk)
	g.blk++
	return l
}

// Generate emits one module: the two external declarations, every
// top-level function as its own define, and the remaining top-level
// statements as @main.
func (g *Generator) Generate(stmts []ast.Statement) (string, error) {
	if err := g.registerFuncs(stmts); err != nil {
		return "", err
	}

	g.raw("declare void @exit(i32)")
	g.raw("declare i32 @zeblang_print(i32)")

	mainBody := make([]ast.Statement, 0, len(stmts))
	i := 0
	for i < len(stmts) {
		if f, ok := stmts[i].(*ast.Func); ok {
			body, next, err := collectBlock(stmts, i)
			if err != nil {
				return "", err
			}
			if err := g.genFunctionIR(f.Name, f.Params, body); err != nil {
				return "", err
			}
			i = next
			continue
		}
		mainBody = append(mainBody, stmts[i])
		i++
	}

	if err := g.genFunctionIR("main", nil, mainBody); err != nil {
		return "", err
	}
	return g.ir.String(), nil
}

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
		g.funcs[f.Name] = &funcSig{params: f.Params}
		i = next
	}
	return nil
}

// genFunctionIR emits one `define i32 @name(...) { ... }` block,
// resetting the per-function register/label/variable state first.
func (g *Generator) genFunctionIR(name string, params []string, body []ast.Statement) error {
	g.ssa = 0
	g.blk = 0
	g.vars = make(map[string]string)
	g.arrayLen = make(map[string]int)

	paramList := make([]string, len(params))
	for i, p := range params {
		paramList[i] = fmt.Sprintf("i32 %%arg.%s", p)
	}
	g.raw(fmt.Sprintf("define i32 @%s(%s) {", name, strings.Join(paramList, ", ")))
	g.level++
	g.raw("entry:")

	for _, p := range params {
		addr := "%" + p + ".addr"
		g.generic(fmt.Sprintf("%s = alloca i32, align 4", addr))
		g.generic(fmt.Sprintf("store i32 %%arg.%s, i32* %s, align 4", p, addr))
		g.vars[p] = addr
	}

	i := 0
	lastTerminated := false
	for i < len(body) {
		next, terminated, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		lastTerminated = terminated
		if terminated {
			// A Return already emitted a terminator for this block;
			// anything textually after it in the same block is
			// unreachable and must live in its own label to keep the
			// IR well-formed.
			i = next
			if i < len(body) {
				g.raw(g.newLabel("unreachable.") + ":")
			}
			continue
		}
		i = next
	}

	if !lastTerminated {
		g.generic("ret i32 0")
	}
	g.level--
	g.raw("}")
	return nil
}

func (g *Generator) genStatement(stmts []ast.Statement, i int) (next int, terminated bool, err error) {
	switch s := stmts[i].(type) {
	case *ast.Exit:
		reg, err := g.genExpr(s.Value)
		if err != nil {
			return 0, false, err
		}
		g.generic(fmt.Sprintf("call void @exit(i32 %s)", reg))
		g.generic("unreachable")
		return i + 1, true, nil

	case *ast.Return:
		reg, err := g.genExpr(s.Value)
		if err != nil {
			return 0, false, err
		}
		g.generic("ret i32 " + reg)
		return i + 1, true, nil

	case *ast.Assign:
		if err := g.genAssign(s); err != nil {
			return 0, false, err
		}
		return i + 1, false, nil

	case *ast.AssignIndex:
		if err := g.genAssignIndex(s); err != nil {
			return 0, false, err
		}
		return i + 1, false, nil

	case *ast.If:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, false, err
		}
		if err := g.genIf(s, body); err != nil {
			return 0, false, err
		}
		return next, false, nil

	case *ast.While:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, false, err
		}
		if err := g.genWhile(s, body); err != nil {
			return 0, false, err
		}
		return next, false, nil

	case *ast.For:
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return 0, false, err
		}
		if err := g.genFor(s, body); err != nil {
			return 0, false, err
		}
		return next, false, nil

	case *ast.Func:
		// Nested Func statements never occur at this level (top-level
		// Funcs were already peeled off before genFunctionIR runs).
		return 0, false, &errors.RuntimeError{Message: "irgen: unexpected nested function"}

	default:
		return 0, false, &errors.RuntimeError{Message: fmt.Sprintf("irgen: unsupported statement %T", stmts[i])}
	}
}

func (g *Generator) genAssign(s *ast.Assign) error {
	if arr, ok := s.Value.(*ast.Array); ok {
		return g.genArrayAssign(s.Name, arr.Elements)
	}
	if pre, ok := s.Value.(*ast.PreAllocArray); ok {
		zeros := make([]ast.Expression, pre.Size)
		for i := range zeros {
			zeros[i] = &ast.Value{Literal: "0"}
		}
		return g.genArrayAssign(s.Name, zeros)
	}

	reg, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	addr, exists := g.vars[s.Name]
	if !exists {
		addr = "%" + s.Name + ".addr"
		g.generic(fmt.Sprintf("%s = alloca i32, align 4", addr))
		g.vars[s.Name] = addr
	}
	g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", reg, addr))
	return nil
}

func (g *Generator) genArrayAssign(name string, elements []ast.Expression) error {
	n := len(elements)
	addr := "%" + name + ".addr"
	g.generic(fmt.Sprintf("%s = alloca [%d x i32], align 4", addr, n))
	g.vars[name] = addr
	g.arrayLen[name] = n
	for idx, el := range elements {
		reg, err := g.genExpr(el)
		if err != nil {
			return err
		}
		gep := g.newReg()
		g.generic(fmt.Sprintf("%s = getelementptr inbounds [%d x i32], [%d x i32]* %s, i32 0, i32 %d", gep, n, n, addr, idx))
		g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", reg, gep))
	}
	return nil
}

func (g *Generator) arrayElementPtr(name string, index ast.Expression) (string, error) {
	n, ok := g.arrayLen[name]
	if !ok {
		return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: %q is not an array", name)}
	}
	addr, ok := g.vars[name]
	if !ok {
		return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: undeclared variable %q", name)}
	}
	idxReg, err := g.genExpr(index)
	if err != nil {
		return "", err
	}
	gep := g.newReg()
	g.generic(fmt.Sprintf("%s = getelementptr inbounds [%d x i32], [%d x i32]* %s, i32 0, i32 %s", gep, n, n, addr, idxReg))
	return gep, nil
}

func (g *Generator) genAssignIndex(s *ast.AssignIndex) error {
	ptr, err := g.arrayElementPtr(s.Name, s.Index)
	if err != nil {
		return err
	}
	reg, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}
	g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", reg, ptr))
	return nil
}

// genExpr evaluates expr and returns the register holding its i32
// result.
func (g *Generator) genExpr(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.Value:
		reg := g.newReg()
		g.generic(fmt.Sprintf("%s = add i32 0, %s", reg, e.Literal))
		return reg, nil

	case *ast.Var:
		addr, ok := g.vars[e.Name]
		if !ok {
			return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: undeclared variable %q", e.Name)}
		}
		reg := g.newReg()
		g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", reg, addr))
		return reg, nil

	case *ast.Index:
		ptr, err := g.arrayElementPtr(e.Name, e.Subscript)
		if err != nil {
			return "", err
		}
		reg := g.newReg()
		g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", reg, ptr))
		return reg, nil

	case *ast.Infix:
		return g.genInfix(e)

	case *ast.Callable:
		return g.genCallable(e)

	default:
		return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: unsupported expression %T", expr)}
	}
}

var opcode = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "udiv", "%": "urem",
}

func (g *Generator) genInfix(e *ast.Infix) (string, error) {
	l, err := g.genExpr(e.Left)
	if err != nil {
		return "", err
	}
	r, err := g.genExpr(e.Right)
	if err != nil {
		return "", err
	}

	if op, ok := opcode[e.Op]; ok {
		reg := g.newReg()
		g.generic(fmt.Sprintf("%s = %s i32 %s, %s", reg, op, l, r))
		return reg, nil
	}

	var cond string
	switch e.Op {
	case "==":
		cond = "eq"
	case "!=":
		cond = "ne"
	default:
		return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: invalid operator %q", e.Op)}
	}
	cmp := g.newReg()
	g.generic(fmt.Sprintf("%s = icmp %s i32 %s, %s", cmp, cond, l, r))
	reg := g.newReg()
	g.generic(fmt.Sprintf("%s = zext i1 %s to i32", reg, cmp))
	return reg, nil
}

func (g *Generator) genCallable(e *ast.Callable) (string, error) {
	switch e.Name {
	case "print":
		if len(e.Args) != 1 {
			return "", &errors.RuntimeError{Message: "print expects exactly one argument"}
		}
		reg, err := g.genExpr(e.Args[0])
		if err != nil {
			return "", err
		}
		out := g.newReg()
		g.generic(fmt.Sprintf("%s = call i32 @zeblang_print(i32 %s)", out, reg))
		return out, nil

	case "range":
		return "", &errors.RuntimeError{Message: "irgen: range() is only valid directly inside a for loop"}

	default:
		sig, ok := g.funcs[e.Name]
		if !ok {
			return "", &errors.RuntimeError{Message: fmt.Sprintf("irgen: undefined function %q", e.Name)}
		}
		if len(e.Args) != len(sig.params) {
			return "", &errors.RuntimeError{Message: fmt.Sprintf("function %q expects %d argument(s), got %d", e.Name, len(sig.params), len(e.Args))}
		}
		argRegs := make([]string, len(e.Args))
		for i, a := range e.Args {
			r, err := g.genExpr(a)
			if err != nil {
				return "", err
			}
			argRegs[i] = "i32 " + r
		}
		out := g.newReg()
		g.generic(fmt.Sprintf("%s = call i32 @%s(%s)", out, e.Name, strings.Join(argRegs, ", ")))
		return out, nil
	}
}

// genIf lowers to two new basic blocks: then, and a shared continuation.
func (g *Generator) genIf(s *ast.If, body []ast.Statement) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	thenLabel := g.newLabel("if.then.")
	endLabel := g.newLabel("if.end.")

	test := g.newReg()
	g.generic(fmt.Sprintf("%s = icmp ne i32 %s, 0", test, cond))
	g.generic(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", test, thenLabel, endLabel))

	g.level--
	g.raw(thenLabel + ":")
	g.level++
	i := 0
	terminated := false
	for i < len(body) {
		next, t, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
		terminated = t
	}
	if !terminated {
		g.generic("br label %" + endLabel)
	}

	g.level--
	g.raw(endLabel + ":")
	g.level++
	return nil
}

// genWhile lowers to a condition block, a body block, and an exit
// block, the textbook structured-loop shape.
func (g *Generator) genWhile(s *ast.While, body []ast.Statement) error {
	condLabel := g.newLabel("while.cond.")
	bodyLabel := g.newLabel("while.body.")
	endLabel := g.newLabel("while.end.")

	g.generic("br label %" + condLabel)
	g.level--
	g.raw(condLabel + ":")
	g.level++

	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	test := g.newReg()
	g.generic(fmt.Sprintf("%s = icmp ne i32 %s, 0", test, cond))
	g.generic(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", test, bodyLabel, endLabel))

	g.level--
	g.raw(bodyLabel + ":")
	g.level++
	i := 0
	terminated := false
	for i < len(body) {
		next, t, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
		terminated = t
	}
	if !terminated {
		g.generic("br label %" + condLabel)
	}

	g.level--
	g.raw(endLabel + ":")
	g.level++
	return nil
}

// genFor supports two iterable shapes: range(n), lowered as a counting
// loop, and a previously declared array variable, walked by index. An
// array literal written directly as the iterable is rejected.
func (g *Generator) genFor(s *ast.For, body []ast.Statement) error {
	call, ok := s.Iterable.(*ast.Callable)
	if ok && call.Name == "range" {
		if len(call.Args) != 1 {
			return &errors.RuntimeError{Message: "range expects exactly one argument"}
		}
		return g.genForRange(s, call.Args[0], body)
	}

	v, ok := s.Iterable.(*ast.Var)
	if !ok {
		return &errors.RuntimeError{Message: "irgen: for loop iterable must be range(...) or an array variable"}
	}
	n, ok := g.arrayLen[v.Name]
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("irgen: %q is not an array", v.Name)}
	}
	return g.genForArray(s, v.Name, n, body)
}

func (g *Generator) genForRange(s *ast.For, limit ast.Expression, body []ast.Statement) error {
	limitReg, err := g.genExpr(limit)
	if err != nil {
		return err
	}

	idxAddr := "%" + s.Name + ".addr"
	g.generic(fmt.Sprintf("%s = alloca i32, align 4", idxAddr))
	g.generic(fmt.Sprintf("store i32 0, i32* %s, align 4", idxAddr))
	g.vars[s.Name] = idxAddr

	condLabel := g.newLabel("for.cond.")
	bodyLabel := g.newLabel("for.body.")
	endLabel := g.newLabel("for.end.")

	g.generic("br label %" + condLabel)
	g.level--
	g.raw(condLabel + ":")
	g.level++

	cur := g.newReg()
	g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", cur, idxAddr))
	test := g.newReg()
	g.generic(fmt.Sprintf("%s = icmp slt i32 %s, %s", test, cur, limitReg))
	g.generic(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", test, bodyLabel, endLabel))

	g.level--
	g.raw(bodyLabel + ":")
	g.level++
	i := 0
	terminated := false
	for i < len(body) {
		next, t, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
		terminated = t
	}
	if !terminated {
		cur2 := g.newReg()
		g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", cur2, idxAddr))
		next := g.newReg()
		g.generic(fmt.Sprintf("%s = add i32 %s, 1", next, cur2))
		g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", next, idxAddr))
		g.generic("br label %" + condLabel)
	}

	g.level--
	g.raw(endLabel + ":")
	g.level++
	return nil
}

func (g *Generator) genForArray(s *ast.For, arrName string, n int, body []ast.Statement) error {
	idxAddr := "%" + s.Name + ".idx.addr"
	g.generic(fmt.Sprintf("%s = alloca i32, align 4", idxAddr))
	g.generic(fmt.Sprintf("store i32 0, i32* %s, align 4", idxAddr))

	elemAddr := "%" + s.Name + ".addr"
	g.generic(fmt.Sprintf("%s = alloca i32, align 4", elemAddr))
	g.vars[s.Name] = elemAddr

	arrAddr := g.vars[arrName]
	condLabel := g.newLabel("for.cond.")
	bodyLabel := g.newLabel("for.body.")
	endLabel := g.newLabel("for.end.")

	g.generic("br label %" + condLabel)
	g.level--
	g.raw(condLabel + ":")
	g.level++

	cur := g.newReg()
	g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", cur, idxAddr))
	test := g.newReg()
	g.generic(fmt.Sprintf("%s = icmp slt i32 %s, %d", test, cur, n))
	g.generic(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", test, bodyLabel, endLabel))

	g.level--
	g.raw(bodyLabel + ":")
	g.level++

	gep := g.newReg()
	g.generic(fmt.Sprintf("%s = getelementptr inbounds [%d x i32], [%d x i32]* %s, i32 0, i32 %s", gep, n, n, arrAddr, cur))
	elem := g.newReg()
	g.generic(fmt.Sprintf("%s = load i32, i32* %s, align 4", elem, gep))
	g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", elem, elemAddr))

	i := 0
	terminated := false
	for i < len(body) {
		next, t, err := g.genStatement(body, i)
		if err != nil {
			return err
		}
		i = next
		terminated = t
	}
	if !terminated {
		next := g.newReg()
		g.generic(fmt.Sprintf("%s = add i32 %s, 1", next, cur))
		g.generic(fmt.Sprintf("store i32 %s, i32* %s, align 4", next, idxAddr))
		g.generic("br label %" + condLabel)
	}

	g.level--
	g.raw(endLabel + ":")
	g.level++
	return nil
}
