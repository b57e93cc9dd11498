// Package interp is Zeblang's tree-walking reference interpreter. It
// walks the flat statement stream produced by internal/parser,
// recovering block nesting by counting openers and closers of the same
// kind (see blocks.go), and yields the integer value of the first exit
// statement reached (or 0 if none is).
package interp

import (
	"fmt"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
	"github.com/zeb33n/zeblang/pkg/platform"
)

// funcDef is a registered top-level function: its parameter names and
// the statements between its Func and EndFunc.
type funcDef struct {
	params []string
	body   []ast.Statement
}

// Interpreter holds the state shared across one top-level run: the
// function table (read-only once populated) and the print sink.
type Interpreter struct {
	funcs   map[string]*funcDef
	console platform.Console
}

// New creates an Interpreter that writes print output to console.
func New(console platform.Console) *Interpreter {
	return &Interpreter{console: console}
}

// signalKind distinguishes normal fall-through completion of a statement
// list from an early return out of a function or a program exit.
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigExit
)

type signal struct {
	kind  signalKind
	value int32
}

// Run executes the full program, pre-scanning top-level Func definitions
// before executing anything else, so forward references to a function
// defined later in the same file resolve. It returns the exit
// statement's value, defaulting to 0 if execution falls off the end
// without reaching one.
func (in *Interpreter) Run(stmts []ast.Statement) (int32, error) {
	funcs, err := prescanFuncs(stmts)
	if err != nil {
		return 0, err
	}
	in.funcs = funcs

	env := NewEnvironment()
	sig, err := in.execList(stmts, env)
	if err != nil {
		return 0, err
	}
	if sig.kind == sigExit || sig.kind == sigReturn {
		return sig.value, nil
	}
	return 0, nil
}

// prescanFuncs walks the top-level statement stream once, registering
// every Func definition it finds (including inside if/while/for bodies)
// without executing anything, and leaving non-Func statements untouched
// for the real run. A Func nested inside another Func's body is skipped
// together with that body and is not registered.
func prescanFuncs(stmts []ast.Statement) (map[string]*funcDef, error) {
	funcs := make(map[string]*funcDef)
	i := 0
	for i < len(stmts) {
		f, ok := stmts[i].(*ast.Func)
		if !ok {
			i++
			continue
		}
		body, next, err := collectBlock(stmts, i)
		if err != nil {
			return nil, err
		}
		funcs[f.Name] = &funcDef{params: f.Params, body: body}
		i = next
	}
	return funcs, nil
}

// execList runs a flat statement list (a whole program, or a block body)
// in env, returning the first Return/Exit signal it encounters.
func (in *Interpreter) execList(stmts []ast.Statement, env *Environment) (signal, error) {
	i := 0
	for i < len(stmts) {
		stmt := stmts[i]

		switch s := stmt.(type) {
		case *ast.Func:
			// Already registered by prescanFuncs; skip the whole body.
			_, next, err := collectBlock(stmts, i)
			if err != nil {
				return signal{}, err
			}
			i = next

		case *ast.If:
			body, next, err := collectBlock(stmts, i)
			if err != nil {
				return signal{}, err
			}
			cond, err := in.evalInt(s.Cond, env)
			if err != nil {
				return signal{}, err
			}
			if cond != 0 {
				sig, err := in.execList(body, env)
				if err != nil || sig.kind != sigNone {
					return sig, err
				}
			}
			i = next

		case *ast.While:
			body, next, err := collectBlock(stmts, i)
			if err != nil {
				return signal{}, err
			}
			for {
				cond, err := in.evalInt(s.Cond, env)
				if err != nil {
					return signal{}, err
				}
				if cond == 0 {
					break
				}
				sig, err := in.execList(body, env)
				if err != nil || sig.kind != sigNone {
					return sig, err
				}
			}
			i = next

		case *ast.For:
			body, next, err := collectBlock(stmts, i)
			if err != nil {
				return signal{}, err
			}
			iterable, err := in.eval(s.Iterable, env)
			if err != nil {
				return signal{}, err
			}
			arr, ok := iterable.(*Array)
			if !ok {
				return signal{}, &errors.RuntimeError{Message: "for loop iterable must be an array"}
			}
			for _, elem := range arr.Elements {
				env.Set(s.Name, elem)
				sig, err := in.execList(body, env)
				if err != nil || sig.kind != sigNone {
					return sig, err
				}
			}
			i = next

		case *ast.Assign:
			val, err := in.eval(s.Value, env)
			if err != nil {
				return signal{}, err
			}
			env.Set(s.Name, val)
			i++

		case *ast.AssignIndex:
			if err := in.execAssignIndex(s, env); err != nil {
				return signal{}, err
			}
			i++

		case *ast.Exit:
			val, err := in.evalInt(s.Value, env)
			if err != nil {
				return signal{}, err
			}
			return signal{kind: sigExit, value: val}, nil

		case *ast.Return:
			val, err := in.evalInt(s.Value, env)
			if err != nil {
				return signal{}, err
			}
			return signal{kind: sigReturn, value: val}, nil

		case *ast.EndIf, *ast.EndWhile, *ast.EndFor, *ast.EndFunc:
			return signal{}, &errors.RuntimeError{Message: fmt.Sprintf("unmatched closer %s", stmt.String())}

		default:
			return signal{}, &errors.RuntimeError{Message: fmt.Sprintf("unsupported statement %T", stmt)}
		}
	}
	return signal{}, nil
}

func (in *Interpreter) execAssignIndex(s *ast.AssignIndex, env *Environment) error {
	value, err := in.eval(s.Value, env)
	if err != nil {
		return err
	}
	idx, err := in.evalInt(s.Index, env)
	if err != nil {
		return err
	}
	target, ok := env.Get(s.Name)
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("undefined variable %q", s.Name)}
	}
	arr, ok := target.(*Array)
	if !ok {
		return &errors.RuntimeError{Message: fmt.Sprintf("%q is not an array", s.Name)}
	}
	if idx < 0 || int(idx) >= len(arr.Elements) {
		return &errors.RuntimeError{Message: fmt.Sprintf("array index %d out of range for %q (length %d)", idx, s.Name, len(arr.Elements))}
	}
	arr.Elements[idx] = value
	return nil
}

// callFunction invokes a user-defined function with already-evaluated
// argument values, cloning array arguments so the callee cannot mutate
// the caller's array.
//
// Whether `exit` inside a function should terminate the whole program
// or just that call is an open design choice; this implementation
// treats it as terminating only the call (same as Return), a deliberate
// decision rather than a bug to silently patch.
func (in *Interpreter) callFunction(name string, args []Value) (Value, error) {
	fn, ok := in.funcs[name]
	if !ok {
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("undefined function %q", name)}
	}
	if len(args) != len(fn.params) {
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("function %q expects %d argument(s), got %d", name, len(fn.params), len(args))}
	}

	callEnv := NewEnvironment()
	for i, param := range fn.params {
		callEnv.Set(param, cloneForBinding(args[i]))
	}

	sig, err := in.execList(fn.body, callEnv)
	if err != nil {
		return nil, err
	}
	if sig.kind == sigReturn || sig.kind == sigExit {
		return Int(sig.value), nil
	}
	return Int(0), nil
}
