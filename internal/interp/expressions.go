package interp

import (
	"fmt"
	"strconv"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
)

// eval evaluates an expression to a runtime Value.
func (in *Interpreter) eval(expr ast.Expression, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.Value:
		n, err := strconv.ParseInt(e.Literal, 0, 64)
		if err != nil {
			return nil, &errors.RuntimeError{Message: fmt.Sprintf("bad integer literal %q", e.Literal)}
		}
		return Int(int32(n)), nil

	case *ast.Var:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, &errors.RuntimeError{Message: fmt.Sprintf("undefined variable %q", e.Name)}
		}
		return v, nil

	case *ast.Index:
		return in.evalIndex(e, env)

	case *ast.Infix:
		return in.evalInfix(e, env)

	case *ast.Callable:
		return in.evalCallable(e, env)

	case *ast.Array:
		elems := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &Array{Elements: elems}, nil

	case *ast.PreAllocArray:
		elems := make([]Value, e.Size)
		for i := range elems {
			elems[i] = Int(0)
		}
		return &Array{Elements: elems}, nil

	default:
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("unsupported expression %T", expr)}
	}
}

// evalInt evaluates expr and requires the result to be an Int, the shape
// every condition/index/arithmetic operand needs.
func (in *Interpreter) evalInt(expr ast.Expression, env *Environment) (int32, error) {
	v, err := in.eval(expr, env)
	if err != nil {
		return 0, err
	}
	i, ok := v.(Int)
	if !ok {
		return 0, &errors.RuntimeError{Message: "expected an integer value"}
	}
	return int32(i), nil
}

func (in *Interpreter) evalIndex(e *ast.Index, env *Environment) (Value, error) {
	v, ok := env.Get(e.Name)
	if !ok {
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("undefined variable %q", e.Name)}
	}
	arr, ok := v.(*Array)
	if !ok {
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("%q is not an array", e.Name)}
	}
	idx, err := in.evalInt(e.Subscript, env)
	if err != nil {
		return nil, err
	}
	if idx < 0 || int(idx) >= len(arr.Elements) {
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("array index %d out of range for %q (length %d)", idx, e.Name, len(arr.Elements))}
	}
	return arr.Elements[idx], nil
}

// evalInfix applies a binary arithmetic or comparison operator. All
// arithmetic is on 32-bit signed integers; division truncates toward
// zero (Go's / already does); % takes the sign of the dividend (so does
// Go's %); comparisons yield 1 for true, 0 for false.
func (in *Interpreter) evalInfix(e *ast.Infix, env *Environment) (Value, error) {
	l, err := in.evalInt(e.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := in.evalInt(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "+":
		return Int(l + r), nil
	case "-":
		return Int(l - r), nil
	case "*":
		return Int(l * r), nil
	case "/":
		if r == 0 {
			return nil, &errors.RuntimeError{Message: "division by zero"}
		}
		return Int(l / r), nil
	case "%":
		if r == 0 {
			return nil, &errors.RuntimeError{Message: "division by zero"}
		}
		return Int(l % r), nil
	case "==":
		return boolInt(l == r), nil
	case "!=":
		return boolInt(l != r), nil
	default:
		return nil, &errors.RuntimeError{Message: fmt.Sprintf("invalid operator %q", e.Op)}
	}
}

func boolInt(b bool) Int {
	if b {
		return 1
	}
	return 0
}

// evalCallable dispatches to a built-in (print, range) or a user-defined
// function.
func (in *Interpreter) evalCallable(e *ast.Callable, env *Environment) (Value, error) {
	switch e.Name {
	case "print":
		if len(e.Args) != 1 {
			return nil, &errors.RuntimeError{Message: "print expects exactly one argument"}
		}
		v, err := in.eval(e.Args[0], env)
		if err != nil {
			return nil, err
		}
		in.console.Print(v.String())
		return v, nil

	case "range":
		if len(e.Args) != 1 {
			return nil, &errors.RuntimeError{Message: "range expects exactly one argument"}
		}
		n, err := in.evalInt(e.Args[0], env)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, &errors.RuntimeError{Message: "range argument must be non-negative"}
		}
		elems := make([]Value, n)
		for i := int32(0); i < n; i++ {
			elems[i] = Int(i)
		}
		return &Array{Elements: elems}, nil

	default:
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			v, err := in.eval(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return in.callFunction(e.Name, args)
	}
}
