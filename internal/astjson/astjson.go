// Package astjson renders a parsed Zeblang program as JSON for the CLI's
// -j/--json flag. Every node becomes a single-key object keyed by its Go
// type name; a node with exactly one field renders that field directly
// as the value (no array wrapper), and a node with no fields renders as
// its bare tag string.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/zeb33n/zeblang/internal/ast"
	zerrors "github.com/zeb33n/zeblang/internal/errors"
)

// node builds the JSON shape for a tagged AST node: zero fields collapse
// to the bare tag, one field unwraps to that field's value, and more
// than one field become an ordered array.
func node(tag string, fields ...interface{}) interface{} {
	switch len(fields) {
	case 0:
		return tag
	case 1:
		return map[string]interface{}{tag: fields[0]}
	default:
		return map[string]interface{}{tag: fields}
	}
}

func encodeExpr(expr ast.Expression) interface{} {
	switch e := expr.(type) {
	case *ast.Value:
		return node("Value", e.Literal)
	case *ast.Var:
		return node("Var", e.Name)
	case *ast.Index:
		return node("Index", e.Name, encodeExpr(e.Subscript))
	case *ast.Callable:
		args := make([]interface{}, len(e.Args))
		for i, a := range e.Args {
			args[i] = encodeExpr(a)
		}
		return node("Callable", e.Name, args)
	case *ast.Infix:
		return node("Infix", encodeExpr(e.Left), e.Op, encodeExpr(e.Right))
	case *ast.Array:
		elems := make([]interface{}, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = encodeExpr(el)
		}
		return node("Array", elems)
	case *ast.PreAllocArray:
		return node("PreAllocArray", e.Size)
	default:
		return node("Unknown", fmt.Sprintf("%T", expr))
	}
}

func encodeStmt(stmt ast.Statement) interface{} {
	switch s := stmt.(type) {
	case *ast.Exit:
		return node("Exit", encodeExpr(s.Value))
	case *ast.Assign:
		return node("Assign", s.Name, encodeExpr(s.Value))
	case *ast.AssignIndex:
		return node("AssignIndex", s.Name, encodeExpr(s.Index), encodeExpr(s.Value))
	case *ast.If:
		return node("If", encodeExpr(s.Cond))
	case *ast.EndIf:
		return node("EndIf")
	case *ast.While:
		return node("While", encodeExpr(s.Cond))
	case *ast.EndWhile:
		return node("EndWhile")
	case *ast.For:
		return node("For", s.Name, encodeExpr(s.Iterable))
	case *ast.EndFor:
		return node("EndFor")
	case *ast.Func:
		return node("Func", s.Name, s.Params)
	case *ast.EndFunc:
		return node("EndFunc")
	case *ast.Return:
		return node("Return", encodeExpr(s.Value))
	default:
		return node("Unknown", fmt.Sprintf("%T", stmt))
	}
}

// EncodeProgram renders a parsed program as an indented JSON array, one
// element per top-level statement.
func EncodeProgram(stmts []ast.Statement) ([]byte, error) {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = encodeStmt(s)
	}
	return json.MarshalIndent(out, "", "  ")
}

// EncodeErrors renders lex/syntax errors as a JSON array of
// "<line>: <message>" strings, falling back to err.Error() for error
// values that don't carry a line number.
func EncodeErrors(errs []error) ([]byte, error) {
	out := make([]string, len(errs))
	for i, err := range errs {
		switch e := err.(type) {
		case *zerrors.LexError:
			out[i] = fmt.Sprintf("%d: %s", e.Line, e.Message)
		case *zerrors.SyntaxError:
			out[i] = fmt.Sprintf("%d: %s", e.Line, e.Message)
		default:
			out[i] = err.Error()
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
