package asmgen

import (
	"fmt"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
)

type blockKind int

const (
	kindIf blockKind = iota
	kindWhile
	kindFor
	kindFunc
)

func openerKind(s ast.Statement) (blockKind, bool) {
	switch s.(type) {
	case *ast.If:
		return kindIf, true
	case *ast.While:
		return kindWhile, true
	case *ast.For:
		return kindFor, true
	case *ast.Func:
		return kindFunc, true
	default:
		return 0, false
	}
}

func closerKind(s ast.Statement) (blockKind, bool) {
	switch s.(type) {
	case *ast.EndIf:
		return kindIf, true
	case *ast.EndWhile:
		return kindWhile, true
	case *ast.EndFor:
		return kindFor, true
	case *ast.EndFunc:
		return kindFunc, true
	default:
		return 0, false
	}
}

// collectBlock returns the statements between stmts[start] (an opener)
// and its matching closer, plus the index just past the closer. It
// tracks nesting depth per block kind so an inner block of the same
// kind doesn't prematurely close the outer one.
func collectBlock(stmts []ast.Statement, start int) ([]ast.Statement, int, error) {
	kind, ok := openerKind(stmts[start])
	if !ok {
		return nil, 0, &errors.RuntimeError{Message: fmt.Sprintf("asmgen: %T is not a block opener", stmts[start])}
	}
	depth := 1
	for i := start + 1; i < len(stmts); i++ {
		if k, ok := openerKind(stmts[i]); ok && k == kind {
			depth++
		}
		if k, ok := closerKind(stmts[i]); ok && k == kind {
			depth--
			if depth == 0 {
				return stmts[start+1 : i], i + 1, nil
			}
		}
	}
	return nil, 0, &errors.RuntimeError{Message: "asmgen: unterminated block"}
}
