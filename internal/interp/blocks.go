package interp

import (
	"fmt"

	"github.com/zeb33n/zeblang/internal/ast"
)

// blockKind identifies which opener/closer pair a statement belongs to.
// Matching only counts openers and closers of the SAME kind, so an If
// nested inside a While does not perturb the While's own depth count.
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
	}
	return 0, false
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
	}
	return 0, false
}

// collectBlock finds the body of the opener at stmts[start] by counting
// nested openers/closers of its own kind, returning the body (exclusive
// of both the opener and its matching closer) and the index just past
// the closer.
func collectBlock(stmts []ast.Statement, start int) (body []ast.Statement, next int, err error) {
	kind, _ := openerKind(stmts[start])
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
	return nil, 0, fmt.Errorf("unterminated block opened by %s", stmts[start].String())
}
