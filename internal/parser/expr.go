package parser

import (
	"strconv"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/lexer"
)

// precedence maps each binary operator to its precedence level. All
// operators are left-associative.
var precedence = map[string]int{
	"==": 1, "!=": 1,
	"+": 2, "-": 2,
	"*": 3, "/": 3, "%": 3,
}

// parseExpr is a Pratt/precedence-climbing expression parser: parse a
// prefix atom, then repeatedly fold in operators whose precedence is at
// least minPrec.
func (p *Parser) parseExpr(minPrec int) (ast.Expression, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		t, ok := p.cur()
		if !ok {
			return left, nil
		}
		switch t.Type {
		case lexer.OPERATOR:
			prec, known := precedence[t.Literal]
			if !known || prec < minPrec {
				return left, nil
			}
			p.pos++
			right, err := p.parseExpr(prec + 1)
			if err != nil {
				return nil, err
			}
			left = &ast.Infix{Left: left, Op: t.Literal, Right: right}
		case lexer.CLOSEPAREN, lexer.CLOSESQUARE, lexer.COMMA:
			return left, nil
		default:
			return left, nil
		}
	}
}

// parseAtom parses a single prefix expression: a literal, a variable or
// indexed reference, a call, a parenthesized sub-expression, or an array
// literal.
func (p *Parser) parseAtom() (ast.Expression, error) {
	t, ok := p.cur()
	if !ok {
		return nil, p.errorf("expected expression, got end of line")
	}

	switch t.Type {
	case lexer.INT:
		p.pos++
		if _, err := strconv.ParseInt(t.Literal, 0, 64); err != nil {
			return nil, p.errorf("invalid integer literal %q", t.Literal)
		}
		return &ast.Value{Literal: t.Literal}, nil

	case lexer.VARNAME:
		p.pos++
		if nt, ok := p.cur(); ok && nt.Type == lexer.OPENSQUARE {
			p.pos++
			sub, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.CLOSESQUARE); err != nil {
				return nil, err
			}
			return &ast.Index{Name: t.Literal, Subscript: sub}, nil
		}
		return &ast.Var{Name: t.Literal}, nil

	case lexer.CALLABLE:
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Callable{Name: t.Literal, Args: args}, nil

	case lexer.OPENPAREN:
		p.pos++
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.CLOSEPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.OPENSQUARE:
		p.pos++
		return p.parseArrayLiteral()

	default:
		return nil, p.errorf("unexpected token %s in expression", t.Type)
	}
}

// parseArgs parses a comma-separated argument list up to the closing
// CloseParen, which is consumed here (the Callable token already
// consumed its opening paren at lex time).
func (p *Parser) parseArgs() ([]ast.Expression, error) {
	var args []ast.Expression
	if t, ok := p.cur(); ok && t.Type == lexer.CLOSEPAREN {
		p.pos++
		return args, nil
	}
	for {
		arg, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t, ok := p.cur()
		if !ok {
			return nil, p.errorf("unterminated argument list")
		}
		switch t.Type {
		case lexer.COMMA:
			p.pos++
			continue
		case lexer.CLOSEPAREN:
			p.pos++
			return args, nil
		default:
			return nil, p.errorf("expected , or ) in argument list, got %s", t.Type)
		}
	}
}

// parseArrayLiteral parses the body of "[" ... "]", recognizing the
// special "[size N]" preallocation form.
func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	if t, ok := p.cur(); ok && t.Type == lexer.SIZE {
		p.pos++
		n, err := p.expect(lexer.INT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.CLOSESQUARE); err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(n.Literal, 0, 64)
		if err != nil {
			return nil, p.errorf("invalid size %q", n.Literal)
		}
		return &ast.PreAllocArray{Size: int(size)}, nil
	}

	var elems []ast.Expression
	if t, ok := p.cur(); ok && t.Type == lexer.CLOSESQUARE {
		p.pos++
		return &ast.Array{Elements: elems}, nil
	}
	for {
		elem, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		t, ok := p.cur()
		if !ok {
			return nil, p.errorf("unterminated array literal")
		}
		switch t.Type {
		case lexer.COMMA:
			p.pos++
			continue
		case lexer.CLOSESQUARE:
			p.pos++
			return &ast.Array{Elements: elems}, nil
		default:
			return nil, p.errorf("expected , or ] in array literal, got %s", t.Type)
		}
	}
}
