// Package parser turns lexed token lines into the flat Zeblang statement
// stream. Each non-blank source line yields exactly one ast.Statement;
// block structure is recovered later by back-ends via opener/closer
// counting.
package parser

import (
	"fmt"
	"strings"

	"github.com/zeb33n/zeblang/internal/ast"
	"github.com/zeb33n/zeblang/internal/errors"
	"github.com/zeb33n/zeblang/internal/lexer"
)

// Parser parses a single line's worth of tokens.
type Parser struct {
	tokens []lexer.Token
	pos    int
	line   int
}

func newLineParser(tokens []lexer.Token, line int) *Parser {
	return &Parser{tokens: tokens, line: line}
}

func (p *Parser) cur() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) errorf(format string, args ...any) error {
	return &errors.SyntaxError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	t, ok := p.cur()
	if !ok {
		return lexer.Token{}, p.errorf("expected %s, got end of line", tt)
	}
	if t.Type != tt {
		return lexer.Token{}, p.errorf("expected %s, got %s", tt, t.Type)
	}
	p.pos++
	return t, nil
}

// Parse tokenizes and parses an entire Zeblang source text, returning
// every statement it could parse and every lexical/syntax error
// encountered across all lines, rather than stopping at the first one.
func Parse(source string) ([]ast.Statement, []error) {
	var statements []ast.Statement
	var errs []error

	lineNum := 0
	for _, raw := range strings.Split(source, "\n") {
		lineNum++
		if strings.TrimSpace(raw) == "" {
			continue
		}
		toks, err := lexer.Lex(raw)
		if err != nil {
			errs = append(errs, &errors.LexError{Line: lineNum, Message: err.Error()})
			continue
		}
		stmt, err := parseLine(toks, lineNum)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, errs
}

// parseLine parses the statement form for one already-lexed line,
// dispatching on the leading token.
func parseLine(tokens []lexer.Token, line int) (ast.Statement, error) {
	p := newLineParser(tokens, line)
	if p.atEnd() {
		return nil, p.errorf("empty statement")
	}

	first := p.advance()
	switch first.Type {
	case lexer.EXIT:
		expr, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.Exit{Value: expr}, p.requireConsumed()

	case lexer.FUNC:
		return p.parseFunc()

	case lexer.ENDFUNC:
		return &ast.EndFunc{}, p.requireConsumed()

	case lexer.ENDIF:
		return &ast.EndIf{}, p.requireConsumed()

	case lexer.ENDWHILE:
		return &ast.EndWhile{}, p.requireConsumed()

	case lexer.ENDFOR:
		return &ast.EndFor{}, p.requireConsumed()

	case lexer.RETURN:
		expr, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: expr}, p.requireConsumed()

	case lexer.IF:
		expr, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: expr}, p.requireConsumed()

	case lexer.WHILE:
		expr, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: expr}, p.requireConsumed()

	case lexer.FOR:
		return p.parseFor()

	case lexer.VARNAME:
		return p.parseAssignment(first.Literal)

	default:
		return nil, p.errorf("unexpected token %s at start of statement", first.Type)
	}
}

// requireConsumed rejects trailing tokens after a statement's expression,
// which would otherwise silently be dropped.
func (p *Parser) requireConsumed() error {
	if !p.atEnd() {
		t, _ := p.cur()
		return p.errorf("unexpected trailing token %s", t.Type)
	}
	return nil
}

func (p *Parser) parseFunc() (ast.Statement, error) {
	name, err := p.expect(lexer.CALLABLE)
	if err != nil {
		return nil, err
	}
	var params []string
	for {
		if _, ok := p.cur(); !ok {
			return nil, p.errorf("unterminated function parameter list")
		}
		if t, _ := p.cur(); t.Type == lexer.CLOSEPAREN {
			p.pos++
			break
		}
		v, err := p.expect(lexer.VARNAME)
		if err != nil {
			return nil, err
		}
		params = append(params, v.Literal)
		if t, ok := p.cur(); ok && t.Type == lexer.COMMA {
			p.pos++
			continue
		}
	}
	return &ast.Func{Name: name.Literal, Params: params}, p.requireConsumed()
}

func (p *Parser) parseFor() (ast.Statement, error) {
	name, err := p.expect(lexer.VARNAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	return &ast.For{Name: name.Literal, Iterable: iterable}, p.requireConsumed()
}

func (p *Parser) parseAssignment(name string) (ast.Statement, error) {
	t, ok := p.cur()
	if !ok {
		return nil, p.errorf("expected = or [ after %s", name)
	}
	switch t.Type {
	case lexer.ASSIGN:
		p.pos++
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name, Value: value}, p.requireConsumed()

	case lexer.OPENSQUARE:
		p.pos++
		index, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.CLOSESQUARE); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		return &ast.AssignIndex{Name: name, Index: index, Value: value}, p.requireConsumed()

	default:
		return nil, p.errorf("expected = or [ after %s, got %s", name, t.Type)
	}
}
