// Package errors formats Zeblang's three error categories (lexical,
// syntactic, runtime) with source-line context, rendering the offending
// line and a caret underneath it.
package errors

import (
	"fmt"
	"strings"

	ansi "github.com/fatih/color"
)

// LexError reports an invalid byte encountered while scanning a line.
type LexError struct {
	Line    int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// SyntaxError reports an unexpected or missing token, tagged with the
// 1-based line number it occurred on.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// RuntimeError reports an interpreter-detected failure: undefined
// variable or function, arity mismatch, type mismatch, out-of-range
// index, or a malformed integer literal.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Format renders err with the offending source line and a caret under
// the start of that line. color toggles ANSI highlighting of the caret
// line; callers typically drive that with a terminal capability check
// rather than hardcoding it (see cmd/zeblang).
func Format(err error, source string, color bool) string {
	var line int
	switch e := err.(type) {
	case *LexError:
		line = e.Line
	case *SyntaxError:
		line = e.Line
	default:
		return err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error at line %d\n", line)

	if src := sourceLine(source, line); src != "" {
		prefix := fmt.Sprintf("%4d | ", line)
		sb.WriteString(prefix)
		sb.WriteString(src)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)))
		caret := "^"
		if color {
			caret = ansi.New(ansi.FgRed, ansi.Bold).Sprint(caret)
		}
		sb.WriteString(caret)
		sb.WriteString("\n")
	}

	sb.WriteString(err.Error())
	return sb.String()
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
