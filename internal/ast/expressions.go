package ast

import (
	"strconv"
	"strings"
)

// Value is a leaf integer literal, stored as its source text.
type Value struct {
	Literal string
}

func (*Value) expressionNode() {}
func (v *Value) String() string { return v.Literal }

// Var is a variable reference.
type Var struct {
	Name string
}

func (*Var) expressionNode() {}
func (v *Var) String() string { return v.Name }

// Index is an array element read: Name[Subscript].
type Index struct {
	Name      string
	Subscript Expression
}

func (*Index) expressionNode() {}
func (i *Index) String() string { return i.Name + "[" + i.Subscript.String() + "]" }

// Callable is a built-in or user-defined function call: Name(Args...).
type Callable struct {
	Name string
	Args []Expression
}

func (*Callable) expressionNode() {}
func (c *Callable) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Infix is a binary arithmetic or comparison expression.
type Infix struct {
	Left  Expression
	Op    string
	Right Expression
}

func (*Infix) expressionNode() {}
func (i *Infix) String() string { return "(" + i.Left.String() + " " + i.Op + " " + i.Right.String() + ")" }

// Array is a fixed-length array literal.
type Array struct {
	Elements []Expression
}

func (*Array) expressionNode() {}
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PreAllocArray is a zero/sentinel-initialized array of fixed length N,
// written in source as "[size N]".
type PreAllocArray struct {
	Size int
}

func (*PreAllocArray) expressionNode() {}
func (p *PreAllocArray) String() string { return "[size " + strconv.Itoa(p.Size) + "]" }
