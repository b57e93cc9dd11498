package interp

import (
	"strconv"
	"strings"
)

// Value is a Zeblang runtime value: either an integer or a fixed-length
// array of integers.
type Value interface {
	value()
	String() string
}

// Int is a 32-bit signed integer runtime value.
type Int int32

func (Int) value() {}
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Array is a fixed-length, reference-shared array of values. It is kept
// as a pointer so that two variable names aliased to the same array
// within a scope observe each other's in-place mutations: Assign copies
// the pointer, AssignIndex mutates through it. Crossing a call boundary
// clones the backing slice (see Clone), so a callee can never mutate a
// caller's array.
type Array struct {
	Elements []Value
}

func (*Array) value() {}

func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// Clone returns a deep copy of the array. Nested arrays (not produced by
// this toy language's grammar today, but not precluded by the Value
// interface) are cloned recursively so aliasing never leaks across scopes.
func (a *Array) Clone() *Array {
	elems := make([]Value, len(a.Elements))
	for i, e := range a.Elements {
		if nested, ok := e.(*Array); ok {
			elems[i] = nested.Clone()
		} else {
			elems[i] = e
		}
	}
	return &Array{Elements: elems}
}

// cloneForBinding clones v if it is an array (cross-scope parameter
// passing is pass-by-value for arrays) and passes integers through
// unchanged (they are immutable value types already).
func cloneForBinding(v Value) Value {
	if arr, ok := v.(*Array); ok {
		return arr.Clone()
	}
	return v
}
