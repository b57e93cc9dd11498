// Package ast defines the Zeblang abstract syntax tree.
//
// Block structure is encoded as paired opener/closer statements in a
// flat list rather than as nested nodes, letting every back-end recover
// nesting by counting.
package ast

// Expression is any node that evaluates to a runtime value.
type Expression interface {
	expressionNode()
	String() string
}

// Statement is any node in the top-level statement stream.
type Statement interface {
	statementNode()
	String() string
}
