//go:build js && wasm

// Package wasm implements pkg/platform.Console for a browser build:
// print calls a host-supplied JavaScript function instead of writing to
// a file descriptor.
package wasm

import "syscall/js"

// Console calls a JavaScript function of signature print(string) for
// every Print. The zero value is invalid; use New with the host function.
type Console struct {
	printFn js.Value
}

// New wraps a JavaScript function value (such as the print callback
// passed to window.zeblangInterpret) as a Console.
func New(printFn js.Value) *Console {
	return &Console{printFn: printFn}
}

// Print invokes the wrapped JavaScript function with s.
func (c *Console) Print(s string) {
	c.printFn.Invoke(s)
}
