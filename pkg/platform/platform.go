// Package platform abstracts the one host capability Zeblang programs
// need beyond pure computation: writing print output. It is
// interchangeable between a native build (writes to stdout) and a
// browser build (calls a host-supplied JavaScript function) without the
// interpreter knowing which it's talking to.
package platform

// Console is the print sink a Zeblang program writes to.
type Console interface {
	// Print writes s followed by a newline.
	Print(s string)
}
