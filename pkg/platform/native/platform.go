// Package native implements pkg/platform.Console for a regular OS
// build: print writes to standard output.
package native

import (
	"fmt"
	"io"
	"os"
)

// Console writes print output to an io.Writer, defaulting to os.Stdout.
type Console struct {
	Out io.Writer
}

// New returns a Console writing to os.Stdout.
func New() *Console {
	return &Console{Out: os.Stdout}
}

// Print writes s followed by a newline.
func (c *Console) Print(s string) {
	fmt.Fprintln(c.Out, s)
}
