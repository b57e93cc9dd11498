// Command zeblang is the Zeblang CLI: lex, parse, and either run or
// compile a .zb source file.
package main

import (
	"os"

	"github.com/zeb33n/zeblang/cmd/zeblang/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
