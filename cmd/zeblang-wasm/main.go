//go:build js && wasm

// Command zeblang-wasm is the WebAssembly entry point for the Zeblang
// interpreter, exposed as a browser target. It exports a single
// function to JavaScript and keeps the program alive while the host
// page calls into it.
//
// Build with:
//
//	GOOS=js GOARCH=wasm go build -o zeblang.wasm ./cmd/zeblang-wasm
//
// Usage from JavaScript:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go();
//	  WebAssembly.instantiateStreaming(fetch("zeblang.wasm"), go.importObject)
//	    .then((result) => {
//	      go.run(result.instance);
//	      const exitCode = window.zeblangInterpret(source, line => console.log(line));
//	    });
//	</script>
package main

import (
	"syscall/js"

	"github.com/zeb33n/zeblang/internal/interp"
	"github.com/zeb33n/zeblang/internal/parser"
	"github.com/zeb33n/zeblang/pkg/platform/wasm"
)

// interpretZeblang is exported as window.zeblangInterpret(source, printFn).
// printFn is a JS callback invoked once per print(); the return value is
// the program's exit code, or a JS exception carrying the error message
// if parsing or execution failed.
func interpretZeblang(_ js.Value, args []js.Value) any {
	if len(args) != 2 {
		panic("zeblangInterpret expects (source, printFn)")
	}
	source := args[0].String()
	printFn := args[1]

	stmts, errs := parser.Parse(source)
	if len(errs) > 0 {
		panic(errs[0].Error())
	}

	console := wasm.New(printFn)
	result, err := interp.New(console).Run(stmts)
	if err != nil {
		panic(err.Error())
	}
	return result
}

func main() {
	done := make(chan struct{})

	js.Global().Set("zeblangInterpret", js.FuncOf(interpretZeblang))
	js.Global().Get("console").Call("log", "Zeblang WASM module initialized")

	<-done
}
