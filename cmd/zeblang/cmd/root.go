// Package cmd implements the zeblang command-line interface: a single
// root command that reads one .zb source file and either runs it, or
// emits it in one of the back-end's textual forms.
//
// A package-level rootCmd with flags registered in init(), a single
// command instead of a subcommand tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zeb33n/zeblang/internal/asmgen"
	"github.com/zeb33n/zeblang/internal/astjson"
	zerrors "github.com/zeb33n/zeblang/internal/errors"
	"github.com/zeb33n/zeblang/internal/interp"
	"github.com/zeb33n/zeblang/internal/irgen"
	"github.com/zeb33n/zeblang/internal/parser"
	"github.com/zeb33n/zeblang/pkg/platform/native"
)

// Exit codes are stable per error category so scripts driving this CLI
// can distinguish a failed build from a failed run.
const (
	exitOK      = 0
	exitUsage   = 2
	exitParse   = 3
	exitRuntime = 4
	exitCodegen = 5
)

var (
	asJSON    bool
	asLLVM    bool
	interpret bool

	// Version information (set by build flags).
	Version = "0.1.0-dev"
)

var rootCmd = &cobra.Command{
	Use:   "zeblang <file.zb>",
	Short: "Zeblang lexer, parser, interpreter and compiler",
	Long: `zeblang reads a Zeblang source file and, by default, emits
x86-64 assembly for it on stdout.

Examples:
  # Emit assembly (the default)
  zeblang program.zb

  # Emit an LLVM-like intermediate representation instead
  zeblang --llvm program.zb

  # Interpret the program directly and use its own exit code
  zeblang --interpret program.zb

  # Dump the parsed AST as JSON, instead of compiling
  zeblang --json program.zb`,
	Version: Version,
	Args:    cobra.ExactArgs(1),
	RunE:    runZeblang,
}

func init() {
	rootCmd.Flags().BoolVarP(&asJSON, "json", "j", false, "dump the parsed AST as JSON instead of compiling")
	rootCmd.Flags().BoolVarP(&asLLVM, "llvm", "l", false, "emit an LLVM-like IR instead of assembly")
	rootCmd.Flags().BoolVarP(&interpret, "interpret", "i", false, "interpret the program directly")
}

// Execute runs the root command, returning the process exit code the
// caller should pass to os.Exit.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		if ce, ok := err.(*cliError); ok {
			return ce.code
		}
		return exitUsage
	}
	return exitCode
}

// exitCode is set by runZeblang when a mode other than a hard failure
// determines the process's exit status (interpret mode forwards the
// script's own exit value).
var exitCode = exitOK

// cliError carries a specific exit code alongside its message, so
// Execute can report it without guessing from the error text.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func fail(code int, format string, args ...any) error {
	return &cliError{code: code, err: fmt.Errorf(format, args...)}
}

func runZeblang(_ *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fail(exitUsage, "reading %s: %w", path, err)
	}
	source := string(content)

	stmts, errs := parser.Parse(source)
	if len(errs) > 0 {
		if asJSON {
			out, jerr := astjson.EncodeErrors(errs)
			if jerr != nil {
				return fail(exitCodegen, "encoding errors as json: %w", jerr)
			}
			fmt.Println(string(out))
			return fail(exitParse, "%d parse error(s) in %s", len(errs), path)
		}
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, zerrors.Format(e, source, color.NoColor == false))
		}
		return fail(exitParse, "%d parse error(s) in %s", len(errs), path)
	}

	switch {
	case asJSON:
		out, err := astjson.EncodeProgram(stmts)
		if err != nil {
			return fail(exitCodegen, "encoding ast as json: %w", err)
		}
		fmt.Println(string(out))
		return nil

	case interpret:
		console := native.New()
		result, err := interp.New(console).Run(stmts)
		if err != nil {
			return fail(exitRuntime, "%w", err)
		}
		exitCode = int(result)
		return nil

	case asLLVM:
		ir, err := irgen.New().Generate(stmts)
		if err != nil {
			return fail(exitCodegen, "%w", err)
		}
		fmt.Print(ir)
		return nil

	default:
		asm, err := asmgen.New().Generate(stmts)
		if err != nil {
			return fail(exitCodegen, "%w", err)
		}
		fmt.Print(asm)
		return nil
	}
}
