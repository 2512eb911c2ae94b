// Command coolc compiles Cool source to MIPS/SPIM assembly, and offers
// a type-check-only mode and an interactive expression REPL.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/codegen"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/layout"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/replshell"
	"github.com/sunholo/coolc/internal/typecheck"
)

var (
	// Version is set by -ldflags at build time.
	Version = "dev"

	red  = color.New(color.FgRed).SprintFunc()
	cyan = color.New(color.Bold, color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("error"))
			fmt.Println("Usage: coolc run <file.cl>")
			os.Exit(1)
		}
		runFile(os.Args[2])
	case "check":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("error"))
			fmt.Println("Usage: coolc check <file.cl>")
			os.Exit(1)
		}
		checkFile(os.Args[2])
	case "repl":
		replshell.New(Version).Start(os.Stdin, os.Stdout)
	case "--version", "-version":
		fmt.Printf("coolc %s\n", bold(Version))
	case "--help", "-help", "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("coolc - a Cool-to-MIPS compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  coolc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file.cl>    compile to MIPS/SPIM assembly on stdout\n", cyan("run"))
	fmt.Printf("  %s <file.cl>  type-check only, report diagnostics\n", cyan("check"))
	fmt.Printf("  %s             start the interactive expression REPL\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version   print version information")
	fmt.Println("  --help      show this help message")
}

// compile parses, validates, type-checks, and lays out filename, writing
// diagnostics to stderr; it does not emit assembly. It returns the
// built class table, layout, and program on success, or ok=false after
// printing diagnostics on failure.
func compile(filename string) (ct *classtable.ClassTable, lay *layout.Layout, prog *ast.Program, ok bool) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", red("error"), filename, err)
		return nil, nil, nil, false
	}

	sink := diag.NewSink(os.Stderr)

	p := parser.Parse(filename, content, sink)
	if sink.HasErrors() {
		return nil, nil, nil, false
	}

	classTable := classtable.Build(p, sink)
	if !classTable.Validate() {
		return nil, nil, nil, false
	}

	typecheck.Check(classTable, p, sink)
	if sink.HasErrors() {
		return nil, nil, nil, false
	}

	return classTable, layout.Build(classTable), p, true
}

func checkFile(filename string) {
	_, _, _, ok := compile(filename)
	if !ok {
		os.Exit(1)
	}
	fmt.Printf("%s: no errors\n", filename)
}

func runFile(filename string) {
	ct, lay, prog, ok := compile(filename)
	if !ok {
		os.Exit(1)
	}
	codegen.Emit(os.Stdout, ct, lay, prog)
}
