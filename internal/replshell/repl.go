// Package replshell implements an interactive shell: type a Cool
// expression, see the static type the checker infers for it.
package replshell

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/typecheck"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

// REPL is a line-at-a-time Cool expression type-checker.
type REPL struct {
	history []string
	version string
}

// New returns a REPL reporting the given version string in its banner.
func New(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{version: version}
}

// Start runs the read-eval-print loop, writing to out, until EOF or
// :quit. Input lines are read through liner from the process's
// terminal; the in argument is not read. Each line is wrapped in a
// throwaway `Main` class and pushed through the full C2/C3 pipeline; only the inferred type of the
// expression (or any diagnostics) is reported, mirroring "what would
// this expression's static type be if it appeared in a method body".
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".coolc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("coolc"), bold(r.version))
	fmt.Fprintln(out, dim("Type a Cool expression to see its inferred type. :quit to exit, :history to list input."))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt(cyan("cool> "))
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(input, out) {
				break
			}
			continue
		}

		r.evalExpr(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand processes a ":"-prefixed REPL command, returning true
// if the loop should terminate.
func (r *REPL) handleCommand(input string, out io.Writer) bool {
	switch {
	case input == ":quit" || input == ":q" || input == ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case input == ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%s %s\n", dim(fmt.Sprintf("%3d", i+1)), h)
		}
	case input == ":help":
		fmt.Fprintln(out, "type an expression, or :quit / :history")
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", red("error"), input)
	}
	return false
}

// evalExpr wraps expr as the body of a synthetic Main.main and runs it
// through ClassTable.Build, Validate, and typecheck.Check, reporting
// either the resulting static type or every diagnostic produced.
func (r *REPL) evalExpr(expr string, out io.Writer) {
	src := "class Main { main(): Object { " + expr + " }; };"

	var diagBuf bytes.Buffer
	sink := diag.NewSink(&diagBuf)

	prog := parser.Parse("<repl>", []byte(src), sink)
	if sink.HasErrors() {
		fmt.Fprint(out, red(diagBuf.String()))
		return
	}

	ct := classtable.Build(prog, sink)
	if !ct.Validate() {
		fmt.Fprint(out, red(diagBuf.String()))
		return
	}

	typecheck.Check(ct, prog, sink)
	if sink.HasErrors() {
		fmt.Fprint(out, red(diagBuf.String()))
		return
	}

	mainMethod := findMainBody(prog)
	if mainMethod == nil {
		fmt.Fprintln(out, red("error: could not locate expression after parsing"))
		return
	}
	fmt.Fprintf(out, "%s %s\n", dim("::"), bold(string(mainMethod.Type())))
}

func findMainBody(prog *ast.Program) ast.Expr {
	for _, c := range prog.Classes {
		if c.Name != "Main" {
			continue
		}
		for _, f := range c.Features {
			if m, ok := f.(*ast.Method); ok && m.Name == "main" {
				return m.Body
			}
		}
	}
	return nil
}
