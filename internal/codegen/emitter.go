// Package codegen lowers a type-checked Cool AST, together with a
// built classtable.ClassTable and layout.Layout, into MIPS/SPIM
// assembly text matching the fixed Cool runtime's calling convention.
package codegen

import (
	"fmt"
	"io"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/layout"
	"github.com/sunholo/coolc/internal/symbol"
)

// Emitter holds everything needed across the whole emission pass: the
// output stream, the validated class table and layout, the constant
// interning table built by collectConstants, and a monotonic label
// counter (carried here rather than as process-wide state, per the
// "no global mutable counters" design rule).
type Emitter struct {
	w            io.Writer
	ct           *classtable.ClassTable
	lay          *layout.Layout
	syms         *symbol.Table
	labelCounter int
}

// NewEmitter returns an Emitter that writes to w.
func NewEmitter(w io.Writer, ct *classtable.ClassTable, lay *layout.Layout) *Emitter {
	return &Emitter{w: w, ct: ct, lay: lay, syms: symbol.NewTable()}
}

func (e *Emitter) emit(format string, args ...any) {
	fmt.Fprintf(e.w, format+"\n", args...)
}

func (e *Emitter) label(name string) {
	fmt.Fprintf(e.w, "%s:\n", name)
}

func (e *Emitter) newLabel(prefix string) string {
	e.labelCounter++
	return fmt.Sprintf("%s%d", prefix, e.labelCounter)
}

// Emit runs the full C5 pipeline over prog, writing every section
// described in the external-interface emission order.
func Emit(w io.Writer, ct *classtable.ClassTable, lay *layout.Layout, prog *ast.Program) {
	e := NewEmitter(w, ct, lay)
	e.collectConstants(prog)

	e.emitDataHeader()
	e.emitConstants()
	e.emitClassNameTab()
	e.emitClassObjTab()
	e.emitDispTabs()
	e.emitProtObjs()

	e.emitTextHeader()
	e.emitInits()
	e.emitMethods(prog)
}
