package codegen

import (
	"fmt"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/symbol"
)

// collectConstants pre-scans the whole program for every string/int
// literal the emitted assembly will need to reference: class names (for
// class_nameTab), every source filename (for _dispatch_abort/
// _case_abort2 call sites), the universal "0" int and "" string used as
// attribute defaults, and every IntConst/StrConst literal actually
// written in source. Doing this as a pass before emission means every
// constant has a stable table index before any label is printed.
func (e *Emitter) collectConstants(prog *ast.Program) {
	e.syms.InternInt("0")
	e.syms.InternStr("")

	for _, name := range e.lay.Order {
		e.syms.InternStr(string(name))

		c := e.ct.Class(name)
		if c.Filename != "" {
			e.syms.InternStr(c.Filename)
		}

		for _, f := range c.Features {
			switch feat := f.(type) {
			case *ast.Attr:
				e.collectExpr(feat.Init)
			case *ast.Method:
				e.collectExpr(feat.Body)
			}
		}
	}
}

func (e *Emitter) collectExpr(body ast.Expr) {
	walkExpr(body, func(n ast.Expr) {
		switch n := n.(type) {
		case *ast.IntConst:
			e.syms.InternInt(n.Value)
		case *ast.StrConst:
			e.syms.InternStr(n.Value)
		case *ast.Dispatch:
			e.syms.InternStr(n.Position().File)
		case *ast.StaticDispatch:
			e.syms.InternStr(n.Position().File)
		case *ast.Case:
			e.syms.InternStr(n.Position().File)
		}
	})
}

// intLabel/strLabel/boolLabel name the constant objects referenced
// throughout the data and text sections.
func intLabel(idx int) string { return fmt.Sprintf("int_const%d", idx) }
func strLabel(idx int) string { return fmt.Sprintf("str_const%d", idx) }
func boolLabel(v bool) string {
	if v {
		return "bool_const1"
	}
	return "bool_const0"
}

// zeroIntLabel/emptyStrLabel resolve the universal "0"/"" constants
// interned by collectConstants, for use as attribute defaults and the
// Let-with-no-initializer rule.
func (e *Emitter) zeroIntLabel() string {
	idx, _ := e.syms.IntIndex("0")
	return intLabel(idx)
}

func (e *Emitter) emptyStrLabel() string {
	idx, _ := e.syms.StrIndex("")
	return strLabel(idx)
}

func (e *Emitter) classNameLabel(name symbol.Name) string {
	idx, _ := e.syms.StrIndex(string(name))
	return strLabel(idx)
}
