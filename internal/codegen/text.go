package codegen

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/symbol"
)

// emitTextHeader writes the .text segment header and the globals every
// linked runtime expects to find, ahead of heap_start.
func (e *Emitter) emitTextHeader() {
	e.emit("\t.globl\tMain_init")
	e.emit("\t.globl\tInt_init")
	e.emit("\t.globl\tString_init")
	e.emit("\t.globl\tBool_init")
	e.emit("\t.globl\tMain.main")
	e.label("heap_start")
	e.emit("\t.word\t0")
	e.emit("\t.text")
}

// emitInits writes one <C>_init per class in BFS order, including the
// basic classes: their attribute lists never carry a non-NoExpr
// initializer, so their bodies reduce to the prologue, the parent-init
// call, and the epilogue, matching how the runtime's own trivial inits
// behave.
func (e *Emitter) emitInits() {
	for _, name := range e.lay.Order {
		e.emitInit(name)
	}
}

func (e *Emitter) emitInit(name symbol.Name) {
	e.label(string(name) + "_init")
	e.emitPrologue()

	if name != symbol.Object {
		parent := e.ct.ParentOf(name)
		e.emit("\tjal\t%s_init", parent)
	}

	env := NewEnv(nil)
	for _, a := range e.ct.AttrsOf(name) {
		env.Define(a.Name, Location{Offset: e.lay.AttrOffset(name, a.Name), Base: BaseSelf})
	}
	ctx := &Context{SelfClass: name, Env: env}
	for _, a := range e.ct.AttrsOf(name) {
		if a.Decl == symbol.PrimSlot {
			continue
		}
		if _, isNo := a.Init.(*ast.NoExpr); isNo {
			continue
		}
		e.emitExpr(ctx, a.Init)
		off := e.lay.AttrOffset(name, a.Name) * 4
		e.emit("\tsw\t$a0 %d($s0)", off)
	}

	e.emitInitEpilogue()
}

// emitMethods writes every user-declared method in <Owner>.<Method>
// form; basic classes never appear in prog, so their externally
// implemented methods are naturally excluded.
func (e *Emitter) emitMethods(prog *ast.Program) {
	for _, cls := range prog.Classes {
		for _, f := range cls.Features {
			m, ok := f.(*ast.Method)
			if !ok {
				continue
			}
			e.emitMethod(cls.Name, m)
		}
	}
}

func (e *Emitter) emitMethod(owner symbol.Name, m *ast.Method) {
	e.label(string(owner) + "." + string(m.Name))
	e.emitPrologue()

	env := NewEnv(nil)
	for _, a := range e.ct.AttrsOf(owner) {
		env.Define(a.Name, Location{Offset: e.lay.AttrOffset(owner, a.Name), Base: BaseSelf})
	}
	// Formals sit above the saved frame at increasing positive offsets
	// from FP: the first formal pushed is deepest, so formal i is at
	// 12 + 4*(n-1-i) off FP. See the calling convention's prologue: args
	// are pushed caller-side in left-to-right source order.
	n := len(m.Formals)
	for i, f := range m.Formals {
		off := 3 + (n - 1 - i)
		env.Define(f.Name, Location{Offset: off, Base: BaseFP})
	}

	ctx := &Context{SelfClass: owner, Env: env}
	e.emitExpr(ctx, m.Body)

	e.emitMethodEpilogue(n)
}

func (e *Emitter) emitPrologue() {
	e.emit("\taddiu\t$sp $sp -12")
	e.emit("\tsw\t$fp 12($sp)")
	e.emit("\tsw\t$s0 8($sp)")
	e.emit("\tsw\t$ra 4($sp)")
	e.emit("\taddiu\t$fp $sp 4")
	e.emit("\tmove\t$s0 $a0")
}

func (e *Emitter) emitInitEpilogue() {
	e.emit("\tmove\t$a0 $s0")
	e.emit("\tlw\t$fp 12($sp)")
	e.emit("\tlw\t$s0 8($sp)")
	e.emit("\tlw\t$ra 4($sp)")
	e.emit("\taddiu\t$sp $sp 12")
	e.emit("\tjr\t$ra")
}

func (e *Emitter) emitMethodEpilogue(numFormals int) {
	e.emit("\tlw\t$fp 12($sp)")
	e.emit("\tlw\t$s0 8($sp)")
	e.emit("\tlw\t$ra 4($sp)")
	e.emit("\taddiu\t$sp $sp %d", 12+4*numFormals)
	e.emit("\tjr\t$ra")
}
