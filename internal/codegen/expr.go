package codegen

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/symbol"
)

// emitExpr emits the expression form for e into ACC, following each
// form's required semantics exactly (§4.4 of the expression rules).
func (e *Emitter) emitExpr(ctx *Context, expr ast.Expr) {
	switch n := expr.(type) {
	case *ast.IntConst:
		idx, _ := e.syms.IntIndex(n.Value)
		e.emit("\tla\t$a0 %s", intLabel(idx))
	case *ast.StrConst:
		idx, _ := e.syms.StrIndex(n.Value)
		e.emit("\tla\t$a0 %s", strLabel(idx))
	case *ast.BoolConst:
		e.emit("\tla\t$a0 %s", boolLabel(n.Value))
	case *ast.NoExpr:
		e.emit("\tmove\t$a0 $zero")
	case *ast.Id:
		e.emitId(ctx, n)
	case *ast.Assign:
		e.emitExpr(ctx, n.Expr)
		e.storeTo(ctx, n.Name)
	case *ast.New:
		e.emitNew(ctx, n)
	case *ast.IsVoid:
		e.emitExpr(ctx, n.E1)
		e.emitIsVoid()
	case *ast.Not:
		e.emitExpr(ctx, n.E1)
		e.emitNot()
	case *ast.Neg:
		e.emitExpr(ctx, n.E1)
		e.emitNeg()
	case *ast.Plus:
		e.emitArith(ctx, n.E1, n.E2, "add")
	case *ast.Sub:
		e.emitArith(ctx, n.E1, n.E2, "sub")
	case *ast.Mul:
		e.emitArith(ctx, n.E1, n.E2, "mul")
	case *ast.Div:
		e.emitArith(ctx, n.E1, n.E2, "div")
	case *ast.Lt:
		e.emitCompare(ctx, n.E1, n.E2, "blt")
	case *ast.Leq:
		e.emitCompare(ctx, n.E1, n.E2, "ble")
	case *ast.Eq:
		e.emitEq(ctx, n)
	case *ast.If:
		e.emitIf(ctx, n)
	case *ast.While:
		e.emitWhile(ctx, n)
	case *ast.Block:
		for _, sub := range n.Exprs {
			e.emitExpr(ctx, sub)
		}
	case *ast.Let:
		e.emitLet(ctx, n)
	case *ast.Case:
		e.emitCase(ctx, n)
	case *ast.Dispatch:
		e.emitDispatch(ctx, n)
	case *ast.StaticDispatch:
		e.emitStaticDispatch(ctx, n)
	}
}

func (e *Emitter) emitId(ctx *Context, n *ast.Id) {
	if n.Name == symbol.Self {
		e.emit("\tmove\t$a0 $s0")
		return
	}
	loc, ok := ctx.Env.Lookup(n.Name)
	if !ok {
		e.emit("\tmove\t$a0 $zero")
		return
	}
	off := ctx.effectiveOffset(loc) * 4
	e.emit("\tlw\t$a0 %d(%s)", off, loc.Base.reg())
}

func (e *Emitter) storeTo(ctx *Context, name symbol.Name) {
	loc, ok := ctx.Env.Lookup(name)
	if !ok {
		return
	}
	off := ctx.effectiveOffset(loc) * 4
	e.emit("\tsw\t$a0 %d(%s)", off, loc.Base.reg())
}

// emitNew handles both the concrete-type form (copy the static
// prototype, run its init) and the SELF_TYPE form, which indexes
// class_objTab by the running object's own tag since the concrete
// class is not known until runtime.
func (e *Emitter) emitNew(ctx *Context, n *ast.New) {
	if n.TypeName != symbol.SelfType {
		e.emit("\tla\t$a0 %s_protObj", n.TypeName)
		e.emit("\tjal\tObject.copy")
		e.emit("\tjal\t%s_init", n.TypeName)
		return
	}

	e.emit("\tlw\t$t1 0($s0)")
	e.emit("\tsll\t$t1 $t1 3")
	e.emit("\tla\t$t2 class_objTab")
	e.emit("\taddu\t$t1 $t1 $t2")
	e.pushReg("$t1")
	ctx.VarCount++
	e.emit("\tlw\t$a0 0($t1)")
	e.emit("\tjal\tObject.copy")
	e.pop("$t1")
	ctx.VarCount--
	e.emit("\tlw\t$t1 4($t1)")
	e.emit("\tjalr\t$t1")
}

func (e *Emitter) emitIsVoid() {
	done := e.newLabel("isvoid_done")
	e.emit("\tmove\t$t1 $a0")
	e.emit("\tla\t$a0 bool_const1")
	e.emit("\tbeqz\t$t1 %s", done)
	e.emit("\tla\t$a0 bool_const0")
	e.label(done)
}

func (e *Emitter) emitNot() {
	done := e.newLabel("not_done")
	e.emit("\tlw\t$t1 12($a0)")
	e.emit("\tla\t$a0 bool_const1")
	e.emit("\tbeqz\t$t1 %s", done)
	e.emit("\tla\t$a0 bool_const0")
	e.label(done)
}

func (e *Emitter) emitNeg() {
	e.emit("\tjal\tObject.copy")
	e.emit("\tlw\t$t1 12($a0)")
	e.emit("\tsub\t$t1 $zero $t1")
	e.emit("\tsw\t$t1 12($a0)")
}

// emitArith evaluates e1 and e2, boxing a fresh result in a copy of
// e2's operand object (so every arithmetic result is its own Int
// object, never an aliased one), and stores op(e1, e2) into its value
// slot.
func (e *Emitter) emitArith(ctx *Context, e1, e2 ast.Expr, op string) {
	e.emitExpr(ctx, e1)
	e.push()
	ctx.VarCount++
	e.emitExpr(ctx, e2)
	ctx.VarCount--
	e.emit("\tjal\tObject.copy")
	e.pop("$t1")
	e.emit("\tlw\t$t2 12($a0)")
	e.emit("\tlw\t$t1 12($t1)")
	switch op {
	case "add":
		e.emit("\tadd\t$t1 $t1 $t2")
	case "sub":
		e.emit("\tsub\t$t1 $t1 $t2")
	case "mul":
		e.emit("\tmul\t$t1 $t1 $t2")
	case "div":
		e.emit("\tdiv\t$t1 $t1 $t2")
	}
	e.emit("\tsw\t$t1 12($a0)")
}

func (e *Emitter) emitCompare(ctx *Context, e1, e2 ast.Expr, branchOp string) {
	e.emitExpr(ctx, e1)
	e.push()
	ctx.VarCount++
	e.emitExpr(ctx, e2)
	ctx.VarCount--
	e.pop("$t1")
	e.emit("\tlw\t$t1 12($t1)")
	e.emit("\tlw\t$t2 12($a0)")
	trueLabel := e.newLabel("cmp_true")
	doneLabel := e.newLabel("cmp_done")
	e.emit("\t%s\t$t1 $t2 %s", branchOp, trueLabel)
	e.emit("\tla\t$a0 bool_const0")
	e.emit("\tb\t%s", doneLabel)
	e.label(trueLabel)
	e.emit("\tla\t$a0 bool_const1")
	e.label(doneLabel)
}

func (e *Emitter) emitEq(ctx *Context, n *ast.Eq) {
	e.emitExpr(ctx, n.E1)
	e.push()
	ctx.VarCount++
	e.emitExpr(ctx, n.E2)
	ctx.VarCount--
	e.pop("$t1")
	e.emit("\tmove\t$t2 $a0")

	if isBasicType(n.E1.Type()) {
		e.emit("\tla\t$a0 bool_const1")
		e.emit("\tla\t$a1 bool_const0")
		e.emit("\tjal\tequality_test")
		return
	}

	doneLabel := e.newLabel("eq_done")
	e.emit("\tla\t$a0 bool_const1")
	e.emit("\tbeq\t$t1 $t2 %s", doneLabel)
	e.emit("\tla\t$a0 bool_const0")
	e.label(doneLabel)
}

func isBasicType(t symbol.Name) bool {
	return t == symbol.Int || t == symbol.String || t == symbol.Bool
}

func (e *Emitter) emitIf(ctx *Context, n *ast.If) {
	e.emitExpr(ctx, n.Pred)
	e.emit("\tlw\t$t1 12($a0)")
	falseLabel := e.newLabel("if_false")
	doneLabel := e.newLabel("if_done")
	e.emit("\tbeqz\t$t1 %s", falseLabel)
	e.emitExpr(ctx, n.Then)
	e.emit("\tb\t%s", doneLabel)
	e.label(falseLabel)
	e.emitExpr(ctx, n.Else)
	e.label(doneLabel)
}

func (e *Emitter) emitWhile(ctx *Context, n *ast.While) {
	begin := e.newLabel("while_begin")
	end := e.newLabel("while_end")
	e.label(begin)
	e.emitExpr(ctx, n.Pred)
	e.emit("\tlw\t$t1 12($a0)")
	e.emit("\tbeqz\t$t1 %s", end)
	e.emitExpr(ctx, n.Body)
	e.emit("\tb\t%s", begin)
	e.label(end)
	e.emit("\tmove\t$a0 $zero")
}

func (e *Emitter) emitLet(ctx *Context, n *ast.Let) {
	if _, isNo := n.Init.(*ast.NoExpr); isNo {
		e.emitLetDefault(n.Decl)
	} else {
		e.emitExpr(ctx, n.Init)
	}

	e.push()
	loc := Location{Offset: ctx.VarCount, Base: BaseSP}
	ctx.VarCount++

	saved := ctx.Env
	ctx.Env = NewEnv(saved)
	ctx.Env.Define(n.Name, loc)
	e.emitExpr(ctx, n.Body)
	ctx.Env = saved

	ctx.VarCount--
	e.emit("\taddiu\t$sp $sp 4")
}

func (e *Emitter) emitLetDefault(decl symbol.Name) {
	switch decl {
	case symbol.Int:
		e.emit("\tla\t$a0 %s", e.zeroIntLabel())
	case symbol.String:
		e.emit("\tla\t$a0 %s", e.emptyStrLabel())
	case symbol.Bool:
		e.emit("\tla\t$a0 bool_const0")
	default:
		e.emit("\tmove\t$a0 $zero")
	}
}

// emitCase dispatches on the scrutinee's runtime tag. Branches are
// tried with every branch ahead of any branch whose declared type is
// one of its ancestors; each branch
// claims every tag reachable from its type that no stricter branch
// already claimed, which is sound and deterministic without requiring
// the exact BFS-walk the reference implementation happens to use.
func (e *Emitter) emitCase(ctx *Context, n *ast.Case) {
	e.emitExpr(ctx, n.Expr)

	nonVoid := e.newLabel("case_nonvoid")
	e.emit("\tbnez\t$a0 %s", nonVoid)
	fileIdx, _ := e.syms.StrIndex(n.Position().File)
	e.emit("\tla\t$a0 %s", strLabel(fileIdx))
	e.emit("\tli\t$t1 %d", n.Position().Line)
	e.emit("\tjal\t_case_abort2")
	e.label(nonVoid)

	e.push()
	loc := Location{Offset: ctx.VarCount, Base: BaseSP}
	ctx.VarCount++
	e.emit("\tlw\t$t1 0($a0)")

	branches := append([]*ast.Branch(nil), n.Branches...)
	sortBranchesBySpecificity(e.ct, branches)

	labels := make([]string, len(branches))
	claimed := map[int]bool{}
	for i, br := range branches {
		labels[i] = e.newLabel("case_branch")
		for _, name := range e.lay.Order {
			if !e.ct.IsSubtypeOf(name, br.Decl, name) {
				continue
			}
			tag := e.lay.Tag(name)
			if claimed[tag] {
				continue
			}
			claimed[tag] = true
			e.emit("\tbeq\t$t1 %d %s", tag, labels[i])
		}
	}
	e.emit("\tjal\t_case_abort")

	doneLabel := e.newLabel("case_done")
	for i, br := range branches {
		e.label(labels[i])
		saved := ctx.Env
		ctx.Env = NewEnv(saved)
		ctx.Env.Define(br.Name, loc)
		e.emitExpr(ctx, br.Body)
		ctx.Env = saved
		e.emit("\tb\t%s", doneLabel)
	}
	e.label(doneLabel)

	ctx.VarCount--
	e.emit("\taddiu\t$sp $sp 4")
}

// sortBranchesBySpecificity orders branches so that a branch whose
// declared type is a strict subtype of another branch's declared type
// always comes first, letting emitCase's greedy tag-claiming pick the
// most specific matching branch at runtime. Each branch is inserted
// just before the first earlier branch that is its ancestor (or left in
// place if there is none), so unrelated branches keep source order.
func sortBranchesBySpecificity(ct interface {
	IsSubtypeOf(a, b, self symbol.Name) bool
}, branches []*ast.Branch) {
	for i := 1; i < len(branches); i++ {
		for j := 0; j < i; j++ {
			if less(ct, branches[i].Decl, branches[j].Decl) {
				br := branches[i]
				copy(branches[j+1:i+1], branches[j:i])
				branches[j] = br
				break
			}
		}
	}
}

func less(ct interface {
	IsSubtypeOf(a, b, self symbol.Name) bool
}, a, b symbol.Name) bool {
	// a is more specific than b if a <= b but not b <= a (a strictly
	// beneath b in the hierarchy); such pairs must sort before their
	// ancestor so the ancestor never steals their tags.
	aUnderB := ct.IsSubtypeOf(a, b, a)
	bUnderA := ct.IsSubtypeOf(b, a, b)
	if aUnderB && !bUnderA {
		return true
	}
	return false
}

func (e *Emitter) emitDispatch(ctx *Context, n *ast.Dispatch) {
	for _, arg := range n.Args {
		e.emitExpr(ctx, arg)
		e.push()
		ctx.VarCount++
	}
	e.emitExpr(ctx, n.Recv)

	ok := e.newLabel("dispatch_ok")
	e.emit("\tbnez\t$a0 %s", ok)
	fileIdx, _ := e.syms.StrIndex(n.Position().File)
	e.emit("\tla\t$a0 %s", strLabel(fileIdx))
	e.emit("\tli\t$t1 %d", n.Position().Line)
	e.emit("\tjal\t_dispatch_abort")
	e.label(ok)

	lookupClass := n.Recv.Type()
	if lookupClass == symbol.SelfType {
		lookupClass = ctx.SelfClass
	}
	idx := e.lay.DispIndex(lookupClass, n.Method)
	e.emit("\tlw\t$t1 8($a0)")
	e.emit("\tlw\t$t1 %d($t1)", idx*4)
	e.emit("\tjalr\t$t1")

	for range n.Args {
		ctx.VarCount--
	}
}

func (e *Emitter) emitStaticDispatch(ctx *Context, n *ast.StaticDispatch) {
	for _, arg := range n.Args {
		e.emitExpr(ctx, arg)
		e.push()
		ctx.VarCount++
	}
	e.emitExpr(ctx, n.Recv)

	ok := e.newLabel("dispatch_ok")
	e.emit("\tbnez\t$a0 %s", ok)
	fileIdx, _ := e.syms.StrIndex(n.Position().File)
	e.emit("\tla\t$a0 %s", strLabel(fileIdx))
	e.emit("\tli\t$t1 %d", n.Position().Line)
	e.emit("\tjal\t_dispatch_abort")
	e.label(ok)

	idx := e.lay.DispIndex(n.StaticType, n.Method)
	e.emit("\tla\t$t1 %s_dispTab", n.StaticType)
	e.emit("\tlw\t$t1 %d($t1)", idx*4)
	e.emit("\tjalr\t$t1")

	for range n.Args {
		ctx.VarCount--
	}
}
