// Package typecheck implements Cool's bidirectional, syntax-directed
// type checker: one pass over every class assigns a static type to
// every expression node exactly once (ast.Expr's write-once annotated
// type slot), resolving SELF_TYPE against the class currently being
// checked and computing least upper bounds at every branch join.
package typecheck

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/symbol"
)

// Checker holds the state threaded through one compilation unit's type
// check: the validated class table, the diagnostic sink, and the class
// currently being checked (used to resolve SELF_TYPE).
type Checker struct {
	ct    *classtable.ClassTable
	sink  *diag.Sink
	class symbol.Name
}

// Check type-checks every user-declared class in prog against ct,
// which must already have passed Validate. Basic classes are skipped;
// their methods have no Cool-level bodies to check.
func Check(ct *classtable.ClassTable, prog *ast.Program, sink *diag.Sink) {
	c := &Checker{ct: ct, sink: sink}
	for _, cls := range prog.Classes {
		c.checkClass(cls)
	}
}

func (c *Checker) checkClass(cls *ast.Class) {
	c.class = cls.Name

	env := NewEnv(nil)
	env.Define(symbol.Self, symbol.SelfType)
	for _, a := range c.ct.AttrsOf(cls.Name) {
		env.Define(a.Name, a.Decl)
	}

	for _, f := range cls.Features {
		switch feat := f.(type) {
		case *ast.Attr:
			c.checkAttr(feat, env)
		case *ast.Method:
			c.checkMethod(feat, env)
		}
	}
}

func (c *Checker) checkAttr(a *ast.Attr, env *Env) {
	c.checkDeclaredType(a.Pos, a.Decl)
	if _, isNo := a.Init.(*ast.NoExpr); isNo {
		a.Init.SetType(symbol.NoType)
		return
	}
	t := c.checkExpr(a.Init, env)
	if !c.ct.IsSubtypeOf(t, a.Decl, c.class) {
		c.sink.Errorf(a.Pos, "Inferred type %s of initialization of attribute %s does not conform to declared type %s", t, a.Name, a.Decl)
	}
}

func (c *Checker) checkMethod(m *ast.Method, env *Env) {
	methodEnv := NewEnv(env)
	for _, f := range m.Formals {
		if f.Name == symbol.Self {
			c.sink.Errorf(f.Pos, "'self' cannot be the name of a formal parameter")
			continue
		}
		c.checkDeclaredType(f.Pos, f.Decl)
		methodEnv.Define(f.Name, f.Decl)
	}

	t := c.checkExpr(m.Body, methodEnv)

	if m.ReturnType != symbol.SelfType && !c.ct.ClassExists(m.ReturnType) {
		c.sink.Errorf(m.Pos, "Undefined return type %s in method %s", m.ReturnType, m.Name)
		return
	}
	if !c.ct.IsSubtypeOf(t, m.ReturnType, c.class) {
		c.sink.Errorf(m.Pos, "Inferred return type %s of method %s does not conform to declared return type %s", t, m.Name, m.ReturnType)
	}
}

// checkDeclaredType reports an error if decl names no known class
// (SELF_TYPE is always valid in a type-annotation position).
func (c *Checker) checkDeclaredType(pos ast.Pos, decl symbol.Name) {
	if decl == symbol.SelfType || c.ct.ClassExists(decl) {
		return
	}
	c.sink.Errorf(pos, "Class %s of declaration is undefined", decl)
}

// checkExpr types e under env, stamps e's annotated type via SetType,
// and returns that type.
func (c *Checker) checkExpr(e ast.Expr, env *Env) symbol.Name {
	t := c.typeOf(e, env)
	e.SetType(t)
	return t
}

func (c *Checker) typeOf(e ast.Expr, env *Env) symbol.Name {
	switch e := e.(type) {
	case *ast.IntConst:
		return symbol.Int
	case *ast.StrConst:
		return symbol.String
	case *ast.BoolConst:
		return symbol.Bool
	case *ast.NoExpr:
		return symbol.NoType
	case *ast.Id:
		return c.typeOfId(e, env)
	case *ast.Assign:
		return c.typeOfAssign(e, env)
	case *ast.New:
		return c.typeOfNew(e)
	case *ast.IsVoid:
		c.checkExpr(e.E1, env)
		return symbol.Bool
	case *ast.Not:
		t := c.checkExpr(e.E1, env)
		if t != symbol.Bool {
			c.sink.Errorf(e.Position(), "Argument of 'not' has type %s instead of Bool", t)
		}
		return symbol.Bool
	case *ast.Neg:
		t := c.checkExpr(e.E1, env)
		if t != symbol.Int {
			c.sink.Errorf(e.Position(), "Argument of '~' has type %s instead of Int", t)
		}
		return symbol.Int
	case *ast.Plus:
		return c.typeOfArith(e.Position(), e.E1, e.E2, env)
	case *ast.Sub:
		return c.typeOfArith(e.Position(), e.E1, e.E2, env)
	case *ast.Mul:
		return c.typeOfArith(e.Position(), e.E1, e.E2, env)
	case *ast.Div:
		return c.typeOfArith(e.Position(), e.E1, e.E2, env)
	case *ast.Lt:
		c.checkIntOperands(e.Position(), e.E1, e.E2, env)
		return symbol.Bool
	case *ast.Leq:
		c.checkIntOperands(e.Position(), e.E1, e.E2, env)
		return symbol.Bool
	case *ast.Eq:
		return c.typeOfEq(e, env)
	case *ast.If:
		return c.typeOfIf(e, env)
	case *ast.While:
		pred := c.checkExpr(e.Pred, env)
		if pred != symbol.Bool {
			c.sink.Errorf(e.Position(), "Loop condition does not have type Bool")
		}
		c.checkExpr(e.Body, env)
		return symbol.Object
	case *ast.Block:
		return c.typeOfBlock(e, env)
	case *ast.Let:
		return c.typeOfLet(e, env)
	case *ast.Case:
		return c.typeOfCase(e, env)
	case *ast.Dispatch:
		return c.typeOfDispatch(e, env)
	case *ast.StaticDispatch:
		return c.typeOfStaticDispatch(e, env)
	default:
		return symbol.Object
	}
}

func (c *Checker) typeOfId(e *ast.Id, env *Env) symbol.Name {
	if e.Name == symbol.Self {
		return symbol.SelfType
	}
	if t, ok := env.Lookup(e.Name); ok {
		return t
	}
	c.sink.Errorf(e.Position(), "Undeclared identifier %s", e.Name)
	return symbol.Object
}

func (c *Checker) typeOfAssign(e *ast.Assign, env *Env) symbol.Name {
	rhsT := c.checkExpr(e.Expr, env)
	if e.Name == symbol.Self {
		c.sink.Errorf(e.Position(), "Cannot assign to 'self'")
		return rhsT
	}
	declType, ok := env.Lookup(e.Name)
	if !ok {
		c.sink.Errorf(e.Position(), "Assignment to undeclared variable %s", e.Name)
		return rhsT
	}
	if !c.ct.IsSubtypeOf(rhsT, declType, c.class) {
		c.sink.Errorf(e.Position(), "Type %s of assigned expression does not conform to declared type %s of identifier %s", rhsT, declType, e.Name)
	}
	return rhsT
}

func (c *Checker) typeOfNew(e *ast.New) symbol.Name {
	if e.TypeName == symbol.SelfType {
		return symbol.SelfType
	}
	if !c.ct.ClassExists(e.TypeName) {
		c.sink.Errorf(e.Position(), "'new' used with undefined class %s", e.TypeName)
		return symbol.Object
	}
	return e.TypeName
}

func (c *Checker) typeOfArith(pos ast.Pos, a, b ast.Expr, env *Env) symbol.Name {
	c.checkIntOperands(pos, a, b, env)
	return symbol.Int
}

func (c *Checker) checkIntOperands(pos ast.Pos, a, b ast.Expr, env *Env) {
	t1 := c.checkExpr(a, env)
	t2 := c.checkExpr(b, env)
	if t1 != symbol.Int || t2 != symbol.Int {
		c.sink.Errorf(pos, "non-Int arguments: %s %s", t1, t2)
	}
}

// typeOfEq implements Cool's restriction that Int/String/Bool may only
// ever be compared against the same basic type; any other pairing
// (including any two non-basic classes) is always permitted.
func (c *Checker) typeOfEq(e *ast.Eq, env *Env) symbol.Name {
	t1 := c.checkExpr(e.E1, env)
	t2 := c.checkExpr(e.E2, env)
	if isBasic(t1) || isBasic(t2) {
		if t1 != t2 {
			c.sink.Errorf(e.Position(), "Illegal comparison with a basic type")
		}
	}
	return symbol.Bool
}

func isBasic(t symbol.Name) bool {
	return t == symbol.Int || t == symbol.String || t == symbol.Bool
}

func (c *Checker) typeOfIf(e *ast.If, env *Env) symbol.Name {
	pred := c.checkExpr(e.Pred, env)
	if pred != symbol.Bool {
		c.sink.Errorf(e.Position(), "Predicate of 'if' does not have type Bool")
	}
	thenT := c.checkExpr(e.Then, env)
	elseT := c.checkExpr(e.Else, env)
	return c.ct.Lub(thenT, elseT, c.class)
}

func (c *Checker) typeOfBlock(e *ast.Block, env *Env) symbol.Name {
	var last symbol.Name = symbol.Object
	for _, sub := range e.Exprs {
		last = c.checkExpr(sub, env)
	}
	return last
}

func (c *Checker) typeOfLet(e *ast.Let, env *Env) symbol.Name {
	if e.Name == symbol.Self {
		c.sink.Errorf(e.Position(), "'self' cannot be bound in a 'let' expression")
	}
	c.checkDeclaredType(e.Position(), e.Decl)

	if _, isNo := e.Init.(*ast.NoExpr); isNo {
		e.Init.SetType(symbol.NoType)
	} else {
		initT := c.checkExpr(e.Init, env)
		if !c.ct.IsSubtypeOf(initT, e.Decl, c.class) {
			c.sink.Errorf(e.Position(), "Inferred type %s of initialization of %s does not conform to identifier's declared type %s", initT, e.Name, e.Decl)
		}
	}

	bodyEnv := NewEnv(env)
	bodyEnv.Define(e.Name, e.Decl)
	return c.checkExpr(e.Body, bodyEnv)
}

func (c *Checker) typeOfCase(e *ast.Case, env *Env) symbol.Name {
	c.checkExpr(e.Expr, env)

	seen := map[symbol.Name]bool{}
	var result symbol.Name
	first := true
	for _, br := range e.Branches {
		if seen[br.Decl] {
			c.sink.Errorf(br.Pos, "Duplicate branch %s in case statement", br.Decl)
		}
		seen[br.Decl] = true
		c.checkDeclaredType(br.Pos, br.Decl)

		branchEnv := NewEnv(env)
		branchEnv.Define(br.Name, br.Decl)
		bt := c.checkExpr(br.Body, branchEnv)
		if first {
			result = bt
			first = false
		} else {
			result = c.ct.Lub(result, bt, c.class)
		}
	}
	if first {
		return symbol.Object
	}
	return result
}

func (c *Checker) typeOfDispatch(e *ast.Dispatch, env *Env) symbol.Name {
	recvT := c.checkExpr(e.Recv, env)
	lookupClass := recvT
	if lookupClass == symbol.SelfType {
		lookupClass = c.class
	}

	mi := c.ct.MethodOf(lookupClass, e.Method)
	if mi == nil {
		c.sink.Errorf(e.Position(), "Dispatch to undefined method %s", e.Method)
		for _, arg := range e.Args {
			c.checkExpr(arg, env)
		}
		return symbol.Object
	}
	c.checkArgs(e.Position(), mi, e.Args, env)
	if mi.Decl.ReturnType == symbol.SelfType {
		return recvT
	}
	return mi.Decl.ReturnType
}

func (c *Checker) typeOfStaticDispatch(e *ast.StaticDispatch, env *Env) symbol.Name {
	recvT := c.checkExpr(e.Recv, env)

	if !c.ct.ClassExists(e.StaticType) {
		c.sink.Errorf(e.Position(), "Static dispatch to undefined class %s", e.StaticType)
		for _, arg := range e.Args {
			c.checkExpr(arg, env)
		}
		return symbol.Object
	}
	if !c.ct.IsSubtypeOf(recvT, e.StaticType, c.class) {
		c.sink.Errorf(e.Position(), "Expression type %s does not conform to declared static dispatch type %s", recvT, e.StaticType)
	}

	mi := c.ct.MethodOf(e.StaticType, e.Method)
	if mi == nil {
		c.sink.Errorf(e.Position(), "Static dispatch to undefined method %s", e.Method)
		for _, arg := range e.Args {
			c.checkExpr(arg, env)
		}
		return symbol.Object
	}
	c.checkArgs(e.Position(), mi, e.Args, env)
	if mi.Decl.ReturnType == symbol.SelfType {
		return recvT
	}
	return mi.Decl.ReturnType
}

func (c *Checker) checkArgs(pos ast.Pos, mi *classtable.MethodInfo, args []ast.Expr, env *Env) {
	if len(args) != len(mi.Decl.Formals) {
		c.sink.Errorf(pos, "Method %s called with wrong number of arguments", mi.Decl.Name)
		for _, arg := range args {
			c.checkExpr(arg, env)
		}
		return
	}
	for i, arg := range args {
		argT := c.checkExpr(arg, env)
		formal := mi.Decl.Formals[i]
		if !c.ct.IsSubtypeOf(argT, formal.Decl, c.class) {
			c.sink.Errorf(pos, "In call to method %s, type %s of parameter %s does not conform to declared type %s", mi.Decl.Name, argT, formal.Name, formal.Decl)
		}
	}
}
