// Package classtable builds and validates the class hierarchy: it
// installs the five basic classes, checks structural well-formedness
// (single Main, defined parents, acyclic inheritance), flattens each
// class's attributes and methods by walking from Object down to it, and
// answers the subtyping and least-upper-bound queries the type checker
// and layout planner depend on.
package classtable

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/symbol"
)

// MethodInfo pairs a method declaration with the class that introduced
// it (the owner may differ from the class the method is looked up on,
// when the method was inherited rather than overridden).
type MethodInfo struct {
	Decl  *ast.Method
	Owner symbol.Name
}

// ClassTable is the validated, flattened class hierarchy.
type ClassTable struct {
	sink    *diag.Sink
	classes map[symbol.Name]*ast.Class

	// declOrder is the order classes were installed in (basic classes
	// first, then user classes in source order). Every traversal that
	// must be deterministic — the children-of lookup BFS builds feature
	// maps and tags from, and the validation error passes — walks this
	// slice rather than ranging over the classes map directly, since Go
	// map iteration order is randomized.
	declOrder []symbol.Name

	// populated by Validate, once the hierarchy is known to be acyclic.
	attrsOf   map[symbol.Name][]*ast.Attr
	methodsOf map[symbol.Name]map[symbol.Name]*MethodInfo
	order     []symbol.Name // classes in parent-before-child (BFS) order
}

// Build installs the five basic classes and the user classes from prog,
// without validating the hierarchy. Redeclaration of a basic class name
// or of any class twice is reported immediately since it would make the
// classes map ambiguous.
func Build(prog *ast.Program, sink *diag.Sink) *ClassTable {
	ct := &ClassTable{sink: sink, classes: map[symbol.Name]*ast.Class{}}
	for _, c := range basicClasses() {
		ct.classes[c.Name] = c
		ct.declOrder = append(ct.declOrder, c.Name)
	}
	for _, c := range prog.Classes {
		if isBasic(c.Name) {
			sink.Errorf(c.Pos, "redefinition of basic class %s", c.Name)
			continue
		}
		if existing, ok := ct.classes[c.Name]; ok {
			sink.Errorf(c.Pos, "class %s was previously defined at %s:%d", c.Name, existing.Pos.File, existing.Pos.Line)
			continue
		}
		ct.classes[c.Name] = c
		ct.declOrder = append(ct.declOrder, c.Name)
	}
	return ct
}

// Validate checks that Main is defined with a no-argument main method,
// that every parent reference resolves to a known class and is not
// Int/Bool/String/SELF_TYPE, and that inheritance is acyclic. On success
// it also builds the flattened attribute/method maps. It returns false
// if any error was reported (callers should abort before type checking).
func (ct *ClassTable) Validate() bool {
	before := ct.sink.Count()

	if _, ok := ct.classes[symbol.Main]; !ok {
		ct.sink.Errorf(ast.Pos{File: "<runtime>"}, "class Main is not defined")
	}

	for _, name := range ct.declOrder {
		c := ct.classes[name]
		if isBasic(c.Name) {
			continue
		}
		if c.Parent == symbol.Int || c.Parent == symbol.Bool || c.Parent == symbol.String || c.Parent == symbol.SelfType {
			ct.sink.Errorf(c.Pos, "class %s cannot inherit from %s", c.Name, c.Parent)
			continue
		}
		if _, ok := ct.classes[c.Parent]; !ok {
			ct.sink.Errorf(c.Pos, "class %s inherits from undefined class %s", c.Name, c.Parent)
		}
	}

	if ct.sink.Count() != before {
		return false
	}

	if !ct.checkAcyclic() {
		return false
	}

	ct.buildFeatureMaps()

	if m := ct.MethodOf(symbol.Main, symbol.MainMethod); m == nil {
		ct.sink.Errorf(ct.classes[symbol.Main].Pos, "class Main has no main() method")
	} else if len(m.Decl.Formals) != 0 {
		ct.sink.Errorf(m.Decl.Pos, "method main in class Main must take no arguments")
	}

	return ct.sink.Count() == before
}

// checkAcyclic runs a DFS with a path set over user classes (the five
// basic classes are pairwise distinct roots/children of Object and
// cannot participate in a cycle). It reports one error per class found
// to close a cycle.
func (ct *ClassTable) checkAcyclic() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[symbol.Name]int{}
	ok := true

	var visit func(name symbol.Name) bool
	visit = func(name symbol.Name) bool {
		if isBasic(name) {
			return true
		}
		switch color[name] {
		case black:
			return true
		case gray:
			return false
		}
		color[name] = gray
		c := ct.classes[name]
		if c != nil && !visit(c.Parent) {
			ct.sink.Errorf(c.Pos, "there exists a circular dependency for %s (the ancestor of %s)", c.Parent, name)
			ok = false
		}
		color[name] = black
		return true
	}

	for _, name := range ct.declOrder {
		visit(name)
	}
	return ok
}

// buildFeatureMaps walks the hierarchy from Object outward (BFS,
// matching the layout planner's traversal order) flattening each
// class's attributes and methods by copying the parent's maps and then
// extending/overriding with the class's own features. Attribute
// redeclaration and method-signature mismatches on override are fatal.
func (ct *ClassTable) buildFeatureMaps() {
	ct.attrsOf = map[symbol.Name][]*ast.Attr{}
	ct.methodsOf = map[symbol.Name]map[symbol.Name]*MethodInfo{}

	children := map[symbol.Name][]symbol.Name{}
	for _, name := range ct.declOrder {
		if name == symbol.Object {
			continue
		}
		c := ct.classes[name]
		children[c.Parent] = append(children[c.Parent], name)
	}

	queue := []symbol.Name{symbol.Object}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		ct.order = append(ct.order, name)
		ct.installFeatures(name)
		queue = append(queue, children[name]...)
	}
}

func (ct *ClassTable) installFeatures(name symbol.Name) {
	c := ct.classes[name]

	var attrs []*ast.Attr
	methods := map[symbol.Name]*MethodInfo{}

	if name != symbol.Object {
		attrs = append(attrs, ct.attrsOf[c.Parent]...)
		for k, v := range ct.methodsOf[c.Parent] {
			methods[k] = v
		}
	}

	seenAttr := map[symbol.Name]*ast.Attr{}
	for _, a := range attrs {
		seenAttr[a.Name] = a
	}

	for _, f := range c.Features {
		switch feat := f.(type) {
		case *ast.Attr:
			if feat.Name == symbol.Self {
				ct.sink.Errorf(feat.Pos, "attribute cannot be named self")
				continue
			}
			if prior, ok := seenAttr[feat.Name]; ok {
				ct.sink.Errorf(feat.Pos, "attribute %s redefines attribute %s:%d", feat.Name, prior.Pos.File, prior.Pos.Line)
				continue
			}
			seenAttr[feat.Name] = feat
			attrs = append(attrs, feat)
		case *ast.Method:
			if prior, ok := methods[feat.Name]; ok && prior.Owner != name {
				ct.checkOverride(name, feat, prior)
			}
			methods[feat.Name] = &MethodInfo{Decl: feat, Owner: name}
		}
	}

	ct.attrsOf[name] = attrs
	ct.methodsOf[name] = methods
}

// checkOverride enforces Cool's override rule: a redefined method must
// take exactly the same number of formals, in the same order, with
// identical declared types, and the same declared return type.
func (ct *ClassTable) checkOverride(class symbol.Name, m *ast.Method, prior *MethodInfo) {
	p := prior.Decl
	if len(m.Formals) != len(p.Formals) {
		ct.sink.Errorf(m.Pos, "in redefined method %s, parameter length %d is different from original length %d", m.Name, len(m.Formals), len(p.Formals))
		return
	}
	for i, f := range m.Formals {
		if f.Decl != p.Formals[i].Decl {
			ct.sink.Errorf(m.Pos, "in redefined method %s, parameter type %s is different from original type %s", m.Name, f.Decl, p.Formals[i].Decl)
		}
	}
	if m.ReturnType != p.ReturnType {
		ct.sink.Errorf(m.Pos, "in redefined method %s, return type %s is different from original return type %s", m.Name, m.ReturnType, p.ReturnType)
	}
}

// ClassExists reports whether name is a known, validated class.
func (ct *ClassTable) ClassExists(name symbol.Name) bool {
	_, ok := ct.classes[name]
	return ok
}

// Class returns the ast.Class for name, or nil.
func (ct *ClassTable) Class(name symbol.Name) *ast.Class { return ct.classes[name] }

// ParentOf returns name's parent class, or NoClass for Object.
func (ct *ClassTable) ParentOf(name symbol.Name) symbol.Name {
	if name == symbol.Object {
		return symbol.NoClass
	}
	if c, ok := ct.classes[name]; ok {
		return c.Parent
	}
	return symbol.NoClass
}

// AttrsOf returns the flattened, ordered attribute list for name
// (inherited attributes first, in ancestor-to-descendant order).
func (ct *ClassTable) AttrsOf(name symbol.Name) []*ast.Attr { return ct.attrsOf[name] }

// MethodOf looks up method on name's flattened method table, returning
// nil if it is not defined by name or any ancestor.
func (ct *ClassTable) MethodOf(name, method symbol.Name) *MethodInfo {
	return ct.methodsOf[name][method]
}

// MethodsOf returns name's full flattened method table.
func (ct *ClassTable) MethodsOf(name symbol.Name) map[symbol.Name]*MethodInfo {
	return ct.methodsOf[name]
}

// Order returns every class name in BFS (ancestor-before-descendant)
// order starting from Object; the layout planner reuses this order
// directly to assign tags.
func (ct *ClassTable) Order() []symbol.Name { return ct.order }

// IsSubtypeOf reports whether a <= b under the current self-type binding
// selfType (the class currently being type-checked, used to resolve any
// SELF_TYPE occurrences in a). SELF_TYPE is subtype-comparable to b only
// through its resolution; nothing but SELF_TYPE is ever a subtype of
// SELF_TYPE itself.
func (ct *ClassTable) IsSubtypeOf(a, b, selfType symbol.Name) bool {
	if b == symbol.SelfType {
		return a == symbol.SelfType
	}
	if a == symbol.SelfType {
		a = selfType
	}
	for cur := a; ; {
		if cur == b {
			return true
		}
		if cur == symbol.Object {
			return false
		}
		cur = ct.ParentOf(cur)
		if cur == symbol.NoClass {
			return false
		}
	}
}

// Lub computes the least upper bound of a and b, resolving any
// SELF_TYPE to selfType first unless a == b == SELF_TYPE, in which case
// the result is SELF_TYPE itself (per the standard Cool typing rules for
// if/case branch joins).
func (ct *ClassTable) Lub(a, b, selfType symbol.Name) symbol.Name {
	if a == symbol.SelfType && b == symbol.SelfType {
		return symbol.SelfType
	}
	if a == symbol.SelfType {
		a = selfType
	}
	if b == symbol.SelfType {
		b = selfType
	}
	if a == b {
		return a
	}

	ancestorsOf := func(n symbol.Name) []symbol.Name {
		var chain []symbol.Name
		for cur := n; ; {
			chain = append(chain, cur)
			if cur == symbol.Object {
				break
			}
			cur = ct.ParentOf(cur)
			if cur == symbol.NoClass {
				break
			}
		}
		return chain
	}

	aChain := ancestorsOf(a)
	bSet := map[symbol.Name]bool{}
	for _, n := range ancestorsOf(b) {
		bSet[n] = true
	}
	for _, n := range aChain {
		if bSet[n] {
			return n
		}
	}
	return symbol.Object
}

func isBasic(name symbol.Name) bool {
	switch name {
	case symbol.Object, symbol.IO, symbol.Int, symbol.Bool, symbol.String:
		return true
	}
	return false
}

// basicClasses constructs the AST for Cool's five built-in classes,
// matching the methods the external Cool runtime implements
// (Object.abort/type_name/copy, IO's four in/out methods, String's
// length/concat/substr). Their method bodies are NoExpr; these classes
// are never type-checked, and the emitter writes no method bodies for
// them.
func basicClasses() []*ast.Class {
	pos := ast.Pos{File: "<basic>"}
	noBody := func() ast.Expr { return ast.NewNoExpr(pos) }
	method := func(name symbol.Name, ret symbol.Name, formals ...*ast.Formal) *ast.Method {
		return &ast.Method{Name: name, Formals: formals, ReturnType: ret, Body: noBody(), Pos: pos}
	}
	formal := func(name, decl symbol.Name) *ast.Formal {
		return &ast.Formal{Name: name, Decl: decl, Pos: pos}
	}

	object := &ast.Class{
		Name: symbol.Object, Parent: symbol.NoClass, Filename: "<basic>", Pos: pos,
		Features: []ast.Feature{
			method(symbol.AbortMeth, symbol.Object),
			method(symbol.TypeName, symbol.String),
			method(symbol.CopyMeth, symbol.SelfType),
		},
	}
	io := &ast.Class{
		Name: symbol.IO, Parent: symbol.Object, Filename: "<basic>", Pos: pos,
		Features: []ast.Feature{
			method(symbol.OutString, symbol.SelfType, formal(symbol.ArgFormal, symbol.String)),
			method(symbol.OutInt, symbol.SelfType, formal(symbol.ArgFormal, symbol.Int)),
			method(symbol.InString, symbol.String),
			method(symbol.InInt, symbol.Int),
		},
	}
	intClass := &ast.Class{
		Name: symbol.Int, Parent: symbol.Object, Filename: "<basic>", Pos: pos,
		Features: []ast.Feature{
			&ast.Attr{Name: symbol.ValAttr, Decl: symbol.PrimSlot, Init: noBody(), Pos: pos},
		},
	}
	boolClass := &ast.Class{
		Name: symbol.Bool, Parent: symbol.Object, Filename: "<basic>", Pos: pos,
		Features: []ast.Feature{
			&ast.Attr{Name: symbol.ValAttr, Decl: symbol.PrimSlot, Init: noBody(), Pos: pos},
		},
	}
	str := &ast.Class{
		Name: symbol.String, Parent: symbol.Object, Filename: "<basic>", Pos: pos,
		Features: []ast.Feature{
			&ast.Attr{Name: symbol.ValAttr, Decl: symbol.Int, Init: noBody(), Pos: pos},
			&ast.Attr{Name: symbol.StrFieldAttr, Decl: symbol.PrimSlot, Init: noBody(), Pos: pos},
			method(symbol.Length, symbol.Int),
			method(symbol.Concat, symbol.String, formal(symbol.ArgFormal, symbol.String)),
			method(symbol.Substr, symbol.String, formal(symbol.ArgFormal, symbol.Int), formal(symbol.Arg2Formal, symbol.Int)),
		},
	}
	return []*ast.Class{object, io, intClass, boolClass, str}
}
