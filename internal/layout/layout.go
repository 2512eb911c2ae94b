// Package layout computes the per-class object shape and dispatch
// table that the code generator needs: class tags, prototype object
// sizes, attribute slot offsets, and method dispatch-vector indices,
// all derived by a single BFS pass from Object down through the
// inheritance tree (the same order the emitter later uses to lay out
// class_nameTab/class_objTab/dispTab/protObj).
package layout

import (
	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/symbol"
)

// Layout is the complete, immutable output of one layout pass.
type Layout struct {
	Order []symbol.Name // BFS order, Object first

	tag           map[symbol.Name]int
	size          map[symbol.Name]int
	attrOffset    map[symbol.Name]map[symbol.Name]int
	dispIndex     map[symbol.Name]map[symbol.Name]int
	ownerOfMethod map[symbol.Name]map[symbol.Name]symbol.Name
	methodOrder   map[symbol.Name][]symbol.Name
}

// Build walks ct (which must already be validated) from Object outward,
// assigning tags sequentially from 5 for non-builtin classes and
// computing every class's flattened slot/dispatch layout.
func Build(ct *classtable.ClassTable) *Layout {
	l := &Layout{
		tag:           map[symbol.Name]int{},
		size:          map[symbol.Name]int{},
		attrOffset:    map[symbol.Name]map[symbol.Name]int{},
		dispIndex:     map[symbol.Name]map[symbol.Name]int{},
		ownerOfMethod: map[symbol.Name]map[symbol.Name]symbol.Name{},
		methodOrder:   map[symbol.Name][]symbol.Name{},
	}

	nextTag := 5
	l.Order = ct.Order()

	for _, name := range l.Order {
		attrs := ct.AttrsOf(name)
		l.size[name] = 3 + len(attrs)

		offsets := make(map[symbol.Name]int, len(attrs))
		for i, a := range attrs {
			offsets[a.Name] = 3 + i
		}
		l.attrOffset[name] = offsets

		if t, ok := builtinTag(name); ok {
			l.tag[name] = t
		} else {
			l.tag[name] = nextTag
			nextTag++
		}

		l.installMethods(ct, name)
	}

	return l
}

func (l *Layout) installMethods(ct *classtable.ClassTable, name symbol.Name) {
	parent := ct.ParentOf(name)

	var order []symbol.Name
	owner := map[symbol.Name]symbol.Name{}
	seen := map[symbol.Name]bool{}

	if parent != symbol.NoClass {
		order = append(order, l.methodOrder[parent]...)
		for k, v := range l.ownerOfMethod[parent] {
			owner[k] = v
		}
		for _, n := range order {
			seen[n] = true
		}
	}

	for _, f := range ct.Class(name).Features {
		m, ok := f.(*ast.Method)
		if !ok {
			continue
		}
		if seen[m.Name] {
			owner[m.Name] = name // override: index unchanged, ownership moves here
			continue
		}
		order = append(order, m.Name)
		seen[m.Name] = true
		owner[m.Name] = name
	}

	l.methodOrder[name] = order
	l.ownerOfMethod[name] = owner

	idx := make(map[symbol.Name]int, len(order))
	for i, n := range order {
		idx[n] = i
	}
	l.dispIndex[name] = idx
}

// Tag returns a class's runtime tag (0-4 for the five built-ins, 5+ for
// user classes in BFS-discovery order).
func (l *Layout) Tag(name symbol.Name) int { return l.tag[name] }

// Size returns 3 (header words) plus the class's flattened attribute count.
func (l *Layout) Size(name symbol.Name) int { return l.size[name] }

// AttrOffset returns the word offset (from the object's base pointer)
// of attribute attr on class name.
func (l *Layout) AttrOffset(name, attr symbol.Name) int { return l.attrOffset[name][attr] }

// DispIndex returns the dispatch-vector slot of method on class name.
func (l *Layout) DispIndex(name, method symbol.Name) int { return l.dispIndex[name][method] }

// OwnerOfMethod returns the most-derived class (along name's ancestor
// chain) that supplies method's implementation.
func (l *Layout) OwnerOfMethod(name, method symbol.Name) symbol.Name {
	return l.ownerOfMethod[name][method]
}

// MethodOrder returns the dispatch-table entry order for name: one
// entry per method, in the order the corresponding <owner>.<name>
// labels must appear when emitting <name>_dispTab.
func (l *Layout) MethodOrder(name symbol.Name) []symbol.Name { return l.methodOrder[name] }

func builtinTag(name symbol.Name) (int, bool) {
	switch name {
	case symbol.Object:
		return 0, true
	case symbol.IO:
		return 1, true
	case symbol.Int:
		return 2, true
	case symbol.Bool:
		return 3, true
	case symbol.String:
		return 4, true
	}
	return 0, false
}
