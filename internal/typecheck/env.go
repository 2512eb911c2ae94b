package typecheck

import "github.com/sunholo/coolc/internal/symbol"

// Env is a parent-linked scope mapping identifiers to their declared
// static type. New scopes are pushed for method bodies, let bindings,
// and case branches; lookups walk outward to the enclosing scope.
type Env struct {
	parent *Env
	vars   map[symbol.Name]symbol.Name
}

// NewEnv returns a fresh scope chained to parent (nil for a root scope).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[symbol.Name]symbol.Name{}}
}

// Define binds name to typ in this scope, shadowing any outer binding.
func (e *Env) Define(name, typ symbol.Name) {
	e.vars[name] = typ
}

// Lookup searches this scope and its ancestors for name.
func (e *Env) Lookup(name symbol.Name) (symbol.Name, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return "", false
}
