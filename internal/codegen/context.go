package codegen

import "github.com/sunholo/coolc/internal/symbol"

// Base identifies which register a Location's offset is relative to.
type Base int

const (
	BaseSelf Base = iota
	BaseFP
	BaseSP
)

func (b Base) reg() string {
	switch b {
	case BaseSelf:
		return "$s0"
	case BaseFP:
		return "$fp"
	default:
		return "$sp"
	}
}

// Location is a compile-time address: a word offset from one of
// SELF/FP/SP. SP-relative offsets are stored as their allocation index
// and resolved against the live var_count at emission time, since the
// stack keeps growing as more lets/case-branches/temporaries push.
type Location struct {
	Offset int
	Base   Base
}

// Env is a parent-linked scope mapping identifiers to their Location,
// mirroring internal/typecheck.Env's shape but for codegen addresses.
type Env struct {
	parent *Env
	vars   map[symbol.Name]Location
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[symbol.Name]Location{}}
}

func (e *Env) Define(name symbol.Name, loc Location) { e.vars[name] = loc }

func (e *Env) Lookup(name symbol.Name) (Location, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if l, ok := cur.vars[name]; ok {
			return l, true
		}
	}
	return Location{}, false
}

// Context is the per-method/per-init codegen state: the environment,
// the class whose body is being emitted, and the live SP-relative
// binding counter used to recompute stack offsets as the frame grows.
type Context struct {
	SelfClass symbol.Name
	Env       *Env
	VarCount  int
}

// effectiveOffset resolves loc to the word offset SPIM should use right
// now: SP-relative locations are stored as an allocation index and
// must be translated through the live var_count, since every
// subsequent push moves the frame further from that binding.
func (c *Context) effectiveOffset(loc Location) int {
	if loc.Base == BaseSP {
		return c.VarCount - loc.Offset
	}
	return loc.Offset
}
