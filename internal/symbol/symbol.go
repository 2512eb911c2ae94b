// Package symbol interns class, feature, and identifier names into stable
// handles, and tracks the integer/string literal pools that the code
// generator turns into the constant sections of the emitted assembly.
package symbol

// Name is an interned handle for a class, method, attribute, or object
// identifier. Two Names compare equal iff the underlying text is
// identical, so Name is safe to use as a map key or in == comparisons
// throughout the rest of the pipeline.
type Name string

// Reserved names, fixed by the Cool language definition and by the
// runtime's basic-class implementation.
const (
	Object   Name = "Object"
	IO       Name = "IO"
	Int      Name = "Int"
	Bool     Name = "Bool"
	String   Name = "String"
	SelfType Name = "SELF_TYPE"
	NoClass  Name = "_no_class"
	NoType   Name = "_no_type"
	PrimSlot Name = "_prim_slot"

	Self Name = "self"
	Main Name = "Main"

	MainMethod Name = "main"
	AbortMeth  Name = "abort"
	TypeName   Name = "type_name"
	CopyMeth   Name = "copy"
	OutString  Name = "out_string"
	OutInt     Name = "out_int"
	InString   Name = "in_string"
	InInt      Name = "in_int"
	Length     Name = "length"
	Concat     Name = "concat"
	Substr     Name = "substr"

	ValAttr      Name = "_val"
	StrFieldAttr Name = "_str_field"
	ArgFormal    Name = "arg"
	Arg2Formal   Name = "arg2"
)

// Table interns integer and string literal text into stable, order-of-
// first-use indices. The index becomes the suffix of the emitted
// constant label (int_const<i>, str_const<i>), so insertion order is
// significant and must not be reshuffled once assigned.
//
// A Table belongs to one code generator run: it is filled by the
// emitter's constant-collection pass and, for string lengths, while the
// constant tables are written. It is not safe for concurrent use.
type Table struct {
	intOrder []string
	intIndex map[string]int

	strOrder []string
	strIndex map[string]int
}

// NewTable returns an empty literal table.
func NewTable() *Table {
	return &Table{
		intIndex: make(map[string]int),
		strIndex: make(map[string]int),
	}
}

// InternInt returns the stable index for the integer literal's decimal
// text, interning it on first use.
func (t *Table) InternInt(text string) int {
	if i, ok := t.intIndex[text]; ok {
		return i
	}
	i := len(t.intOrder)
	t.intOrder = append(t.intOrder, text)
	t.intIndex[text] = i
	return i
}

// InternStr returns the stable index for the string literal's decoded
// text, interning it on first use.
func (t *Table) InternStr(text string) int {
	if i, ok := t.strIndex[text]; ok {
		return i
	}
	i := len(t.strOrder)
	t.strOrder = append(t.strOrder, text)
	t.strIndex[text] = i
	return i
}

// Ints returns the interned integer literals in assignment order.
func (t *Table) Ints() []string { return t.intOrder }

// Strs returns the interned string literals in assignment order.
func (t *Table) Strs() []string { return t.strOrder }

// IntIndex returns the index a literal was assigned, and whether it was
// interned at all.
func (t *Table) IntIndex(text string) (int, bool) { i, ok := t.intIndex[text]; return i, ok }

// StrIndex returns the index a literal was assigned, and whether it was
// interned at all.
func (t *Table) StrIndex(text string) (int, bool) { i, ok := t.strIndex[text]; return i, ok }
