package codegen

import "github.com/sunholo/coolc/internal/symbol"

// emitDataHeader writes the .data segment preamble: alignment,
// forward-referenced globals, and the tag/GC-selector words every Cool
// runtime expects ahead of the constant tables.
func (e *Emitter) emitDataHeader() {
	e.emit("\t.data")
	e.emit("\t.align\t2")
	e.emit("\t.globl\tclass_nameTab")
	e.emit("\t.globl\t%s_protObj", symbol.Main)
	e.emit("\t.globl\tInt_protObj")
	e.emit("\t.globl\tString_protObj")
	e.emit("\t.globl\tbool_const0")
	e.emit("\t.globl\tbool_const1")
	e.emit("\t.globl\t_int_tag")
	e.emit("\t.globl\t_bool_tag")
	e.emit("\t.globl\t_string_tag")
	e.label("_int_tag")
	e.emit("\t.word\t2")
	e.label("_bool_tag")
	e.emit("\t.word\t3")
	e.label("_string_tag")
	e.emit("\t.word\t4")

	e.label("_MemMgr_INITIALIZER")
	e.emit("\t.word\t_NoGC_Init")
	e.label("_MemMgr_COLLECTOR")
	e.emit("\t.word\t_NoGC_Collect")
	e.label("_MemMgr_TEST")
	e.emit("\t.word\t0")
}

// emitConstants writes the string, int, and bool constant tables in the
// interning order collectConstants established. Every string literal's
// byte length is itself folded into the int table so the String
// header's length slot can point at an interned Int object, matching
// how the runtime represents String.length's result.
func (e *Emitter) emitConstants() {
	for i, text := range e.syms.Strs() {
		lenLabel := e.intLabelForLen(len(text))
		e.emit("\t.word\t-1")
		e.label(strLabel(i))
		e.emit("\t.word\t%d", e.lay.Tag(symbol.String))
		e.emit("\t.word\t%d", 4+wordsForString(text))
		e.emit("\t.word\tString_dispTab")
		e.emit("\t.word\t%s", lenLabel)
		e.emit("\t.asciiz\t%s", quoteAscii(text))
		e.emit("\t.align\t2")
	}

	for i, text := range e.syms.Ints() {
		e.emit("\t.word\t-1")
		e.label(intLabel(i))
		e.emit("\t.word\t%d", e.lay.Tag(symbol.Int))
		e.emit("\t.word\t4")
		e.emit("\t.word\tInt_dispTab")
		e.emit("\t.word\t%s", text)
	}

	e.emit("\t.word\t-1")
	e.label("bool_const0")
	e.emit("\t.word\t%d", e.lay.Tag(symbol.Bool))
	e.emit("\t.word\t4")
	e.emit("\t.word\tBool_dispTab")
	e.emit("\t.word\t0")

	e.emit("\t.word\t-1")
	e.label("bool_const1")
	e.emit("\t.word\t%d", e.lay.Tag(symbol.Bool))
	e.emit("\t.word\t4")
	e.emit("\t.word\tBool_dispTab")
	e.emit("\t.word\t1")
}

// intLabelForLen ensures n (a string literal's byte length) is itself
// present as an interned Int constant and returns that constant's
// label; collectConstants did not know string lengths in advance, so
// this interns lazily, during emission, before the label is printed.
func (e *Emitter) intLabelForLen(n int) string {
	text := decimal(n)
	idx, ok := e.syms.IntIndex(text)
	if !ok {
		idx = e.syms.InternInt(text)
	}
	return intLabel(idx)
}

func decimal(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// wordsForString returns the number of words the string's raw bytes
// occupy once null-terminated and word-aligned.
func wordsForString(s string) int {
	n := len(s) + 1
	return (n + 3) / 4
}

// quoteAscii renders s as a double-quoted SPIM .asciiz operand,
// escaping backslashes, quotes, and control characters Cool string
// literals may legally contain.
func quoteAscii(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}

// emitClassNameTab writes one word per class, in BFS order, pointing
// at the interned string constant for that class's name.
func (e *Emitter) emitClassNameTab() {
	e.label("class_nameTab")
	for _, name := range e.lay.Order {
		e.emit("\t.word\t%s", e.classNameLabel(name))
	}
}

// emitClassObjTab writes, per class in BFS order, the prototype object
// pointer followed by the init-method pointer — the pair New's
// SELF_TYPE form indexes into by runtime tag.
func (e *Emitter) emitClassObjTab() {
	e.label("class_objTab")
	for _, name := range e.lay.Order {
		e.emit("\t.word\t%s_protObj", name)
		e.emit("\t.word\t%s_init", name)
	}
}

// emitDispTabs writes one dispatch table per class, each a sequence of
// <owner>.<method> labels matching layout.MethodOrder(name) exactly so
// the disp_index computed by C4 lines up with the slot the emitter
// reads at dispatch sites.
func (e *Emitter) emitDispTabs() {
	for _, name := range e.lay.Order {
		e.label(classLabel(name) + "_dispTab")
		for _, m := range e.lay.MethodOrder(name) {
			owner := e.lay.OwnerOfMethod(name, m)
			e.emit("\t.word\t%s.%s", owner, m)
		}
	}
}

// emitProtObjs writes each class's prototype object: the GC
// eye-catcher, tag, size, dispatch-table pointer, then one default
// value per flattened attribute.
func (e *Emitter) emitProtObjs() {
	for _, name := range e.lay.Order {
		e.emit("\t.word\t-1")
		e.label(classLabel(name) + "_protObj")
		e.emit("\t.word\t%d", e.lay.Tag(name))
		e.emit("\t.word\t%d", e.lay.Size(name))
		e.emit("\t.word\t%s_dispTab", name)
		for _, a := range e.ct.AttrsOf(name) {
			e.emit("\t.word\t%s", e.attrDefault(a.Decl))
		}
	}
}

// attrDefault returns the label (or literal 0) for an attribute's
// default value in a fresh prototype object, per its declared type.
func (e *Emitter) attrDefault(decl symbol.Name) string {
	switch decl {
	case symbol.Int:
		return e.zeroIntLabel()
	case symbol.String:
		return e.emptyStrLabel()
	case symbol.Bool:
		return "bool_const0"
	default:
		return "0"
	}
}

func classLabel(name symbol.Name) string { return string(name) }
