package classtable_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/symbol"
)

func build(t *testing.T, src string) (*classtable.ClassTable, *diag.Sink, string) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	prog := parser.Parse("test.cl", []byte(src), sink)
	ct := classtable.Build(prog, sink)
	return ct, sink, buf.String()
}

func TestValidMainProgram(t *testing.T) {
	ct, sink, out := build(t, `
		class Main {
			main(): Object { 0 };
		};
	`)
	ok := ct.Validate()
	assert.True(t, ok, out)
	assert.False(t, sink.HasErrors())
}

func TestMissingMainIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class A { f(): Int { 1 }; };
	`)
	ok := ct.Validate()
	assert.False(t, ok)
	assert.True(t, sink.HasErrors())
}

func TestUndefinedParentIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class Main inherits Ghost { main(): Object { 0 }; };
	`)
	ok := ct.Validate()
	assert.False(t, ok)
	assert.True(t, sink.HasErrors())
}

func TestInheritanceCycleIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class A inherits B { };
		class B inherits A { };
		class Main { main(): Object { 0 }; };
	`)
	ok := ct.Validate()
	assert.False(t, ok)
	assert.True(t, sink.HasErrors())
}

func TestAttributeRedefinitionIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class A {
			x: Int;
		};
		class B inherits A {
			x: Int;
		};
		class Main { main(): Object { 0 }; };
	`)
	ct.Validate()
	assert.True(t, sink.HasErrors())
}

func TestMethodOverrideSignatureMismatchIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class A {
			f(x: Int): Int { x };
		};
		class B inherits A {
			f(x: String): Int { 0 };
		};
		class Main { main(): Object { 0 }; };
	`)
	ct.Validate()
	assert.True(t, sink.HasErrors())
}

func TestFlattenedAttrsInheritOrder(t *testing.T) {
	ct, sink, out := build(t, `
		class A { x: Int; };
		class B inherits A { y: Int; };
		class Main { main(): Object { 0 }; };
	`)
	require.True(t, ct.Validate(), out)
	require.False(t, sink.HasErrors())
	attrs := ct.AttrsOf("B")
	require.Len(t, attrs, 2)
	assert.Equal(t, symbol.Name("x"), attrs[0].Name)
	assert.Equal(t, symbol.Name("y"), attrs[1].Name)
}

func TestIsSubtypeOfBasics(t *testing.T) {
	ct, _, _ := build(t, `class Main { main(): Object { 0 }; };`)
	require.True(t, ct.Validate())
	assert.True(t, ct.IsSubtypeOf(symbol.Int, symbol.Object, symbol.Main))
	assert.False(t, ct.IsSubtypeOf(symbol.Object, symbol.Int, symbol.Main))
	assert.True(t, ct.IsSubtypeOf(symbol.Int, symbol.Int, symbol.Main))
}

func TestSelfTypeSubtyping(t *testing.T) {
	ct, _, _ := build(t, `class Main { main(): Object { 0 }; };`)
	require.True(t, ct.Validate())
	assert.True(t, ct.IsSubtypeOf(symbol.SelfType, symbol.Object, symbol.Main))
	assert.True(t, ct.IsSubtypeOf(symbol.SelfType, symbol.SelfType, symbol.Main))
	assert.False(t, ct.IsSubtypeOf(symbol.Object, symbol.SelfType, symbol.Main))
}

func TestLubFindsCommonAncestor(t *testing.T) {
	ct, sink, out := build(t, `
		class A { };
		class B inherits A { };
		class C inherits A { };
		class Main { main(): Object { 0 }; };
	`)
	require.True(t, ct.Validate(), out)
	require.False(t, sink.HasErrors())
	assert.Equal(t, symbol.Name("A"), ct.Lub("B", "C", symbol.Main))
	assert.Equal(t, symbol.Int, ct.Lub(symbol.Int, symbol.Int, symbol.Main))
}

func TestLubOfSelfTypeBothSides(t *testing.T) {
	ct, _, _ := build(t, `class Main { main(): Object { 0 }; };`)
	require.True(t, ct.Validate())
	assert.Equal(t, symbol.SelfType, ct.Lub(symbol.SelfType, symbol.SelfType, symbol.Main))
}

func TestMainMethodWrongArityIsError(t *testing.T) {
	ct, sink, _ := build(t, `
		class Main { main(x: Int): Object { 0 }; };
	`)
	ct.Validate()
	assert.True(t, sink.HasErrors())
}
