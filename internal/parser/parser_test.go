package parser_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/symbol"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	prog := parser.Parse("test.cl", []byte(src), sink)
	if sink.HasErrors() {
		t.Logf("diagnostics:\n%s", buf.String())
	}
	return prog, sink
}

func TestParseMinimalClass(t *testing.T) {
	prog, sink := parse(t, `class Main { main(): Object { 0 }; };`)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Classes, 1)
	c := prog.Classes[0]
	assert.Equal(t, symbol.Name("Main"), c.Name)
	assert.Equal(t, symbol.Object, c.Parent)
	require.Len(t, c.Features, 1)
	m, ok := c.Features[0].(*ast.Method)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("main"), m.Name)
	assert.Equal(t, symbol.Object, m.ReturnType)
	_, isInt := m.Body.(*ast.IntConst)
	assert.True(t, isInt)
}

func TestParseInheritsAndAttr(t *testing.T) {
	prog, sink := parse(t, `
		class A inherits IO {
			x : Int <- 1;
			y : Int;
		};
	`)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Classes, 1)
	c := prog.Classes[0]
	assert.Equal(t, symbol.IO, c.Parent)
	require.Len(t, c.Features, 2)
	x := c.Features[0].(*ast.Attr)
	assert.Equal(t, symbol.Name("x"), x.Name)
	assert.IsType(t, &ast.IntConst{}, x.Init)
	y := c.Features[1].(*ast.Attr)
	assert.IsType(t, &ast.NoExpr{}, y.Init)
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog, sink := parse(t, `
		class A {
			f(): Int { 1 + 2 * 3 };
		};
	`)
	require.False(t, sink.HasErrors())
	m := prog.Classes[0].Features[0].(*ast.Method)
	plus, ok := m.Body.(*ast.Plus)
	require.True(t, ok)
	assert.IsType(t, &ast.IntConst{}, plus.E1)
	assert.IsType(t, &ast.Mul{}, plus.E2)
}

func TestParseAssignRightAssociative(t *testing.T) {
	prog, sink := parse(t, `
		class A {
			f(): Object {
				x <- y <- 1
			};
		};
	`)
	require.False(t, sink.HasErrors())
	m := prog.Classes[0].Features[0].(*ast.Method)
	outer, ok := m.Body.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("x"), outer.Name)
	inner, ok := outer.Expr.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("y"), inner.Name)
}

func TestParseDispatchAndStaticDispatch(t *testing.T) {
	prog, sink := parse(t, `
		class A {
			f(): Object {
				self.g()
			};
			h(): Object {
				(new A)@A.g()
			};
		};
	`)
	require.False(t, sink.HasErrors())
	f := prog.Classes[0].Features[0].(*ast.Method)
	disp, ok := f.Body.(*ast.Dispatch)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("g"), disp.Method)

	h := prog.Classes[0].Features[1].(*ast.Method)
	sdisp, ok := h.Body.(*ast.StaticDispatch)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("A"), sdisp.StaticType)
}

func TestParseMultiLetDesugars(t *testing.T) {
	prog, sink := parse(t, `
		class A {
			f(): Int {
				let x: Int <- 1, y: Int <- 2 in x + y
			};
		};
	`)
	require.False(t, sink.HasErrors())
	m := prog.Classes[0].Features[0].(*ast.Method)
	outer, ok := m.Body.(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("x"), outer.Name)
	inner, ok := outer.Body.(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, symbol.Name("y"), inner.Name)
	assert.IsType(t, &ast.Plus{}, inner.Body)
}

func TestParseCase(t *testing.T) {
	prog, sink := parse(t, `
		class A {
			f(x: Object): Object {
				case x of
					i : Int => i;
					s : String => s;
				esac
			};
		};
	`)
	require.False(t, sink.HasErrors())
	m := prog.Classes[0].Features[0].(*ast.Method)
	c, ok := m.Body.(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Branches, 2)
	assert.Equal(t, symbol.Int, c.Branches[0].Decl)
	assert.Equal(t, symbol.String, c.Branches[1].Decl)
}

func TestParseSyntaxErrorReported(t *testing.T) {
	_, sink := parse(t, `class { };`)
	assert.True(t, sink.HasErrors())
}
