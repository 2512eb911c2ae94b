package typecheck_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/symbol"
	"github.com/sunholo/coolc/internal/typecheck"
)

func checkSrc(t *testing.T, src string) (*ast.Program, *classtable.ClassTable, *diag.Sink, string) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	prog := parser.Parse("test.cl", []byte(src), sink)
	ct := classtable.Build(prog, sink)
	require.True(t, ct.Validate(), buf.String())
	typecheck.Check(ct, prog, sink)
	return prog, ct, sink, buf.String()
}

func mainMethodBody(prog *ast.Program) ast.Expr {
	for _, c := range prog.Classes {
		if c.Name != symbol.Main {
			continue
		}
		for _, f := range c.Features {
			if m, ok := f.(*ast.Method); ok && m.Name == symbol.MainMethod {
				return m.Body
			}
		}
	}
	return nil
}

func TestArithmeticIsInt(t *testing.T) {
	prog, _, sink, out := checkSrc(t, `
		class Main { main(): Int { 1 + 2 * 3 }; };
	`)
	require.False(t, sink.HasErrors(), out)
	body := mainMethodBody(prog)
	assert.Equal(t, symbol.Int, body.Type())
}

func TestArithmeticOnNonIntIsError(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class Main { main(): Int { 1 + "s" }; };
	`)
	assert.True(t, sink.HasErrors())
}

func TestIfBranchesLub(t *testing.T) {
	prog, sink, s, out := func() (*ast.Program, *diag.Sink, *diag.Sink, string) {
		p, _, sk, o := checkSrc(t, `
			class A { };
			class B inherits A { };
			class C inherits A { };
			class Main {
				main(): A {
					if true then (new B) else (new C) fi
				};
			};
		`)
		return p, sk, sk, o
	}()
	_ = sink
	require.False(t, s.HasErrors(), out)
	body := mainMethodBody(prog)
	assert.Equal(t, symbol.Name("A"), body.Type())
}

func TestDispatchOnUndefinedMethodIsError(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class Main {
			main(): Object { self.nope() };
		};
	`)
	assert.True(t, sink.HasErrors())
}

func TestSelfTypeReturnPropagatesReceiver(t *testing.T) {
	prog, _, sink, out := checkSrc(t, `
		class A {
			make(): SELF_TYPE { self };
		};
		class B inherits A { };
		class Main {
			main(): B { (new B).make() };
		};
	`)
	require.False(t, sink.HasErrors(), out)
	body := mainMethodBody(prog)
	assert.Equal(t, symbol.Name("B"), body.Type())
}

func TestAssignToSelfIsError(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class Main {
			main(): Object { self <- self };
		};
	`)
	assert.True(t, sink.HasErrors())
}

func TestEqBetweenBasicAndNonBasicIsError(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class A { };
		class Main {
			main(): Bool { (new A) = 1 };
		};
	`)
	assert.True(t, sink.HasErrors())
}

func TestEqBetweenTwoNonBasicIsFine(t *testing.T) {
	_, _, sink, out := checkSrc(t, `
		class A { };
		class B { };
		class Main {
			main(): Bool { (new A) = (new B) };
		};
	`)
	assert.False(t, sink.HasErrors(), out)
}

func TestLetIntroducesBinding(t *testing.T) {
	prog, _, sink, out := checkSrc(t, `
		class Main {
			main(): Int { let x: Int <- 5 in x + 1 };
		};
	`)
	require.False(t, sink.HasErrors(), out)
	body := mainMethodBody(prog)
	assert.Equal(t, symbol.Int, body.Type())
}

func TestCaseDistinctBranchTypesRequired(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class Main {
			main(): Object {
				case 1 of
					x: Int => x;
					y: Int => y;
				esac
			};
		};
	`)
	assert.True(t, sink.HasErrors())
}

func TestAttributeInitMustConform(t *testing.T) {
	_, _, sink, _ := checkSrc(t, `
		class Main {
			x: Int <- "not an int";
			main(): Object { 0 };
		};
	`)
	assert.True(t, sink.HasErrors())
}

func TestMethodOverrideWithWideningReturnIsStillError(t *testing.T) {
	// Cool requires exact, not covariant, return-type match on override;
	// classtable.Validate should already have caught this before
	// typecheck runs, so this program never reaches Check.
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	prog := parser.Parse("test.cl", []byte(`
		class A { f(): Object { self }; };
		class B inherits A { f(): B { new B }; };
		class Main { main(): Object { 0 }; };
	`), sink)
	ct := classtable.Build(prog, sink)
	assert.False(t, ct.Validate())
}
