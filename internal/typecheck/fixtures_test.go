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
	"github.com/sunholo/coolc/internal/typecheck"
	"github.com/sunholo/coolc/testutil"
)

// TestFixtures drives classtable+typecheck over the YAML-described cases
// in testdata/fixtures.yaml, so new cases can be added without touching
// Go source.
func TestFixtures(t *testing.T) {
	set, err := testutil.LoadFixtures("testdata/fixtures.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, set.Fixtures)

	for _, fx := range set.Fixtures {
		fx := fx
		t.Run(fx.Name, func(t *testing.T) {
			var diagBuf bytes.Buffer
			sink := diag.NewSink(&diagBuf)

			prog := parser.Parse("fixture.cl", []byte(fx.Source), sink)
			if fx.WantErrors && fx.Phase == "parser" {
				assert.True(t, sink.HasErrors(), diagBuf.String())
				return
			}
			require.False(t, sink.HasErrors(), diagBuf.String())

			ct := classtable.Build(prog, sink)
			ok := ct.Validate()
			if fx.WantErrors && fx.Phase == "classtable" {
				assert.False(t, ok, diagBuf.String())
				assert.True(t, sink.HasErrors())
				return
			}
			require.True(t, ok, diagBuf.String())

			typecheck.Check(ct, prog, sink)
			if fx.WantErrors && fx.Phase == "typecheck" {
				assert.True(t, sink.HasErrors(), diagBuf.String())
				return
			}
			require.False(t, sink.HasErrors(), diagBuf.String())

			if fx.WantType != "" {
				body := mainBody(prog)
				require.NotNil(t, body)
				assert.Equal(t, fx.WantType, string(body.Type()))
			}
		})
	}
}

func mainBody(prog *ast.Program) ast.Expr {
	for _, c := range prog.Classes {
		if c.Name != "Main" {
			continue
		}
		for _, f := range c.Features {
			if m, ok := f.(*ast.Method); ok && m.Name == "main" {
				return m.Body
			}
		}
	}
	return nil
}
