package codegen_test

import (
	"testing"

	"github.com/sunholo/coolc/testutil"
)

// TestGoldenPipeline runs a full source.cl -> assembly.s pipeline and
// compares it byte-for-byte against a checked-in golden file, exercising
// the deterministic-emission property: the same source always produces
// the same class tags, BFS-ordered sections, and constant-pool indices.
func TestGoldenPipeline(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Object { 0 };
		};
	`)
	testutil.CompareWithGolden(t, "codegen", "main_returns_zero", asm)
}
