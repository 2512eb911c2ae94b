package codegen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/codegen"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/layout"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/typecheck"
)

// compile runs the full C2->C5 pipeline over src and returns the
// emitted assembly text. It fails the test outright on any parse,
// classtable, or typecheck error, since codegen assumes a validated
// program.
func compile(t *testing.T, src string) string {
	t.Helper()
	var diagBuf bytes.Buffer
	sink := diag.NewSink(&diagBuf)

	prog := parser.Parse("test.cl", []byte(src), sink)
	require.False(t, sink.HasErrors(), diagBuf.String())

	ct := classtable.Build(prog, sink)
	require.True(t, ct.Validate(), diagBuf.String())

	typecheck.Check(ct, prog, sink)
	require.False(t, sink.HasErrors(), diagBuf.String())

	lay := layout.Build(ct)

	var out bytes.Buffer
	codegen.Emit(&out, ct, lay, prog)
	return out.String()
}

func TestEmitsDataSegmentHeader(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Object { 0 };
		};
	`)
	assert.Contains(t, asm, "\t.data")
	assert.Contains(t, asm, "class_nameTab:")
	assert.Contains(t, asm, "class_objTab:")
}

func TestProtObjsInBFSOrder(t *testing.T) {
	asm := compile(t, `
		class A { f(): Int { 1 }; };
		class B inherits A { };
		class Main inherits B {
			main(): Object { 0 };
		};
	`)
	idxObj := strings.Index(asm, "Object_protObj:")
	idxA := strings.Index(asm, "A_protObj:")
	idxB := strings.Index(asm, "B_protObj:")
	idxMain := strings.Index(asm, "Main_protObj:")
	require.True(t, idxObj >= 0 && idxA >= 0 && idxB >= 0 && idxMain >= 0, asm)
	assert.Less(t, idxObj, idxA)
	assert.Less(t, idxA, idxB)
	assert.Less(t, idxB, idxMain)
}

func TestDispTabIncludesInheritedAndOverriddenMethods(t *testing.T) {
	asm := compile(t, `
		class A {
			f(): Int { 1 };
			g(): Int { 2 };
		};
		class B inherits A {
			g(): Int { 3 };
		};
		class Main inherits B {
			main(): Object { 0 };
		};
	`)
	i := strings.Index(asm, "B_dispTab:")
	require.GreaterOrEqual(t, i, 0, asm)
	section := asm[i:]
	end := strings.Index(section[len("B_dispTab:"):], "_dispTab:")
	if end > 0 {
		section = section[:len("B_dispTab:")+end]
	}
	assert.Contains(t, section, "A.f")
	assert.Contains(t, section, "B.g")
	assert.NotContains(t, section, "A.g")
}

func TestProtObjSizeMatchesAttrCount(t *testing.T) {
	asm := compile(t, `
		class A {
			x: Int;
			y: Int;
			f(): Int { 1 };
		};
		class Main inherits A {
			main(): Object { 0 };
		};
	`)
	i := strings.Index(asm, "A_protObj:")
	require.GreaterOrEqual(t, i, 0, asm)
	section := asm[i:]
	assert.Contains(t, section, "\t.word\t5")
}

func TestMainMethodEmitsPrologueAndEpilogue(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Int { 1 + 2 };
		};
	`)
	assert.Contains(t, asm, "Main.main:")
	i := strings.Index(asm, "Main.main:")
	body := asm[i:]
	assert.Contains(t, body, "addiu\t$sp $sp -12")
	assert.Contains(t, body, "move\t$s0 $a0")
	assert.Contains(t, body, "jr\t$ra")
}

func TestArithmeticEmitsOperator(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Int { 3 * 4 };
		};
	`)
	assert.Contains(t, asm, "\tmul\t$t1 $t1 $t2")
}

func TestIfEmitsBranchLabels(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Int { if true then 1 else 2 fi };
		};
	`)
	assert.Contains(t, asm, "if_false")
	assert.Contains(t, asm, "if_done")
}

func TestWhileEmitsLoopLabels(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Object {
				while false loop 0 pool
			};
		};
	`)
	assert.Contains(t, asm, "while_begin")
	assert.Contains(t, asm, "while_end")
}

func TestLetAllocatesStackSlot(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Int {
				let x: Int <- 5 in x + 1
			};
		};
	`)
	assert.Contains(t, asm, "\taddiu\t$sp $sp -4")
}

func TestCaseEmitsBranchPerArm(t *testing.T) {
	asm := compile(t, `
		class A { };
		class B inherits A { };
		class Main inherits A {
			main(): Object {
				case (new B) of
					x: B => 1;
					y: A => 2;
				esac
			};
		};
	`)
	assert.Contains(t, asm, "_case_abort")
	assert.Contains(t, asm, "case_branch")
}

func TestDispatchLoadsDispatchTableAtFixedOffset(t *testing.T) {
	asm := compile(t, `
		class A {
			f(): Int { 1 };
		};
		class Main inherits A {
			main(): Int { self.f() };
		};
	`)
	assert.Contains(t, asm, "\tlw\t$t1 8($a0)")
	assert.Contains(t, asm, "_dispatch_abort")
}

func TestNewSelfTypeIndexesClassObjTab(t *testing.T) {
	asm := compile(t, `
		class A {
			make(): SELF_TYPE { new SELF_TYPE };
		};
		class Main inherits A {
			main(): Object { self.make() };
		};
	`)
	assert.Contains(t, asm, "class_objTab")
	assert.Contains(t, asm, "\tsll\t$t1 $t1 3")
}

func TestInitsEmittedForBasicAndUserClasses(t *testing.T) {
	asm := compile(t, `
		class Main {
			main(): Object { 0 };
		};
	`)
	for _, label := range []string{"Object_init:", "Int_init:", "Bool_init:", "String_init:", "IO_init:", "Main_init:"} {
		assert.Contains(t, asm, label)
	}
}

func TestAttrInitCanReferenceEarlierAttr(t *testing.T) {
	asm := compile(t, `
		class Main {
			x: Int <- 5;
			y: Int <- x;
			main(): Object { 0 };
		};
	`)
	i := strings.Index(asm, "Main_init:")
	require.GreaterOrEqual(t, i, 0, asm)
	body := asm[i:]
	end := strings.Index(body[len("Main_init:"):], "_init:")
	if end > 0 {
		body = body[:len("Main_init:")+end]
	}
	assert.Contains(t, body, "\tlw\t$a0 12($s0)")
	assert.NotContains(t, body, "move\t$a0 $zero")
}

func TestMethodEpilogueAccountsForFormalCount(t *testing.T) {
	asm := compile(t, `
		class A {
			f(a: Int, b: Int): Int { a + b };
		};
		class Main inherits A {
			main(): Int { self.f(1, 2) };
		};
	`)
	i := strings.Index(asm, "A.f:")
	require.GreaterOrEqual(t, i, 0, asm)
	body := asm[i:]
	assert.Contains(t, body, "addiu\t$sp $sp 20")
}
