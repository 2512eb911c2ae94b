package layout_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/coolc/internal/classtable"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/layout"
	"github.com/sunholo/coolc/internal/parser"
	"github.com/sunholo/coolc/internal/symbol"
)

func buildLayout(t *testing.T, src string) (*classtable.ClassTable, *layout.Layout) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	prog := parser.Parse("test.cl", []byte(src), sink)
	ct := classtable.Build(prog, sink)
	require.True(t, ct.Validate(), buf.String())
	return ct, layout.Build(ct)
}

func TestBuiltinTags(t *testing.T) {
	_, l := buildLayout(t, `class Main { main(): Object { 0 }; };`)
	assert.Equal(t, 0, l.Tag(symbol.Object))
	assert.Equal(t, 1, l.Tag(symbol.IO))
	assert.Equal(t, 2, l.Tag(symbol.Int))
	assert.Equal(t, 3, l.Tag(symbol.Bool))
	assert.Equal(t, 4, l.Tag(symbol.String))
}

func TestUserTagsSequentialFrom5(t *testing.T) {
	_, l := buildLayout(t, `
		class A { };
		class B { };
		class Main { main(): Object { 0 }; };
	`)
	tags := map[int]bool{l.Tag("A"): true, l.Tag("B"): true, l.Tag(symbol.Main): true}
	for _, tg := range []int{l.Tag("A"), l.Tag("B"), l.Tag(symbol.Main)} {
		assert.GreaterOrEqual(t, tg, 5)
	}
	assert.Len(t, tags, 3) // all distinct
}

func TestSizeMatchesAttrCount(t *testing.T) {
	ct, l := buildLayout(t, `
		class A { x: Int; y: Int; };
		class Main { main(): Object { 0 }; };
	`)
	assert.Equal(t, 3+len(ct.AttrsOf("A")), l.Size("A"))
	assert.Equal(t, 5, l.Size("A"))
}

func TestAttrOffsetInheritedPrefix(t *testing.T) {
	_, l := buildLayout(t, `
		class A { x: Int; };
		class B inherits A { y: Int; };
		class Main { main(): Object { 0 }; };
	`)
	assert.Equal(t, 3, l.AttrOffset("B", "x"))
	assert.Equal(t, 4, l.AttrOffset("B", "y"))
}

func TestDispIndexStableAcrossOverride(t *testing.T) {
	_, l := buildLayout(t, `
		class A { f(): Int { 0 }; };
		class B inherits A { f(): Int { 1 }; };
		class Main { main(): Object { 0 }; };
	`)
	assert.Equal(t, l.DispIndex("A", "f"), l.DispIndex("B", "f"))
	assert.Equal(t, symbol.Name("B"), l.OwnerOfMethod("B", "f"))
	assert.Equal(t, symbol.Name("A"), l.OwnerOfMethod("A", "f"))
}

func TestNewMethodAppendsAtTail(t *testing.T) {
	_, l := buildLayout(t, `
		class A { f(): Int { 0 }; };
		class B inherits A { g(): Int { 1 }; };
		class Main { main(): Object { 0 }; };
	`)
	// Object's abort/type_name/copy occupy slots 0-2.
	order := l.MethodOrder("B")
	require.Len(t, order, 5)
	assert.Equal(t, symbol.Name("f"), order[3])
	assert.Equal(t, symbol.Name("g"), order[4])
}

func TestBFSOrderParentBeforeChild(t *testing.T) {
	_, l := buildLayout(t, `
		class A { };
		class B inherits A { };
		class Main { main(): Object { 0 }; };
	`)
	posOf := map[symbol.Name]int{}
	for i, n := range l.Order {
		posOf[n] = i
	}
	assert.Less(t, posOf[symbol.Object], posOf["A"])
	assert.Less(t, posOf["A"], posOf["B"])
}
