package optimizer

import (
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAlternationChain(t *testing.T) {
	rec := NewRecorder()
	o := newTestOptimizer(t, Options{Tracer: rec})

	var got bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&got, []bytecode.ByteCode{literal("a"), literal("b")}))

	var want bytecode.ByteCode
	want.EmitJump(bytecode.OpForkStay, 7) // 0 -> 9
	want.EmitCompare(chars('a'))          // 2
	want.EmitJump(bytecode.OpJump, 5)     // 7 -> 14
	want.EmitCompare(chars('b'))          // 9
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rec.Alternations, 1)
	report := rec.Alternations[0]
	assert.Equal(t, StrategyChain, report.Strategy)
	assert.Equal(t, 2, report.Alternatives)
	assert.Equal(t, 0, report.SharedNodes)
	assert.Equal(t, 8, report.TreeCost)
	assert.Equal(t, 18, report.ChainCost)
	assert.NotEmpty(t, report.Shape)
}

func TestAppendAlternationChainOfThree(t *testing.T) {
	o := newTestOptimizer(t, Options{})

	var got bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&got, []bytecode.ByteCode{literal("a"), literal("b"), literal("c")}))

	// 0  ForkStay -> 18
	// 2  ForkStay -> 11
	// 4  'a', Jump -> 23
	// 11 'b', Jump -> 23
	// 18 'c'
	require.NoError(t, bytecode.Validate(got))
	assert.Len(t, got, 23)
	assert.Equal(t, 18, bytecode.Decode(got, 0).Target())
	assert.Equal(t, 11, bytecode.Decode(got, 2).Target())
	assert.Equal(t, 23, bytecode.Decode(got, 9).Target())
	assert.Equal(t, 23, bytecode.Decode(got, 16).Target())
}

func TestAppendAlternationTrie(t *testing.T) {
	rec := NewRecorder()
	o := newTestOptimizer(t, Options{Tracer: rec})

	var got bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&got, []bytecode.ByteCode{literal("abc"), literal("abd")}))

	var want bytecode.ByteCode
	want.EmitJump(bytecode.OpJump, 0)      // 0
	want.EmitCompare(chars('a'))           // 2
	want.EmitJump(bytecode.OpJump, 0)      // 7
	want.EmitCompare(chars('b'))           // 9
	want.EmitJump(bytecode.OpForkJump, 11) // 14 -> 27
	want.EmitJump(bytecode.OpJump, 0)      // 16
	want.EmitCompare(chars('d'))           // 18
	want.EmitJump(bytecode.OpJump, 0)      // 23
	want.EmitJump(bytecode.OpJump, 9)      // 25 -> 36
	want.EmitCompare(chars('c'))           // 27
	want.EmitJump(bytecode.OpJump, 0)      // 32
	want.EmitJump(bytecode.OpJump, 0)      // 34 -> 36
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rec.Alternations, 1)
	report := rec.Alternations[0]
	assert.Equal(t, StrategyTrie, report.Strategy)
	assert.Equal(t, 2, report.SharedNodes)
	assert.Equal(t, 12, report.TreeCost)
	assert.Equal(t, 28, report.ChainCost)
	assert.False(t, report.PriorityViolation)
	assert.Contains(t, report.Shape, "alternation")
}

func TestAppendAlternationPriorityViolation(t *testing.T) {
	rec := NewRecorder()
	o := newTestOptimizer(t, Options{Tracer: rec})

	alts := []bytecode.ByteCode{
		literal("xb"),
		compare(bytecode.Range('a', 'z')),
		literal("xc"),
	}
	var got bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&got, alts))

	require.Len(t, rec.Alternations, 1)
	report := rec.Alternations[0]
	assert.True(t, report.PriorityViolation)
	assert.Equal(t, StrategyChain, report.Strategy)
	assert.Equal(t, bytecode.OpForkStay, bytecode.Decode(got, 0).Op)
}

func TestAppendAlternationEdgeCases(t *testing.T) {
	o := newTestOptimizer(t, Options{})

	var code bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&code, nil))
	assert.Empty(t, code)

	require.NoError(t, o.AppendAlternation(&code, []bytecode.ByteCode{nil, nil}))
	assert.Empty(t, code)

	require.NoError(t, o.AppendAlternation(&code, []bytecode.ByteCode{literal("ab")}))
	assert.Equal(t, literal("ab"), code)
}

func TestAppendAlternationKeepsPrefix(t *testing.T) {
	o := newTestOptimizer(t, Options{})

	code := literal("p")
	require.NoError(t, o.AppendAlternation(&code, []bytecode.ByteCode{literal("abc"), literal("abd")}))
	require.NoError(t, bytecode.Validate(code))

	for _, in := range code.Instructions() {
		if in.Op.IsJump() {
			assert.LessOrEqual(t, in.Target(), len(code), "jump at %d leaves the program", in.IP)
			assert.Greater(t, in.Target(), 5, "jump at %d enters the prefix", in.IP)
		}
	}
}

func TestAppendAlternationWithLoop(t *testing.T) {
	// ab*|ac: the loop inside the first alternative keeps its own jumps.
	o := newTestOptimizer(t, Options{})

	first := concat(literal("a"), star(chars('b'), nil))
	var got bytecode.ByteCode
	require.NoError(t, o.AppendAlternation(&got, []bytecode.ByteCode{first, literal("ac")}))
	require.NoError(t, bytecode.Validate(got))

	for _, in := range got.Instructions() {
		if in.Op.IsJump() {
			assert.LessOrEqual(t, in.Target(), len(got))
			assert.True(t, alignedAt(got, in.Target()), "jump at %d lands inside an instruction", in.IP)
		}
	}
}

// alignedAt reports whether ip is an instruction boundary of code.
func alignedAt(code bytecode.ByteCode, ip int) bool {
	if ip == len(code) {
		return true
	}
	for _, in := range code.Instructions() {
		if in.IP == ip {
			return true
		}
	}
	return false
}
