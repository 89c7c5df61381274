package compiler

import (
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowered(t *testing.T, pattern string, config Config) bytecode.ByteCode {
	t.Helper()
	config.Pattern = pattern
	config.NoOptimize = true
	c, err := New(config)
	require.NoError(t, err)
	prog, err := c.Compile()
	require.NoError(t, err)
	require.NoError(t, bytecode.Validate(prog.Code))
	return prog.Code
}

func char(r rune) []bytecode.Predicate { return []bytecode.Predicate{bytecode.Char(r)} }

func TestLowerStar(t *testing.T) {
	tests := []struct {
		pattern string
		enter   bytecode.OpCode
		again   bytecode.OpCode
	}{
		{"a*b", bytecode.OpForkStay, bytecode.OpForkJump},
		{"a*?b", bytecode.OpForkJump, bytecode.OpForkStay},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var want bytecode.ByteCode
			want.EmitJump(tt.enter, 7)  // 0 -> 9
			want.EmitCompare(char('a')) // 2
			want.EmitJump(tt.again, -7) // 7 -> 2
			want.EmitCompare(char('b')) // 9

			got := lowered(t, tt.pattern, Config{Unicode: true})
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLowerNullableLoop(t *testing.T) {
	// 0   ForkStay -> 19
	// 2   Checkpoint 0
	// 4   SaveLeftCaptureGroup 1
	// 6   ForkStay -> 13
	// 8   Compare 'a'
	// 13  SaveRightCaptureGroup 1
	// 15  JumpNonEmpty -> 2 (ForkJump)
	code := lowered(t, "(a?)*", Config{Unicode: true})
	require.Len(t, code, 19)

	assert.Equal(t, 19, bytecode.Decode(code, 0).Target())
	assert.Equal(t, bytecode.OpCheckpoint, bytecode.Decode(code, 2).Op)

	jne := bytecode.Decode(code, 15)
	require.Equal(t, bytecode.OpJumpNonEmpty, jne.Op)
	assert.Equal(t, 2, jne.Target())
	assert.Equal(t, bytecode.Word(0), jne.Arg(1))
	assert.Equal(t, bytecode.OpForkJump, jne.Form())
}

func TestLowerRepeat(t *testing.T) {
	var exact bytecode.ByteCode
	exact.EmitCompare(char('a')) // 0
	exact.EmitRepeat(5, 3, 0)    // 5 -> 0

	var ranged bytecode.ByteCode
	ranged.EmitCompare(char('a'))           // 0
	ranged.EmitRepeat(5, 2, 0)              // 5 -> 0
	ranged.EmitJump(bytecode.OpForkStay, 5) // 9 -> 16
	ranged.EmitCompare(char('a'))           // 11

	var open bytecode.ByteCode
	open.EmitCompare(char('a'))            // 0
	open.EmitJump(bytecode.OpForkStay, 7)  // 5 -> 14
	open.EmitCompare(char('a'))            // 7
	open.EmitJump(bytecode.OpForkJump, -7) // 12 -> 7

	tests := []struct {
		pattern string
		want    bytecode.ByteCode
	}{
		{"a{3}", exact},
		{"a{2,3}", ranged},
		{"a{1,}", open},
		{"a{1}", compareOf('a')},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := lowered(t, tt.pattern, Config{Unicode: true})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func compareOf(rs ...rune) bytecode.ByteCode {
	var code bytecode.ByteCode
	for _, r := range rs {
		code.EmitCompare(char(r))
	}
	return code
}

func TestLowerLiterals(t *testing.T) {
	assert.Equal(t, compareOf(0xc3, 0xa9), lowered(t, "é", Config{}))
	assert.Equal(t, compareOf('é'), lowered(t, "é", Config{Unicode: true}))
	// The parser keeps the smallest rune of the fold orbit.
	assert.Equal(t, compareOf('K'), lowered(t, "(?i)k", Config{Unicode: true, CaseInsensitive: true}))

	folded := lowered(t, "(?i)k", Config{})
	preds := bytecode.Decode(folded, 0).Predicates()
	require.Len(t, preds, 1)
	require.Equal(t, bytecode.CompareLookupTable, preds[0].Type)
	assert.Equal(t, []bytecode.CharRange{{From: 'K', To: 'K'}, {From: 'k', To: 'k'}}, preds[0].Table.Sensitive)
}

func TestLowerAssertions(t *testing.T) {
	tests := []struct {
		pattern string
		op      bytecode.OpCode
		arg     bytecode.Word
	}{
		{"^", bytecode.OpCheckBegin, bytecode.Word(bytecode.CheckText)},
		{"(?m)^", bytecode.OpCheckBegin, bytecode.Word(bytecode.CheckLine)},
		{"$", bytecode.OpCheckEnd, bytecode.Word(bytecode.CheckText)},
		{"(?m)$", bytecode.OpCheckEnd, bytecode.Word(bytecode.CheckLine)},
		{`\b`, bytecode.OpCheckBoundary, bytecode.Word(bytecode.BoundaryWord)},
		{`\B`, bytecode.OpCheckBoundary, bytecode.Word(bytecode.BoundaryNonWord)},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			in := bytecode.Decode(lowered(t, tt.pattern, Config{}), 0)
			assert.Equal(t, tt.op, in.Op)
			assert.Equal(t, tt.arg, in.Arg(0))
		})
	}
}

func TestLowerCaptures(t *testing.T) {
	code := lowered(t, "(a)(?P<b>b)", Config{})
	ops := []bytecode.OpCode{}
	for _, in := range code.Instructions() {
		ops = append(ops, in.Op)
	}
	assert.Equal(t, []bytecode.OpCode{
		bytecode.OpSaveLeftCaptureGroup, bytecode.OpCompare, bytecode.OpSaveRightCaptureGroup,
		bytecode.OpSaveLeftCaptureGroup, bytecode.OpCompare, bytecode.OpSaveRightNamedCaptureGroup,
	}, ops)

	named := code.Instructions()[5]
	assert.Equal(t, bytecode.Word(2), named.Arg(0))
	assert.Equal(t, bytecode.Word(0), named.Arg(1))
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(Config{Pattern: "(a"})
	require.Error(t, err)

	_, err = New(Config{Pattern: "a", MaxFollowHops: -1})
	require.Error(t, err)
}
