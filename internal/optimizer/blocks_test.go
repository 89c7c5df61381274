package optimizer

import (
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/google/go-cmp/cmp"
)

func TestSplitBasicBlocks(t *testing.T) {
	var backward bytecode.ByteCode
	backward.EmitCompare(chars('x'))           // 0
	backward.EmitCompare(chars('a'))           // 5
	backward.EmitJump(bytecode.OpForkJump, -7) // 10 -> 5

	var repeat bytecode.ByteCode
	repeat.EmitCompare(chars('x')) // 0
	repeat.EmitCompare(chars('a')) // 5
	repeat.EmitRepeat(5, 3, 0)     // 10 -> 5

	var self bytecode.ByteCode
	self.EmitCompare(chars('a'))           // 0
	self.EmitJump(bytecode.OpForkJump, -2) // 5 -> 5
	self.EmitCompare(chars('b'))           // 7

	var failForks bytecode.ByteCode
	failForks.EmitCompare(chars('a'))
	failForks.EmitOp(bytecode.OpFailForks)
	failForks.EmitCompare(chars('b'))

	tests := []struct {
		name string
		code bytecode.ByteCode
		want []BasicBlock
	}{
		{
			name: "star loop",
			code: star(chars('a'), literal("b")),
			want: []BasicBlock{
				{Start: 0, End: 0, Comment: "Jump ahead"},
				{Start: 2, End: 7, Comment: "Jump"},
				{Start: 9, End: 14, Comment: "End"},
			},
		},
		{
			name: "backward jump into open block",
			code: backward,
			want: []BasicBlock{
				{Start: 0, End: 5, Comment: "Jump back 1"},
				{Start: 5, End: 10, Comment: "Jump back 2"},
			},
		},
		{
			name: "jump to itself",
			code: self,
			want: []BasicBlock{
				{Start: 0, End: 5, Comment: "Jump back 1"},
				{Start: 5, End: 5, Comment: "Jump back 2"},
				{Start: 7, End: 12, Comment: "End"},
			},
		},
		{
			name: "repeat",
			code: repeat,
			want: []BasicBlock{
				{Start: 0, End: 5, Comment: "Repeat"},
				{Start: 5, End: 10, Comment: "Repeat"},
			},
		},
		{
			name: "fail forks",
			code: failForks,
			want: []BasicBlock{
				{Start: 0, End: 5, Comment: "FailForks"},
				{Start: 6, End: 11, Comment: "End"},
			},
		},
		{
			name: "straight line",
			code: literal("ab"),
			want: []BasicBlock{{Start: 0, End: 10, Comment: "End"}},
		},
		{
			name: "empty",
			code: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBasicBlocks(tt.code)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBlockStartingAt(t *testing.T) {
	blocks := SplitBasicBlocks(star(chars('a'), literal("b")))

	b, ok := blockStartingAt(blocks, 9)
	if !ok || b.End != 14 {
		t.Fatalf("blockStartingAt(9) = %+v, %v", b, ok)
	}
	if _, ok := blockStartingAt(blocks, 4); ok {
		t.Fatal("blockStartingAt(4) should not find a block")
	}
}
