package optimizer

import (
	"github.com/KromDaniel/regopt/internal/bytecode"
	"golang.org/x/exp/slices"
)

// BasicBlock is the half-open address range [Start, End) of a straight-line
// run of instructions. The control-flow instruction that terminates the
// block, if any, sits at End.
type BasicBlock struct {
	Start   int
	End     int
	Comment string
}

// Empty reports whether the block holds no instruction besides its terminator.
func (b BasicBlock) Empty() bool { return b.Start == b.End }

// SplitBasicBlocks partitions code into basic blocks sorted by start address.
func SplitBasicBlocks(code bytecode.ByteCode) []BasicBlock {
	var blocks []BasicBlock
	endOfLast := 0

	checkJump := func(in bytecode.Instruction) {
		target := in.Next() + in.Offset()
		if target >= in.Next() {
			blocks = append(blocks, BasicBlock{endOfLast, in.IP, "Jump ahead"})
			endOfLast = in.Next()
			return
		}
		if target > endOfLast {
			blocks = append(blocks,
				BasicBlock{endOfLast, target, "Jump back 1"},
				BasicBlock{target, in.IP, "Jump back 2"})
		} else {
			blocks = append(blocks, BasicBlock{endOfLast, in.IP, "Jump"})
		}
		endOfLast = in.Next()
	}

	for ip := 0; ip < len(code); {
		in := bytecode.Decode(code, ip)
		switch in.Op {
		case bytecode.OpJump, bytecode.OpJumpNonEmpty,
			bytecode.OpForkJump, bytecode.OpForkStay,
			bytecode.OpForkReplaceJump, bytecode.OpForkReplaceStay:
			checkJump(in)
		case bytecode.OpFailForks:
			blocks = append(blocks, BasicBlock{endOfLast, in.IP, "FailForks"})
			endOfLast = in.Next()
		case bytecode.OpRepeat:
			bodyStart := in.Target()
			if bodyStart > endOfLast {
				blocks = append(blocks, BasicBlock{endOfLast, bodyStart, "Repeat"})
				endOfLast = bodyStart
			}
			blocks = append(blocks, BasicBlock{endOfLast, in.IP, "Repeat"})
			endOfLast = in.Next()
		}
		ip = in.Next()
	}

	if endOfLast < len(code) {
		blocks = append(blocks, BasicBlock{endOfLast, len(code), "End"})
	}

	slices.SortStableFunc(blocks, func(a, b BasicBlock) int { return a.Start - b.Start })
	return blocks
}

// blockStartingAt returns the block whose start is ip.
func blockStartingAt(blocks []BasicBlock, ip int) (BasicBlock, bool) {
	i, found := slices.BinarySearchFunc(blocks, ip, func(b BasicBlock, ip int) int { return b.Start - ip })
	if found {
		return blocks[i], true
	}
	return BasicBlock{}, false
}
