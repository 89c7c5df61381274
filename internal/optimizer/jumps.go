package optimizer

import (
	"fmt"

	"github.com/KromDaniel/regopt/internal/bytecode"
)

// isUselessJump reports whether in transfers control to its own successor.
func isUselessJump(in bytecode.Instruction) bool {
	switch in.Op {
	case bytecode.OpJump, bytecode.OpJumpNonEmpty,
		bytecode.OpForkJump, bytecode.OpForkStay,
		bytecode.OpForkReplaceJump, bytecode.OpForkReplaceStay:
		return in.Offset() == 0
	}
	return false
}

// addressMap translates addresses of the old stream to the rewritten one.
// Every old instruction start and the old stream length are present.
type addressMap map[int]int

func (m addressMap) translate(in bytecode.Instruction) (int, error) {
	oldTarget := in.Target()
	newTarget, ok := m[oldTarget]
	if !ok {
		return 0, fmt.Errorf("%w: %s at %d targets %d, which is not an instruction boundary",
			ErrInconsistentProgram, in.Op, in.IP, oldTarget)
	}
	return newTarget, nil
}

// buildAddressMap maps every old instruction start, and the old stream
// length, to its address once useless jumps are dropped. A dropped
// instruction maps to the address of whatever follows it.
func buildAddressMap(instructions []bytecode.Instruction, length int) (addressMap, int) {
	m := make(addressMap, len(instructions)+1)
	cur := 0
	for _, in := range instructions {
		m[in.IP] = cur
		if !isUselessJump(in) {
			cur += in.Size
		}
	}
	m[length] = cur
	return m, cur
}

// RemoveUselessJumps drops every zero-displacement jump or fork and
// recomputes the displacement of every remaining control-flow instruction.
func RemoveUselessJumps(code bytecode.ByteCode) (bytecode.ByteCode, error) {
	instructions := code.Instructions()
	newIP, cur := buildAddressMap(instructions, len(code))
	if cur == len(code) {
		return code, nil
	}

	out := make(bytecode.ByteCode, 0, cur)
	for _, in := range instructions {
		if isUselessJump(in) {
			continue
		}
		source := len(out)
		out = append(out, in.Words()...)
		if !in.Op.IsJump() {
			continue
		}
		target, err := newIP.translate(in)
		if err != nil {
			return nil, err
		}
		if in.Op == bytecode.OpRepeat {
			out.SetOffset(source, bytecode.BackwardOffset(source, target))
		} else {
			out.SetOffset(source, bytecode.ForwardOffset(source, in.Size, target))
		}
	}
	return out, nil
}
