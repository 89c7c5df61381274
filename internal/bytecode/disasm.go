package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Describe renders a single instruction for listings.
func (in Instruction) Describe() string {
	switch in.Op {
	case OpCompare:
		preds := in.Predicates()
		parts := make([]string, len(preds))
		for i, p := range preds {
			parts[i] = p.String()
		}
		return fmt.Sprintf("Compare [%s]", strings.Join(parts, ", "))
	case OpJump, OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay:
		return fmt.Sprintf("%s %+d -> %d", in.Op, in.Offset(), in.Target())
	case OpJumpNonEmpty:
		return fmt.Sprintf("JumpNonEmpty %+d -> %d checkpoint=%d form=%s", in.Offset(), in.Target(), in.Arg(1), in.Form())
	case OpRepeat:
		return fmt.Sprintf("Repeat -%d -> %d count=%d id=%d", in.Offset(), in.Target(), in.Arg(1), in.Arg(2))
	case OpCheckBegin, OpCheckEnd:
		mode := "text"
		if CheckMode(in.Arg(0)) == CheckLine {
			mode = "line"
		}
		return fmt.Sprintf("%s %s", in.Op, mode)
	case OpCheckBoundary:
		if BoundaryKind(in.Arg(0)) == BoundaryNonWord {
			return "CheckBoundary non-word"
		}
		return "CheckBoundary word"
	case OpGoBack, OpCheckpoint, OpSaveLeftCaptureGroup, OpSaveRightCaptureGroup, OpClearCaptureGroup:
		return fmt.Sprintf("%s %d", in.Op, in.Arg(0))
	case OpSaveRightNamedCaptureGroup:
		return fmt.Sprintf("%s %d name=%d", in.Op, in.Arg(0), in.Arg(1))
	case OpSave, OpRestore, OpFailForks, OpExit:
		return in.Op.String()
	}
	return in.Op.String()
}

// Disassemble writes one line per instruction to w.
func Disassemble(w io.Writer, code ByteCode) error {
	for _, in := range code.Instructions() {
		if _, err := fmt.Fprintf(w, "%04d  %s\n", in.IP, in.Describe()); err != nil {
			return err
		}
	}
	return nil
}

// String returns the disassembly of the stream.
func (b ByteCode) String() string {
	var sb strings.Builder
	_ = Disassemble(&sb, b)
	return sb.String()
}
