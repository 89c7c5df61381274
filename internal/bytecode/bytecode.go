// Package bytecode defines the instruction stream executed by the regex
// virtual machine: a flat sequence of variable-length instructions stored
// back to back in a slice of words.
package bytecode

import (
	"errors"
	"fmt"
)

// Word is the unit of the instruction stream.
type Word = uint64

// ByteCode is a complete program. An instruction's address is its index.
type ByteCode []Word

// ErrMalformed is returned by Validate for streams that cannot be decoded.
var ErrMalformed = errors.New("malformed bytecode")

// Instruction is a decoded view of one instruction inside a ByteCode.
type Instruction struct {
	Op   OpCode
	IP   int
	Size int

	words []Word
}

// Decode returns the instruction at ip. Decoding at or past the end of the
// stream yields an implicit Exit.
func Decode(code ByteCode, ip int) Instruction {
	if ip >= len(code) {
		return Instruction{Op: OpExit, IP: ip, Size: 1, words: []Word{Word(OpExit)}}
	}
	op := OpCode(code[ip])
	size := op.fixedSize()
	if op == OpCompare {
		size = 3 + int(code[ip+2])
	}
	return Instruction{Op: op, IP: ip, Size: size, words: code[ip : ip+size]}
}

// Next returns the address of the following instruction.
func (in Instruction) Next() int { return in.IP + in.Size }

// Words returns the raw words of the instruction.
func (in Instruction) Words() []Word { return in.words }

// Arg returns the i-th operand word (0 is the first word after the opcode).
func (in Instruction) Arg(i int) Word { return in.words[1+i] }

// Offset returns the signed displacement of a jump-like instruction.
func (in Instruction) Offset() int { return int(int64(in.words[1])) }

// Target returns the absolute address a jump-like instruction transfers to.
// Repeat counts backward from its own address; every other jump counts from
// the address of the next instruction.
func (in Instruction) Target() int {
	if in.Op == OpRepeat {
		return in.IP - in.Offset()
	}
	return in.Next() + in.Offset()
}

// Form returns the transfer kind of a JumpNonEmpty instruction.
func (in Instruction) Form() OpCode { return OpCode(in.words[3]) }

// ForwardOffset is the displacement stored by a forward-convention
// instruction of the given size at source that should land on target.
func ForwardOffset(source, size, target int) int {
	return target - source - size
}

// BackwardOffset is the displacement stored by a Repeat at source whose body
// starts at target.
func BackwardOffset(source, target int) int {
	return source - target
}

// EncodeOffset stores a signed displacement in a word.
func EncodeOffset(off int) Word { return Word(int64(off)) }

// SetOffset overwrites the displacement of the jump-like instruction at ip.
func (b ByteCode) SetOffset(ip, off int) { b[ip+1] = EncodeOffset(off) }

// Instructions returns every instruction of the stream in address order.
func (b ByteCode) Instructions() []Instruction {
	var out []Instruction
	for ip := 0; ip < len(b); {
		in := Decode(b, ip)
		out = append(out, in)
		ip = in.Next()
	}
	return out
}

// Clone returns an independent copy of the stream.
func (b ByteCode) Clone() ByteCode {
	if b == nil {
		return nil
	}
	out := make(ByteCode, len(b))
	copy(out, b)
	return out
}

// Validate checks that every instruction decodes within bounds, that compare
// operands are well formed, and that every displacement lands on an
// instruction boundary or on the end of the stream.
func Validate(b ByteCode) error {
	boundaries := map[int]bool{len(b): true}
	var jumps []Instruction
	for ip := 0; ip < len(b); {
		op := OpCode(b[ip])
		if !op.Valid() {
			return fmt.Errorf("%w: unknown opcode %d at %d", ErrMalformed, b[ip], ip)
		}
		size := op.fixedSize()
		if op == OpCompare {
			if ip+3 > len(b) {
				return fmt.Errorf("%w: truncated compare at %d", ErrMalformed, ip)
			}
			size = 3 + int(b[ip+2])
		}
		if ip+size > len(b) {
			return fmt.Errorf("%w: %s at %d overruns stream", ErrMalformed, op, ip)
		}
		in := Instruction{Op: op, IP: ip, Size: size, words: b[ip : ip+size]}
		if op == OpCompare {
			if _, err := decodePredicates(in.words[3:], int(in.words[1])); err != nil {
				return fmt.Errorf("%w: compare at %d: %v", ErrMalformed, ip, err)
			}
		}
		if op.IsJump() {
			jumps = append(jumps, in)
		}
		if op == OpJumpNonEmpty && !in.Form().IsJump() {
			return fmt.Errorf("%w: JumpNonEmpty at %d has form %s", ErrMalformed, ip, in.Form())
		}
		boundaries[ip] = true
		ip += size
	}
	for _, in := range jumps {
		if !boundaries[in.Target()] {
			return fmt.Errorf("%w: %s at %d targets %d", ErrMalformed, in.Op, in.IP, in.Target())
		}
	}
	return nil
}

// Append adds raw words to the stream.
func (b *ByteCode) Append(words ...Word) { *b = append(*b, words...) }

// Extend appends another program.
func (b *ByteCode) Extend(other ByteCode) { *b = append(*b, other...) }

// EmitJump appends a two-word jump or fork with the given displacement.
func (b *ByteCode) EmitJump(op OpCode, off int) {
	b.Append(Word(op), EncodeOffset(off))
}

// EmitJumpNonEmpty appends a JumpNonEmpty guarded by checkpoint id.
func (b *ByteCode) EmitJumpNonEmpty(off int, checkpoint int, form OpCode) {
	b.Append(Word(OpJumpNonEmpty), EncodeOffset(off), Word(checkpoint), Word(form))
}

// EmitRepeat appends a Repeat whose body starts off words before it.
func (b *ByteCode) EmitRepeat(off, count, id int) {
	b.Append(Word(OpRepeat), EncodeOffset(off), Word(count), Word(id))
}

// EmitOp appends an instruction made of an opcode and plain operands.
func (b *ByteCode) EmitOp(op OpCode, args ...Word) {
	b.Append(Word(op))
	b.Append(args...)
}

// EmitCompare appends a Compare over preds.
func (b *ByteCode) EmitCompare(preds []Predicate) {
	var args []Word
	for _, p := range preds {
		args = p.appendTo(args)
	}
	b.Append(Word(OpCompare), Word(len(preds)), Word(len(args)))
	b.Append(args...)
}
