package compiler

import (
	"fmt"
	"regexp/syntax"
	"unicode/utf8"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/optimizer"
)

// lowerer emits the bytecode of one pattern. Loops over bodies that can
// match empty are guarded by a checkpoint; counted repetitions use Repeat
// counters. Both are numbered per pattern.
type lowerer struct {
	config      Config
	opt         *optimizer.Optimizer
	checkpoints int
	repeats     int
	named       int
}

func newLowerer(config Config, opt *optimizer.Optimizer) *lowerer {
	return &lowerer{config: config, opt: opt}
}

func (l *lowerer) lower(re *syntax.Regexp, code *bytecode.ByteCode) error {
	switch re.Op {
	case syntax.OpNoMatch:
		code.EmitCompare(nil)
	case syntax.OpEmptyMatch:
	case syntax.OpLiteral:
		fold := re.Flags&syntax.FoldCase != 0
		for _, r := range re.Rune {
			if err := l.literal(r, fold, code); err != nil {
				return err
			}
		}
	case syntax.OpCharClass:
		return optimizer.AppendCharacterClass(code, classPredicates(re.Rune, l.config.Unicode))
	case syntax.OpAnyCharNotNL:
		code.EmitCompare([]bytecode.Predicate{bytecode.Marker(bytecode.CompareInverse), bytecode.Char('\n')})
	case syntax.OpAnyChar:
		code.EmitCompare([]bytecode.Predicate{bytecode.Marker(bytecode.CompareAnyChar)})
	case syntax.OpBeginLine:
		code.EmitOp(bytecode.OpCheckBegin, bytecode.Word(bytecode.CheckLine))
	case syntax.OpEndLine:
		code.EmitOp(bytecode.OpCheckEnd, bytecode.Word(bytecode.CheckLine))
	case syntax.OpBeginText:
		code.EmitOp(bytecode.OpCheckBegin, bytecode.Word(bytecode.CheckText))
	case syntax.OpEndText:
		code.EmitOp(bytecode.OpCheckEnd, bytecode.Word(bytecode.CheckText))
	case syntax.OpWordBoundary:
		code.EmitOp(bytecode.OpCheckBoundary, bytecode.Word(bytecode.BoundaryWord))
	case syntax.OpNoWordBoundary:
		code.EmitOp(bytecode.OpCheckBoundary, bytecode.Word(bytecode.BoundaryNonWord))
	case syntax.OpCapture:
		return l.capture(re, code)
	case syntax.OpStar:
		return l.star(re.Sub[0], greedy(re), code)
	case syntax.OpPlus:
		return l.plus(re.Sub[0], greedy(re), code)
	case syntax.OpQuest:
		return l.optional(re.Sub[0], 1, greedy(re), code)
	case syntax.OpRepeat:
		return l.repeat(re, code)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if err := l.lower(sub, code); err != nil {
				return err
			}
		}
	case syntax.OpAlternate:
		alts := make([]bytecode.ByteCode, len(re.Sub))
		for i, sub := range re.Sub {
			if err := l.lower(sub, &alts[i]); err != nil {
				return err
			}
		}
		return l.opt.AppendAlternation(code, alts)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, re.Op)
	}
	return nil
}

func greedy(re *syntax.Regexp) bool {
	return re.Flags&syntax.NonGreedy == 0
}

// literal emits a compare for one literal rune. Byte-mode programs match
// non-ASCII runes by their UTF-8 encoding.
func (l *lowerer) literal(r rune, fold bool, code *bytecode.ByteCode) error {
	if !l.config.Unicode && r >= MaxASCIIRune {
		for _, b := range utf8.AppendRune(nil, r) {
			code.EmitCompare([]bytecode.Predicate{bytecode.Char(rune(b))})
		}
		return nil
	}
	if !fold || l.config.CaseInsensitive {
		code.EmitCompare([]bytecode.Predicate{bytecode.Char(r)})
		return nil
	}
	return optimizer.AppendCharacterClass(code, foldPredicates(r, l.config.Unicode))
}

func (l *lowerer) capture(re *syntax.Regexp, code *bytecode.ByteCode) error {
	code.EmitOp(bytecode.OpSaveLeftCaptureGroup, bytecode.Word(re.Cap))
	if err := l.lower(re.Sub[0], code); err != nil {
		return err
	}
	if re.Name == "" {
		code.EmitOp(bytecode.OpSaveRightCaptureGroup, bytecode.Word(re.Cap))
		return nil
	}
	code.EmitOp(bytecode.OpSaveRightNamedCaptureGroup, bytecode.Word(re.Cap), bytecode.Word(l.named))
	l.named++
	return nil
}

// forkOps returns the fork that enters a loop body and the one that closes
// it, in that order.
func forkOps(greedy bool) (enter, again bytecode.OpCode) {
	if greedy {
		return bytecode.OpForkStay, bytecode.OpForkJump
	}
	return bytecode.OpForkJump, bytecode.OpForkStay
}

// loopBody emits body followed by the closing fork back to its start.
//
//	loop: [Checkpoint id]
//	      body
//	      ForkJump loop | JumpNonEmpty loop, id, ForkJump
func (l *lowerer) loopBody(body *syntax.Regexp, again bytecode.OpCode, code *bytecode.ByteCode) error {
	loop := len(*code)
	guarded := nullable(body)
	id := l.checkpoints
	if guarded {
		l.checkpoints++
		code.EmitOp(bytecode.OpCheckpoint, bytecode.Word(id))
	}
	if err := l.lower(body, code); err != nil {
		return err
	}
	if guarded {
		code.EmitJumpNonEmpty(bytecode.ForwardOffset(len(*code), 4, loop), id, again)
		return nil
	}
	code.EmitJump(again, bytecode.ForwardOffset(len(*code), 2, loop))
	return nil
}

// star emits
//
//	      ForkStay exit
//	loop: body
//	      ForkJump loop
//	exit:
//
// with the forks swapped for a lazy loop.
func (l *lowerer) star(body *syntax.Regexp, greedy bool, code *bytecode.ByteCode) error {
	enter, again := forkOps(greedy)
	fork := len(*code)
	code.EmitJump(enter, 0)
	if err := l.loopBody(body, again, code); err != nil {
		return err
	}
	code.SetOffset(fork, bytecode.ForwardOffset(fork, 2, len(*code)))
	return nil
}

func (l *lowerer) plus(body *syntax.Regexp, greedy bool, code *bytecode.ByteCode) error {
	_, again := forkOps(greedy)
	return l.loopBody(body, again, code)
}

// optional emits n nested optional copies of body that all skip to the
// same exit.
func (l *lowerer) optional(body *syntax.Regexp, n int, greedy bool, code *bytecode.ByteCode) error {
	enter, _ := forkOps(greedy)
	forks := make([]int, 0, n)
	for i := 0; i < n; i++ {
		forks = append(forks, len(*code))
		code.EmitJump(enter, 0)
		if err := l.lower(body, code); err != nil {
			return err
		}
	}
	for _, f := range forks {
		code.SetOffset(f, bytecode.ForwardOffset(f, 2, len(*code)))
	}
	return nil
}

// exactly emits body n times. Counts of MinCountedRepeat and above run
// through a Repeat counter.
func (l *lowerer) exactly(body *syntax.Regexp, n int, code *bytecode.ByteCode) error {
	if n < MinCountedRepeat {
		for i := 0; i < n; i++ {
			if err := l.lower(body, code); err != nil {
				return err
			}
		}
		return nil
	}
	loop := len(*code)
	if err := l.lower(body, code); err != nil {
		return err
	}
	id := l.repeats
	l.repeats++
	code.EmitRepeat(bytecode.BackwardOffset(len(*code), loop), n, id)
	return nil
}

func (l *lowerer) repeat(re *syntax.Regexp, code *bytecode.ByteCode) error {
	body := re.Sub[0]
	if err := l.exactly(body, re.Min, code); err != nil {
		return err
	}
	if re.Max == -1 {
		return l.star(body, greedy(re), code)
	}
	extra := re.Max - re.Min
	if extra > MaxOptionalUnroll {
		return fmt.Errorf("%w: repetition {%d,%d} is too wide", ErrUnsupported, re.Min, re.Max)
	}
	return l.optional(body, extra, greedy(re), code)
}
