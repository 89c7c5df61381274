// Package vm executes regex bytecode with a leftmost-first backtracking
// matcher. It is the reference semantics for every program the compiler and
// the optimizer produce.
package vm

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/optimizer"
	"github.com/KromDaniel/regopt/internal/unicodefacts"
)

var (
	// ErrStepLimit is returned when a search exceeds Options.MaxSteps.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrUnsupportedOpcode is returned for instructions the machine does not
	// execute.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
)

// Options configures a Machine.
type Options struct {
	// Unicode reads the input as UTF-8 code points instead of bytes.
	Unicode bool
	// Insensitive folds ASCII case for characters, ranges, tables, strings
	// and back-references. Classes and Unicode facets are not folded.
	Insensitive bool
	// MaxSteps bounds executed instructions per search (0 = unlimited).
	MaxSteps int
	// Data holds optional optimization hints used to skip start positions.
	Data *optimizer.OptimizationData
	// Facts answers Unicode facet predicates (nil = standard tables).
	Facts optimizer.UnicodeFacts
}

// Machine runs one program. It is safe for concurrent use.
type Machine struct {
	code   bytecode.ByteCode
	opts   Options
	facts  optimizer.UnicodeFacts
	groups int
}

// New creates a machine for code.
func New(code bytecode.ByteCode, opts Options) *Machine {
	facts := opts.Facts
	if facts == nil {
		facts = unicodefacts.Tables{}
	}
	return &Machine{code: code, opts: opts, facts: facts, groups: CaptureGroups(code)}
}

// CaptureGroups returns the highest capture group index referenced by code.
func CaptureGroups(code bytecode.ByteCode) int {
	n := 0
	for _, in := range code.Instructions() {
		switch in.Op {
		case bytecode.OpSaveLeftCaptureGroup, bytecode.OpSaveRightCaptureGroup,
			bytecode.OpSaveRightNamedCaptureGroup, bytecode.OpClearCaptureGroup:
			n = max(n, int(in.Arg(0)))
		case bytecode.OpCompare:
			for _, p := range in.Predicates() {
				if p.Type == bytecode.CompareReference {
					n = max(n, int(p.Value))
				}
			}
		}
	}
	return n
}

// NumGroups returns the number of capture groups, excluding the whole match.
func (m *Machine) NumGroups() int { return m.groups }

// registers is the per-path state that backtracking must restore.
type registers struct {
	caps        []int
	counters    map[int]int
	checkpoints map[int]int
	saved       []int
}

func (r registers) clone() registers {
	out := registers{
		caps:        append([]int(nil), r.caps...),
		counters:    make(map[int]int, len(r.counters)),
		checkpoints: make(map[int]int, len(r.checkpoints)),
		saved:       append([]int(nil), r.saved...),
	}
	for k, v := range r.counters {
		out.counters[k] = v
	}
	for k, v := range r.checkpoints {
		out.checkpoints[k] = v
	}
	return out
}

type backtrack struct {
	ip     int
	pos    int
	forkIP int
	regs   registers
}

func (m *Machine) readChar(input string, pos int) (rune, int) {
	if pos >= len(input) {
		return 0, 0
	}
	if m.opts.Unicode {
		return utf8.DecodeRuneInString(input[pos:])
	}
	return rune(input[pos]), 1
}

func (m *Machine) prevChar(input string, pos int) (rune, int) {
	if pos <= 0 {
		return 0, 0
	}
	if m.opts.Unicode {
		return utf8.DecodeLastRuneInString(input[:pos])
	}
	return rune(input[pos-1]), 1
}

func isWordChar(c rune) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Match reports whether input contains a match.
func (m *Machine) Match(input string) (bool, error) {
	loc, err := m.Find(input)
	return loc != nil, err
}

// Find returns the leftmost-first match as pairs of byte offsets: the whole
// match followed by every capture group, -1 for groups that did not
// participate. It returns nil when there is no match.
func (m *Machine) Find(input string) ([]int, error) {
	data := m.opts.Data
	if data != nil && data.PureSubstringSearch != nil && m.bytewiseSearch(*data.PureSubstringSearch, input) {
		lit := *data.PureSubstringSearch
		i := strings.Index(input, lit)
		if i < 0 {
			return nil, nil
		}
		loc := m.emptyCaps()
		loc[0], loc[1] = i, i+len(lit)
		return loc, nil
	}

	steps := 0
	for start := 0; start <= len(input); {
		if m.admissible(input, start) {
			loc, err := m.run(input, start, &steps)
			if err != nil || loc != nil {
				return loc, err
			}
		}
		_, size := m.readChar(input, start)
		if size == 0 {
			break
		}
		start += size
	}
	return nil, nil
}

// bytewiseSearch reports whether a plain byte search for lit finds the same
// match as running the program. It does not when case is folded, or when an
// invalid input byte could be read as a U+FFFD in lit.
func (m *Machine) bytewiseSearch(lit, input string) bool {
	if m.opts.Insensitive {
		return false
	}
	if !m.opts.Unicode || !strings.ContainsRune(lit, utf8.RuneError) {
		return true
	}
	return utf8.ValidString(input)
}

func (m *Machine) emptyCaps() []int {
	caps := make([]int, 2*(m.groups+1))
	for i := range caps {
		caps[i] = -1
	}
	return caps
}

// admissible applies the optimization hints to a candidate start position.
func (m *Machine) admissible(input string, start int) bool {
	data := m.opts.Data
	if data == nil {
		return true
	}
	if data.OnlyStartOfLine && start > 0 && input[start-1] != '\n' {
		return false
	}
	if len(data.StartingRanges) == 0 {
		return true
	}
	c, size := m.readChar(input, start)
	if size == 0 {
		return false
	}
	if m.opts.Insensitive {
		return inRanges(data.StartingRangesInsensitive, toLower(c))
	}
	return inRanges(data.StartingRanges, c)
}

func (m *Machine) run(input string, start int, steps *int) ([]int, error) {
	regs := registers{caps: m.emptyCaps(), counters: map[int]int{}, checkpoints: map[int]int{}}
	var stack []backtrack
	ip, pos := 0, start

	// fork schedules an alternative continuation. Replace forks overwrite the
	// most recent entry created by the same instruction.
	fork := func(at, resume, resumePos int, replace bool) {
		entry := backtrack{ip: resume, pos: resumePos, forkIP: at, regs: regs.clone()}
		if replace {
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].forkIP == at {
					stack[i] = entry
					return
				}
			}
		}
		stack = append(stack, entry)
	}

	// transfer performs a jump-like operation of the given kind.
	transfer := func(in bytecode.Instruction, kind bytecode.OpCode) {
		target := in.Target()
		switch kind {
		case bytecode.OpJump:
			ip = target
		case bytecode.OpForkJump, bytecode.OpForkReplaceJump:
			fork(in.IP, in.Next(), pos, kind == bytecode.OpForkReplaceJump)
			ip = target
		case bytecode.OpForkStay, bytecode.OpForkReplaceStay:
			fork(in.IP, target, pos, kind == bytecode.OpForkReplaceStay)
			ip = in.Next()
		}
	}

	for {
		*steps++
		if m.opts.MaxSteps > 0 && *steps > m.opts.MaxSteps {
			return nil, fmt.Errorf("%w: %d", ErrStepLimit, m.opts.MaxSteps)
		}

		in := bytecode.Decode(m.code, ip)
		ok := true
		switch in.Op {
		case bytecode.OpExit:
			regs.caps[0], regs.caps[1] = start, pos
			return regs.caps, nil
		case bytecode.OpCompare:
			pos, ok = m.compare(in, input, pos, regs.caps)
			ip = in.Next()
		case bytecode.OpJump, bytecode.OpForkJump, bytecode.OpForkStay,
			bytecode.OpForkReplaceJump, bytecode.OpForkReplaceStay:
			transfer(in, in.Op)
		case bytecode.OpJumpNonEmpty:
			if last, seen := regs.checkpoints[int(in.Arg(1))]; seen && last == pos {
				ip = in.Next()
			} else {
				transfer(in, in.Form())
			}
		case bytecode.OpRepeat:
			id, count := int(in.Arg(2)), int(in.Arg(1))
			regs.counters[id]++
			if regs.counters[id] < count {
				ip = in.Target()
			} else {
				regs.counters[id] = 0
				ip = in.Next()
			}
		case bytecode.OpCheckBegin:
			ok = pos == 0 || (bytecode.CheckMode(in.Arg(0)) == bytecode.CheckLine && input[pos-1] == '\n')
			ip = in.Next()
		case bytecode.OpCheckEnd:
			ok = pos == len(input) || (bytecode.CheckMode(in.Arg(0)) == bytecode.CheckLine && input[pos] == '\n')
			ip = in.Next()
		case bytecode.OpCheckBoundary:
			before, bs := m.prevChar(input, pos)
			after, as := m.readChar(input, pos)
			atBoundary := (bs > 0 && isWordChar(before)) != (as > 0 && isWordChar(after))
			ok = atBoundary == (bytecode.BoundaryKind(in.Arg(0)) == bytecode.BoundaryWord)
			ip = in.Next()
		case bytecode.OpSave:
			regs.saved = append(regs.saved, pos)
			ip = in.Next()
		case bytecode.OpRestore:
			if n := len(regs.saved); n > 0 {
				pos = regs.saved[n-1]
				regs.saved = regs.saved[:n-1]
			}
			ip = in.Next()
		case bytecode.OpGoBack:
			for n := int(in.Arg(0)); n > 0 && ok; n-- {
				_, size := m.prevChar(input, pos)
				if size == 0 {
					ok = false
				}
				pos -= size
			}
			ip = in.Next()
		case bytecode.OpCheckpoint:
			regs.checkpoints[int(in.Arg(0))] = pos
			ip = in.Next()
		case bytecode.OpSaveLeftCaptureGroup:
			regs.caps[2*int(in.Arg(0))] = pos
			ip = in.Next()
		case bytecode.OpSaveRightCaptureGroup, bytecode.OpSaveRightNamedCaptureGroup:
			regs.caps[2*int(in.Arg(0))+1] = pos
			ip = in.Next()
		case bytecode.OpClearCaptureGroup:
			g := int(in.Arg(0))
			regs.caps[2*g], regs.caps[2*g+1] = -1, -1
			ip = in.Next()
		default:
			return nil, fmt.Errorf("%w: %s at %d", ErrUnsupportedOpcode, in.Op, in.IP)
		}

		if ok {
			continue
		}
		if len(stack) == 0 {
			return nil, nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ip, pos, regs = top.ip, top.pos, top.regs
	}
}
