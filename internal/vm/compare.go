package vm

import (
	"github.com/KromDaniel/regopt/internal/bytecode"
	"golang.org/x/exp/slices"
)

func toLower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func toUpper(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func inRanges(ranges []bytecode.CharRange, c rune) bool {
	i, found := slices.BinarySearchFunc(ranges, c, func(r bytecode.CharRange, c rune) int {
		if r.To < c {
			return -1
		}
		if r.From > c {
			return 1
		}
		return 0
	})
	return found && i < len(ranges)
}

// inversion tracks sticky and one-shot inversion while one group of a
// compare is evaluated.
type inversion struct {
	sticky  bool
	oneShot bool
	reset   bool
}

func (s inversion) next(p bytecode.Predicate) inversion {
	if s.reset {
		s.reset = false
		s.oneShot = false
	} else {
		s.reset = true
	}
	switch p.Type {
	case bytecode.CompareInverse:
		s.sticky = !s.sticky
	case bytecode.CompareTemporaryInverse:
		s.oneShot = true
		s.reset = false
	}
	return s
}

// testChar evaluates a single-character predicate.
func (m *Machine) testChar(p bytecode.Predicate, c rune) bool {
	switch p.Type {
	case bytecode.CompareAnyChar:
		return true
	case bytecode.CompareChar, bytecode.CompareCharRange:
		r := p.Range()
		if r.Contains(c) {
			return true
		}
		return m.opts.Insensitive && (r.Contains(toLower(c)) || r.Contains(toUpper(c)))
	case bytecode.CompareCharClass:
		return bytecode.CharClass(p.Value).Matches(c)
	case bytecode.CompareLookupTable:
		if !m.opts.Insensitive {
			return inRanges(p.Table.Sensitive, c)
		}
		if len(p.Table.Insensitive) > 0 {
			return inRanges(p.Table.Insensitive, toLower(c))
		}
		return inRanges(p.Table.Sensitive, toLower(c))
	case bytecode.CompareProperty:
		return m.facts.HasProperty(c, int(p.Value))
	case bytecode.CompareGeneralCategory:
		return m.facts.HasGeneralCategory(c, int(p.Value))
	case bytecode.CompareScript:
		return m.facts.HasScript(c, int(p.Value))
	case bytecode.CompareScriptExtension:
		return m.facts.HasScriptExtension(c, int(p.Value))
	}
	return false
}

// evalGroup evaluates preds[i:] up to the matching EndAndOr as a union, or
// as an intersection when conj is set, and returns the index after it.
func (m *Machine) evalGroup(preds []bytecode.Predicate, i int, conj bool, c rune) (bool, int) {
	acc := conj
	var inv inversion
	for i < len(preds) {
		p := preds[i]
		i++
		inv = inv.next(p)

		var v bool
		switch p.Type {
		case bytecode.CompareInverse, bytecode.CompareTemporaryInverse:
			continue
		case bytecode.CompareEndAndOr:
			return acc != inv.sticky, i
		case bytecode.CompareOr:
			v, i = m.evalGroup(preds, i, false, c)
		case bytecode.CompareAnd:
			v, i = m.evalGroup(preds, i, true, c)
		default:
			v = m.testChar(p, c)
		}
		if inv.oneShot {
			v = !v
		}
		if conj {
			acc = acc && v
		} else {
			acc = acc || v
		}
	}
	return acc != inv.sticky, i
}

func (m *Machine) sameChar(a, b rune) bool {
	if a == b {
		return true
	}
	return m.opts.Insensitive && toLower(a) == toLower(b)
}

// compare runs one Compare instruction at pos and returns the position after
// the consumed input.
func (m *Machine) compare(in bytecode.Instruction, input string, pos int, caps []int) (int, bool) {
	preds := in.Predicates()
	if len(preds) == 1 {
		switch preds[0].Type {
		case bytecode.CompareString:
			for _, want := range preds[0].Runes {
				c, size := m.readChar(input, pos)
				if size == 0 || !m.sameChar(c, want) {
					return pos, false
				}
				pos += size
			}
			return pos, true
		case bytecode.CompareReference:
			group := int(preds[0].Value)
			if 2*group+1 >= len(caps) || caps[2*group] < 0 || caps[2*group+1] < 0 {
				return pos, false
			}
			ref := input[caps[2*group]:caps[2*group+1]]
			for rp := 0; rp < len(ref); {
				want, wsize := m.readChar(ref, rp)
				c, size := m.readChar(input, pos)
				if size == 0 || !m.sameChar(c, want) {
					return pos, false
				}
				rp += wsize
				pos += size
			}
			return pos, true
		}
	}

	c, size := m.readChar(input, pos)
	if size == 0 || len(preds) == 0 {
		return pos, false
	}
	ok, _ := m.evalGroup(preds, 0, false, c)
	return pos + size, ok
}
