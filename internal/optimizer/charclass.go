package optimizer

import (
	"fmt"

	"github.com/KromDaniel/regopt/internal/bytecode"
)

// tablePredicate packs ranges into a lookup table. The lowercased sibling is
// only stored when some range holds an ASCII uppercase letter.
func tablePredicate(ranges []bytecode.CharRange) bytecode.Predicate {
	table := bytecode.RangeTable{Sensitive: coalesce(ranges)}
	if touchesUpper(table.Sensitive) {
		table.Insensitive = foldRanges(table.Sensitive)
	}
	return bytecode.Table(table)
}

// classCompiler accumulates the operands of one character test.
type classCompiler struct {
	out     []bytecode.Predicate
	pending []bytecode.CharRange
	oneShot bool
	groups  []bytecode.CompareType
}

func (c *classCompiler) flush() {
	if len(c.pending) == 0 {
		return
	}
	c.out = append(c.out, tablePredicate(c.pending))
	c.pending = nil
}

// flushOnEvery is set inside an And group, where items must stay separate.
func (c *classCompiler) flushOnEvery() bool {
	return len(c.groups) > 0 && c.groups[len(c.groups)-1] == bytecode.CompareAnd
}

// raw emits p as is, preceded by a pending one-shot inversion.
func (c *classCompiler) raw(p bytecode.Predicate) {
	if c.oneShot {
		c.out = append(c.out, bytecode.Marker(bytecode.CompareTemporaryInverse))
		c.oneShot = false
	}
	c.out = append(c.out, p)
}

func (c *classCompiler) add(p bytecode.Predicate) error {
	switch p.Type {
	case bytecode.CompareTemporaryInverse:
		c.oneShot = true
	case bytecode.CompareChar, bytecode.CompareCharRange:
		switch {
		case c.oneShot:
			c.flush()
			c.raw(tablePredicate([]bytecode.CharRange{p.Range()}))
		case c.flushOnEvery():
			c.raw(p)
		default:
			c.pending = append(c.pending, p.Range())
		}
	case bytecode.CompareAnyChar:
		if !c.oneShot && !c.flushOnEvery() {
			c.pending = nil
		}
		c.raw(p)
	case bytecode.CompareInverse:
		c.flush()
		c.raw(p)
	case bytecode.CompareOr, bytecode.CompareAnd:
		c.flush()
		c.raw(p)
		c.groups = append(c.groups, p.Type)
	case bytecode.CompareEndAndOr:
		c.flush()
		c.raw(p)
		if len(c.groups) > 0 {
			c.groups = c.groups[:len(c.groups)-1]
		}
	case bytecode.CompareString, bytecode.CompareLookupTable:
		return fmt.Errorf("%w: %s cannot appear in a character class", ErrInconsistentProgram, p.Type)
	default:
		c.raw(p)
	}
	return nil
}

// AppendCharacterClass appends one Compare testing a single character
// against preds. Literal characters and ranges are packed into sorted
// lookup tables; classes, Unicode facets and combinators are kept as they
// are.
func AppendCharacterClass(target *bytecode.ByteCode, preds []bytecode.Predicate) error {
	if len(preds) <= 1 {
		for _, p := range preds {
			if p.Type == bytecode.CompareString || p.Type == bytecode.CompareLookupTable {
				return fmt.Errorf("%w: %s cannot appear in a character class", ErrInconsistentProgram, p.Type)
			}
		}
		target.EmitCompare(preds)
		return nil
	}

	var c classCompiler
	for _, p := range preds {
		if err := c.add(p); err != nil {
			return err
		}
	}
	c.flush()
	target.EmitCompare(c.out)
	return nil
}
