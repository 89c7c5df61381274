package bytecode

import (
	"fmt"
	"strings"
)

// CharRange is an inclusive code point range. In the stream it is packed into
// one word as From<<32 | To.
type CharRange struct {
	From rune
	To   rune
}

// Pack encodes the range as a single word.
func (r CharRange) Pack() Word { return Word(uint32(r.From))<<32 | Word(uint32(r.To)) }

// UnpackRange decodes a word produced by Pack.
func UnpackRange(w Word) CharRange {
	return CharRange{From: rune(uint32(w >> 32)), To: rune(uint32(w))}
}

// Contains reports whether c lies inside the range.
func (r CharRange) Contains(c rune) bool { return c >= r.From && c <= r.To }

// Overlaps reports whether the two ranges share a code point.
func (r CharRange) Overlaps(o CharRange) bool { return r.From <= o.To && o.From <= r.To }

func (r CharRange) String() string {
	if r.From == r.To {
		return fmt.Sprintf("%q", r.From)
	}
	return fmt.Sprintf("%q-%q", r.From, r.To)
}

// RangeTable is the payload of a LookupTable predicate: sorted, coalesced
// ranges plus an optional ASCII-lowercased copy used in case-insensitive mode.
type RangeTable struct {
	Sensitive   []CharRange
	Insensitive []CharRange
}

// Predicate is one test inside a Compare instruction.
type Predicate struct {
	Type  CompareType
	Value Word

	// Runes holds the literal for CompareString.
	Runes []rune
	// Table holds the payload for CompareLookupTable.
	Table *RangeTable
}

// Char returns a literal character predicate.
func Char(r rune) Predicate { return Predicate{Type: CompareChar, Value: Word(r)} }

// Range returns an inclusive range predicate.
func Range(from, to rune) Predicate {
	return Predicate{Type: CompareCharRange, Value: CharRange{From: from, To: to}.Pack()}
}

// Class returns a character class predicate.
func Class(c CharClass) Predicate { return Predicate{Type: CompareCharClass, Value: Word(c)} }

// Marker returns a value-less predicate such as Inverse or Or.
func Marker(t CompareType) Predicate { return Predicate{Type: t} }

// Facet returns a Unicode facet predicate referencing the facet index id.
func Facet(t CompareType, id int) Predicate { return Predicate{Type: t, Value: Word(id)} }

// Reference returns a back-reference predicate for group.
func Reference(group int) Predicate { return Predicate{Type: CompareReference, Value: Word(group)} }

// Literal returns an embedded string predicate.
func Literal(s string) Predicate { return Predicate{Type: CompareString, Runes: []rune(s)} }

// Table returns a lookup table predicate.
func Table(t RangeTable) Predicate { return Predicate{Type: CompareLookupTable, Table: &t} }

// Range returns the packed range of a CharRange predicate, or the degenerate
// range of a Char predicate.
func (p Predicate) Range() CharRange {
	if p.Type == CompareChar {
		return CharRange{From: rune(p.Value), To: rune(p.Value)}
	}
	return UnpackRange(p.Value)
}

func (p Predicate) String() string {
	switch p.Type {
	case CompareChar:
		return fmt.Sprintf("Char %q", rune(p.Value))
	case CompareCharRange:
		return "CharRange " + UnpackRange(p.Value).String()
	case CompareCharClass:
		return "CharClass " + CharClass(p.Value).String()
	case CompareString:
		return fmt.Sprintf("String %q", string(p.Runes))
	case CompareLookupTable:
		parts := make([]string, 0, len(p.Table.Sensitive))
		for _, r := range p.Table.Sensitive {
			parts = append(parts, r.String())
		}
		s := "LookupTable [" + strings.Join(parts, " ") + "]"
		if len(p.Table.Insensitive) > 0 {
			s += fmt.Sprintf(" (+%d insensitive)", len(p.Table.Insensitive))
		}
		return s
	case CompareReference, CompareProperty, CompareGeneralCategory, CompareScript, CompareScriptExtension:
		return fmt.Sprintf("%s %d", p.Type, p.Value)
	}
	return p.Type.String()
}

func (p Predicate) appendTo(args []Word) []Word {
	args = append(args, Word(p.Type))
	switch p.Type {
	case CompareString:
		args = append(args, Word(len(p.Runes)))
		for _, r := range p.Runes {
			args = append(args, Word(r))
		}
	case CompareLookupTable:
		args = append(args, Word(len(p.Table.Sensitive)), Word(len(p.Table.Insensitive)))
		for _, r := range p.Table.Sensitive {
			args = append(args, r.Pack())
		}
		for _, r := range p.Table.Insensitive {
			args = append(args, r.Pack())
		}
	default:
		if p.Type.HasValue() {
			args = append(args, p.Value)
		}
	}
	return args
}

func decodePredicates(args []Word, count int) ([]Predicate, error) {
	preds := make([]Predicate, 0, count)
	pos := 0
	need := func(n int) error {
		if pos+n > len(args) {
			return fmt.Errorf("operand list truncated at word %d", pos)
		}
		return nil
	}
	for i := 0; i < count; i++ {
		if err := need(1); err != nil {
			return nil, err
		}
		t := CompareType(args[pos])
		pos++
		if _, ok := compareNames[t]; !ok {
			return nil, fmt.Errorf("unknown compare type %d", Word(t))
		}
		p := Predicate{Type: t}
		switch t {
		case CompareString:
			if err := need(1); err != nil {
				return nil, err
			}
			n := int(args[pos])
			pos++
			if err := need(n); err != nil {
				return nil, err
			}
			p.Runes = make([]rune, n)
			for j := range p.Runes {
				p.Runes[j] = rune(args[pos+j])
			}
			pos += n
		case CompareLookupTable:
			if err := need(2); err != nil {
				return nil, err
			}
			ns, ni := int(args[pos]), int(args[pos+1])
			pos += 2
			if err := need(ns + ni); err != nil {
				return nil, err
			}
			table := &RangeTable{}
			for j := 0; j < ns; j++ {
				table.Sensitive = append(table.Sensitive, UnpackRange(args[pos+j]))
			}
			for j := 0; j < ni; j++ {
				table.Insensitive = append(table.Insensitive, UnpackRange(args[pos+ns+j]))
			}
			pos += ns + ni
			p.Table = table
		default:
			if t.HasValue() {
				if err := need(1); err != nil {
					return nil, err
				}
				p.Value = args[pos]
				pos++
			}
		}
		preds = append(preds, p)
	}
	if pos != len(args) {
		return nil, fmt.Errorf("operand size %d does not match decoded size %d", len(args), pos)
	}
	return preds, nil
}

// Predicates decodes the operand list of a Compare instruction. The stream is
// assumed to have passed Validate; malformed operands yield what could be
// decoded.
func (in Instruction) Predicates() []Predicate {
	if in.Op != OpCompare {
		return nil
	}
	preds, _ := decodePredicates(in.words[3:], int(in.words[1]))
	return preds
}

// FlatPredicates is like Predicates but expands lookup tables into their
// case-sensitive ranges so analyses can reason about them. A table that
// follows a one-shot inversion is kept whole, since the inversion applies to
// the table as a unit.
func (in Instruction) FlatPredicates() []Predicate {
	preds := in.Predicates()
	var out []Predicate
	for i, p := range preds {
		if p.Type != CompareLookupTable || (i > 0 && preds[i-1].Type == CompareTemporaryInverse) {
			out = append(out, p)
			continue
		}
		for _, r := range p.Table.Sensitive {
			out = append(out, Predicate{Type: CompareCharRange, Value: r.Pack()})
		}
	}
	return out
}
