package optimizer

import (
	"github.com/KromDaniel/regopt/internal/bytecode"
)

// Interpretation is the outcome of replaying a predicate list.
type Interpretation int

const (
	// Opaque means the list holds something the interpreter cannot reason
	// about; the accompanying summary must not be trusted.
	Opaque Interpretation = iota
	// Interpreted means the summary describes the list.
	Interpreted
)

func (i Interpretation) String() string {
	if i == Interpreted {
		return "interpreted"
	}
	return "opaque"
}

type facetKey struct {
	kind bytecode.CompareType
	id   int
}

// CompareSummary is the canonical form of one compare operand list.
type CompareSummary struct {
	Ranges         rangeSet
	NegatedRanges  rangeSet
	Classes        map[bytecode.CharClass]bool
	NegatedClasses map[bytecode.CharClass]bool
	Facets         map[facetKey]bool
	NegatedFacets  map[facetKey]bool

	HasUnicodeFacet bool
	// MatchesAnything is set when AnyChar appeared inside an Or group.
	MatchesAnything bool
	// StickyInverted is set when a permanent inversion appeared anywhere in
	// the list.
	StickyInverted bool
}

func newSummary() *CompareSummary {
	return &CompareSummary{
		Classes:        map[bytecode.CharClass]bool{},
		NegatedClasses: map[bytecode.CharClass]bool{},
		Facets:         map[facetKey]bool{},
		NegatedFacets:  map[facetKey]bool{},
	}
}

// hasNegations reports whether anything in the summary was recorded under
// inversion.
func (s *CompareSummary) hasNegations() bool {
	return s.StickyInverted || len(s.NegatedRanges) > 0 || len(s.NegatedClasses) > 0 || len(s.NegatedFacets) > 0
}

// matchesNothing reports whether the summary accepts no code point at all.
func (s *CompareSummary) matchesNothing() bool {
	return !s.hasNegations() && !s.MatchesAnything && len(s.Ranges) == 0 && len(s.Classes) == 0 && len(s.Facets) == 0
}

// inversionState tracks the sticky and one-shot inversion flags while a
// predicate list is scanned.
type inversionState struct {
	sticky  bool
	oneShot bool
	reset   bool
}

// step is applied before each predicate: a one-shot inversion survives for
// exactly one predicate after the one that set it.
func (s inversionState) step() inversionState {
	if s.reset {
		s.reset = false
		s.oneShot = false
	} else {
		s.reset = true
	}
	return s
}

func (s inversionState) apply(p bytecode.Predicate) inversionState {
	switch p.Type {
	case bytecode.CompareInverse:
		s.sticky = !s.sticky
	case bytecode.CompareTemporaryInverse:
		s.oneShot = true
		s.reset = false
	}
	return s
}

func (s inversionState) inverted() bool { return s.sticky != s.oneShot }

// Interpret replays preds and summarizes which code points they accept.
func Interpret(preds []bytecode.Predicate) (*CompareSummary, Interpretation) {
	summary := newSummary()
	var state inversionState
	orDepth := 0

	for _, p := range preds {
		state = state.step().apply(p)
		inverted := state.inverted()

		switch p.Type {
		case bytecode.CompareInverse:
			summary.StickyInverted = true
		case bytecode.CompareTemporaryInverse:
		case bytecode.CompareAnyChar:
			if inverted {
				continue
			}
			if orDepth > 0 {
				summary.MatchesAnything = true
				continue
			}
			return summary, Opaque
		case bytecode.CompareChar, bytecode.CompareCharRange:
			if inverted {
				summary.NegatedRanges.add(p.Range())
			} else {
				summary.Ranges.add(p.Range())
			}
		case bytecode.CompareCharClass:
			if inverted {
				summary.NegatedClasses[bytecode.CharClass(p.Value)] = true
			} else {
				summary.Classes[bytecode.CharClass(p.Value)] = true
			}
		case bytecode.CompareProperty, bytecode.CompareGeneralCategory, bytecode.CompareScript, bytecode.CompareScriptExtension:
			summary.HasUnicodeFacet = true
			key := facetKey{kind: p.Type, id: int(p.Value)}
			if inverted {
				summary.NegatedFacets[key] = true
			} else {
				summary.Facets[key] = true
			}
		case bytecode.CompareOr:
			if state.oneShot {
				return summary, Opaque
			}
			orDepth++
		case bytecode.CompareEndAndOr:
			if orDepth > 0 {
				orDepth--
			}
		case bytecode.CompareString, bytecode.CompareLookupTable, bytecode.CompareAnd, bytecode.CompareReference:
			return summary, Opaque
		default:
			return summary, Opaque
		}
	}
	return summary, Interpreted
}

func facetHas(facts UnicodeFacts, key facetKey, r rune) bool {
	switch key.kind {
	case bytecode.CompareProperty:
		return facts.HasProperty(r, key.id)
	case bytecode.CompareGeneralCategory:
		return facts.HasGeneralCategory(r, key.id)
	case bytecode.CompareScript:
		return facts.HasScript(r, key.id)
	case bytecode.CompareScriptExtension:
		return facts.HasScriptExtension(r, key.id)
	}
	return true
}

// classScanLimit bounds the per-code-point scans used to relate ranges with
// classes and facets; wider ranges are assumed to intersect.
const classScanLimit = 0x800

// acceptsAnyIn reports whether the summary may accept a code point of r.
// The summary must be free of negations.
func (s *CompareSummary) acceptsAnyIn(r bytecode.CharRange, facts UnicodeFacts) bool {
	if s.MatchesAnything || s.Ranges.overlaps(r) {
		return true
	}
	if len(s.Classes) == 0 && len(s.Facets) == 0 {
		return false
	}
	if r.To-r.From >= classScanLimit {
		return true
	}
	for c := r.From; c <= r.To; c++ {
		for class := range s.Classes {
			if class.Matches(c) {
				return true
			}
		}
		for key := range s.Facets {
			if facetHas(facts, key, c) {
				return true
			}
		}
	}
	return false
}

// acceptsClassMember reports whether the summary may accept a member of class.
func (s *CompareSummary) acceptsClassMember(class bytecode.CharClass) bool {
	if s.MatchesAnything || s.Classes[class] || len(s.Facets) > 0 {
		return true
	}
	for _, r := range s.Ranges {
		if r.From > 0x7f {
			break
		}
		for c := r.From; c <= r.To && c <= 0x7f; c++ {
			if class.Matches(c) {
				return true
			}
		}
	}
	for other := range s.Classes {
		for c := rune(0); c <= 0x7f; c++ {
			if other.Matches(c) && class.Matches(c) {
				return true
			}
		}
	}
	return false
}

// Overlaps reports whether some single code point could satisfy both
// predicate lists. It answers true whenever it cannot prove otherwise.
func Overlaps(lhs, rhs []bytecode.Predicate, facts UnicodeFacts) bool {
	left, res := Interpret(lhs)
	if res == Opaque || left.hasNegations() {
		return true
	}
	if left.matchesNothing() {
		return false
	}

	for _, p := range rhs {
		switch p.Type {
		case bytecode.CompareOr, bytecode.CompareEndAndOr:
		case bytecode.CompareChar, bytecode.CompareCharRange:
			if left.acceptsAnyIn(p.Range(), facts) {
				return true
			}
		case bytecode.CompareCharClass:
			if left.acceptsClassMember(bytecode.CharClass(p.Value)) {
				return true
			}
		default:
			// Inversions, combinators, facets and anything that consumes
			// more than one character are not reasoned about.
			return true
		}
	}
	return false
}

// SummariesOverlap is the summary-level overlap test used when ordering trie
// children. A nil summary means the list could not be interpreted.
func SummariesOverlap(a, b *CompareSummary, facts UnicodeFacts) bool {
	if a == nil || b == nil {
		return true
	}
	if a.hasNegations() || b.hasNegations() {
		return true
	}
	if a.matchesNothing() || b.matchesNothing() {
		return false
	}
	if a.MatchesAnything || b.MatchesAnything {
		return true
	}
	if len(a.Facets) > 0 && len(b.Facets) > 0 {
		return true
	}
	for _, r := range a.Ranges {
		if b.acceptsAnyIn(r, facts) {
			return true
		}
	}
	for _, r := range b.Ranges {
		if a.acceptsAnyIn(r, facts) {
			return true
		}
	}
	for class := range a.Classes {
		if b.acceptsClassMember(class) {
			return true
		}
	}
	for class := range b.Classes {
		if a.acceptsClassMember(class) {
			return true
		}
	}
	return false
}
