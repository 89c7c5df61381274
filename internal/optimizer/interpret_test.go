package optimizer

import (
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/unicodefacts"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	inverse   = bytecode.Marker(bytecode.CompareInverse)
	oneShot   = bytecode.Marker(bytecode.CompareTemporaryInverse)
	anyChar   = bytecode.Marker(bytecode.CompareAnyChar)
	or        = bytecode.Marker(bytecode.CompareOr)
	and       = bytecode.Marker(bytecode.CompareAnd)
	endAndOr  = bytecode.Marker(bytecode.CompareEndAndOr)
	testFacts = unicodefacts.Tables{}
)

func TestInterpretRanges(t *testing.T) {
	summary, res := Interpret([]bytecode.Predicate{bytecode.Char('a'), bytecode.Range('0', '9'), bytecode.Char('b')})
	require.Equal(t, Interpreted, res)

	want := rangeSet{{From: '0', To: '9'}, {From: 'a', To: 'b'}}
	if diff := cmp.Diff(want, summary.Ranges); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, summary.hasNegations())
}

func TestInterpretInversions(t *testing.T) {
	summary, res := Interpret([]bytecode.Predicate{oneShot, bytecode.Char('a'), bytecode.Char('b')})
	require.Equal(t, Interpreted, res)
	assert.Equal(t, rangeSet{{From: 'a', To: 'a'}}, summary.NegatedRanges)
	assert.Equal(t, rangeSet{{From: 'b', To: 'b'}}, summary.Ranges)

	summary, res = Interpret([]bytecode.Predicate{inverse, bytecode.Class(bytecode.ClassDigit)})
	require.Equal(t, Interpreted, res)
	assert.True(t, summary.StickyInverted)
	assert.True(t, summary.NegatedClasses[bytecode.ClassDigit])
}

func TestInterpretOpaque(t *testing.T) {
	tests := []struct {
		name  string
		preds []bytecode.Predicate
	}{
		{"any char", []bytecode.Predicate{anyChar}},
		{"string", []bytecode.Predicate{bytecode.Literal("ab")}},
		{"reference", []bytecode.Predicate{bytecode.Reference(1)}},
		{"and", []bytecode.Predicate{and, bytecode.Char('a'), endAndOr}},
		{"table", []bytecode.Predicate{bytecode.Table(bytecode.RangeTable{Sensitive: []bytecode.CharRange{{From: 'a', To: 'z'}}})}},
		{"inverted group", []bytecode.Predicate{oneShot, or, bytecode.Char('a'), endAndOr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := Interpret(tt.preds)
			assert.Equal(t, Opaque, res)
		})
	}
}

func TestInterpretAnyCharInsideOr(t *testing.T) {
	summary, res := Interpret([]bytecode.Predicate{or, anyChar, endAndOr})
	require.Equal(t, Interpreted, res)
	assert.True(t, summary.MatchesAnything)
}

func TestOverlaps(t *testing.T) {
	lu, ok := unicodefacts.Lookup(unicodefacts.GeneralCategory, "Lu")
	require.True(t, ok)
	upper := bytecode.Facet(bytecode.CompareGeneralCategory, lu)

	tests := []struct {
		name     string
		lhs, rhs []bytecode.Predicate
		want     bool
	}{
		{"distinct chars", chars('a'), chars('b'), false},
		{"char in range", chars('a'), []bytecode.Predicate{bytecode.Range('a', 'z')}, true},
		{"digit class vs letter", []bytecode.Predicate{bytecode.Class(bytecode.ClassDigit)}, chars('a'), false},
		{"word class vs underscore", []bytecode.Predicate{bytecode.Class(bytecode.ClassWord)}, chars('_'), true},
		{"digits vs alpha class", []bytecode.Predicate{bytecode.Range('0', '9')}, []bytecode.Predicate{bytecode.Class(bytecode.ClassAlpha)}, false},
		{"negated lhs", []bytecode.Predicate{inverse, bytecode.Char('a')}, chars('b'), true},
		{"negated rhs", chars('a'), []bytecode.Predicate{oneShot, bytecode.Char('b')}, true},
		{"string rhs", chars('a'), []bytecode.Predicate{bytecode.Literal("b")}, true},
		{"or group", []bytecode.Predicate{or, bytecode.Char('a'), bytecode.Char('b'), endAndOr}, chars('c'), false},
		{"anything in or", []bytecode.Predicate{or, anyChar, endAndOr}, chars('c'), true},
		{"facet vs lowercase", []bytecode.Predicate{upper}, chars('a'), false},
		{"facet vs uppercase", []bytecode.Predicate{upper}, chars('A'), true},
		{"empty lhs", nil, chars('a'), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.lhs, tt.rhs, testFacts))
		})
	}
}

func TestSummariesOverlap(t *testing.T) {
	a, _ := Interpret(chars('a', 'b'))
	c, _ := Interpret(chars('c'))
	digits, _ := Interpret([]bytecode.Predicate{bytecode.Class(bytecode.ClassDigit)})

	assert.True(t, SummariesOverlap(nil, a, testFacts))
	assert.False(t, SummariesOverlap(a, c, testFacts))
	assert.True(t, SummariesOverlap(a, a, testFacts))
	assert.False(t, SummariesOverlap(digits, a, testFacts))
}

func TestInversionState(t *testing.T) {
	var s inversionState
	s = s.step().apply(oneShot)
	s = s.step().apply(bytecode.Char('a'))
	assert.True(t, s.inverted())
	s = s.step().apply(bytecode.Char('b'))
	assert.False(t, s.inverted())
	s = s.step().apply(inverse)
	assert.True(t, s.inverted())
}
