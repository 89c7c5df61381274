package compiler

import (
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, pattern string, unicode bool) Analysis {
	t.Helper()
	re, err := syntax.Parse(pattern, syntax.Perl)
	require.NoError(t, err)
	return Analyze(re, unicode)
}

func TestAnalyzeFeatureLabels(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"abc", []string{"Simple"}},
		{"^a$", []string{"Anchored"}},
		{"cat|dog", []string{"Alternation"}},
		{"(a)+", []string{"Captures", "Quantifiers"}},
		{`[a-z]\b`, []string{"CharClass", "WordBoundary"}},
		{"(?i)a", []string{"FoldCase"}},
		{"é", []string{"Multibyte"}},
		{"[é-ü]", []string{"CharClass", "UnicodeCharClass"}},
		{`[^\s]`, []string{"CharClass"}},
		{"[^é]", []string{"CharClass", "UnicodeCharClass"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, analyze(t, tt.pattern, true).FeatureLabels)
		})
	}
}

func TestAnalyzeStructure(t *testing.T) {
	a := analyze(t, `(?P<year>\d{4})-(\d{2})`, true)
	assert.Equal(t, []string{"", "year", ""}, a.GroupNames)
	assert.False(t, a.HasRepeatingCaptures)
	assert.False(t, a.Anchored)
	assert.False(t, a.Nullable)

	assert.True(t, analyze(t, "(a)*", true).HasRepeatingCaptures)
	assert.True(t, analyze(t, "^a|^b", true).Anchored)
	assert.False(t, analyze(t, "^a|b", true).Anchored)
	assert.True(t, analyze(t, "(a?)*", true).Nullable)
	assert.True(t, analyze(t, "a{0,3}", true).Nullable)
	assert.False(t, analyze(t, "a+", true).Nullable)
}

func TestAnalyzeMatchLength(t *testing.T) {
	tests := []struct {
		pattern string
		unicode bool
		want    MatchLength
	}{
		{"abc", true, MatchLength{3, 3}},
		{"a{2,4}", true, MatchLength{2, 4}},
		{"a+", true, MatchLength{1, Unbounded}},
		{"ab?", true, MatchLength{1, 2}},
		{"cat|horse", true, MatchLength{3, 5}},
		{"é", true, MatchLength{2, 2}},
		{"é", false, MatchLength{2, 2}},
		{".", true, MatchLength{1, 4}},
		{".", false, MatchLength{1, 1}},
		{"[a-zж]", true, MatchLength{1, 2}},
		{"(?i)s", true, MatchLength{1, 2}},
		{"(?i)s", false, MatchLength{1, 1}},
		{"^$", true, MatchLength{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := syntax.Parse(tt.pattern, syntax.Perl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, AnalyzeMatchLength(re, tt.unicode))
		})
	}
}
