package regopt

import (
	"fmt"
	"regexp/syntax"

	"github.com/KromDaniel/regopt/internal/compiler"
)

// Analysis describes the structure of a pattern without compiling it.
type Analysis struct {
	// FeatureLabels are derived from the pattern structure (e.g.
	// "Captures", "Multibyte"), sorted alphabetically.
	FeatureLabels []string

	// GroupNames has one entry per capture group plus the whole match.
	GroupNames []string

	// MinMatchLen and MaxMatchLen bound the match length in bytes.
	// MaxMatchLen is -1 when unbounded.
	MinMatchLen int
	MaxMatchLen int

	Anchored bool
	Nullable bool
}

// Analyze parses the pattern and reports its structure. It returns an
// error if the pattern is invalid.
//
// Example:
//
//	result, err := regopt.Analyze(`(?P<name>\w+)`, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.FeatureLabels) // [Captures CharClass Quantifiers]
func Analyze(pattern string, unicode bool) (*Analysis, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	a := compiler.Analyze(re, unicode)
	return &Analysis{
		FeatureLabels: a.FeatureLabels,
		GroupNames:    a.GroupNames,
		MinMatchLen:   a.MinMatchLen,
		MaxMatchLen:   a.MaxMatchLen,
		Anchored:      a.Anchored,
		Nullable:      a.Nullable,
	}, nil
}
