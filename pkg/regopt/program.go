package regopt

import (
	"fmt"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/compiler"
	"github.com/KromDaniel/regopt/internal/optimizer"
	"github.com/KromDaniel/regopt/internal/vm"
)

// Range is an inclusive range of code points.
type Range struct {
	From, To rune
}

// Program is a compiled pattern in a form that can be stored as Go source.
type Program struct {
	Pattern         string
	Unicode         bool
	CaseInsensitive bool

	// Code is the bytecode executed by the matcher.
	Code []uint64

	// GroupNames has one entry per capture group plus the whole match at
	// index 0. Unnamed groups have an empty name. Nil means no groups.
	GroupNames []string

	// Matching hints. A program without them matches the same strings, only
	// slower.
	Substring       string
	HasSubstring    bool
	StartRanges     []Range
	StartRangesFold []Range
	OnlyLineStart   bool
}

func exportRanges(rs []bytecode.CharRange) []Range {
	if len(rs) == 0 {
		return nil
	}
	out := make([]Range, len(rs))
	for i, r := range rs {
		out[i] = Range{From: r.From, To: r.To}
	}
	return out
}

func importRanges(rs []Range) []bytecode.CharRange {
	if len(rs) == 0 {
		return nil
	}
	out := make([]bytecode.CharRange, len(rs))
	for i, r := range rs {
		out[i] = bytecode.CharRange{From: r.From, To: r.To}
	}
	return out
}

func exportProgram(prog *compiler.Program) Program {
	p := Program{
		Pattern:         prog.Pattern,
		Unicode:         prog.Unicode,
		CaseInsensitive: prog.CaseInsensitive,
		Code:            prog.Code,
		StartRanges:     exportRanges(prog.Data.StartingRanges),
		StartRangesFold: exportRanges(prog.Data.StartingRangesInsensitive),
		OnlyLineStart:   prog.Data.OnlyStartOfLine,
	}
	if prog.NumGroups() > 0 {
		p.GroupNames = prog.GroupNames
	}
	if s := prog.Data.PureSubstringSearch; s != nil {
		p.Substring, p.HasSubstring = *s, true
	}
	return p
}

func (p Program) data() optimizer.OptimizationData {
	data := optimizer.OptimizationData{
		StartingRanges:            importRanges(p.StartRanges),
		StartingRangesInsensitive: importRanges(p.StartRangesFold),
		OnlyStartOfLine:           p.OnlyLineStart,
	}
	if p.HasSubstring {
		s := p.Substring
		data.PureSubstringSearch = &s
	}
	return data
}

// Validate checks that the program decodes and that its hints agree with it.
func (p Program) Validate() error {
	if err := bytecode.Validate(p.Code); err != nil {
		return err
	}
	if len(p.StartRanges) > 0 && len(p.StartRangesFold) == 0 {
		return fmt.Errorf("start ranges without folded ranges")
	}
	if groups := vm.CaptureGroups(p.Code); p.GroupNames != nil && len(p.GroupNames) < groups+1 {
		return fmt.Errorf("program uses %d capture groups but names %d", groups, len(p.GroupNames)-1)
	}
	return nil
}

// Load creates a matcher for a stored program.
func Load(p Program) (*Regexp, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	return newRegexp(p, 0), nil
}

// MustLoad is like Load but panics on an invalid program. Generated files
// call it at package initialization.
func MustLoad(p Program) *Regexp {
	re, err := Load(p)
	if err != nil {
		panic(fmt.Sprintf("regopt: Load(%q): %v", p.Pattern, err))
	}
	return re
}
