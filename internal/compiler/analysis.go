package compiler

import (
	"regexp/syntax"
	"sort"
)

// Analysis describes the structure of a parsed pattern.
type Analysis struct {
	GroupNames           []string
	HasRepeatingCaptures bool
	Anchored             bool
	Nullable             bool
	MatchLength
	// FeatureLabels are derived from the pattern structure (sorted).
	FeatureLabels []string
}

// Analyze inspects a parsed pattern.
func Analyze(re *syntax.Regexp, unicode bool) Analysis {
	return Analysis{
		GroupNames:           extractCaptureNames(re),
		HasRepeatingCaptures: hasRepeatingCaptures(re),
		Anchored:             isAnchored(re),
		Nullable:             nullable(re),
		MatchLength:          AnalyzeMatchLength(re, unicode),
		FeatureLabels:        deriveFeatureLabels(re),
	}
}

// extractCaptureNames extracts capture group names from the regex AST.
func extractCaptureNames(re *syntax.Regexp) []string {
	names := make([]string, re.MaxCap()+1)
	var walk func(*syntax.Regexp)
	walk = func(r *syntax.Regexp) {
		if r.Op == syntax.OpCapture {
			names[r.Cap] = r.Name
		}
		for _, sub := range r.Sub {
			walk(sub)
		}
	}
	walk(re)
	return names
}

// hasRepeatingCaptures checks if the regex has any capture groups in
// repeating context. Only the last iteration of such a group is reported.
func hasRepeatingCaptures(re *syntax.Regexp) bool {
	return walkCheckRepeating(re, false)
}

func walkCheckRepeating(re *syntax.Regexp, inRepeat bool) bool {
	if re.Op == syntax.OpCapture && inRepeat {
		return true
	}
	isRepeating := false
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus, syntax.OpRepeat:
		isRepeating = true
	}
	for _, sub := range re.Sub {
		if walkCheckRepeating(sub, inRepeat || isRepeating) {
			return true
		}
	}
	return false
}

// isAnchored reports whether every match must begin at the start of the
// text.
func isAnchored(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginText:
		return true
	case syntax.OpCapture:
		return isAnchored(re.Sub[0])
	case syntax.OpConcat:
		return len(re.Sub) > 0 && isAnchored(re.Sub[0])
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if !isAnchored(sub) {
				return false
			}
		}
		return len(re.Sub) > 0
	}
	return false
}

// nullable reports whether re can match without consuming input.
func nullable(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL, syntax.OpNoMatch:
		return false
	case syntax.OpCapture, syntax.OpPlus:
		return nullable(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min == 0 || nullable(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !nullable(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if nullable(sub) {
				return true
			}
		}
		return false
	}
	// Empty match, anchors, boundaries, star and quest.
	return true
}

// deriveFeatureLabels extracts feature labels from the pattern structure.
func deriveFeatureLabels(re *syntax.Regexp) []string {
	seen := map[string]bool{}
	var walk func(*syntax.Regexp)
	walk = func(r *syntax.Regexp) {
		switch r.Op {
		case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText:
			seen["Anchored"] = true
		case syntax.OpAlternate:
			seen["Alternation"] = true
		case syntax.OpCapture:
			seen["Captures"] = true
		case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
			seen["CharClass"] = true
			runes := r.Rune
			if isNegated(runes) {
				runes = complement(runes)
			}
			for _, c := range runes {
				if c >= MaxASCIIRune {
					seen["UnicodeCharClass"] = true
					break
				}
			}
		case syntax.OpLiteral:
			if r.Flags&syntax.FoldCase != 0 {
				seen["FoldCase"] = true
			}
			for _, c := range r.Rune {
				if c >= MaxASCIIRune {
					seen["Multibyte"] = true
					break
				}
			}
		case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
			seen["Quantifiers"] = true
		case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
			seen["WordBoundary"] = true
		}
		for _, sub := range r.Sub {
			walk(sub)
		}
	}
	walk(re)

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	if len(labels) == 0 {
		labels = append(labels, "Simple")
	}
	sort.Strings(labels)
	return labels
}
