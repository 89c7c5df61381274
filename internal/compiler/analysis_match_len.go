package compiler

import (
	"regexp/syntax"
	"unicode"
	"unicode/utf8"
)

// MatchLength holds the match length bounds of a pattern, in input bytes.
type MatchLength struct {
	// MinMatchLen is the minimum number of bytes any match can have.
	MinMatchLen int

	// MaxMatchLen is the maximum number of bytes any match can have.
	// -1 means unbounded.
	MaxMatchLen int
}

// Unbounded marks a MaxMatchLen without limit.
const Unbounded = -1

// AnalyzeMatchLength computes the match length bounds of a pattern. In
// byte mode every class or wildcard consumes exactly one byte.
func AnalyzeMatchLength(re *syntax.Regexp, unicode bool) MatchLength {
	if re == nil {
		return MatchLength{}
	}
	w := widths{unicode: unicode}
	return MatchLength{MinMatchLen: w.shortest(re), MaxMatchLen: w.longest(re)}
}

type widths struct {
	unicode bool
}

// runeLen is the number of input bytes a literal rune occupies.
func (w widths) runeLen(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// foldedLen applies pick over the lengths of every case variant of r.
// Byte-mode programs match non-ASCII literals by their exact encoding.
func (w widths) foldedLen(r rune, fold bool, pick func(int, int) int) int {
	n := w.runeLen(r)
	if !fold || (!w.unicode && r >= MaxASCIIRune) {
		return n
	}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if !w.unicode && f > MaxByteRune {
			continue
		}
		n = pick(n, w.runeLen(f))
	}
	return n
}

func (w widths) literal(re *syntax.Regexp, pick func(int, int) int) int {
	fold := re.Flags&syntax.FoldCase != 0
	total := 0
	for _, r := range re.Rune {
		total += w.foldedLen(r, fold, pick)
	}
	return total
}

// classLen is the number of bytes one class member consumes.
func (w widths) classLen(r rune) int {
	if !w.unicode {
		return 1
	}
	return w.runeLen(r)
}

func (w widths) shortest(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpLiteral:
		return w.literal(re, minInt)
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return 0
		}
		// Runes are stored as [lo, hi] pairs; the smallest lo is the shortest.
		minLen := utf8.UTFMax
		for i := 0; i < len(re.Rune); i += 2 {
			minLen = min(minLen, w.classLen(re.Rune[i]))
			if re.Rune[i] <= utf8.RuneError && utf8.RuneError <= re.Rune[i+1] {
				// Invalid input bytes decode as RuneError, one byte each.
				minLen = 1
			}
		}
		return minLen
	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		return 1
	case syntax.OpCapture, syntax.OpPlus:
		return w.shortest(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min * w.shortest(re.Sub[0])
	case syntax.OpConcat:
		total := 0
		for _, sub := range re.Sub {
			total += w.shortest(sub)
		}
		return total
	case syntax.OpAlternate:
		if len(re.Sub) == 0 {
			return 0
		}
		best := w.shortest(re.Sub[0])
		for _, sub := range re.Sub[1:] {
			best = min(best, w.shortest(sub))
		}
		return best
	}
	// Zero-width assertions, empty and optional forms.
	return 0
}

func (w widths) longest(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpLiteral:
		return w.literal(re, maxInt)
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return 0
		}
		maxLen := 1
		for i := 1; i < len(re.Rune); i += 2 {
			maxLen = max(maxLen, w.classLen(re.Rune[i]))
		}
		return maxLen
	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		return w.classLen(utf8.MaxRune)
	case syntax.OpCapture, syntax.OpQuest:
		return w.longest(re.Sub[0])
	case syntax.OpStar, syntax.OpPlus:
		return Unbounded
	case syntax.OpRepeat:
		if re.Max == -1 {
			return Unbounded
		}
		sub := w.longest(re.Sub[0])
		if sub == Unbounded {
			return Unbounded
		}
		return re.Max * sub
	case syntax.OpConcat:
		total := 0
		for _, sub := range re.Sub {
			n := w.longest(sub)
			if n == Unbounded {
				return Unbounded
			}
			total += n
		}
		return total
	case syntax.OpAlternate:
		best := 0
		for _, sub := range re.Sub {
			n := w.longest(sub)
			if n == Unbounded {
				return Unbounded
			}
			best = max(best, n)
		}
		return best
	}
	return 0
}

func minInt(a, b int) int { return min(a, b) }
func maxInt(a, b int) int { return max(a, b) }
