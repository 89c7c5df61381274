package optimizer

import (
	"github.com/KromDaniel/regopt/internal/bytecode"
)

// OptimizationData are hints attached to an optimized program. A matcher that
// ignores them must still produce the same results.
type OptimizationData struct {
	// PureSubstringSearch is set when the whole program is this literal.
	PureSubstringSearch *string

	// StartingRanges lists the code points a match can begin with. Empty
	// means unknown.
	StartingRanges []bytecode.CharRange
	// StartingRangesInsensitive holds the same set for matching an ASCII
	// lowercased input character.
	StartingRangesInsensitive []bytecode.CharRange

	// OnlyStartOfLine is set when a match can only begin at the start of a
	// line (or of the input).
	OnlyStartOfLine bool
}

// foldRanges returns a sorted set that contains the ASCII lowercase form of
// every member of ranges.
func foldRanges(ranges []bytecode.CharRange) []bytecode.CharRange {
	folded := append([]bytecode.CharRange(nil), ranges...)
	for _, r := range ranges {
		from, to := max(r.From, 'A'), min(r.To, 'Z')
		if from <= to {
			folded = append(folded, bytecode.CharRange{From: from + ('a' - 'A'), To: to + ('a' - 'A')})
		}
	}
	return coalesce(folded)
}

// touchesUpper reports whether any range contains an ASCII uppercase letter.
func touchesUpper(ranges []bytecode.CharRange) bool {
	for _, r := range ranges {
		if r.From <= 'Z' && r.To >= 'A' {
			return true
		}
	}
	return false
}

// optimizationData derives starting-character hints from the first block.
func optimizationData(code bytecode.ByteCode, blocks []BasicBlock) OptimizationData {
	var data OptimizationData
	if len(blocks) == 0 {
		return data
	}

	block := blocks[0]
	for ip := block.Start; ip < block.End; {
		in := bytecode.Decode(code, ip)
		switch in.Op {
		case bytecode.OpCompare:
			summary, res := Interpret(in.FlatPredicates())
			if res == Opaque || summary.HasUnicodeFacet || summary.MatchesAnything {
				return data
			}
			if len(summary.Classes) > 0 || summary.hasNegations() {
				return data
			}
			data.StartingRanges = append([]bytecode.CharRange(nil), summary.Ranges...)
			data.StartingRangesInsensitive = foldRanges(summary.Ranges)
			return data
		case bytecode.OpCheckBegin:
			data.OnlyStartOfLine = true
			return data
		case bytecode.OpCheckpoint, bytecode.OpSave, bytecode.OpClearCaptureGroup,
			bytecode.OpSaveLeftCaptureGroup:
			ip = in.Next()
		default:
			return data
		}
	}
	return data
}
