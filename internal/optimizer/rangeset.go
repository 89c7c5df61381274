package optimizer

import (
	"cmp"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"golang.org/x/exp/slices"
)

// rangeSet is a sorted list of disjoint, non-adjacent code point ranges.
type rangeSet []bytecode.CharRange

func byFrom(a, b bytecode.CharRange) int { return cmp.Compare(a.From, b.From) }

// add inserts r and merges it with any range it touches.
func (s *rangeSet) add(r bytecode.CharRange) {
	if r.From > r.To {
		r.From, r.To = r.To, r.From
	}
	i, _ := slices.BinarySearchFunc(*s, r, byFrom)
	*s = slices.Insert(*s, i, r)
	if i > 0 && (*s)[i-1].To+1 >= (*s)[i].From {
		i--
	}
	for i+1 < len(*s) && (*s)[i].To+1 >= (*s)[i+1].From {
		if (*s)[i+1].To > (*s)[i].To {
			(*s)[i].To = (*s)[i+1].To
		}
		*s = slices.Delete(*s, i+1, i+2)
	}
}

// overlaps reports whether any member of the set falls inside r.
func (s rangeSet) overlaps(r bytecode.CharRange) bool {
	i, _ := slices.BinarySearchFunc(s, r.From, func(e bytecode.CharRange, c rune) int {
		if e.To < c {
			return -1
		}
		if e.From > c {
			return 1
		}
		return 0
	})
	return i < len(s) && s[i].From <= r.To
}

// contains reports whether c is a member of the set.
func (s rangeSet) contains(c rune) bool {
	return s.overlaps(bytecode.CharRange{From: c, To: c})
}

// coalesce sorts ranges and merges adjacent or overlapping entries.
func coalesce(ranges []bytecode.CharRange) []bytecode.CharRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, byFrom)
	out := []bytecode.CharRange{sorted[0]}
	for _, r := range sorted[1:] {
		active := &out[len(out)-1]
		if r.From <= active.To+1 {
			if r.To > active.To {
				active.To = r.To
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
