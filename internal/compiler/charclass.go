package compiler

import (
	"unicode"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"golang.org/x/exp/slices"
)

// namedClasses maps the [lo, hi] pairs of ASCII classes that are closed
// under case folding to the machine's built-in class tests.
var namedClasses = []struct {
	runes []rune
	class bytecode.CharClass
}{
	{[]rune{'0', '9'}, bytecode.ClassDigit},
	{[]rune{'0', '9', 'A', 'Z', '_', '_', 'a', 'z'}, bytecode.ClassWord},
	{[]rune{'A', 'Z', 'a', 'z'}, bytecode.ClassAlpha},
	{[]rune{'0', '9', 'A', 'Z', 'a', 'z'}, bytecode.ClassAlnum},
	{[]rune{'0', '9', 'A', 'F', 'a', 'f'}, bytecode.ClassXdigit},
	{[]rune{'\t', '\t', ' ', ' '}, bytecode.ClassBlank},
}

// detectCharacterClass checks if runes match a built-in class.
func detectCharacterClass(runes []rune) (bytecode.CharClass, bool) {
	for _, nc := range namedClasses {
		if slices.Equal(runes, nc.runes) {
			return nc.class, true
		}
	}
	return 0, false
}

// complement returns the [lo, hi] pairs of every code point not in runes.
func complement(runes []rune) []rune {
	var out []rune
	next := rune(0)
	for i := 0; i < len(runes); i += 2 {
		if runes[i] > next {
			out = append(out, next, runes[i]-1)
		}
		next = runes[i+1] + 1
	}
	if next <= unicode.MaxRune {
		out = append(out, next, unicode.MaxRune)
	}
	return out
}

// isNegated reports whether a class is stored as the complement of a
// smaller set, as the parser does for [^...] and \D-style escapes.
func isNegated(runes []rune) bool {
	return len(runes) >= 2 && runes[0] == 0 && runes[len(runes)-1] == unicode.MaxRune
}

// rangePredicates turns [lo, hi] pairs into compare items. Byte-mode
// programs never see values above MaxByteRune, so those are clipped.
func rangePredicates(runes []rune, unicodeMode bool) []bytecode.Predicate {
	if class, ok := detectCharacterClass(runes); ok {
		return []bytecode.Predicate{bytecode.Class(class)}
	}
	var preds []bytecode.Predicate
	for i := 0; i < len(runes); i += 2 {
		lo, hi := runes[i], runes[i+1]
		if !unicodeMode {
			if lo > MaxByteRune {
				break
			}
			hi = min(hi, MaxByteRune)
		}
		if lo == hi {
			preds = append(preds, bytecode.Char(lo))
		} else {
			preds = append(preds, bytecode.Range(lo, hi))
		}
	}
	return preds
}

// classPredicates returns the items of a compare testing one character
// against a parsed class. An empty result never matches.
func classPredicates(runes []rune, unicodeMode bool) []bytecode.Predicate {
	if !isNegated(runes) {
		return rangePredicates(runes, unicodeMode)
	}
	rest := complement(runes)
	if len(rest) == 0 {
		return []bytecode.Predicate{bytecode.Marker(bytecode.CompareAnyChar)}
	}
	inner := rangePredicates(rest, unicodeMode)
	if len(inner) == 0 {
		// Everything excluded lies outside the byte range.
		return []bytecode.Predicate{bytecode.Marker(bytecode.CompareAnyChar)}
	}
	return append([]bytecode.Predicate{bytecode.Marker(bytecode.CompareInverse)}, inner...)
}

// foldPredicates returns the items matching r or any of its simple case
// variants that a compare can observe.
func foldPredicates(r rune, unicodeMode bool) []bytecode.Predicate {
	preds := []bytecode.Predicate{bytecode.Char(r)}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if !unicodeMode && f > MaxByteRune {
			continue
		}
		preds = append(preds, bytecode.Char(f))
	}
	return preds
}
