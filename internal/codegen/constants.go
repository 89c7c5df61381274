// Package codegen provides names and helpers shared by generated source.
package codegen

import (
	"fmt"
	"strings"
)

// Names referenced by generated files.
const (
	FacadePath  = "github.com/KromDaniel/regopt/pkg/regopt"
	ProgramType = "Program"
	RangeType   = "Range"
	LoadFunc    = "MustLoad"
)

// Fields of the generated Program literal.
const (
	PatternField         = "Pattern"
	UnicodeField         = "Unicode"
	InsensitiveField     = "CaseInsensitive"
	CodeField            = "Code"
	GroupNamesField      = "GroupNames"
	SubstringField       = "Substring"
	HasSubstringField    = "HasSubstring"
	StartRangesField     = "StartRanges"
	StartRangesFoldField = "StartRangesFold"
	OnlyLineStartField   = "OnlyLineStart"
)

// ProgramVarName returns the identifier of the generated program variable.
func ProgramVarName(name string) string {
	return fmt.Sprintf("%sProgram", LowerFirst(name))
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}

// Identifier turns free text such as a file stem into an exported Go name.
func Identifier(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			if upper {
				sb.WriteString(UpperFirst(string(r)))
			} else {
				sb.WriteRune(r)
			}
			upper = false
		case r >= '0' && r <= '9':
			if sb.Len() == 0 {
				sb.WriteString("Pattern")
			}
			sb.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if sb.Len() == 0 {
		return "Pattern"
	}
	return sb.String()
}
