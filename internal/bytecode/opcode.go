package bytecode

import "fmt"

// OpCode identifies an instruction kind. The set is closed; every switch over
// OpCode in this module is expected to handle each value.
type OpCode Word

const (
	OpCompare OpCode = iota + 1
	OpJump
	OpForkJump
	OpForkStay
	OpForkReplaceJump
	OpForkReplaceStay
	OpJumpNonEmpty
	OpRepeat
	OpCheckBegin
	OpCheckEnd
	OpCheckBoundary
	OpSave
	OpRestore
	OpGoBack
	OpCheckpoint
	OpSaveLeftCaptureGroup
	OpSaveRightCaptureGroup
	OpSaveRightNamedCaptureGroup
	OpClearCaptureGroup
	OpFailForks
	OpExit
)

var opNames = map[OpCode]string{
	OpCompare:                    "Compare",
	OpJump:                       "Jump",
	OpForkJump:                   "ForkJump",
	OpForkStay:                   "ForkStay",
	OpForkReplaceJump:            "ForkReplaceJump",
	OpForkReplaceStay:            "ForkReplaceStay",
	OpJumpNonEmpty:               "JumpNonEmpty",
	OpRepeat:                     "Repeat",
	OpCheckBegin:                 "CheckBegin",
	OpCheckEnd:                   "CheckEnd",
	OpCheckBoundary:              "CheckBoundary",
	OpSave:                       "Save",
	OpRestore:                    "Restore",
	OpGoBack:                     "GoBack",
	OpCheckpoint:                 "Checkpoint",
	OpSaveLeftCaptureGroup:       "SaveLeftCaptureGroup",
	OpSaveRightCaptureGroup:      "SaveRightCaptureGroup",
	OpSaveRightNamedCaptureGroup: "SaveRightNamedCaptureGroup",
	OpClearCaptureGroup:          "ClearCaptureGroup",
	OpFailForks:                  "FailForks",
	OpExit:                       "Exit",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OpCode(%d)", Word(op))
}

// Valid reports whether op is a member of the instruction set.
func (op OpCode) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// fixedSize returns the size in words of op, or 0 for Compare whose size
// depends on its operands.
func (op OpCode) fixedSize() int {
	switch op {
	case OpCompare:
		return 0
	case OpJump, OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay:
		return 2
	case OpJumpNonEmpty, OpRepeat:
		return 4
	case OpCheckBegin, OpCheckEnd, OpCheckBoundary:
		return 2
	case OpSave, OpRestore, OpFailForks, OpExit:
		return 1
	case OpGoBack, OpCheckpoint:
		return 2
	case OpSaveLeftCaptureGroup, OpSaveRightCaptureGroup, OpClearCaptureGroup:
		return 2
	case OpSaveRightNamedCaptureGroup:
		return 3
	}
	return 0
}

// IsJump reports whether op carries a relative displacement.
func (op OpCode) IsJump() bool {
	switch op {
	case OpJump, OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay, OpJumpNonEmpty, OpRepeat:
		return true
	}
	return false
}

// IsFork reports whether op schedules an alternative continuation.
func (op OpCode) IsFork() bool {
	switch op {
	case OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay:
		return true
	}
	return false
}

// ReplaceVariant returns the non-backtracking counterpart of a fork, and false
// when op has none.
func (op OpCode) ReplaceVariant() (OpCode, bool) {
	switch op {
	case OpForkJump:
		return OpForkReplaceJump, true
	case OpForkStay:
		return OpForkReplaceStay, true
	}
	return op, false
}

// CompareType identifies one predicate inside a Compare instruction.
type CompareType Word

const (
	CompareInverse CompareType = iota + 1
	CompareTemporaryInverse
	CompareAnyChar
	CompareChar
	CompareString
	CompareCharClass
	CompareCharRange
	CompareReference
	CompareProperty
	CompareGeneralCategory
	CompareScript
	CompareScriptExtension
	CompareLookupTable
	CompareAnd
	CompareOr
	CompareEndAndOr
)

var compareNames = map[CompareType]string{
	CompareInverse:          "Inverse",
	CompareTemporaryInverse: "TemporaryInverse",
	CompareAnyChar:          "AnyChar",
	CompareChar:             "Char",
	CompareString:           "String",
	CompareCharClass:        "CharClass",
	CompareCharRange:        "CharRange",
	CompareReference:        "Reference",
	CompareProperty:         "Property",
	CompareGeneralCategory:  "GeneralCategory",
	CompareScript:           "Script",
	CompareScriptExtension:  "ScriptExtension",
	CompareLookupTable:      "LookupTable",
	CompareAnd:              "And",
	CompareOr:               "Or",
	CompareEndAndOr:         "EndAndOr",
}

func (t CompareType) String() string {
	if name, ok := compareNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CompareType(%d)", Word(t))
}

// HasValue reports whether predicates of this type carry operand words.
func (t CompareType) HasValue() bool {
	switch t {
	case CompareAnyChar, CompareTemporaryInverse, CompareInverse, CompareAnd, CompareOr, CompareEndAndOr:
		return false
	}
	return true
}

// IsUnicodeFacet reports whether t tests a Unicode property, category, script
// or script extension.
func (t CompareType) IsUnicodeFacet() bool {
	switch t {
	case CompareProperty, CompareGeneralCategory, CompareScript, CompareScriptExtension:
		return true
	}
	return false
}

// CharClass is a POSIX-style ASCII character class.
type CharClass Word

const (
	ClassAlnum CharClass = iota
	ClassAlpha
	ClassBlank
	ClassCntrl
	ClassDigit
	ClassGraph
	ClassLower
	ClassPrint
	ClassPunct
	ClassSpace
	ClassUpper
	ClassWord
	ClassXdigit
)

var classNames = [...]string{"alnum", "alpha", "blank", "cntrl", "digit", "graph", "lower", "print", "punct", "space", "upper", "word", "xdigit"}

func (c CharClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("CharClass(%d)", Word(c))
}

// Matches reports whether r belongs to the class.
func (c CharClass) Matches(r rune) bool {
	if r > 0x7f || r < 0 {
		return false
	}
	switch c {
	case ClassAlnum:
		return isAlpha(r) || isDigit(r)
	case ClassAlpha:
		return isAlpha(r)
	case ClassBlank:
		return r == ' ' || r == '\t'
	case ClassCntrl:
		return r < 0x20 || r == 0x7f
	case ClassDigit:
		return isDigit(r)
	case ClassGraph:
		return r > 0x20 && r < 0x7f
	case ClassLower:
		return r >= 'a' && r <= 'z'
	case ClassPrint:
		return r >= 0x20 && r < 0x7f
	case ClassPunct:
		return r > 0x20 && r < 0x7f && !isAlpha(r) && !isDigit(r)
	case ClassSpace:
		return r == ' ' || (r >= '\t' && r <= '\r')
	case ClassUpper:
		return r >= 'A' && r <= 'Z'
	case ClassWord:
		return isAlpha(r) || isDigit(r) || r == '_'
	case ClassXdigit:
		return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	}
	return false
}

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// CheckMode selects between text and line anchoring for CheckBegin/CheckEnd.
type CheckMode Word

const (
	CheckText CheckMode = iota
	CheckLine
)

// BoundaryKind selects the assertion made by CheckBoundary.
type BoundaryKind Word

const (
	BoundaryWord BoundaryKind = iota
	BoundaryNonWord
)
