package compiler

// Capture group constants
const (
	// WholeMatchGroup is the implicit group spanning the entire match.
	// User-defined capture groups start at index 1.
	WholeMatchGroup = 0
)

// Repetition constants
const (
	// MaxOptionalUnroll bounds how many optional copies a counted repetition
	// {n,m} is unrolled into. Larger gaps are rejected with ErrUnsupported.
	MaxOptionalUnroll = 1000

	// MinCountedRepeat is the smallest exact count lowered to a Repeat
	// instruction; smaller counts are emitted inline.
	MinCountedRepeat = 2
)

// ASCII boundary constants
const (
	// MaxASCIIRune is the exclusive upper bound for ASCII characters.
	MaxASCIIRune = 128

	// MaxByteRune is the largest value a byte-mode compare can observe.
	MaxByteRune = 0xff
)
