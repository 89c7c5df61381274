package optimizer

import (
	"errors"
	"fmt"

	"github.com/KromDaniel/regopt/internal/unicodefacts"
)

// ErrInconsistentProgram reports a stream that violates the contract between
// the bytecode builder and the optimizer. The pattern is left unoptimized.
var ErrInconsistentProgram = errors.New("inconsistent program")

// DefaultMaxFollowHops bounds how many empty blocks the atomic-loop
// precondition walks through when looking for what follows a loop.
const DefaultMaxFollowHops = 8

// UnicodeFacts answers Unicode membership questions for facet ids stored in
// compare operands.
type UnicodeFacts interface {
	HasProperty(r rune, id int) bool
	HasGeneralCategory(r rune, id int) bool
	HasScript(r rune, id int) bool
	HasScriptExtension(r rune, id int) bool
}

// Options configures an Optimizer.
type Options struct {
	// Pattern is the source text, used for diagnostics only.
	Pattern string

	// Unicode makes literal accumulation work on code points instead of bytes.
	Unicode bool

	// Insensitive marks a case-insensitive pattern.
	Insensitive bool

	// MaxFollowHops bounds the empty-block walk of the atomic-loop check
	// (0 = DefaultMaxFollowHops).
	MaxFollowHops int

	DisableSubstring   bool
	DisableAtomicLoops bool

	Logger *Logger
	Tracer Tracer
	Facts  UnicodeFacts
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.MaxFollowHops < 0 {
		return fmt.Errorf("max follow hops cannot be negative: %d", o.MaxFollowHops)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MaxFollowHops == 0 {
		o.MaxFollowHops = DefaultMaxFollowHops
	}
	if o.Logger == nil {
		o.Logger = NewLogger(false)
	}
	if o.Tracer == nil {
		o.Tracer = nopTracer{}
	}
	if o.Facts == nil {
		o.Facts = unicodefacts.Tables{}
	}
	return o
}
