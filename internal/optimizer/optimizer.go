// Package optimizer rewrites compiled regex bytecode: it removes redundant
// control flow, detects literal-only programs, turns provably safe loops
// atomic, derives matching hints, and compiles alternations and character
// classes for the bytecode builder.
package optimizer

import (
	"fmt"

	"github.com/KromDaniel/regopt/internal/bytecode"
)

// Optimizer runs the optimization passes for one configuration. It holds no
// per-pattern state and may be shared between goroutines.
type Optimizer struct {
	opts   Options
	logger *Logger
	tracer Tracer
}

// New creates an optimizer.
func New(opts Options) (*Optimizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts = opts.withDefaults()
	return &Optimizer{opts: opts, logger: opts.Logger, tracer: opts.Tracer}, nil
}

// Stats summarizes what the passes changed.
type Stats struct {
	WordsBefore int
	WordsAfter  int
	AtomicLoops int
	Substring   bool
}

// Result is an optimized program and its hints.
type Result struct {
	Code  bytecode.ByteCode
	Data  OptimizationData
	Stats Stats
}

// Optimize runs the pass pipeline over a copy of code. An error means the
// stream broke the builder contract; the caller keeps the original program.
func (o *Optimizer) Optimize(code bytecode.ByteCode) (*Result, error) {
	if err := bytecode.Validate(code); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentProgram, err)
	}

	o.logger.Section("Optimization")
	if o.opts.Pattern != "" {
		o.logger.Log("Pattern: %s", o.opts.Pattern)
	}

	res := &Result{Stats: Stats{WordsBefore: len(code)}}

	// Dropping a jump can leave a jump over it with nothing to skip.
	working := code.Clone()
	for {
		next, err := RemoveUselessJumps(working)
		if err != nil {
			return nil, err
		}
		if len(next) == len(working) {
			break
		}
		working = next
	}
	o.tracer.Pass("useless-jumps", len(code), len(working))
	o.logger.Logw("useless jumps removed", "before", len(code), "after", len(working))

	blocks := SplitBasicBlocks(working)
	o.tracer.Blocks("initial", working, blocks)
	o.logger.Log("Basic blocks: %d", len(blocks))

	if !o.opts.DisableSubstring {
		if literal, ok := literalOf(working, blocks, o.opts.Unicode); ok {
			o.logger.Log("Pure substring search: %q", literal)
			res.Code = working
			res.Data.PureSubstringSearch = &literal
			res.Stats.Substring = true
			res.Stats.WordsAfter = len(working)
			return res, nil
		}
	}

	if !o.opts.DisableAtomicLoops {
		patched := o.rewriteAtomicLoops(working, blocks)
		res.Stats.AtomicLoops = len(patched)
		o.logger.Logw("atomic loops", "patched", patched)
		blocks = SplitBasicBlocks(working)
		o.tracer.Blocks("after atomic loops", working, blocks)
	}

	res.Data = optimizationData(working, blocks)
	o.logger.Logw("optimization data",
		"starting_ranges", len(res.Data.StartingRanges),
		"only_start_of_line", res.Data.OnlyStartOfLine)

	res.Code = working
	res.Stats.WordsAfter = len(working)
	return res, nil
}
