// Package compiler lowers parsed regular expressions into bytecode for the
// backtracking machine and hands the result to the optimizer.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"regexp/syntax"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/optimizer"
)

// ErrUnsupported reports a syntax construct the compiler cannot lower.
var ErrUnsupported = errors.New("unsupported construct")

// Config holds the configuration for compilation and code generation.
type Config struct {
	Pattern         string
	Name            string    // Identifier prefix for generated code
	Package         string    // Package of the generated file
	OutputFile      string
	Unicode         bool      // Match code points instead of bytes
	CaseInsensitive bool      // ASCII case-insensitive matching
	NoOptimize      bool      // Keep the lowered program as is
	MaxFollowHops   int       // Atomic-loop follow walk bound (0 = default)
	Verbose         bool      // Enable verbose logging of compilation decisions
	LogOutput       io.Writer // Destination of verbose logs (default stderr)
	Tracer          optimizer.Tracer
}

// Program is a compiled pattern.
type Program struct {
	Pattern         string
	Unicode         bool
	CaseInsensitive bool

	// Code is the program the machine runs; Lowered is the program before
	// optimization.
	Code    bytecode.ByteCode
	Lowered bytecode.ByteCode

	// GroupNames holds one entry per capture group, index 0 being the whole
	// match. Unnamed groups have an empty name.
	GroupNames []string

	Data     optimizer.OptimizationData
	Stats    optimizer.Stats
	Analysis Analysis
}

// NumGroups returns the number of capture groups, excluding the whole match.
func (p *Program) NumGroups() int { return len(p.GroupNames) - 1 }

// Compiler turns one pattern into a Program.
type Compiler struct {
	config    Config
	ast       *syntax.Regexp
	optimizer *optimizer.Optimizer
	logger    *optimizer.Logger
	analysis  Analysis
}

// New parses the pattern and prepares a compiler for it.
func New(config Config) (*Compiler, error) {
	// CaseInsensitive is applied by the machine, not the parser, so only
	// inline (?i) groups reach the lowering as folded literals.
	ast, err := syntax.Parse(config.Pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}

	logger := optimizer.NewLogger(config.Verbose)
	if config.LogOutput != nil {
		logger.SetOutput(config.LogOutput)
	}
	opt, err := optimizer.New(optimizer.Options{
		Pattern:       config.Pattern,
		Unicode:       config.Unicode,
		Insensitive:   config.CaseInsensitive,
		MaxFollowHops: config.MaxFollowHops,
		Logger:        logger,
		Tracer:        config.Tracer,
	})
	if err != nil {
		return nil, err
	}

	c := &Compiler{config: config, ast: ast, optimizer: opt, logger: logger}
	c.analyzeAndLog()
	return c, nil
}

// analyzeAndLog runs the pattern analysis and logs the results if verbose
// mode is enabled.
func (c *Compiler) analyzeAndLog() {
	c.logger.Section("Pattern Analysis")
	c.logger.Log("Pattern: %s", c.config.Pattern)

	c.analysis = Analyze(c.ast, c.config.Unicode)

	c.logger.Log("Capture groups: %d", len(c.analysis.GroupNames)-1)
	c.logger.Log("Has repeating captures: %v", c.analysis.HasRepeatingCaptures)
	c.logger.Log("Is anchored: %v", c.analysis.Anchored)
	c.logger.Log("Match length: %d..%d", c.analysis.MinMatchLen, c.analysis.MaxMatchLen)
	c.logger.Log("Features: %v", c.analysis.FeatureLabels)
}

// Analysis returns the structural analysis of the pattern.
func (c *Compiler) Analysis() Analysis { return c.analysis }

// Compile lowers the pattern and optimizes the result. An error from the
// optimizer means the lowered program broke the builder contract.
func (c *Compiler) Compile() (*Program, error) {
	c.logger.Section("Lowering")
	l := newLowerer(c.config, c.optimizer)
	var code bytecode.ByteCode
	if err := l.lower(c.ast, &code); err != nil {
		return nil, fmt.Errorf("failed to lower pattern: %w", err)
	}
	c.logger.Logw("lowered", "words", len(code), "checkpoints", l.checkpoints, "repeats", l.repeats)

	prog := &Program{
		Pattern:         c.config.Pattern,
		Unicode:         c.config.Unicode,
		CaseInsensitive: c.config.CaseInsensitive,
		Code:            code,
		Lowered:         code,
		GroupNames:      c.analysis.GroupNames,
		Analysis:        c.analysis,
		Stats:           optimizer.Stats{WordsBefore: len(code), WordsAfter: len(code)},
	}
	if c.config.NoOptimize {
		c.logger.Log("Optimization disabled")
		return prog, nil
	}

	res, err := c.optimizer.Optimize(code)
	if err != nil {
		return nil, fmt.Errorf("failed to optimize pattern: %w", err)
	}
	prog.Code = res.Code
	prog.Data = res.Data
	prog.Stats = res.Stats
	return prog, nil
}

// Sync flushes the compiler's logger.
func (c *Compiler) Sync() error {
	return c.logger.Sync()
}
