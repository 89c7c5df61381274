// Package regopt compiles regular expressions into optimized bytecode for a
// backtracking matcher. Programs can be used directly or emitted as Go source
// that loads them at init time.
package regopt

import (
	"fmt"

	"github.com/KromDaniel/regopt/internal/compiler"
	"github.com/KromDaniel/regopt/internal/optimizer"
)

// Options configures the regex compilation process.
type Options struct {
	// Pattern is the regular expression to compile (Perl syntax).
	Pattern string

	// Unicode matches code points instead of bytes.
	Unicode bool

	// CaseInsensitive folds ASCII letters while matching.
	CaseInsensitive bool

	// NoOptimize keeps the program as lowered from the pattern.
	NoOptimize bool

	// Verbose logs compilation and optimization decisions to stderr.
	Verbose bool

	// MaxFollowHops bounds how far the atomic-loop check looks past a loop
	// (0 uses the optimizer default).
	MaxFollowHops int

	// MaxSteps bounds the instructions executed by one search (0 = no limit).
	MaxSteps int

	// Name, Package and OutputFile are only used by GenerateFile. Name is the
	// prefix of the generated identifiers.
	Name       string
	Package    string
	OutputFile string
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if o.MaxFollowHops < 0 {
		return fmt.Errorf("max follow hops cannot be negative: %d", o.MaxFollowHops)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps cannot be negative: %d", o.MaxSteps)
	}
	return nil
}

func (o Options) validateOutput() error {
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	return nil
}

func (o Options) config() compiler.Config {
	return compiler.Config{
		Pattern:         o.Pattern,
		Name:            o.Name,
		Package:         o.Package,
		OutputFile:      o.OutputFile,
		Unicode:         o.Unicode,
		CaseInsensitive: o.CaseInsensitive,
		NoOptimize:      o.NoOptimize,
		MaxFollowHops:   o.MaxFollowHops,
		Verbose:         o.Verbose,
	}
}

// build parses, lowers and optimizes the pattern.
func build(opts Options) (*compiler.Compiler, *compiler.Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}

	c, err := compiler.New(opts.config())
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = c.Sync() }()

	prog, err := c.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile pattern: %w", err)
	}
	return c, prog, nil
}

// Compile compiles the pattern into a matcher.
func Compile(opts Options) (*Regexp, error) {
	_, prog, err := build(opts)
	if err != nil {
		return nil, err
	}
	re := newRegexp(exportProgram(prog), opts.MaxSteps)
	re.minLen = prog.Analysis.MinMatchLen
	re.stats = prog.Stats
	return re, nil
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(opts Options) *Regexp {
	re, err := Compile(opts)
	if err != nil {
		panic(fmt.Sprintf("regopt: Compile(%q): %v", opts.Pattern, err))
	}
	return re
}

// GenerateFile compiles the pattern and writes a Go source file declaring a
// ready-to-use matcher named after opts.Name.
func GenerateFile(opts Options) error {
	if err := opts.validateOutput(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	c, prog, err := build(opts)
	if err != nil {
		return err
	}
	if err := c.GenerateFile(prog); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}

// Stats reports what the optimizer changed. It is zero for matchers created
// with Load.
func (re *Regexp) Stats() optimizer.Stats { return re.stats }
