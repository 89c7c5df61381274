package compiler_test

import (
	"bytes"
	"fmt"
	"regexp"
	"testing"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/compiler"
	"github.com/KromDaniel/regopt/internal/optimizer"
	"github.com/KromDaniel/regopt/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patterns = []string{
	`abc`,
	`a*b`,
	`a+?b`,
	`a*a`,
	`x*`,
	`colou?r`,
	`a{2,4}`,
	`a{2,4}?`,
	`a{3,}`,
	`(ab){2}`,
	`(a|ab)(c|bcd)(d*)`,
	`(foo|foobar|fo)bar`,
	`abc|abd|aef|b`,
	`(?:ab|cd)+e`,
	`(a|b)*c`,
	`(a+)(b+)?`,
	`a.*?b`,
	`(?s).+`,
	`[a-c]+z`,
	`[^aeiou\s]+`,
	`[[:alpha:]]+\d{2,3}`,
	`\d+\.\d+`,
	`(\w+)@(\w+)\.com`,
	`(?P<year>\d{4})-(?P<month>\d{2})`,
	`\bis\b`,
	`^\s*#`,
	`(?m)^b$`,
	`^foo|bar$`,
	`(?i)hello`,
	`x[^x]+x`,
	`\D\W\S`,
}

var asciiInputs = []string{
	"",
	"abc",
	"xabd",
	"aaab",
	"ab ab ab",
	"abcd",
	"foobar",
	"fobar",
	"color colour",
	"aaaaa",
	"ababab",
	"cdabe",
	"zzabcz",
	"Strength 42",
	"3.14 and 2.71",
	"mail bob@example.com",
	"date 2024-06-30",
	"this is it",
	"  # comment",
	"a\nb\nc",
	"HeLLo world",
	"xyzzyx",
	"a-b c",
	"foo bar",
}

func compile(t *testing.T, config compiler.Config) *compiler.Program {
	t.Helper()
	c, err := compiler.New(config)
	require.NoError(t, err)
	prog, err := c.Compile()
	require.NoError(t, err)
	return prog
}

func machine(prog *compiler.Program) *vm.Machine {
	data := prog.Data
	return vm.New(prog.Code, vm.Options{
		Unicode:     prog.Unicode,
		Insensitive: prog.CaseInsensitive,
		Data:        &data,
	})
}

func TestCompiledProgramsMatchRegexp(t *testing.T) {
	for _, pattern := range patterns {
		for _, mode := range []struct {
			name   string
			config compiler.Config
			std    string
		}{
			{"unicode", compiler.Config{Unicode: true}, pattern},
			{"bytes", compiler.Config{}, pattern},
			{"insensitive", compiler.Config{Unicode: true, CaseInsensitive: true}, "(?i)" + pattern},
			{"unoptimized", compiler.Config{Unicode: true, NoOptimize: true}, pattern},
		} {
			t.Run(fmt.Sprintf("%s/%s", mode.name, pattern), func(t *testing.T) {
				std := regexp.MustCompile(mode.std)
				config := mode.config
				config.Pattern = pattern
				m := machine(compile(t, config))

				for _, input := range asciiInputs {
					got, err := m.Find(input)
					require.NoError(t, err)
					assert.Equal(t, std.FindStringSubmatchIndex(input), got, "input %q", input)
				}
			})
		}
	}
}

func TestCompiledProgramsMatchRegexpOnUnicode(t *testing.T) {
	tests := []string{`.`, `é+`, `[^a]`, `\w+`, `(?i)k`, `(?i)s+`, `caf.`, `[à-ÿ]+`, `ж|жж|a`}
	inputs := []string{"café", "naïve", "K", "ſs", "жж", "aé"}

	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			std := regexp.MustCompile(pattern)
			m := machine(compile(t, compiler.Config{Pattern: pattern, Unicode: true}))
			for _, input := range inputs {
				got, err := m.Find(input)
				require.NoError(t, err)
				assert.Equal(t, std.FindStringSubmatchIndex(input), got, "input %q", input)
			}
		})
	}
}

func TestByteModeMatchesEncodedLiterals(t *testing.T) {
	m := machine(compile(t, compiler.Config{Pattern: "é+"}))
	loc, err := m.Find("caféé")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, loc)
}

func TestCompileOptimizes(t *testing.T) {
	rec := optimizer.NewRecorder()
	prog := compile(t, compiler.Config{Pattern: `[a-f]+\.[a-f]+`, Unicode: true, Tracer: rec})

	assert.Equal(t, len(prog.Lowered), prog.Stats.WordsBefore)
	assert.Equal(t, len(prog.Code), prog.Stats.WordsAfter)
	assert.Equal(t, 2, prog.Stats.AtomicLoops)
	assert.Equal(t, []bytecode.CharRange{{From: 'a', To: 'f'}}, prog.Data.StartingRanges)

	var buf bytes.Buffer
	require.NoError(t, rec.Render(&buf))
	assert.Contains(t, buf.String(), "basic blocks (after atomic loops)")

	literal := compile(t, compiler.Config{Pattern: "needle", Unicode: true})
	require.NotNil(t, literal.Data.PureSubstringSearch)
	assert.Equal(t, "needle", *literal.Data.PureSubstringSearch)

	plain := compile(t, compiler.Config{Pattern: "needle", Unicode: true, NoOptimize: true})
	assert.Nil(t, plain.Data.PureSubstringSearch)
	assert.Equal(t, plain.Lowered, plain.Code)
}

func TestProgramGroups(t *testing.T) {
	prog := compile(t, compiler.Config{Pattern: `(?P<key>\w+)=(\w+)`, Unicode: true})
	assert.Equal(t, 2, prog.NumGroups())
	assert.Equal(t, []string{"", "key", ""}, prog.GroupNames)
	assert.Equal(t, 2, vm.CaptureGroups(prog.Code))
}
