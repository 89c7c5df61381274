package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/compiler"
	"github.com/KromDaniel/regopt/internal/optimizer"
)

var inspectArgs = struct {
	Blocks      bool
	Disassemble bool
}{}

func newInspectCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <pattern>",
		Short: "Show the program before and after optimization.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandInspect(cmd, loadSettings(v), args[0])
		},
	}
	cmd.Flags().BoolVar(&inspectArgs.Blocks, "blocks", false, "print basic blocks, pass results and alternation traces")
	cmd.Flags().BoolVar(&inspectArgs.Disassemble, "disassemble", true, "print the program before and after optimization")
	return cmd
}

func commandInspect(cmd *cobra.Command, s settings, pattern string) error {
	rec := optimizer.NewRecorder()
	config := s.compilerConfig(pattern)
	config.LogOutput = cmd.ErrOrStderr()
	config.Tracer = rec

	c, err := compiler.New(config)
	if err != nil {
		return err
	}
	defer func() { _ = c.Sync() }()

	prog, err := c.Compile()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectArgs.Disassemble {
		if err := section(out, "lowered", prog.Lowered); err != nil {
			return err
		}
		if err := section(out, "optimized", prog.Code); err != nil {
			return err
		}
	}
	if err := summary(out, prog); err != nil {
		return err
	}
	if inspectArgs.Blocks {
		return rec.Render(out)
	}
	return nil
}

func section(w io.Writer, title string, code bytecode.ByteCode) error {
	if _, err := fmt.Fprintf(w, "%s (%d words)\n", title, len(code)); err != nil {
		return err
	}
	return bytecode.Disassemble(w, code)
}

func ranges(rs []bytecode.CharRange) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}

func summary(w io.Writer, prog *compiler.Program) error {
	before, after := prog.Stats.WordsBefore, prog.Stats.WordsAfter
	saved := "0"
	if before > 0 && after < before {
		saved = fmt.Sprintf("%s words (%s, %.1f%%)",
			humanize.Comma(int64(before-after)),
			humanize.Bytes(uint64(8*(before-after))),
			100*float64(before-after)/float64(before))
	}

	substring := "-"
	if s := prog.Data.PureSubstringSearch; s != nil {
		substring = strconv.Quote(*s)
	}

	rows := [][]string{
		{"Pattern", prog.Pattern},
		{"Features", strings.Join(prog.Analysis.FeatureLabels, ", ")},
		{"Capture groups", strconv.Itoa(prog.NumGroups())},
		{"Match length", matchLength(prog.Analysis.MatchLength)},
		{"Words", fmt.Sprintf("%s -> %s", humanize.Comma(int64(before)), humanize.Comma(int64(after)))},
		{"Saved", saved},
		{"Atomic loops", strconv.Itoa(prog.Stats.AtomicLoops)},
		{"Substring", substring},
		{"Starting ranges", ranges(prog.Data.StartingRanges)},
		{"Only start of line", strconv.FormatBool(prog.Data.OnlyStartOfLine)},
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func matchLength(m compiler.MatchLength) string {
	if m.MaxMatchLen == compiler.Unbounded {
		return fmt.Sprintf("%d..", m.MinMatchLen)
	}
	return fmt.Sprintf("%d..%d", m.MinMatchLen, m.MaxMatchLen)
}
