package compiler

import (
	"fmt"
	"io"

	"github.com/KromDaniel/regopt/internal/bytecode"
	"github.com/KromDaniel/regopt/internal/codegen"
	"github.com/dave/jennifer/jen"
)

// file renders prog as a Go source file declaring a ready-to-use matcher.
func (c *Compiler) file(prog *Program) *jen.File {
	f := jen.NewFile(c.config.Package)
	f.ImportName(codegen.FacadePath, "regopt")
	f.HeaderComment(fmt.Sprintf("Code generated by regopt for pattern: %s", c.config.Pattern))
	f.HeaderComment("DO NOT EDIT.")

	name := codegen.UpperFirst(c.config.Name)
	programVar := codegen.ProgramVarName(c.config.Name)

	f.Comment(fmt.Sprintf("%s matches %q.", name, c.config.Pattern))
	f.Var().Id(name).Op("=").Qual(codegen.FacadePath, codegen.LoadFunc).Call(jen.Id(programVar))
	f.Line()

	fields := jen.Dict{
		jen.Id(codegen.PatternField):     jen.Lit(prog.Pattern),
		jen.Id(codegen.UnicodeField):     jen.Lit(prog.Unicode),
		jen.Id(codegen.InsensitiveField): jen.Lit(prog.CaseInsensitive),
		jen.Id(codegen.CodeField):        jen.Index().Uint64().ValuesFunc(words(prog.Code)),
	}
	if prog.NumGroups() > 0 {
		fields[jen.Id(codegen.GroupNamesField)] = jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, n := range prog.GroupNames {
				g.Lit(n)
			}
		})
	}
	if s := prog.Data.PureSubstringSearch; s != nil {
		fields[jen.Id(codegen.SubstringField)] = jen.Lit(*s)
		fields[jen.Id(codegen.HasSubstringField)] = jen.True()
	}
	if len(prog.Data.StartingRanges) > 0 {
		fields[jen.Id(codegen.StartRangesField)] = c.ranges(prog.Data.StartingRanges)
		fields[jen.Id(codegen.StartRangesFoldField)] = c.ranges(prog.Data.StartingRangesInsensitive)
	}
	if prog.Data.OnlyStartOfLine {
		fields[jen.Id(codegen.OnlyLineStartField)] = jen.True()
	}

	f.Comment(fmt.Sprintf("%s holds %d optimized words (%d before optimization).", programVar, len(prog.Code), len(prog.Lowered)))
	f.Var().Id(programVar).Op("=").Qual(codegen.FacadePath, codegen.ProgramType).Values(fields)
	return f
}

func words(code bytecode.ByteCode) func(*jen.Group) {
	return func(g *jen.Group) {
		for _, w := range code {
			g.Lit(w)
		}
	}
}

func (c *Compiler) ranges(rs []bytecode.CharRange) *jen.Statement {
	return jen.Index().Qual(codegen.FacadePath, codegen.RangeType).ValuesFunc(func(g *jen.Group) {
		for _, r := range rs {
			g.Values(jen.Dict{
				jen.Id("From"): jen.LitRune(r.From),
				jen.Id("To"):   jen.LitRune(r.To),
			})
		}
	})
}

// Generate writes prog as Go source to w.
func (c *Compiler) Generate(prog *Program, w io.Writer) error {
	if err := c.file(prog).Render(w); err != nil {
		return fmt.Errorf("failed to render file: %w", err)
	}
	return nil
}

// GenerateFile writes prog as Go source to the configured output file.
func (c *Compiler) GenerateFile(prog *Program) error {
	if c.config.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if err := c.file(prog).Save(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
