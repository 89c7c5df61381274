package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KromDaniel/regopt/internal/codegen"
	"github.com/KromDaniel/regopt/pkg/regopt"
)

func newGenerateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <pattern>",
		Short: "Write a Go file that loads the optimized program at init time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandGenerate(cmd, v, args[0])
		},
	}
	cmd.Flags().String("name", "", "identifier of the generated matcher (default: derived from --output)")
	cmd.Flags().String("package", "main", "package of the generated file")
	cmd.Flags().StringP("output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func commandGenerate(cmd *cobra.Command, v *viper.Viper, pattern string) error {
	output := v.GetString("output")
	name := v.GetString("name")
	if name == "" {
		name = codegen.Identifier(strings.TrimSuffix(filepath.Base(output), filepath.Ext(output)))
	}

	opts := loadSettings(v).options(pattern)
	opts.Name = name
	opts.Package = v.GetString("package")
	opts.OutputFile = output
	if err := regopt.GenerateFile(opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, name)
	return nil
}
