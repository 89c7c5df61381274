package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KromDaniel/regopt/pkg/regopt"
)

var matchArgs = struct {
	Submatches bool
}{}

func newMatchCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <pattern> <input>...",
		Short: "Run the pattern against each input and print the leftmost match.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandMatch(cmd, loadSettings(v), args[0], args[1:])
		},
	}
	cmd.Flags().BoolVarP(&matchArgs.Submatches, "submatches", "s", false, "print every capture group")
	return cmd
}

func commandMatch(cmd *cobra.Command, s settings, pattern string, inputs []string) error {
	re, err := regopt.Compile(s.options(pattern))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	names := re.SubexpNames()
	for _, input := range inputs {
		loc, err := re.FindStringSubmatchIndex(input)
		if err != nil {
			return fmt.Errorf("match %q: %w", input, err)
		}
		if loc == nil {
			fmt.Fprintf(out, "%q: no match\n", input)
			continue
		}
		fmt.Fprintf(out, "%q: [%d,%d] %q\n", input, loc[0], loc[1], input[loc[0]:loc[1]])
		if !matchArgs.Submatches {
			continue
		}
		for g := 1; g < len(loc)/2; g++ {
			label := fmt.Sprintf("$%d", g)
			if g < len(names) && names[g] != "" {
				label = strings.Join([]string{label, names[g]}, " ")
			}
			if loc[2*g] < 0 {
				fmt.Fprintf(out, "  %s: -\n", label)
				continue
			}
			fmt.Fprintf(out, "  %s: [%d,%d] %q\n", label, loc[2*g], loc[2*g+1], input[loc[2*g]:loc[2*g+1]])
		}
	}
	return nil
}
