package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KromDaniel/regopt/internal/compiler"
	"github.com/KromDaniel/regopt/pkg/regopt"
)

// EnvPrefix prefixes the environment variables that override flags.
const EnvPrefix = "REGOPT"

// settings are the options shared by every command, resolved from flags,
// the environment and the config file in that order.
type settings struct {
	Unicode         bool
	CaseInsensitive bool
	NoOptimize      bool
	Verbose         bool
	MaxFollowHops   int
	MaxSteps        int
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		Unicode:         v.GetBool("unicode"),
		CaseInsensitive: v.GetBool("insensitive"),
		NoOptimize:      v.GetBool("no-optimize"),
		Verbose:         v.GetBool("verbose"),
		MaxFollowHops:   v.GetInt("max-follow-hops"),
		MaxSteps:        v.GetInt("max-steps"),
	}
}

func (s settings) options(pattern string) regopt.Options {
	return regopt.Options{
		Pattern:         pattern,
		Unicode:         s.Unicode,
		CaseInsensitive: s.CaseInsensitive,
		NoOptimize:      s.NoOptimize,
		Verbose:         s.Verbose,
		MaxFollowHops:   s.MaxFollowHops,
		MaxSteps:        s.MaxSteps,
	}
}

func (s settings) compilerConfig(pattern string) compiler.Config {
	return compiler.Config{
		Pattern:         pattern,
		Unicode:         s.Unicode,
		CaseInsensitive: s.CaseInsensitive,
		NoOptimize:      s.NoOptimize,
		Verbose:         s.Verbose,
		MaxFollowHops:   s.MaxFollowHops,
	}
}

// readConfig loads the config file, if any, and binds the environment.
func readConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "regopt",
		Short:         "Compile and optimize regular expressions for a backtracking matcher.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v, cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.Bool("unicode", false, "match code points instead of bytes")
	flags.BoolP("insensitive", "i", false, "ASCII case-insensitive matching")
	flags.Bool("no-optimize", false, "skip the optimizer passes")
	flags.BoolP("verbose", "v", false, "log compilation decisions to stderr")
	flags.Int("max-follow-hops", 0, "bound of the atomic-loop follow walk (0 = default)")
	flags.Int("max-steps", 0, "instruction budget per search (0 = unlimited)")

	root.AddCommand(
		newInspectCommand(v),
		newMatchCommand(v),
		newGenerateCommand(v),
	)
	return root
}
