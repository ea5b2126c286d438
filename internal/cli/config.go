package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Resolve defaults, the configuration file, environment variables and
flags, validate the result and print it.

Example:
  supicore config --config ./supicore.yaml
  SUPICORE_LOG_LEVEL=debug supicore config --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(rootOpts, cmd)
		},
	}

	return cmd
}

func runConfig(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(cfg)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "encoding configuration", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
