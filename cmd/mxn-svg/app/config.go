package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/mxn-svg/internal/config"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mxn-svg configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema configuration files are checked against",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprint(cmd.OutOrStdout(), string(config.Schema()))
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration file and report problems",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := workDir(v)
				if err != nil {
					return err
				}
				_, path, err := loadConfig(v, dir)
				if err != nil {
					return err
				}
				if path == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No configuration file found, defaults apply")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := workDir(v)
				if err != nil {
					return err
				}
				cfg, _, err := loadConfig(v, dir)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to format configuration: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
	)

	return cmd
}
