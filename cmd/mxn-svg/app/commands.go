// Package app provides the commands of the mxn-svg tool.
package app

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/mxn-svg/internal/logging"
)

// Flag names shared by several commands
const (
	flagConfig  = "config"
	flagDebug   = "debug"
	flagWorkDir = "workdir"
	flagInclude = "include"
	flagExclude = "exclude"
	flagJSX     = "jsx"
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(logging.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:               "mxn-svg",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Turn SVG files into JSX function components",
		Long: `mxn-svg cleans SVG files and wraps them into JSX function components that
forward their props to the root <svg> element.

Files are selected with include and exclude glob patterns. They can be bundled
with esbuild (build, watch) or written out one module per file (convert).`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if v.GetBool(flagDebug) {
				handler := logging.NewHandler(cmd.ErrOrStderr(), logging.Format(), slog.LevelDebug)
				slog.SetDefault(slog.New(handler))
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to the configuration file (default: mxn-svg.yaml in the working directory)")
	flags.Bool(flagDebug, false, "Enable debug logging")
	flags.StringP(flagWorkDir, "C", ".", "Working directory used to find configuration and package.json")
	flags.StringSlice(flagInclude, nil, "Glob patterns of files to transform, overriding the configuration")
	flags.StringSlice(flagExclude, nil, "Glob patterns of files to leave alone, overriding the configuration")
	flags.String(flagJSX, "", "JSX library (preact, react or auto), overriding the configuration")

	for _, name := range []string{flagConfig, flagDebug, flagWorkDir, flagInclude, flagExclude, flagJSX} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	rootCmd.AddCommand(
		newBuildCmd(v),
		newWatchCmd(v),
		newConvertCmd(v),
		newMatchCmd(v),
		newStatusCmd(v),
		newConfigCmd(v),
		newVersionCmd(),
	)

	return rootCmd
}
