package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/mxn-svg/pkg/versions"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			switch format {
			case "json":
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
			case "", "text":
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
			default:
				return fmt.Errorf("unsupported format %q (want text or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "", "Output format (text or json)")
	return cmd
}
