package app

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/mxn-svg/internal/status"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status [output directory]",
		Short: "Show the last convert runs recorded in an output directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir(v)
			if err != nil {
				return err
			}

			outDir := "components"
			if len(args) == 1 {
				outDir = args[0]
			}
			if !filepath.IsAbs(outDir) {
				outDir = filepath.Join(dir, outDir)
			}

			all, err := status.ForOutput(outDir).LoadAllStatus(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No convert runs recorded in %s\n", outDir)
				return nil
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			slices.Sort(keys)

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				st := all[k]
				rows = append(rows, []string{
					st.Source,
					string(st.Phase),
					formatTime(st.LastAttempt),
					formatTime(st.LastSuccess),
					strconv.Itoa(st.Converted),
					strconv.Itoa(st.Skipped),
					strconv.Itoa(st.Failed),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Source", "Phase", "Last attempt", "Last success", "Converted", "Skipped", "Failed")
			if err := table.Bulk(rows); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			return table.Render()
		},
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
