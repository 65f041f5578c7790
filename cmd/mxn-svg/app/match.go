package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/stacklok/mxn-svg/internal/convert"
)

var (
	includedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	excludedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func newMatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [path]...",
		Short: "Show which files the include and exclude patterns select, and why",
		Long: `Show the filter decision for each path. Without arguments every SVG file
below the working directory is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer s.close()

			paths := args
			if len(paths) == 0 {
				paths, err = doublestar.Glob(os.DirFS(s.dir), convert.SourcePattern, doublestar.WithFilesOnly())
				if err != nil {
					return fmt.Errorf("failed to list svg files: %w", err)
				}
			}

			ids := make([]string, 0, len(paths))
			for _, p := range paths {
				ids = append(ids, s.resolve(filepath.FromSlash(p)))
			}

			rows := make([][]string, 0, len(paths))
			for i, d := range s.plugin.Select(cmd.Context(), ids) {
				rows = append(rows, []string{paths[i], formatDecision(cmd.OutOrStdout(), d.Included), d.Reason})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("File", "Included", "Reason")
			if err := table.Bulk(rows); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			return table.Render()
		},
	}
	return cmd
}

// formatDecision colours the decision when w is a terminal
func formatDecision(w io.Writer, included bool) string {
	text := strconv.FormatBool(included)

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return text
	}
	if included {
		return includedStyle.Render(text)
	}
	return excludedStyle.Render(text)
}
