package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/mxn-svg/internal/convert"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	var (
		outdir      string
		extension   string
		concurrency int
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "convert <source directory>",
		Short: "Write one component module per included SVG file",
		Long: `Convert every included SVG file below the source directory into a component
module in the output directory, mirroring the directory layout.

Files that fail to convert are reported and the others are still written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newSession(ctx, v)
			if err != nil {
				return err
			}
			defer s.close()

			c, err := convert.New(s.plugin, s.resolve(outdir),
				convert.WithConcurrency(concurrency),
				convert.WithExtension(extension),
			)
			if err != nil {
				return err
			}

			src := s.resolve(args[0])
			if watch {
				if err := c.Watch(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			report, err := c.Run(ctx, src)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d, skipped %d, failed %d (run %s)\n",
					len(report.Converted), len(report.Skipped), len(report.Failed), report.RunID)
			}
			if err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&outdir, "outdir", "components", "Output directory")
	flags.StringVar(&extension, "ext", convert.DefaultExtension, "Extension of the written modules")
	flags.IntVar(&concurrency, "concurrency", 4, "Number of files converted at once")
	flags.BoolVar(&watch, "watch", false, "Keep running and convert files again when they change")

	return cmd
}
