package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/stacklok/mxn-svg/pkg/plugin"
)

const telemetryShutdownTimeout = 5 * time.Second

// buildFlags are shared by build and watch
type buildFlags struct {
	outdir     string
	outfile    string
	bundle     bool
	minify     bool
	format     string
	sourcemap  string
	jsxFactory string
	external   []string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.outdir, "outdir", "dist", "Output directory")
	flags.StringVar(&f.outfile, "outfile", "", "Single output file, replaces --outdir")
	flags.BoolVar(&f.bundle, "bundle", true, "Inline imported files into the output")
	flags.BoolVar(&f.minify, "minify", false, "Minify the output")
	flags.StringVar(&f.format, "format", "esm", "Output format (esm, cjs or iife)")
	flags.StringVar(&f.sourcemap, "sourcemap", "none", "Source map mode (none, linked, inline or external)")
	flags.StringVar(&f.jsxFactory, "jsx-factory", "", "JSX factory, defaults to the one of the configured import")
	flags.StringSliceVar(&f.external, "external", nil, "Packages left as imports, e.g. preact")
}

var formats = map[string]api.Format{
	"esm":  api.FormatESModule,
	"cjs":  api.FormatCommonJS,
	"iife": api.FormatIIFE,
}

var sourcemaps = map[string]api.SourceMap{
	"none":     api.SourceMapNone,
	"linked":   api.SourceMapLinked,
	"inline":   api.SourceMapInline,
	"external": api.SourceMapExternal,
}

// options translates the flags into esbuild options for the entry points
func (f *buildFlags) options(s *session, entryPoints []string, svgPlugin api.Plugin) (api.BuildOptions, error) {
	format, ok := formats[f.format]
	if !ok {
		return api.BuildOptions{}, fmt.Errorf("unsupported format %q (want esm, cjs or iife)", f.format)
	}
	sourcemap, ok := sourcemaps[f.sourcemap]
	if !ok {
		return api.BuildOptions{}, fmt.Errorf("unsupported sourcemap mode %q (want none, linked, inline or external)", f.sourcemap)
	}

	factory := f.jsxFactory
	if factory == "" {
		factory = s.plugin.JSXFactory()
	}

	entries := make([]string, 0, len(entryPoints))
	for _, e := range entryPoints {
		entries = append(entries, s.resolve(e))
	}

	opts := api.BuildOptions{
		AbsWorkingDir:     s.dir,
		EntryPoints:       entries,
		Bundle:            f.bundle,
		Write:             true,
		Format:            format,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  f.minify,
		MinifyIdentifiers: f.minify,
		MinifySyntax:      f.minify,
		JSX:               api.JSXTransform,
		JSXFactory:        factory,
		External:          f.external,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{svgPlugin},
	}
	if f.outfile != "" {
		opts.Outfile = s.resolve(f.outfile)
	} else {
		opts.Outdir = s.resolve(f.outdir)
	}
	return opts, nil
}

func newBuildCmd(v *viper.Viper) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build <entry point>...",
		Short: "Bundle entry points with esbuild, turning imported SVG files into components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := newSession(ctx, v)
			if err != nil {
				return err
			}
			defer s.close()

			opts, err := flags.options(s, args, s.plugin.ESBuild(plugin.WithContext(ctx)))
			if err != nil {
				return err
			}

			result := api.Build(opts)
			printMessages(cmd, result.Warnings, api.WarningMessage)
			if len(result.Errors) > 0 {
				printMessages(cmd, result.Errors, api.ErrorMessage)
				return fmt.Errorf("build failed with %d error(s)", len(result.Errors))
			}

			for _, out := range result.OutputFiles {
				slog.Debug("Wrote output file", "path", out.Path, "bytes", len(out.Contents))
			}
			slog.Info("Build finished", "outputs", len(result.OutputFiles))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// printMessages writes esbuild diagnostics to stderr, coloured on a terminal
func printMessages(cmd *cobra.Command, msgs []api.Message, kind api.MessageKind) {
	if len(msgs) == 0 {
		return
	}

	color := false
	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{
		Kind:  kind,
		Color: color,
	})
	cmd.PrintErr(strings.Join(formatted, ""))
}
