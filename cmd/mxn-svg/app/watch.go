package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/mxn-svg/internal/config"
	"github.com/stacklok/mxn-svg/pkg/plugin"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	flags := &buildFlags{}
	var metricsAddress string

	cmd := &cobra.Command{
		Use:   "watch <entry point>...",
		Short: "Rebuild entry points whenever their sources or the configuration change",
		Long: `Rebuild entry points with esbuild whenever a source file changes.

The configuration file is watched as well: a valid update swaps the plugin and
restarts the build, an invalid one is logged and ignored. With
--metrics-address, /metrics and /healthz are served on that address while
watching.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newSession(ctx, v)
			if err != nil {
				return err
			}
			defer s.close()

			w := &watcher{session: s, flags: flags, entryPoints: args}
			return w.run(ctx, v, metricsAddress)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&metricsAddress, "metrics-address", "", "Serve /metrics and /healthz on this address, e.g. :9090")
	return cmd
}

// watcher owns the esbuild context of a watch session
type watcher struct {
	session     *session
	flags       *buildFlags
	entryPoints []string

	mu      sync.Mutex
	current api.BuildContext
}

func (w *watcher) run(ctx context.Context, v *viper.Viper, metricsAddress string) error {
	if metricsAddress != "" {
		go func() {
			if err := w.session.telemetry.Serve(ctx, metricsAddress); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	if err := w.start(ctx, w.session.plugin); err != nil {
		return err
	}
	defer w.dispose()

	if w.session.configPath != "" {
		manager, err := config.NewManager(w.session.configPath)
		if err != nil {
			return err
		}
		defer func() { _ = manager.Close() }()

		manager.OnChange(func(cfg *config.Config) {
			w.reload(ctx, v, cfg)
		})
		go func() {
			if err := manager.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Configuration watcher stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("Stopping watch")
	return nil
}

// start creates an esbuild context for p and begins watching
func (w *watcher) start(ctx context.Context, p *plugin.Plugin) error {
	opts, err := w.flags.options(w.session, w.entryPoints, p.ESBuild(plugin.WithContext(ctx)))
	if err != nil {
		return err
	}
	opts.Plugins = append(opts.Plugins, reportPlugin())

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		for _, msg := range cerr.Errors {
			slog.Error("Invalid build options", "error", msg.Text)
		}
		return errors.New("failed to create build context")
	}

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		bctx.Dispose()
		return fmt.Errorf("failed to start watching: %w", err)
	}

	w.mu.Lock()
	previous := w.current
	w.current = bctx
	w.mu.Unlock()

	if previous != nil {
		previous.Dispose()
	}
	slog.Info("Watching for changes", "entry_points", w.entryPoints)
	return nil
}

// reload swaps in a plugin built from cfg, keeping the old one on failure
func (w *watcher) reload(ctx context.Context, v *viper.Viper, cfg *config.Config) {
	next := *cfg
	if err := applyOverrides(v, &next); err != nil {
		slog.Error("Ignoring configuration update", "error", err)
		return
	}

	p, err := newPlugin(&next, w.session.dir, w.session.telemetry)
	if err != nil {
		slog.Error("Ignoring configuration update", "error", err)
		return
	}

	if err := w.start(ctx, p); err != nil {
		slog.Error("Failed to restart build after configuration update", "error", err)
		return
	}
	slog.Info("Configuration update applied")
}

func (w *watcher) dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil {
		w.current.Dispose()
		w.current = nil
	}
}

// reportPlugin logs the outcome of every rebuild
func reportPlugin() api.Plugin {
	return api.Plugin{
		Name: plugin.Name + "-report",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					for _, msg := range result.Errors {
						attrs := []any{"error", msg.Text}
						if msg.Location != nil {
							attrs = append(attrs, "file", msg.Location.File, "line", msg.Location.Line)
						}
						slog.Error("Rebuild failed", attrs...)
					}
					return api.OnEndResult{}, nil
				}
				slog.Info("Rebuilt", "warnings", len(result.Warnings))
				return api.OnEndResult{}, nil
			})
		},
	}
}
