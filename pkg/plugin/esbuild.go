package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/stacklok/mxn-svg/internal/otel"
)

const (
	// DefaultLoadFilter selects the paths esbuild offers to the plugin
	DefaultLoadFilter = `(?i)\.svg$`

	// DefaultNamespace is esbuild's namespace for files on disk
	DefaultNamespace = "file"
)

// ESBuildOption configures the esbuild adapter
type ESBuildOption func(*esbuildConfig)

type esbuildConfig struct {
	ctx       context.Context
	filter    string
	namespace string
	readFile  func(string) ([]byte, error)
}

// WithLoadFilter sets the Go regular expression esbuild matches paths against
// before calling the plugin
func WithLoadFilter(filter string) ESBuildOption {
	return func(c *esbuildConfig) {
		c.filter = filter
	}
}

// WithNamespace sets the esbuild namespace the on-load callback is registered for
func WithNamespace(namespace string) ESBuildOption {
	return func(c *esbuildConfig) {
		c.namespace = namespace
	}
}

// WithContext sets the context passed to Transform, which bounds deferred
// cleaners. Defaults to context.Background().
func WithContext(ctx context.Context) ESBuildOption {
	return func(c *esbuildConfig) {
		c.ctx = ctx
	}
}

// ESBuild adapts p to an esbuild plugin. Files the filter rejects fall through
// to the other plugins and loaders; a transform failure is reported by esbuild
// against that file only.
func (p *Plugin) ESBuild(opts ...ESBuildOption) api.Plugin {
	cfg := &esbuildConfig{
		ctx:       context.Background(),
		filter:    DefaultLoadFilter,
		namespace: DefaultNamespace,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: cfg.filter, Namespace: cfg.namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return p.onLoad(cfg, args)
				})
		},
	}
}

func (p *Plugin) onLoad(cfg *esbuildConfig, args api.OnLoadArgs) (api.OnLoadResult, error) {
	if !p.ShouldInclude(args.Path) {
		p.logger.Debug("Skipping file", "id", args.Path, "host", otel.HostESBuild)
		return api.OnLoadResult{}, nil
	}

	data, err := cfg.readFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("failed to read %s: %w", args.Path, err)
	}

	res, err := p.Transform(otel.WithHost(cfg.ctx, otel.HostESBuild), string(data), args.Path)
	if err != nil {
		return api.OnLoadResult{}, err
	}
	if res == nil {
		return api.OnLoadResult{}, nil
	}

	return api.OnLoadResult{
		PluginName: Name,
		Contents:   &res.Code,
		ResolveDir: filepath.Dir(args.Path),
		Loader:     api.LoaderJSX,
	}, nil
}
