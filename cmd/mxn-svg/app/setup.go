package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/stacklok/mxn-svg/internal/config"
	"github.com/stacklok/mxn-svg/internal/telemetry"
	"github.com/stacklok/mxn-svg/pkg/plugin"
	"github.com/stacklok/mxn-svg/pkg/versions"
)

// workDir returns the absolute working directory selected with --workdir
func workDir(v *viper.Viper) (string, error) {
	dir := v.GetString(flagWorkDir)
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return abs, nil
}

// configPath finds the configuration file. An empty path means none exists
// and defaults apply.
func configPath(v *viper.Viper, dir string) (string, error) {
	explicit := v.GetString(flagConfig)
	if explicit != "" && !filepath.IsAbs(explicit) {
		explicit = filepath.Join(dir, explicit)
	}

	path, err := config.Find(explicit, dir)
	if errors.Is(err, config.ErrNotFound) {
		slog.Debug("No configuration file found, using defaults", "workdir", dir)
		return "", nil
	}
	return path, err
}

// loadConfig loads the configuration and applies command line overrides
func loadConfig(v *viper.Viper, dir string) (*config.Config, string, error) {
	path, err := configPath(v, dir)
	if err != nil {
		return nil, "", err
	}

	cfg := &config.Config{}
	if path != "" {
		cfg, err = config.LoadConfig(config.WithConfigPath(path))
		if err != nil {
			return nil, "", fmt.Errorf("failed to load configuration: %w", err)
		}
		slog.Debug("Loaded configuration", "path", path)
	}

	if err := applyOverrides(v, cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyOverrides replaces configured values with flags given on the command line
func applyOverrides(v *viper.Viper, cfg *config.Config) error {
	changed := false
	if include := v.GetStringSlice(flagInclude); len(include) > 0 {
		cfg.Include = include
		changed = true
	}
	if exclude := v.GetStringSlice(flagExclude); len(exclude) > 0 {
		cfg.Exclude = exclude
		changed = true
	}
	if jsx := v.GetString(flagJSX); jsx != "" {
		cfg.JSX = jsx
		cfg.Imports = nil
		changed = true
	}

	if !changed {
		return nil
	}
	return cfg.Validate()
}

// newTelemetry starts the providers configured in cfg
func newTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	return telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithDefaultServiceVersion(versions.GetVersionInfo().Version),
	)
}

// newPlugin builds the plugin for cfg, reporting to tel
func newPlugin(cfg *config.Config, dir string, tel *telemetry.Telemetry) (*plugin.Plugin, error) {
	opts, err := cfg.PluginOptions(dir)
	if err != nil {
		return nil, err
	}

	opts = append(opts, plugin.WithLogger(slog.Default()))
	if tel != nil {
		opts = append(opts,
			plugin.WithTracerProvider(tel.TracerProvider()),
			plugin.WithMeterProvider(tel.MeterProvider()),
		)
	}
	return plugin.New(opts...)
}

// shutdownTelemetry flushes tel, logging failures
func shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		slog.Warn("Failed to shut down telemetry", "error", err)
	}
}

// session bundles what every transforming command needs
type session struct {
	dir        string
	cfg        *config.Config
	configPath string
	telemetry  *telemetry.Telemetry
	plugin     *plugin.Plugin
}

func newSession(ctx context.Context, v *viper.Viper) (*session, error) {
	dir, err := workDir(v)
	if err != nil {
		return nil, err
	}

	cfg, path, err := loadConfig(v, dir)
	if err != nil {
		return nil, err
	}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p, err := newPlugin(cfg, dir, tel)
	if err != nil {
		shutdownTelemetry(tel)
		return nil, err
	}

	return &session{dir: dir, cfg: cfg, configPath: path, telemetry: tel, plugin: p}, nil
}

func (s *session) close() {
	shutdownTelemetry(s.telemetry)
}

// resolve makes path absolute against the working directory
func (s *session) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}
