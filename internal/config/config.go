// Package config loads mxn-svg configuration files.
//
// Files are YAML (.yaml, .yml) or JSON with comments and trailing commas
// (.json, .jsonc). Every file is checked against an embedded JSON Schema and
// then validated semantically before it is turned into plugin options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/mxn-svg/internal/filtering"
	"github.com/stacklok/mxn-svg/internal/telemetry"
	"github.com/stacklok/mxn-svg/internal/versions"
	pkgversions "github.com/stacklok/mxn-svg/pkg/versions"
)

const (
	// CleanerDefault strips declarations, namespaced attributes and comments with regular expressions
	CleanerDefault = "default"
	// CleanerMinify minifies the SVG before the default stripping
	CleanerMinify = "minify"
	// CleanerXML parses the SVG and prunes it as a tree
	CleanerXML = "xml"
	// CleanerExec pipes the SVG through an external command
	CleanerExec = "exec"
	// CleanerNone leaves the SVG untouched
	CleanerNone = "none"

	// JSXAuto picks the JSX library from package.json
	JSXAuto = "auto"
)

// ErrInvalidConfig is wrapped by every schema and validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Option configures LoadConfig
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from the given file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks, which also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Version constrains the mxn-svg releases allowed to use this file, e.g. ">= 0.3"
	Version string `yaml:"version,omitempty"`

	// Include and Exclude are glob patterns; a single string is accepted for one pattern
	Include StringList `yaml:"include,omitempty"`
	Exclude StringList `yaml:"exclude,omitempty"`

	// Prepend is added in front of every pattern, "**/" when unset
	Prepend *string `yaml:"prepend,omitempty"`

	// Syntax selects the glob dialect, "glob" or "doublestar"
	Syntax string `yaml:"syntax,omitempty"`

	// JSX, Factory and Default describe the import of a JSX library
	JSX     string `yaml:"jsx,omitempty"`
	Factory string `yaml:"factory,omitempty"`
	Default *bool  `yaml:"default,omitempty"`

	// Imports are raw import statements, exclusive with JSX, Factory and Default
	Imports StringList `yaml:"imports,omitempty"`

	Cleaner   *CleanerConfig    `yaml:"cleaner,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// CleanerConfig selects the cleaning step
type CleanerConfig struct {
	// Type is one of default, minify, xml, exec or none
	Type string `yaml:"type"`

	// Command is the argv of the exec cleaner
	Command []string `yaml:"command,omitempty"`

	// Timeout bounds one exec run, e.g. "10s"
	Timeout string `yaml:"timeout,omitempty"`
}

// StringList accepts either a single string or a list of strings
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// LoadConfig loads, schema-checks and validates a configuration file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data, filepath.Ext(loaderCfg.path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loaderCfg.path, err)
	}
	return config, nil
}

// Parse decodes configuration data. ext selects the format: ".json" and
// ".jsonc" are read as JSON with comments, anything else as YAML.
func Parse(data []byte, ext string) (*Config, error) {
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		standard, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
		data = standard
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate performs semantic validation not expressed by the schema
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}

	validators := []func() error{
		c.validateVersion,
		c.validatePatterns,
		c.validateImportShape,
		c.validateCleaner,
		c.validateTelemetry,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c *Config) validateVersion() error {
	if c.Version == "" {
		return nil
	}
	ok, err := versions.Satisfies(pkgversions.Version, c.Version)
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if !ok {
		return fmt.Errorf("version: mxn-svg %s does not satisfy %q", pkgversions.Version, c.Version)
	}
	return nil
}

func (c *Config) validatePatterns() error {
	prepend := filtering.DefaultPrepend
	if c.Prepend != nil {
		prepend = *c.Prepend
	}
	_, err := filtering.NewFileFilter(filtering.Config{
		Include: c.Include,
		Exclude: c.Exclude,
		Prepend: prepend,
		Syntax:  filtering.Syntax(c.Syntax),
	})
	return err
}

func (c *Config) validateImportShape() error {
	if len(c.Imports) > 0 && (c.JSX != "" || c.Factory != "" || c.Default != nil) {
		return fmt.Errorf("imports cannot be combined with jsx, factory or default")
	}
	return nil
}

func (c *Config) validateCleaner() error {
	if c.Cleaner == nil {
		return nil
	}

	if c.Cleaner.Type == CleanerExec && len(c.Cleaner.Command) == 0 {
		return fmt.Errorf("cleaner.command is required when cleaner.type is %s", CleanerExec)
	}
	if c.Cleaner.Type != CleanerExec && len(c.Cleaner.Command) > 0 {
		return fmt.Errorf("cleaner.command is only valid when cleaner.type is %s", CleanerExec)
	}

	if c.Cleaner.Timeout != "" {
		d, err := time.ParseDuration(c.Cleaner.Timeout)
		if err != nil {
			return fmt.Errorf("cleaner.timeout must be a valid duration (e.g., '10s'): %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("cleaner.timeout must be positive, got %s", c.Cleaner.Timeout)
		}
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
