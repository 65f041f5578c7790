package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stacklok/mxn-svg/internal/filtering"
	"github.com/stacklok/mxn-svg/internal/imports"
	"github.com/stacklok/mxn-svg/pkg/cleaner"
	"github.com/stacklok/mxn-svg/pkg/plugin"
)

// ErrNoJSXLibrary indicates that jsx: auto found neither preact nor react
var ErrNoJSXLibrary = errors.New("no JSX library found in package.json")

var dependencyFields = []string{"dependencies", "devDependencies", "peerDependencies"}

// PluginOptions converts the configuration into plugin options. workDir is
// where package.json is looked up for jsx: auto.
func (c *Config) PluginOptions(workDir string) ([]plugin.Option, error) {
	var opts []plugin.Option

	if len(c.Include) > 0 {
		opts = append(opts, plugin.WithInclude(c.Include...))
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, plugin.WithExclude(c.Exclude...))
	}
	if c.Prepend != nil {
		opts = append(opts, plugin.WithPrepend(*c.Prepend))
	}
	if c.Syntax != "" {
		opts = append(opts, plugin.WithPatternSyntax(filtering.Syntax(c.Syntax)))
	}

	if len(c.Imports) > 0 {
		opts = append(opts, plugin.WithImports(c.Imports...))
	} else {
		jsx := c.JSX
		if jsx == JSXAuto {
			detected, err := DetectJSX(workDir)
			if err != nil {
				return nil, err
			}
			jsx = detected
		}
		if jsx != "" {
			opts = append(opts, plugin.WithJSX(jsx))
		}
		if c.Factory != "" {
			opts = append(opts, plugin.WithFactory(c.Factory))
		}
		if c.Default != nil {
			opts = append(opts, plugin.WithDefaultImport(*c.Default))
		}
	}

	if c.Cleaner != nil {
		cl, err := c.Cleaner.Build()
		if err != nil {
			return nil, err
		}
		opts = append(opts, plugin.WithCleaner(cl))
	}

	return opts, nil
}

// Build returns the configured cleaner
func (cc *CleanerConfig) Build() (cleaner.Cleaner, error) {
	switch cc.Type {
	case "", CleanerDefault:
		return cleaner.Default, nil
	case CleanerMinify:
		return cleaner.Minify(), nil
	case CleanerXML:
		return cleaner.XML(), nil
	case CleanerNone:
		return cleaner.None, nil
	case CleanerExec:
		var timeout time.Duration
		if cc.Timeout != "" {
			d, err := time.ParseDuration(cc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid cleaner timeout: %w", err)
			}
			timeout = d
		}
		return cleaner.Exec(cc.Command, timeout)
	default:
		return nil, fmt.Errorf("%w: unknown cleaner type %q", ErrInvalidConfig, cc.Type)
	}
}

// DetectJSX returns the JSX library declared in workDir/package.json.
// Preact wins when both preact and react are present.
func DetectJSX(workDir string) (string, error) {
	path := filepath.Join(workDir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for jsx auto: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s is not valid JSON", path)
	}

	for _, lib := range []string{imports.LibraryPreact, imports.LibraryReact} {
		for _, field := range dependencyFields {
			if gjson.GetBytes(data, field+"."+lib).Exists() {
				return lib, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoJSXLibrary, path)
}
