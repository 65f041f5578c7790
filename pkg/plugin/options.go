package plugin

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mxn-svg/internal/filtering"
	"github.com/stacklok/mxn-svg/pkg/cleaner"
)

var errMixedImports = errors.New("imports cannot be combined with jsx, factory or default")

// options holds the values collected from Option functions. Unset fields keep
// their defaults when New builds the plugin.
type options struct {
	include []string
	exclude []string
	prepend *string
	syntax  filtering.Syntax

	cleaner cleaner.Cleaner

	jsx           string
	factory       string
	defaultImport *bool
	libraryShape  bool

	imports  []string
	rawShape bool

	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option is a functional option for configuring a Plugin
type Option func(*options) error

// WithInclude adds glob patterns a file must match to be handled.
// Without include patterns every file is handled.
func WithInclude(patterns ...string) Option {
	return func(o *options) error {
		o.include = append(o.include, patterns...)
		return nil
	}
}

// WithExclude adds glob patterns that reject a file even when it is included
func WithExclude(patterns ...string) Option {
	return func(o *options) error {
		o.exclude = append(o.exclude, patterns...)
		return nil
	}
}

// WithPrepend sets the prefix added to every pattern, "**/" by default.
// An empty prefix anchors patterns at the start of the identifier.
func WithPrepend(prefix string) Option {
	return func(o *options) error {
		o.prepend = &prefix
		return nil
	}
}

// WithPatternSyntax selects the glob dialect used for include and exclude patterns
func WithPatternSyntax(syntax filtering.Syntax) Option {
	return func(o *options) error {
		if _, err := filtering.NewCompiler(syntax); err != nil {
			return configError("syntax", err)
		}
		o.syntax = syntax
		return nil
	}
}

// WithCleaner sets the cleaning step. It replaces cleaner.Default.
func WithCleaner(c cleaner.Cleaner) Option {
	return func(o *options) error {
		if c == nil {
			return configError("clean", cleaner.ErrNotCallable)
		}
		o.cleaner = c
		return nil
	}
}

// WithCleanFunc sets the cleaning step from any function shape accepted by
// cleaner.FromFunc, including functions returning deferred strings.
func WithCleanFunc(fn any) Option {
	return func(o *options) error {
		c, err := cleaner.FromFunc(fn)
		if err != nil {
			return configError("clean", err)
		}
		o.cleaner = c
		return nil
	}
}

// WithJSX sets the JSX library the factory is imported from, "preact" by default
func WithJSX(library string) Option {
	return func(o *options) error {
		o.jsx = library
		o.libraryShape = true
		return nil
	}
}

// WithFactory sets the name imported from the JSX library
func WithFactory(name string) Option {
	return func(o *options) error {
		o.factory = name
		o.libraryShape = true
		return nil
	}
}

// WithDefaultImport chooses between `import h from` and `import { h } from`
func WithDefaultImport(defaultImport bool) Option {
	return func(o *options) error {
		o.defaultImport = &defaultImport
		o.libraryShape = true
		return nil
	}
}

// WithImports sets raw import statements emitted verbatim, one per line
func WithImports(statements ...string) Option {
	return func(o *options) error {
		o.imports = append(o.imports, statements...)
		o.rawShape = true
		return nil
	}
}

// WithLogger sets the logger for filter decisions and failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracerProvider enables a span per transformed file
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		o.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider enables transform metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) error {
		o.meterProvider = mp
		return nil
	}
}
