package plugin

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/mxn-svg/internal/filtering"
	"github.com/stacklok/mxn-svg/internal/imports"
	"github.com/stacklok/mxn-svg/internal/otel"
	"github.com/stacklok/mxn-svg/internal/rewrite"
	"github.com/stacklok/mxn-svg/internal/telemetry"
	"github.com/stacklok/mxn-svg/pkg/cleaner"
)

const (
	// Name identifies the plugin in host warnings and errors
	Name = "mxn-svg"

	spanName = "mxn-svg.transform"
)

// SourceMap is the map returned with every module. The rewrite does not keep
// line and column structure, so Mappings is always empty.
type SourceMap struct {
	Mappings string `json:"mappings"`
}

// Result is the generated component module
type Result struct {
	Code string    `json:"code"`
	Map  SourceMap `json:"map"`
}

// Plugin transforms SVG files into component modules
type Plugin struct {
	filter  *filtering.FileFilter
	imports imports.Producer
	cleaner cleaner.Cleaner
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.TransformMetrics
}

// New builds a plugin from opts applied over the defaults. Every validation
// failure is a *ConfigurationError.
func New(opts ...Option) (*Plugin, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	prepend := filtering.DefaultPrepend
	if o.prepend != nil {
		prepend = *o.prepend
	}

	filter, err := filtering.NewFileFilter(filtering.Config{
		Include: o.include,
		Exclude: o.exclude,
		Prepend: prepend,
		Syntax:  o.syntax,
	})
	if err != nil {
		return nil, configError("include/exclude", err)
	}

	producer, err := newProducer(o)
	if err != nil {
		return nil, err
	}

	c := o.cleaner
	if c == nil {
		c = cleaner.Default
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	var tracer trace.Tracer
	if o.tracerProvider != nil {
		tracer = o.tracerProvider.Tracer(telemetry.TracerName)
	}

	metrics, err := telemetry.NewTransformMetrics(o.meterProvider)
	if err != nil {
		return nil, configError("meter provider", err)
	}

	return &Plugin{
		filter:  filter,
		imports: producer,
		cleaner: c,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

func newProducer(o *options) (imports.Producer, error) {
	if o.rawShape {
		if o.libraryShape {
			return nil, configError("imports", errMixedImports)
		}
		return imports.NewRaw(o.imports...), nil
	}

	lib, err := imports.NewLibrary(o.jsx, o.factory, o.defaultImport)
	if err != nil {
		return nil, configError("factory", err)
	}
	return lib, nil
}

// Name returns the plugin name
func (*Plugin) Name() string { return Name }

// ShouldInclude reports whether id is handled by the plugin
func (p *Plugin) ShouldInclude(id string) bool {
	return p.filter.ShouldInclude(id)
}

// Decide is ShouldInclude with the reason for the decision
func (p *Plugin) Decide(id string) (bool, string) {
	return p.filter.Decide(id)
}

// Decision is the filter outcome for one identifier
type Decision = filtering.Decision

// Select decides every identifier in ids, keeping their order
func (p *Plugin) Select(ctx context.Context, ids []string) []Decision {
	return p.filter.Select(ctx, ids).Decisions
}

// JSXFactory returns the element factory matching the emitted imports, or ""
// when it cannot be derived from raw import statements.
func (p *Plugin) JSXFactory() string {
	return p.imports.JSXFactory()
}

// Imports returns the import statements placed at the top of every module
func (p *Plugin) Imports() []string {
	return p.imports.Statements()
}

// Transform turns content into a component module. Files rejected by the
// filter yield a nil result and a nil error. Cleaning failures are returned as
// a *TransformError for id only; ctx bounds the wait for deferred cleaners.
func (p *Plugin) Transform(ctx context.Context, content, id string) (*Result, error) {
	included, reason := p.filter.Decide(id)
	if !included {
		p.logger.Debug("Skipping file", "id", id, "reason", reason)
		p.metrics.RecordFile(ctx, telemetry.OutcomeSkipped)
		return nil, nil
	}

	attrs := []attribute.KeyValue{
		otel.AttrFileID.String(id),
		otel.AttrFileSize.Int(len(content)),
		otel.AttrFilterReason.String(reason),
	}
	if host := otel.HostFromContext(ctx); host != "" {
		attrs = append(attrs, otel.AttrHost.String(host))
	}
	ctx, span := otel.StartSpan(ctx, p.tracer, spanName, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	cleaned, err := p.cleaner.Clean(ctx, content)
	if err != nil {
		p.metrics.RecordDuration(ctx, time.Since(start), false)
		terr := &TransformError{ID: id, Err: err}
		otel.RecordError(span, terr)
		span.SetAttributes(otel.AttrOutcome.String(string(telemetry.OutcomeFailed)))
		p.metrics.RecordFile(ctx, telemetry.OutcomeFailed)
		p.logger.Warn("Failed to transform file", "id", id, "error", err)
		return nil, terr
	}

	code := rewrite.Module(p.imports.Statements(), rewrite.InjectProps(cleaned))
	p.metrics.RecordDuration(ctx, time.Since(start), true)

	span.SetAttributes(otel.AttrOutcome.String(string(telemetry.OutcomeTransformed)))
	p.metrics.RecordFile(ctx, telemetry.OutcomeTransformed)
	p.logger.Debug("Transformed file", "id", id, "reason", reason)

	return &Result{Code: code, Map: SourceMap{Mappings: ""}}, nil
}
