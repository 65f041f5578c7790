// Package logging configures the process-wide slog logger for mxn-svg.
//
// Records are JSON on stderr so that commands printing data to stdout stay
// machine readable. When a record is logged with a context carrying an
// OpenTelemetry span, its trace_id and span_id are added for log-trace
// correlation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
)

// EnvPrefix is the prefix of the environment variables read by this package
const EnvPrefix = "MXN_SVG"

const (
	// FormatJSON writes one JSON object per record
	FormatJSON = "json"
	// FormatText writes logfmt style key=value records
	FormatText = "text"
)

// Level parses MXN_SVG_LOG_LEVEL, falling back to LOG_LEVEL.
// Unset or invalid values select slog.LevelInfo.
func Level() slog.Level {
	v := newViper()

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}

	level, ok := ParseLevel(levelStr)
	if !ok {
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
	}
	return level
}

// ParseLevel maps a level name to slog.Level. The boolean is false for
// unknown names, which map to slog.LevelInfo.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Format reads MXN_SVG_LOG_FORMAT, defaulting to FormatJSON
func Format() string {
	if strings.EqualFold(newViper().GetString("LOG_FORMAT"), FormatText) {
		return FormatText
	}
	return FormatJSON
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	return v
}

// NewHandler returns a handler writing to w in the given format with trace
// correlation
func NewHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if format == FormatText {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}
	return &traceHandler{Handler: base}
}

// Setup installs the default logger from the environment and returns it
func Setup() *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, Format(), Level()))
	slog.SetDefault(logger)
	return logger
}

// traceHandler injects the trace and span IDs of the active span
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
