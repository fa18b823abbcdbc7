package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// SetupLogger creates the process-wide structured logger. Output is JSON on
// stdout; records carry trace/span IDs when a span is active on the context.
func SetupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	handler := &tracedHandler{Handler: slog.NewJSONHandler(os.Stdout, opts)}
	return slog.New(handler)
}

// tracedHandler decorates records with OpenTelemetry trace context.
type tracedHandler struct {
	slog.Handler
}

func (h *tracedHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *tracedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tracedHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *tracedHandler) WithGroup(name string) slog.Handler {
	return &tracedHandler{Handler: h.Handler.WithGroup(name)}
}
