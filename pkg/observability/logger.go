package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Attribute keys emitted by the handler and the container log helpers.
const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"

	// AttrContainer tags a record with the container kind it concerns
	// (ordered, priority, interval, ...). Matches the metric attribute.
	AttrContainer = "container"

	// AttrOp tags a record with the query-contract operation name.
	AttrOp = "op"
)

// TracingHandler is an [slog.Handler] that correlates log records with the
// active span: when the context carries a valid span, trace_id and span_id
// are appended to the record. Service identity (service, env, mode) is
// attached once at construction, before any WithGroup can nest it, so those
// keys stay top-level in every record.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner with span correlation and service identity.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	identity := make([]slog.Attr, 0, 3)
	identity = append(identity,
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	)

	if env != "" {
		identity = append(identity, slog.String(attrEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(identity)}
}

// Enabled delegates to the wrapped handler.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle appends the active span's identifiers, then delegates. Records
// logged outside any span pass through untouched.
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := h.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("emit log record: %w", err)
	}

	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a handler that nests subsequent attributes under name.
// The service identity attached at construction stays top-level.
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: h.inner.WithGroup(name)}
}

// ContainerLogger returns base tagged with the container kind, so every
// record a workload emits for that container carries the same attribute the
// container metrics use. A nil base stays nil, matching the nil-safe
// instrument discipline.
func ContainerLogger(base *slog.Logger, container string) *slog.Logger {
	if base == nil {
		return nil
	}

	return base.With(slog.String(AttrContainer, container))
}
