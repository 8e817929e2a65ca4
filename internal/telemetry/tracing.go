package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func methodAttr(method uint16) attribute.KeyValue {
	return attribute.Int("peerwire.method", int(method))
}

// tracerName identifies this library's spans in whatever TracerProvider the
// host process has configured. Grounded on the teacher pack's
// internal/telemetry/telemetry.go, trimmed to span helpers only: a library
// has no business calling otel.SetTracerProvider or owning an exporter —
// that's the embedding application's concern, not this module's.
const tracerName = "github.com/dominicnunez/peerwire"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartRequestSpan starts a span around an outbound Request call.
func StartRequestSpan(ctx context.Context, method uint16) (context.Context, trace.Span) {
	return tracer().Start(ctx, "peerwire.request", trace.WithAttributes(
		methodAttr(method),
	))
}

// StartDispatchSpan starts a span around inbound dispatch of a single
// Request or Notification frame.
func StartDispatchSpan(ctx context.Context, method uint16) (context.Context, trace.Span) {
	return tracer().Start(ctx, "peerwire.dispatch", trace.WithAttributes(
		methodAttr(method),
	))
}

// EndWithError records err on span (if non-nil) and sets the span status,
// then ends it. Safe to call with a nil err.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
