package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewTransport wraps a RoundTripper so every outbound request produces
// a client span. A nil base falls back to http.DefaultTransport.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
	)
}

// ExternalCall describes a call to a backing service for tracing
type ExternalCall struct {
	Service   string // elasticsearch, redis
	Operation string // search, index, delete
	Resource  string // index name or document ID (optional)
}

// StartExternalCall opens a client span around a backing-service call.
// The caller must end the span through EndExternalCall.
func StartExternalCall(ctx context.Context, call ExternalCall) (context.Context, trace.Span) {
	tracer := otel.Tracer("external-api")

	ctx, span := tracer.Start(ctx, fmt.Sprintf("%s.%s", call.Service, call.Operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", call.Service),
			attribute.String("external.operation", call.Operation),
		),
	)
	if call.Resource != "" {
		span.SetAttributes(attribute.String("external.resource", call.Resource))
	}
	return ctx, span
}

// EndExternalCall records the outcome on the span and ends it
func EndExternalCall(span trace.Span, err error, statusCode int) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
