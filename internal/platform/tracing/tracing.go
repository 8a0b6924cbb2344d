// Package tracing wraps the OpenTelemetry API for service spans. Without a
// configured provider the global no-op tracer is used.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "medledger/pkg/domain-errors"
)

const instrumentationPrefix = "medledger/"

// Tracer returns the named tracer from the global provider.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// Start opens a span for a service operation.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, marking it failed when err is non-nil. Client errors are
// tagged with their code but do not set the error status.
func End(span trace.Span, err error) {
	if err != nil {
		code := dErrors.CodeOf(err)
		span.SetAttributes(attribute.String("error.code", string(code)))
		if code == dErrors.CodeInternal || code == dErrors.CodeExternalDependencyFailure || code == dErrors.CodeTimeout {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(code))
		}
	}
	span.End()
}
