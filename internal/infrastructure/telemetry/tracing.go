package telemetry

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes spans started by the service itself
const TracerName = "github.com/Faiz-abdurrachman/SIDESA"

// StartSpan starts an internal span from the global provider. The caller
// ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "db.transaction")
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span and ends it. Domain errors are expected
// outcomes, so they are tagged with their code but leave the status unset.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	if code := shared.CodeOf(err); code != "" && code != shared.CodeTransient {
		span.SetAttributes(attribute.String("sidesa.error_code", code))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
