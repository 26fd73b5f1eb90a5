package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestEndSpan(t *testing.T) {
	recorder := withRecorder(t)
	ctx := context.Background()

	_, ok := StartSpan(ctx, "ok")
	EndSpan(ok, nil)
	_, domain := StartSpan(ctx, "domain")
	EndSpan(domain, household.ErrCardNotFound)
	_, transient := StartSpan(ctx, "transient")
	EndSpan(transient, shared.ErrTransient)
	_, infra := StartSpan(ctx, "infra")
	EndSpan(infra, errors.New("broken pipe"))

	spans := recorder.Ended()
	require.Len(t, spans, 4)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	assert.Equal(t, "NOT_FOUND", attrMap(spans[1])["sidesa.error_code"].AsString())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Equal(t, codes.Error, spans[3].Status().Code)
}
