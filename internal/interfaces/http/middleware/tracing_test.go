package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return tp, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracedRouter(tp *sdktrace.TracerProvider, actor *identity.Actor, status int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing("sidesa-test", tp), SpanAttributes())
	router.PUT("/penduduk/:id", func(c *gin.Context) {
		if actor != nil {
			c.Set(ActorKey, *actor)
		}
		c.Status(status)
	})
	return router
}

func TestTracing_SpanNamedAfterRoute(t *testing.T) {
	tp, sr := newTestTracer(t)
	router := tracedRouter(tp, nil, http.StatusOK)

	req := httptest.NewRequest(http.MethodPut, "/penduduk/"+uuid.NewString(), nil)
	req.Header.Set(RequestIDHeader, "req-trace")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "PUT /penduduk/:id", spans[0].Name())

	v, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace", v.AsString())
}

func TestSpanAttributes_Actor(t *testing.T) {
	tp, sr := newTestTracer(t)
	actor := identity.NewActor(uuid.New(), identity.RoleRT)
	router := tracedRouter(tp, &actor, http.StatusOK)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/penduduk/1", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	id, ok := spanAttr(spans[0], "enduser.id")
	require.True(t, ok)
	assert.Equal(t, actor.ID.String(), id.AsString())
	role, ok := spanAttr(spans[0], "enduser.role")
	require.True(t, ok)
	assert.Equal(t, "RT", role.AsString())
}

func TestSpanAttributes_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   codes.Code
	}{
		{"success", http.StatusOK, codes.Unset},
		{"invariant violation is a client error", http.StatusConflict, codes.Unset},
		{"server error", http.StatusServiceUnavailable, codes.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, sr := newTestTracer(t)
			router := tracedRouter(tp, nil, tt.status)
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/penduduk/1", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.want, spans[0].Status().Code)
		})
	}
}

func TestSpanAttributes_NonRecordingSpan(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Tracing("sidesa-test", noop.NewTracerProvider()), SpanAttributes())
	router.GET("/test", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
