package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler(map[string]Pinger{
		"database": pingFunc(func(context.Context) error {
			t.Error("liveness must not ping dependencies")
			return nil
		}),
	})
	c, w := newTestContext(http.MethodGet, "/health", "")

	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data.Status)
	assert.NotEmpty(t, body.Data.GoVersion)
	assert.NotEmpty(t, body.Data.Uptime)
}

func TestSystemHandler_Ready(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "all up",
			checks:     map[string]Pinger{"database": up, "redis": up},
			wantStatus: http.StatusOK,
			wantState:  "ready",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "redis down",
			checks:     map[string]Pinger{"database": up, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "not_ready",
			wantChecks: map[string]string{"database": "ok", "redis": "dial tcp: connection refused"},
		},
		{
			name:       "nil checks are skipped",
			checks:     map[string]Pinger{"database": up, "redis": nil},
			wantStatus: http.StatusOK,
			wantState:  "ready",
			wantChecks: map[string]string{"database": "ok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler(tt.checks)
			c, w := newTestContext(http.MethodGet, "/ready", "")

			h.Ready(c)

			require.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Data ReadyResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			assert.Equal(t, tt.wantChecks, body.Data.Checks)
		})
	}
}
