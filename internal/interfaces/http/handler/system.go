package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/telemetry"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]Pinger
}

// NewSystemHandler creates a SystemHandler; checks maps a dependency name
// to its probe and nil entries are skipped
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &SystemHandler{startTime: time.Now(), checks: live}
}

// HealthResponse is the liveness body
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health. It never touches dependencies.
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Version:   telemetry.ServiceVersion,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// ReadyResponse reports each dependency as "ok" or its error
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready handles GET /ready, answering 503 while any dependency is down
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Status = "not_ready"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ready" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Dependencies unavailable"},
		})
		return
	}
	h.Success(c, resp)
}
