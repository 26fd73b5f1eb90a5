package router

import (
	"fmt"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/logger"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/handler"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Resident   *handler.ResidentHandler
	FamilyCard *handler.FamilyCardHandler
	Region     *handler.RegionHandler
	Audit      *handler.AuditHandler
	System     *handler.SystemHandler
}

// EngineConfig carries everything NewEngine wires besides the handlers.
// TracerProvider, Meter and Idempotency may be nil.
type EngineConfig struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	ServiceName    string
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds the gin engine with the global middleware chain, the
// public probes and the authenticated /api/v1 routes.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracerProvider),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(cfg.Meter),
		logger.GinMiddleware(cfg.Logger),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	apiMiddleware := []gin.HandlerFunc{middleware.JWTAuth(cfg.Tokens, cfg.Logger)}
	if cfg.Idempotency != nil {
		apiMiddleware = append(apiMiddleware,
			middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, cfg.Logger))
	}
	r := NewRouter(engine, WithGroupMiddleware(apiMiddleware...))
	for _, g := range domainGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return engine, nil
}

func domainGroups(h Handlers) []*DomainGroup {
	adminOnly := middleware.RequireRoles(identity.RoleAdmin)
	residentWriters := middleware.RequireRoles(identity.RoleAdmin, identity.RoleRT)

	var groups []*DomainGroup
	if h.Resident != nil {
		groups = append(groups, NewDomainGroup("penduduk", "/penduduk").
			GET("", h.Resident.List).
			GET("/:id", h.Resident.GetByID).
			POST("", residentWriters, h.Resident.Create).
			PUT("/:id", residentWriters, h.Resident.Update).
			DELETE("/:id", adminOnly, h.Resident.Delete))
	}
	if h.FamilyCard != nil {
		groups = append(groups, NewDomainGroup("kk", "/kk").
			GET("", h.FamilyCard.List).
			GET("/:id", h.FamilyCard.GetByID).
			POST("", adminOnly, h.FamilyCard.Create).
			PUT("/:id", adminOnly, h.FamilyCard.Update).
			DELETE("/:id", adminOnly, h.FamilyCard.Archive))
	}
	if h.Region != nil {
		groups = append(groups,
			NewDomainGroup("rw", "/rw").
				GET("", h.Region.ListRWs).
				GET("/:id", h.Region.GetRW).
				POST("", adminOnly, h.Region.CreateRW).
				PUT("/:id", adminOnly, h.Region.UpdateRW).
				DELETE("/:id", adminOnly, h.Region.DeleteRW),
			NewDomainGroup("rt", "/rt").
				GET("", h.Region.ListRTs).
				GET("/:id", h.Region.GetRT).
				POST("", adminOnly, h.Region.CreateRT).
				PUT("/:id", adminOnly, h.Region.UpdateRT).
				DELETE("/:id", adminOnly, h.Region.DeleteRT))
	}
	if h.Audit != nil {
		groups = append(groups, NewDomainGroup("audit", "/audit-logs").
			GET("", adminOnly, h.Audit.List))
	}
	return groups
}
