package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	auditapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/audit"
	householdapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/household"
	populationapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/population"
	regionapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/auth"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/cache"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/config"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/logger"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/telemetry"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/handler"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/middleware"
	"github.com/Faiz-abdurrachman/SIDESA/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting SIDESA registry",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.OpenDatabase(context.Background(), &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := mp.Meter(telemetry.MeterName)
	if sqlDB, err := db.SQL(); err == nil {
		if _, err := telemetry.RegisterPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		}
	}

	var recorder txn.Recorder = txn.NopRecorder{}
	if mp.IsEnabled() {
		hm, err := telemetry.NewHouseholdMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create household metrics", zap.Error(err))
		}
		recorder = hm
	}

	isolation, err := persistence.ParseIsolation(cfg.Database.TxIsolation)
	if err != nil {
		log.Fatal("Invalid database.tx_isolation", zap.Error(err))
	}
	scope := persistence.NewGormTransactionScope(db.DB,
		persistence.WithIsolation(isolation),
		persistence.WithLockTimeout(cfg.Database.LockTimeout))

	residentRepo := persistence.NewGormResidentRepository(db.DB)
	cardRepo := persistence.NewGormCardRepository(db.DB)
	rwRepo := persistence.NewGormRWRepository(db.DB)
	rtRepo := persistence.NewGormRTRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	residentService := populationapp.NewResidentService(residentRepo, cardRepo, scope, recorder, log)
	cardService := householdapp.NewCardService(cardRepo, residentRepo, scope, recorder, log)
	regionService := regionapp.NewService(rwRepo, rtRepo, scope, recorder, log)
	auditService := auditapp.NewService(auditRepo)

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	checks := map[string]handler.Pinger{"database": db}
	if pinger, ok := store.(handler.Pinger); ok {
		checks["redis"] = pinger
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		Tokens:         auth.NewTokenService(cfg.JWT),
		Idempotency:    store,
		IdempotencyTTL: cfg.HTTP.IdempotencyTTL,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracerProvider: tp.Provider(),
		Meter:          mp.Meter("http.server"),
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Resident:   handler.NewResidentHandler(residentService),
		FamilyCard: handler.NewFamilyCardHandler(cardService),
		Region:     handler.NewRegionHandler(regionService),
		Audit:      handler.NewAuditHandler(auditService),
		System:     handler.NewSystemHandler(checks),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
