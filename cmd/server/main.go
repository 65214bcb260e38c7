package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopkeeper/backend/internal/application/inventory"
	reportapp "github.com/shopkeeper/backend/internal/application/report"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/infrastructure/cache"
	"github.com/shopkeeper/backend/internal/infrastructure/config"
	"github.com/shopkeeper/backend/internal/infrastructure/event"
	"github.com/shopkeeper/backend/internal/infrastructure/logger"
	"github.com/shopkeeper/backend/internal/infrastructure/persistence"
	"github.com/shopkeeper/backend/internal/infrastructure/remote"
	"github.com/shopkeeper/backend/internal/infrastructure/scheduler"
	"github.com/shopkeeper/backend/internal/infrastructure/telemetry"
	"github.com/shopkeeper/backend/internal/interfaces/http/handler"
	"github.com/shopkeeper/backend/internal/interfaces/http/middleware"
	"github.com/shopkeeper/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Shopkeeper Reconciliation API
//	@version		1.0
//	@description	Stock-take reconciliation, goods receiving, waste and valuation reporting
//	@BasePath		/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(baseLog)

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// Logs bridge first so everything after it reaches the collector too
	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, zapcore.InfoLevel)

	log.Info("Starting Shopkeeper reconciliation service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("inventory_store", cfg.InventoryStore.Mode),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Environment:     cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	reconMetrics, err := telemetry.NewReconciliationMetrics(meterProvider.Meter("shopkeeper/reconciliation"))
	if err != nil {
		log.Fatal("Failed to register reconciliation metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.MapGormLogLevel(cfg.Log.Level),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	dbSystem := "postgresql"
	if db.Driver() == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: dbSystem,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Repositories
	sessionRepo := persistence.NewGormStockTakeSessionRepository(db.DB)
	wasteRepo := persistence.NewGormWasteEntryRepository(db.DB)
	snapshotRepo := persistence.NewGormValuationSnapshotRepository(db.DB)

	// Inventory store: the local products table or the shop backend over REST
	var (
		store  inventory.InventoryStore = persistence.NewGormInventoryStore(db.DB)
		ledger inventory.WasteLedger    = wasteRepo
	)
	if cfg.InventoryStore.Mode == config.StoreModeRemote {
		client := remote.NewClient(cfg.InventoryStore, log)
		store = remote.NewRemoteInventoryStore(client)
		ledger = remote.NewRemoteWasteLedger(client)
		log.Info("Using remote inventory store", zap.String("base_url", cfg.InventoryStore.BaseURL))
	}

	locker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create session locker", zap.Error(err))
	}
	defer func() {
		if err := locker.Close(); err != nil {
			log.Error("Error closing session locker", zap.Error(err))
		}
	}()

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := event.NewAuditLogHandler(log)
	oversellHandler := event.NewOversellMetricsHandler(reconMetrics)
	eventBus.Subscribe(auditHandler)
	eventBus.Subscribe(oversellHandler)
	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
		zap.Strings("oversell_events", oversellHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	stockTakingService := inventoryapp.NewStockTakingService(sessionRepo, store, locker,
		inventoryapp.WithLockTTL(cfg.StockTake.LockTTL),
		inventoryapp.WithEventPublisher(eventBus),
		inventoryapp.WithMetrics(reconMetrics),
		inventoryapp.WithLogger(log),
	)
	receivingService := inventoryapp.NewReceivingService(store, eventBus, log)
	wasteService := inventoryapp.NewWasteService(wasteRepo, store, eventBus, log)
	valuationService := reportapp.NewValuationService(store, ledger, snapshotRepo, reconMetrics, log)

	// Valuation snapshot scheduler (if enabled)
	var snapshotScheduler handler.SnapshotScheduler
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		if cfg.Scheduler.ValuationCron != "" {
			schedCfg.Spec = cfg.Scheduler.ValuationCron
		}
		if cfg.Scheduler.JobTimeout > 0 {
			schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
		}
		valuationScheduler, err := scheduler.NewValuationScheduler(schedCfg, valuationService, log)
		if err != nil {
			log.Fatal("Failed to create valuation scheduler", zap.Error(err))
		}
		valuationScheduler.Start()
		defer func() {
			if err := valuationScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping valuation scheduler", zap.Error(err))
			}
		}()
		snapshotScheduler = valuationScheduler
		log.Info("Valuation scheduler started",
			zap.String("spec", schedCfg.Spec),
			zap.Duration("job_timeout", schedCfg.JobTimeout),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request ID must exist before logging and tracing read it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Profiling(profiler.IsEnabled(), "/health"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(engine, r, router.Handlers{
		StockTake: handler.NewStockTakeHandler(stockTakingService),
		Receiving: handler.NewReceivingHandler(receivingService),
		Waste:     handler.NewWasteHandler(wasteService),
		Valuation: handler.NewValuationHandler(valuationService, snapshotScheduler),
		Health:    handler.NewHealthHandler(cfg.App.Name, cfg.InventoryStore.Mode, db, snapshotScheduler),
	})

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
