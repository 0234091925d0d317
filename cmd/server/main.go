package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/infrastructure/cache"
	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/persistence"
	"github.com/erp/pricing/internal/infrastructure/strategy"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/erp/pricing/docs"
)

//	@title			Pricing API
//	@version		1.0
//	@description	Contextual price overrides: master, zone, segment and zone+segment price books with conflict-aware batch updates

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// A bootstrap logger reports telemetry setup; the service logger tees
	// into the OTLP bridge once the log pipeline exists.
	bootLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: logProvider,
		Level:          logger.ParseLevel(cfg.Log.Level),
	}))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	_ = logger.Sync(bootLog)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting pricing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if stats, err := db.Stats(); err == nil {
			log.Info("Database pool at shutdown",
				zap.Int("open", stats.OpenConnections),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	priceCache, err := cache.NewFactory(cfg.Redis, cfg.Pricing, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize price cache", zap.Error(err))
	}
	defer func() {
		if err := priceCache.Close(); err != nil {
			log.Error("Error closing price cache", zap.Error(err))
		}
	}()

	strategies, err := strategy.NewRegistryWithDefaults(cfg.Pricing.DefaultStrategy)
	if err != nil {
		log.Fatal("Failed to build strategy registry", zap.Error(err))
	}

	metrics, err := telemetry.NewPricingMetrics(meterProvider.Meter("pricing"))
	if err != nil {
		log.Fatal("Failed to create pricing metrics", zap.Error(err))
	}

	if sqlDB, err := db.DB.DB(); err == nil {
		poolMetrics, err := telemetry.NewDBPoolMetrics(meterProvider.Meter("pricing.db"), sqlDB.Stats)
		if err != nil {
			log.Fatal("Failed to create database pool metrics", zap.Error(err))
		}
		defer func() { _ = poolMetrics.Stop() }()
	}

	uow := persistence.NewGormUnitOfWork(db.DB, cfg.Pricing.TransactionalUpdates)
	lookups := persistence.NewGormReferenceLookup(db.DB)

	bookService := pricingapp.NewBookService(uow, lookups, priceCache, pricingapp.BookConfig{
		MasterBookName:  cfg.Pricing.MasterBookName,
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
	}, log)
	engine := pricingapp.NewResolutionEngine(strategies, metrics, log)
	updateService := pricingapp.NewPriceUpdateService(
		uow,
		bookService,
		pricingapp.NewConflictDetector(),
		engine,
		strategies,
		lookups,
		priceCache,
		metrics,
		log,
	)
	effectiveService := pricingapp.NewEffectivePriceService(
		uow.Repositories().Entries,
		priceCache,
		log,
		pricingapp.WithBulkConcurrency(cfg.HTTP.BulkConcurrency),
		pricingapp.WithCacheMetrics(metrics),
	)

	master, created, err := bookService.BootstrapMaster(ctx)
	if err != nil {
		log.Fatal("Failed to bootstrap master price book", zap.Error(err))
	}
	log.Info("Master price book ready",
		zap.String("book_id", master.ID.String()),
		zap.Bool("created", created),
	)

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if pinger, ok := priceCache.(interface{ Ping(context.Context) error }); ok {
		checks["cache"] = pinger.Ping
	}

	pricingHandler := handler.NewPricingHandler(updateService, effectiveService, bookService, engine, cfg.HTTP.MaxBatchItems)
	httpEngine := router.NewEngine(router.EngineConfig{
		Logger:        log,
		ServiceName:   cfg.Telemetry.ServiceName,
		Tracing:       cfg.Telemetry.Enabled,
		Profiling:     profiler.IsEnabled(),
		MeterProvider: meterProvider,
		MaxBodySize:   cfg.HTTP.MaxBodySize,
		CORSOrigins:   cfg.HTTP.CORSAllowOrigins,
		Swagger:       cfg.HTTP.SwaggerEnabled,
	}, handler.NewHealthHandler(version, checks), router.PricingRoutes(pricingHandler))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// stops the invalidation subscriber before the cache is closed
	stop()

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
