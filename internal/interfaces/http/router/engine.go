package router

import (
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineConfig holds what the HTTP engine needs besides the handlers
type EngineConfig struct {
	Logger        *zap.Logger
	ServiceName   string
	Tracing       bool
	Profiling     bool
	MeterProvider *telemetry.MeterProvider
	MaxBodySize   int64
	CORSOrigins   []string
	// Swagger serves the registered API docs under /swagger/
	Swagger       bool
}

// NewEngine creates the gin engine with the middleware chain, /health, the
// optional swagger UI and the versioned API routes.
//
// Order matters: RequestID runs before tracing and logging so both see the
// ID, and recovery runs inside them so panics are logged and traced.
func NewEngine(cfg EngineConfig, health *handler.HealthHandler, registrars ...RouteRegistrar) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSOrigins
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanAnnotator(),
		middleware.Profiling(cfg.Profiling),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: cfg.MeterProvider, Enabled: true, Logger: log}),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if health != nil {
		engine.GET("/health", health.Health)
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine)
	for _, registrar := range registrars {
		r.Register(registrar)
		if group, ok := registrar.(*DomainGroup); ok {
			log.Debug("Registering route group",
				zap.String("group", group.Name()),
				zap.String("base_path", r.BasePath()),
				zap.Strings("routes", group.Routes()),
			)
		}
	}
	r.Setup()

	return engine
}
