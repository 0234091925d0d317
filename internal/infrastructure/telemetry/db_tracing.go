package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; never in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type queryStartKey struct{}

// DBTracingPlugin registers otelgorm and annotates its spans with row counts
// and slow-query events.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs the plugin on db. It is a no-op when disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// The after callbacks must run before otelgorm ends its span.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("pricing_trace:before_create", markQueryStart)},
		{"query", cb.Query().Before("gorm:query").Register("pricing_trace:before_query", markQueryStart)},
		{"update", cb.Update().Before("gorm:update").Register("pricing_trace:before_update", markQueryStart)},
		{"delete", cb.Delete().Before("gorm:delete").Register("pricing_trace:before_delete", markQueryStart)},
		{"row", cb.Row().Before("gorm:row").Register("pricing_trace:before_row", markQueryStart)},
		{"raw", cb.Raw().Before("gorm:raw").Register("pricing_trace:before_raw", markQueryStart)},
		{"create", cb.Create().After("gorm:create").Before("otel:after:create").Register("pricing_trace:after_create", p.annotateSpan)},
		{"query", cb.Query().After("gorm:query").Before("otel:after:query").Register("pricing_trace:after_query", p.annotateSpan)},
		{"update", cb.Update().After("gorm:update").Before("otel:after:update").Register("pricing_trace:after_update", p.annotateSpan)},
		{"delete", cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("pricing_trace:after_delete", p.annotateSpan)},
		{"row", cb.Row().After("gorm:row").Before("otel:after:row").Register("pricing_trace:after_row", p.annotateSpan)},
		{"raw", cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("pricing_trace:after_raw", p.annotateSpan)},
	}
	for _, r := range registrations {
		if r.err != nil {
			return fmt.Errorf("register %s tracing callback: %w", r.name, r.err)
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		RecordError(span, db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || p.config.SlowQueryThresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
