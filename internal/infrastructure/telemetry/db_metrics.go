package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var attrPoolState = attribute.Key("state")

// PoolStatsFunc snapshots a connection pool; (*sql.DB).Stats fits.
type PoolStatsFunc func() sql.DBStats

// DBPoolMetrics reports connection pool state as observable instruments,
// read at each metric collection.
type DBPoolMetrics struct {
	registration metric.Registration
}

// NewDBPoolMetrics registers the pool instruments on meter:
// db_pool_connections{state=idle|in_use}, db_pool_connections_max,
// db_pool_wait_total and db_pool_wait_duration_seconds.
func NewDBPoolMetrics(meter metric.Meter, stats PoolStatsFunc) (*DBPoolMetrics, error) {
	if stats == nil {
		return nil, fmt.Errorf("pool stats source is required")
	}

	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_connections: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections allowed"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_connections_max: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connection requests that had to wait"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter db_pool_wait_total: %w", err)
	}
	waitDuration, err := meter.Float64ObservableCounter("db_pool_wait_duration_seconds",
		metric.WithDescription("Total time spent waiting for a connection"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter db_pool_wait_duration_seconds: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(attrPoolState.String("idle")))
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(attrPoolState.String("in_use")))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		o.ObserveFloat64(waitDuration, s.WaitDuration.Seconds())
		return nil
	}, connections, maxOpen, waits, waitDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to register pool stats callback: %w", err)
	}
	return &DBPoolMetrics{registration: reg}, nil
}

// Stop unregisters the callback; later collections no longer read the pool
func (m *DBPoolMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	err := m.registration.Unregister()
	m.registration = nil
	return err
}
