package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AttrPoolState distinguishes idle and in-use connections
var AttrPoolState = attribute.Key("db.pool.state")

// PoolMetrics reports database/sql pool statistics as observable
// instruments read at each collection.
type PoolMetrics struct {
	registration metric.Registration
}

// RegisterPoolMetrics observes db's pool on meter until Unregister
func RegisterPoolMetrics(meter metric.Meter, db *sql.DB) (*PoolMetrics, error) {
	if db == nil {
		return nil, errors.New("telemetry: nil sql.DB")
	}

	connections, err := meter.Int64ObservableGauge("db.pool.connections",
		metric.WithDescription("Open connections by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create connections gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db.pool.max_open",
		metric.WithDescription("Configured maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create max open gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for since start"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create wait counter: %w", err)
	}
	waitTime, err := meter.Float64ObservableCounter("db.pool.wait_time",
		metric.WithDescription("Total time blocked waiting for a connection"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create wait time counter: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrPoolState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		o.ObserveFloat64(waitTime, stats.WaitDuration.Seconds())
		return nil
	}, connections, maxOpen, waits, waitTime)
	if err != nil {
		return nil, fmt.Errorf("failed to register pool callback: %w", err)
	}
	return &PoolMetrics{registration: reg}, nil
}

// Unregister stops observing the pool
func (m *PoolMetrics) Unregister() error {
	return m.registration.Unregister()
}
