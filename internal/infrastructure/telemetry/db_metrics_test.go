package telemetry

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRegisterPoolMetrics(t *testing.T) {
	provider, reader := newManualMeter(t)
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(7)

	pm, err := RegisterPoolMetrics(provider.Meter(MeterName), db)
	require.NoError(t, err)

	metrics := collect(t, reader)
	gauge, ok := metrics["db.pool.max_open"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
	assert.Contains(t, metrics, "db.pool.connections")

	require.NoError(t, pm.Unregister())
	assert.NotContains(t, collect(t, reader), "db.pool.max_open")
}

func TestRegisterPoolMetrics_NilDB(t *testing.T) {
	provider, _ := newManualMeter(t)
	_, err := RegisterPoolMetrics(provider.Meter(MeterName), nil)
	assert.Error(t, err)
}
