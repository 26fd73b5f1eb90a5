package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestHouseholdMetrics(t *testing.T) {
	provider, reader := newManualMeter(t)
	hm, err := NewHouseholdMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	ctx := context.Background()

	hm.Mutation(ctx, "residents", "CREATE", nil)
	hm.Mutation(ctx, "residents", "CREATE", nil)
	hm.Mutation(ctx, "residents", "UPDATE", population.ErrHeadAlreadyActive)
	hm.Mutation(ctx, "family_cards", "UPDATE", errors.New("connection reset"))
	hm.HeadRejected(ctx)
	hm.LocksAcquired(ctx, 2, 30*time.Millisecond)

	metrics := collect(t, reader)

	mutations := metrics["sidesa.mutations"]
	assert.Equal(t, int64(2), sumFor(t, mutations, AttrTable.String("residents"), AttrAction.String("CREATE"), AttrOutcome.String("ok")))
	assert.Equal(t, int64(1), sumFor(t, mutations, AttrTable.String("residents"), AttrAction.String("UPDATE"), AttrOutcome.String("INVARIANT_VIOLATION")))
	assert.Equal(t, int64(1), sumFor(t, mutations, AttrTable.String("family_cards"), AttrAction.String("UPDATE"), AttrOutcome.String("error")))

	assert.Equal(t, int64(1), sumFor(t, metrics["sidesa.kepala_keluarga.rejections"]))

	hist, ok := metrics["sidesa.card_lock.wait"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.03, hist.DataPoints[0].Sum, 0.0001)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "INVARIANT_VIOLATION", outcome(population.ErrHeadAlreadyActive))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
