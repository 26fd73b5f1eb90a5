package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the registry instruments
const MeterName = "github.com/Faiz-abdurrachman/SIDESA"

// Attribute keys
var (
	AttrTable   = attribute.Key("sidesa.table")
	AttrAction  = attribute.Key("sidesa.action")
	AttrOutcome = attribute.Key("sidesa.outcome")
	AttrCards   = attribute.Key("sidesa.cards_locked")
)

// HouseholdMetrics records mutation outcomes, Kepala Keluarga rejections
// and card lock waits.
type HouseholdMetrics struct {
	mutations    metric.Int64Counter
	headRejected metric.Int64Counter
	lockWait     metric.Float64Histogram
}

// NewHouseholdMetrics creates the instruments on meter
func NewHouseholdMetrics(meter metric.Meter) (*HouseholdMetrics, error) {
	mutations, err := meter.Int64Counter("sidesa.mutations",
		metric.WithDescription("Registry mutations by table, action and outcome"),
		metric.WithUnit("{mutation}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutations counter: %w", err)
	}

	headRejected, err := meter.Int64Counter("sidesa.kepala_keluarga.rejections",
		metric.WithDescription("Writes refused because the card already has an active head"),
		metric.WithUnit("{rejection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create rejections counter: %w", err)
	}

	lockWait, err := meter.Float64Histogram("sidesa.card_lock.wait",
		metric.WithDescription("Time spent acquiring family card row locks"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(LockWaitBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create lock wait histogram: %w", err)
	}

	return &HouseholdMetrics{mutations: mutations, headRejected: headRejected, lockWait: lockWait}, nil
}

// Mutation implements txn.Recorder
func (m *HouseholdMetrics) Mutation(ctx context.Context, table, action string, err error) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		AttrTable.String(table),
		AttrAction.String(action),
		AttrOutcome.String(outcome(err)),
	))
}

// HeadRejected implements txn.Recorder
func (m *HouseholdMetrics) HeadRejected(ctx context.Context) {
	m.headRejected.Add(ctx, 1)
}

// LocksAcquired implements txn.Recorder
func (m *HouseholdMetrics) LocksAcquired(ctx context.Context, cards int, wait time.Duration) {
	m.lockWait.Record(ctx, wait.Seconds(), metric.WithAttributes(AttrCards.Int(cards)))
}

// outcome is "ok", the domain error code, or "error" for anything else
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := shared.CodeOf(err); code != "" {
		return code
	}
	return "error"
}

var _ txn.Recorder = (*HouseholdMetrics)(nil)
