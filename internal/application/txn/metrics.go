package txn

import (
	"context"
	"time"
)

// Recorder receives outcome signals from the mutation services.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// Mutation is called once per committed or failed mutation
	Mutation(ctx context.Context, table, action string, err error)
	// HeadRejected is called when the single-head check refuses a write
	HeadRejected(ctx context.Context)
	// LocksAcquired reports how long the card locks of one mutation took
	LocksAcquired(ctx context.Context, cards int, wait time.Duration)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) Mutation(context.Context, string, string, error)   {}
func (NopRecorder) HeadRejected(context.Context)                      {}
func (NopRecorder) LocksAcquired(context.Context, int, time.Duration) {}

var _ Recorder = NopRecorder{}
