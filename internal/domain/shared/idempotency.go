package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so a retried
// mutation is not applied twice.
type IdempotencyStore interface {
	// Reserve claims key for ttl.
	// Returns true if the key was newly claimed, false if it is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a claim so the client may retry, used when the request failed
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
