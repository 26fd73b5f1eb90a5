package household

import (
	"bytes"
	"context"
	"slices"

	"github.com/google/uuid"
)

// Locker is the part of CardRepository needed to serialize on cards
type Locker interface {
	AcquireLock(ctx context.Context, id uuid.UUID) (int64, error)
}

// LockOrder returns ids deduplicated and sorted by their 16-byte value.
// Every path that locks more than one card goes through this order so two
// transactions never wait on each other in a cycle.
func LockOrder(ids ...uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}

// LockCards locks each card in LockOrder, failing with ErrCardNotFound as
// soon as one is missing or archived.
func LockCards(ctx context.Context, locker Locker, ids ...uuid.UUID) error {
	for _, id := range LockOrder(ids...) {
		n, err := locker.AcquireLock(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCardNotFound
		}
	}
	return nil
}

// ExtendLocks returns the ids in want that are not already held, in
// LockOrder. ok is false when one of them sorts before a held id, since
// taking it now would break the ordering every other path relies on.
func ExtendLocks(held []uuid.UUID, want ...uuid.UUID) (add []uuid.UUID, ok bool) {
	for _, id := range LockOrder(want...) {
		if !slices.Contains(held, id) {
			add = append(add, id)
		}
	}
	if len(add) == 0 || len(held) == 0 {
		return add, true
	}
	sorted := LockOrder(held...)
	last := sorted[len(sorted)-1]
	return add, bytes.Compare(add[0][:], last[:]) > 0
}
