package region

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// RWRepository persists RWs
type RWRepository interface {
	// AcquireLock locks a live RW row for the enclosing transaction, returning rows matched
	AcquireLock(ctx context.Context, id uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*RW, error)
	ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]RW, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, rw *RW) error
	Save(ctx context.Context, rw *RW) error
}

// RTFilter narrows RT listings
type RTFilter struct {
	shared.Filter
	RWID *uuid.UUID
}

// RTRepository persists RTs
type RTRepository interface {
	// AcquireLock locks a live RT row for the enclosing transaction, returning rows matched
	AcquireLock(ctx context.Context, id uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*RT, error)
	ExistsByNumber(ctx context.Context, rwID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter RTFilter) ([]RT, error)
	Count(ctx context.Context, filter RTFilter) (int64, error)
	CountActiveByRW(ctx context.Context, rwID uuid.UUID) (int64, error)
	Create(ctx context.Context, rt *RT) error
	Save(ctx context.Context, rt *RT) error
}
