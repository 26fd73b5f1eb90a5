package household

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// CardFilter narrows family card listings
type CardFilter struct {
	shared.Filter
	RTID *uuid.UUID
}

// CardRepository persists family cards
type CardRepository interface {
	// AcquireLock takes the row lock on a live card for the rest of the
	// enclosing transaction and returns how many rows it locked (0 or 1).
	// It must run inside a transaction.
	AcquireLock(ctx context.Context, id uuid.UUID) (int64, error)

	FindByID(ctx context.Context, id uuid.UUID) (*FamilyCard, error)
	ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter CardFilter) ([]FamilyCard, error)
	Count(ctx context.Context, filter CardFilter) (int64, error)
	CountActiveByRT(ctx context.Context, rtID uuid.UUID) (int64, error)
	Create(ctx context.Context, card *FamilyCard) error
	Save(ctx context.Context, card *FamilyCard) error
}
