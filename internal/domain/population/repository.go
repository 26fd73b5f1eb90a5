package population

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// ResidentFilter narrows resident listings
type ResidentFilter struct {
	shared.Filter
	FamilyCardID *uuid.UUID
	Status       *Status
}

// ResidentRepository persists residents
type ResidentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	ExistsByNIK(ctx context.Context, nik string, excludeID *uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter ResidentFilter) ([]Resident, error)
	Count(ctx context.Context, filter ResidentFilter) (int64, error)
	Create(ctx context.Context, resident *Resident) error

	// Update writes only the fields present in c onto current's row and
	// returns the resident as stored. The row must not be MENINGGAL and, when
	// c touches household fields, must still carry current's status,
	// relationship and card. A row that moved on yields ErrRecordFrozen,
	// ErrResidentNotFound or ErrResidentChanged.
	Update(ctx context.Context, current *Resident, c Change) (*Resident, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// CountActiveHeads counts live residents on cardID holding the head role
	// with active status, skipping exclude when given. Callers must already
	// hold the card lock.
	CountActiveHeads(ctx context.Context, cardID uuid.UUID, exclude *uuid.UUID) (int64, error)

	// CountOnCard counts live residents referencing cardID
	CountOnCard(ctx context.Context, cardID uuid.UUID) (int64, error)
}
