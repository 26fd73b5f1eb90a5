package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps shared by registry rows
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SoftDeletable is embedded by rows that are archived instead of removed.
// A nil DeletedAt means the row is active.
type SoftDeletable struct {
	DeletedAt *time.Time
}

// IsActive reports whether the row has not been archived
func (s *SoftDeletable) IsActive() bool {
	return s.DeletedAt == nil
}

// Archive stamps the row as deleted
func (s *SoftDeletable) Archive(at time.Time) {
	s.DeletedAt = &at
}
