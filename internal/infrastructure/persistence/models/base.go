package models

import (
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// ArchivableModel adds the soft-delete marker. A NULL deleted_at is a live
// row; the card lock relies on rewriting this column to NULL.
type ArchivableModel struct {
	BaseModel
	DeletedAt *time.Time `gorm:"index"`
}

// FromDomainArchivable populates the model from an entity and its archive marker
func (m *ArchivableModel) FromDomainArchivable(e shared.BaseEntity, s shared.SoftDeletable) {
	m.FromDomainBaseEntity(e)
	m.DeletedAt = s.DeletedAt
}

// SoftDeletable returns the domain archive marker
func (m *ArchivableModel) SoftDeletable() shared.SoftDeletable {
	return shared.SoftDeletable{DeletedAt: m.DeletedAt}
}
