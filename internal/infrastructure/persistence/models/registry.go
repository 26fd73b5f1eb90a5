package models

import (
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/google/uuid"
)

// RWModel is the persistence model for region.RW
type RWModel struct {
	ArchivableModel
	Number string `gorm:"type:varchar(3);not null;uniqueIndex:idx_rws_number"`
}

// TableName returns the table name for GORM
func (RWModel) TableName() string {
	return "rws"
}

// ToDomain converts the model to a domain RW
func (m *RWModel) ToDomain() *region.RW {
	return &region.RW{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeletable(),
		Number:        m.Number,
	}
}

// RWModelFromDomain converts a domain RW
func RWModelFromDomain(rw *region.RW) *RWModel {
	m := &RWModel{Number: rw.Number}
	m.FromDomainArchivable(rw.BaseEntity, rw.SoftDeletable)
	return m
}

// RTModel is the persistence model for region.RT
type RTModel struct {
	ArchivableModel
	Number string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_rts_rw_number,priority:2"`
	RWID   uuid.UUID `gorm:"column:rw_id;type:uuid;not null;uniqueIndex:idx_rts_rw_number,priority:1"`
}

// TableName returns the table name for GORM
func (RTModel) TableName() string {
	return "rts"
}

// ToDomain converts the model to a domain RT
func (m *RTModel) ToDomain() *region.RT {
	return &region.RT{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeletable(),
		Number:        m.Number,
		RWID:          m.RWID,
	}
}

// RTModelFromDomain converts a domain RT
func RTModelFromDomain(rt *region.RT) *RTModel {
	m := &RTModel{Number: rt.Number, RWID: rt.RWID}
	m.FromDomainArchivable(rt.BaseEntity, rt.SoftDeletable)
	return m
}

// FamilyCardModel is the persistence model for household.FamilyCard
type FamilyCardModel struct {
	ArchivableModel
	Number  string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_family_cards_number"`
	Address string    `gorm:"type:text;not null"`
	RTID    uuid.UUID `gorm:"column:rt_id;type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (FamilyCardModel) TableName() string {
	return "family_cards"
}

// ToDomain converts the model to a domain FamilyCard
func (m *FamilyCardModel) ToDomain() *household.FamilyCard {
	return &household.FamilyCard{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeletable(),
		Number:        m.Number,
		Address:       m.Address,
		RTID:          m.RTID,
	}
}

// FamilyCardModelFromDomain converts a domain FamilyCard
func FamilyCardModelFromDomain(c *household.FamilyCard) *FamilyCardModel {
	m := &FamilyCardModel{Number: c.Number, Address: c.Address, RTID: c.RTID}
	m.FromDomainArchivable(c.BaseEntity, c.SoftDeletable)
	return m
}

// ResidentModel is the persistence model for population.Resident
type ResidentModel struct {
	ArchivableModel
	NIK          string                  `gorm:"column:nik;type:varchar(16);not null;uniqueIndex:idx_residents_nik"`
	Name         string                  `gorm:"type:varchar(200);not null"`
	BirthDate    time.Time               `gorm:"type:date;not null"`
	Sex          population.Sex          `gorm:"type:varchar(20);not null"`
	Occupation   string                  `gorm:"type:varchar(100)"`
	Relationship population.Relationship `gorm:"type:varchar(20);not null"`
	Status       population.Status       `gorm:"type:varchar(20);not null"`
	FamilyCardID uuid.UUID               `gorm:"column:family_card_id;type:uuid;not null;index;uniqueIndex:idx_residents_head,where:relationship = 'KEPALA_KELUARGA' AND status = 'AKTIF' AND deleted_at IS NULL"`
}

// TableName returns the table name for GORM
func (ResidentModel) TableName() string {
	return "residents"
}

// ToDomain converts the model to a domain Resident
func (m *ResidentModel) ToDomain() *population.Resident {
	return &population.Resident{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeletable(),
		NIK:           m.NIK,
		Name:          m.Name,
		BirthDate:     m.BirthDate,
		Sex:           m.Sex,
		Occupation:    m.Occupation,
		Relationship:  m.Relationship,
		Status:        m.Status,
		FamilyCardID:  m.FamilyCardID,
	}
}

// ResidentModelFromDomain converts a domain Resident
func ResidentModelFromDomain(r *population.Resident) *ResidentModel {
	m := &ResidentModel{
		NIK:          r.NIK,
		Name:         r.Name,
		BirthDate:    r.BirthDate,
		Sex:          r.Sex,
		Occupation:   r.Occupation,
		Relationship: r.Relationship,
		Status:       r.Status,
		FamilyCardID: r.FamilyCardID,
	}
	m.FromDomainArchivable(r.BaseEntity, r.SoftDeletable)
	return m
}

// AuditLogModel is the persistence model for audit.Record
type AuditLogModel struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key"`
	ActorID   uuid.UUID    `gorm:"column:user_id;type:uuid;not null;index"`
	Action    audit.Action `gorm:"type:varchar(20);not null"`
	Table     string       `gorm:"column:table_name;type:varchar(50);not null;index:idx_audit_logs_record,priority:1"`
	RecordID  uuid.UUID    `gorm:"column:record_id;type:uuid;not null;index:idx_audit_logs_record,priority:2"`
	CreatedAt time.Time    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the model to a domain audit record
func (m *AuditLogModel) ToDomain() audit.Record {
	return audit.Record{
		ID:        m.ID,
		ActorID:   m.ActorID,
		Action:    m.Action,
		TableName: m.Table,
		RecordID:  m.RecordID,
		CreatedAt: m.CreatedAt,
	}
}

// AuditLogModelFromDomain converts a domain audit record
func AuditLogModelFromDomain(r *audit.Record) *AuditLogModel {
	return &AuditLogModel{
		ID:        r.ID,
		ActorID:   r.ActorID,
		Action:    r.Action,
		Table:     r.TableName,
		RecordID:  r.RecordID,
		CreatedAt: r.CreatedAt,
	}
}

// All lists every registry model, parents first
func All() []any {
	return []any{&RWModel{}, &RTModel{}, &FamilyCardModel{}, &ResidentModel{}, &AuditLogModel{}}
}
