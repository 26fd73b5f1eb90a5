package persistence

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM.
// It only ever inserts and reads.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts one audit record
func (r *GormAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(record)).Error
}

// FindAll lists records, newest first
func (r *GormAuditRepository) FindAll(ctx context.Context, filter audit.Filter) ([]audit.Record, error) {
	var rows []models.AuditLogModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter).
		Order("created_at DESC").
		Order("id ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]audit.Record, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// Count counts records matching the filter
func (r *GormAuditRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.AuditLogModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAuditRepository) applyFilter(query *gorm.DB, filter audit.Filter) *gorm.DB {
	if filter.TableName != "" {
		query = query.Where("table_name = ?", filter.TableName)
	}
	if filter.RecordID != nil {
		query = query.Where("record_id = ?", *filter.RecordID)
	}
	if filter.ActorID != nil {
		query = query.Where("user_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	return query
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
