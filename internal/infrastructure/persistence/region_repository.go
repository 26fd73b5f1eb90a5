package persistence

import (
	"context"
	"errors"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRWRepository implements RWRepository using GORM
type GormRWRepository struct {
	db *gorm.DB
}

// NewGormRWRepository creates a new GormRWRepository
func NewGormRWRepository(db *gorm.DB) *GormRWRepository {
	return &GormRWRepository{db: db}
}

func (r *GormRWRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.RWModel{}).Where("deleted_at IS NULL")
}

// AcquireLock locks a live RW row until the transaction ends
func (r *GormRWRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	return acquireRowLock(ctx, r.db, models.RWModel{}.TableName(), id)
}

// FindByID finds a live RW by ID
func (r *GormRWRepository) FindByID(ctx context.Context, id uuid.UUID) (*region.RW, error) {
	var model models.RWModel
	if err := r.live(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, region.ErrRWNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether any RW, archived or not, carries number
func (r *GormRWRepository) ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.RWModel{}).Where("number = ?", number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists live RWs
func (r *GormRWRepository) FindAll(ctx context.Context, filter shared.Filter) ([]region.RW, error) {
	var rows []models.RWModel
	if err := page(r.live(ctx), filter, UnitSortFields, "number").Find(&rows).Error; err != nil {
		return nil, err
	}

	rws := make([]region.RW, len(rows))
	for i := range rows {
		rws[i] = *rows[i].ToDomain()
	}
	return rws, nil
}

// Count counts live RWs
func (r *GormRWRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	if err := r.live(ctx).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts an RW
func (r *GormRWRepository) Create(ctx context.Context, rw *region.RW) error {
	return translateError(r.db.WithContext(ctx).Create(models.RWModelFromDomain(rw)).Error, region.ErrRWNumberTaken)
}

// Save writes a live RW, including its archive marker
func (r *GormRWRepository) Save(ctx context.Context, rw *region.RW) error {
	model := models.RWModelFromDomain(rw)
	res := r.db.WithContext(ctx).Model(model).
		Where("deleted_at IS NULL").
		Select("*").Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return translateError(res.Error, region.ErrRWNumberTaken)
	}
	if res.RowsAffected == 0 {
		return region.ErrRWNotFound
	}
	return nil
}

// GormRTRepository implements RTRepository using GORM
type GormRTRepository struct {
	db *gorm.DB
}

// NewGormRTRepository creates a new GormRTRepository
func NewGormRTRepository(db *gorm.DB) *GormRTRepository {
	return &GormRTRepository{db: db}
}

func (r *GormRTRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.RTModel{}).Where("deleted_at IS NULL")
}

// AcquireLock locks a live RT row until the transaction ends
func (r *GormRTRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	return acquireRowLock(ctx, r.db, models.RTModel{}.TableName(), id)
}

// FindByID finds a live RT by ID
func (r *GormRTRepository) FindByID(ctx context.Context, id uuid.UUID) (*region.RT, error) {
	var model models.RTModel
	if err := r.live(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, region.ErrRTNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether an RT under rwID, archived or not, carries number
func (r *GormRTRepository) ExistsByNumber(ctx context.Context, rwID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.RTModel{}).Where("rw_id = ? AND number = ?", rwID, number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists live RTs matching the filter
func (r *GormRTRepository) FindAll(ctx context.Context, filter region.RTFilter) ([]region.RT, error) {
	var rows []models.RTModel
	if err := page(r.applyFilter(r.live(ctx), filter), filter.Filter, UnitSortFields, "number").Find(&rows).Error; err != nil {
		return nil, err
	}

	rts := make([]region.RT, len(rows))
	for i := range rows {
		rts[i] = *rows[i].ToDomain()
	}
	return rts, nil
}

// Count counts live RTs matching the filter
func (r *GormRTRepository) Count(ctx context.Context, filter region.RTFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.live(ctx), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByRW counts live RTs under an RW
func (r *GormRTRepository) CountActiveByRW(ctx context.Context, rwID uuid.UUID) (int64, error) {
	var count int64
	if err := r.live(ctx).Where("rw_id = ?", rwID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts an RT
func (r *GormRTRepository) Create(ctx context.Context, rt *region.RT) error {
	return translateError(r.db.WithContext(ctx).Create(models.RTModelFromDomain(rt)).Error, region.ErrRTNumberTaken)
}

// Save writes a live RT, including its archive marker
func (r *GormRTRepository) Save(ctx context.Context, rt *region.RT) error {
	model := models.RTModelFromDomain(rt)
	res := r.db.WithContext(ctx).Model(model).
		Where("deleted_at IS NULL").
		Select("*").Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return translateError(res.Error, region.ErrRTNumberTaken)
	}
	if res.RowsAffected == 0 {
		return region.ErrRTNotFound
	}
	return nil
}

func (r *GormRTRepository) applyFilter(query *gorm.DB, filter region.RTFilter) *gorm.DB {
	if filter.RWID != nil {
		query = query.Where("rw_id = ?", *filter.RWID)
	}
	return query
}

// Ensure the region repositories implement their interfaces
var (
	_ region.RWRepository = (*GormRWRepository)(nil)
	_ region.RTRepository = (*GormRTRepository)(nil)
)
