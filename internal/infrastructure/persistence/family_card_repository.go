package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCardRepository implements CardRepository using GORM
type GormCardRepository struct {
	db *gorm.DB
}

// NewGormCardRepository creates a new GormCardRepository
func NewGormCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

func (r *GormCardRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.FamilyCardModel{}).Where("deleted_at IS NULL")
}

// AcquireLock locks a live card row until the transaction ends
func (r *GormCardRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	return acquireRowLock(ctx, r.db, models.FamilyCardModel{}.TableName(), id)
}

// FindByID finds a live card by ID
func (r *GormCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*household.FamilyCard, error) {
	var model models.FamilyCardModel
	if err := r.live(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, household.ErrCardNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether any card, archived or not, carries number
func (r *GormCardRepository) ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.FamilyCardModel{}).Where("number = ?", number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists live cards matching the filter
func (r *GormCardRepository) FindAll(ctx context.Context, filter household.CardFilter) ([]household.FamilyCard, error) {
	var rows []models.FamilyCardModel
	query := page(r.applyFilter(r.live(ctx), filter), filter.Filter, FamilyCardSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	cards := make([]household.FamilyCard, len(rows))
	for i := range rows {
		cards[i] = *rows[i].ToDomain()
	}
	return cards, nil
}

// Count counts live cards matching the filter
func (r *GormCardRepository) Count(ctx context.Context, filter household.CardFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.live(ctx), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByRT counts live cards under an RT
func (r *GormCardRepository) CountActiveByRT(ctx context.Context, rtID uuid.UUID) (int64, error) {
	var count int64
	if err := r.live(ctx).Where("rt_id = ?", rtID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a card
func (r *GormCardRepository) Create(ctx context.Context, card *household.FamilyCard) error {
	model := models.FamilyCardModelFromDomain(card)
	return translateError(r.db.WithContext(ctx).Create(model).Error, household.ErrCardNumberTaken)
}

// Save writes a live card, including its archive marker
func (r *GormCardRepository) Save(ctx context.Context, card *household.FamilyCard) error {
	model := models.FamilyCardModelFromDomain(card)
	res := r.db.WithContext(ctx).Model(model).
		Where("deleted_at IS NULL").
		Select("*").Omit("id", "created_at").
		Updates(model)
	if res.Error != nil {
		return translateError(res.Error, household.ErrCardNumberTaken)
	}
	if res.RowsAffected == 0 {
		return household.ErrCardNotFound
	}
	return nil
}

func (r *GormCardRepository) applyFilter(query *gorm.DB, filter household.CardFilter) *gorm.DB {
	if filter.RTID != nil {
		query = query.Where("rt_id = ?", *filter.RTID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(number LIKE ? OR LOWER(address) LIKE ?)", like, like)
	}
	return query
}

// Ensure GormCardRepository implements CardRepository
var _ household.CardRepository = (*GormCardRepository)(nil)
