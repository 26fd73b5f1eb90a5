package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// residentHeadIndex is the partial unique index allowing one active head per card
const residentHeadIndex = "idx_residents_head"

// GormResidentRepository implements ResidentRepository using GORM
type GormResidentRepository struct {
	db *gorm.DB
}

// NewGormResidentRepository creates a new GormResidentRepository
func NewGormResidentRepository(db *gorm.DB) *GormResidentRepository {
	return &GormResidentRepository{db: db}
}

func (r *GormResidentRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ResidentModel{}).Where("deleted_at IS NULL")
}

// FindByID finds a live resident by ID
func (r *GormResidentRepository) FindByID(ctx context.Context, id uuid.UUID) (*population.Resident, error) {
	var model models.ResidentModel
	if err := r.live(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, population.ErrResidentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNIK checks whether any row carries nik. Archived rows count too,
// since the unique index covers them.
func (r *GormResidentRepository) ExistsByNIK(ctx context.Context, nik string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ResidentModel{}).Where("nik = ?", nik)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists live residents matching the filter
func (r *GormResidentRepository) FindAll(ctx context.Context, filter population.ResidentFilter) ([]population.Resident, error) {
	var rows []models.ResidentModel
	query := page(r.applyFilter(r.live(ctx), filter), filter.Filter, ResidentSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	residents := make([]population.Resident, len(rows))
	for i := range rows {
		residents[i] = *rows[i].ToDomain()
	}
	return residents, nil
}

// Count counts live residents matching the filter
func (r *GormResidentRepository) Count(ctx context.Context, filter population.ResidentFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.live(ctx), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a resident
func (r *GormResidentRepository) Create(ctx context.Context, resident *population.Resident) error {
	model := models.ResidentModelFromDomain(resident)
	return residentConflict(r.db.WithContext(ctx).Create(model).Error, true)
}

// Update writes the columns present in c and nothing else, so fields that
// other transactions committed since current was read survive.
func (r *GormResidentRepository) Update(ctx context.Context, current *population.Resident, c population.Change) (*population.Resident, error) {
	next := *current
	next.Apply(c)

	query := r.live(ctx).Where("id = ? AND status <> ?", current.ID, population.StatusDeceased)
	if c.TouchesHousehold() {
		query = query.Where("status = ? AND relationship = ? AND family_card_id = ?",
			current.Status, current.Relationship, current.FamilyCardID)
	}

	res := query.Updates(changedColumns(&next, c))
	if res.Error != nil {
		return nil, residentConflict(res.Error, c.NIK != nil)
	}
	if res.RowsAffected == 0 {
		return nil, r.missed(ctx, current.ID)
	}
	return &next, nil
}

// missed explains why an Update matched no row
func (r *GormResidentRepository) missed(ctx context.Context, id uuid.UUID) error {
	stored, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if stored.IsTerminal() {
		return population.ErrRecordFrozen
	}
	return population.ErrResidentChanged
}

func changedColumns(next *population.Resident, c population.Change) map[string]any {
	cols := map[string]any{"updated_at": next.UpdatedAt}
	if c.NIK != nil {
		cols["nik"] = next.NIK
	}
	if c.Name != nil {
		cols["name"] = next.Name
	}
	if c.BirthDate != nil {
		cols["birth_date"] = next.BirthDate
	}
	if c.Sex != nil {
		cols["sex"] = next.Sex
	}
	if c.Occupation != nil {
		cols["occupation"] = next.Occupation
	}
	if c.Status != nil {
		cols["status"] = next.Status
	}
	if c.Relationship != nil {
		cols["relationship"] = next.Relationship
	}
	if c.FamilyCardID != nil {
		cols["family_card_id"] = next.FamilyCardID
	}
	return cols
}

// residentConflict maps a unique violation on residents to the index it
// hit. The dialect translation drops the constraint name, so a write that
// leaves nik alone can only have collided on idx_residents_head.
func residentConflict(err error, writesNIK bool) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == residentHeadIndex {
		return translateError(err, population.ErrHeadAlreadyActive)
	}
	if writesNIK {
		return translateError(err, population.ErrNIKTaken)
	}
	return translateError(err, population.ErrHeadAlreadyActive)
}

// Delete removes a resident row permanently
func (r *GormResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.ResidentModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return population.ErrResidentNotFound
	}
	return nil
}

// CountActiveHeads counts live active heads on a card
func (r *GormResidentRepository) CountActiveHeads(ctx context.Context, cardID uuid.UUID, exclude *uuid.UUID) (int64, error) {
	query := r.live(ctx).Where("family_card_id = ? AND relationship = ? AND status = ?",
		cardID, population.RelationshipHead, population.StatusActive)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOnCard counts live residents referencing a card
func (r *GormResidentRepository) CountOnCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	var count int64
	if err := r.live(ctx).Where("family_card_id = ?", cardID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormResidentRepository) applyFilter(query *gorm.DB, filter population.ResidentFilter) *gorm.DB {
	if filter.FamilyCardID != nil {
		query = query.Where("family_card_id = ?", *filter.FamilyCardID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR nik LIKE ?)", like, like)
	}
	return query
}

// Ensure GormResidentRepository implements ResidentRepository
var _ population.ResidentRepository = (*GormResidentRepository)(nil)
