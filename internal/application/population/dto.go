package population

import (
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// dateLayout is the wire format of birth dates
const dateLayout = "2006-01-02"

// CreateResidentRequest represents a request to register a resident
type CreateResidentRequest struct {
	NIK          string    `json:"nik" binding:"required,digits16"`
	Name         string    `json:"nama" binding:"required,min=1,max=200"`
	BirthDate    string    `json:"tanggal_lahir" binding:"required,datetime=2006-01-02"`
	Sex          string    `json:"jenis_kelamin" binding:"required,oneof=LAKI_LAKI PEREMPUAN"`
	Occupation   string    `json:"pekerjaan" binding:"max=100"`
	Relationship string    `json:"hubungan_keluarga" binding:"required"`
	FamilyCardID uuid.UUID `json:"kk_id" binding:"required"`
}

// UpdateResidentRequest represents a partial update; omitted fields are kept
type UpdateResidentRequest struct {
	NIK          *string    `json:"nik" binding:"omitempty,digits16"`
	Name         *string    `json:"nama" binding:"omitempty,min=1,max=200"`
	BirthDate    *string    `json:"tanggal_lahir" binding:"omitempty,datetime=2006-01-02"`
	Sex          *string    `json:"jenis_kelamin" binding:"omitempty,oneof=LAKI_LAKI PEREMPUAN"`
	Occupation   *string    `json:"pekerjaan" binding:"omitempty,max=100"`
	Status       *string    `json:"status" binding:"omitempty,oneof=AKTIF PINDAH MENINGGAL"`
	Relationship *string    `json:"hubungan_keluarga"`
	FamilyCardID *uuid.UUID `json:"kk_id"`
}

// ResidentListFilter represents query parameters for listing residents
type ResidentListFilter struct {
	Search       string     `form:"search"`
	FamilyCardID *uuid.UUID `form:"-"`
	Status       string     `form:"status" binding:"omitempty,oneof=AKTIF PINDAH MENINGGAL"`
	Page         int        `form:"page" binding:"min=0"`
	PageSize     int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CardSummary is the household a resident belongs to
type CardSummary struct {
	ID      uuid.UUID `json:"id"`
	Number  string    `json:"no_kk"`
	Address string    `json:"alamat"`
}

// ResidentResponse represents a resident in API responses
type ResidentResponse struct {
	ID           uuid.UUID    `json:"id"`
	NIK          string       `json:"nik"`
	Name         string       `json:"nama"`
	BirthDate    string       `json:"tanggal_lahir"`
	Sex          string       `json:"jenis_kelamin"`
	Occupation   string       `json:"pekerjaan"`
	Relationship string       `json:"hubungan_keluarga"`
	Status       string       `json:"status"`
	FamilyCardID uuid.UUID    `json:"kk_id"`
	FamilyCard   *CardSummary `json:"kk,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ToResidentResponse converts a domain resident to a response
func ToResidentResponse(r *population.Resident) ResidentResponse {
	return ResidentResponse{
		ID:           r.ID,
		NIK:          r.NIK,
		Name:         r.Name,
		BirthDate:    r.BirthDate.Format(dateLayout),
		Sex:          string(r.Sex),
		Occupation:   r.Occupation,
		Relationship: string(r.Relationship),
		Status:       string(r.Status),
		FamilyCardID: r.FamilyCardID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toCardSummary(c *household.FamilyCard) *CardSummary {
	if c == nil {
		return nil
	}
	return &CardSummary{ID: c.ID, Number: c.Number, Address: c.Address}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidFormat, "tanggal_lahir must use YYYY-MM-DD")
	}
	return t, nil
}

func (r CreateResidentRequest) toParams() (population.NewResidentParams, error) {
	birth, err := parseDate(r.BirthDate)
	if err != nil {
		return population.NewResidentParams{}, err
	}
	return population.NewResidentParams{
		NIK:          r.NIK,
		Name:         r.Name,
		BirthDate:    birth,
		Sex:          population.Sex(r.Sex),
		Occupation:   r.Occupation,
		Relationship: population.Relationship(r.Relationship),
		FamilyCardID: r.FamilyCardID,
	}, nil
}

func (r UpdateResidentRequest) toChange() (population.Change, error) {
	c := population.Change{
		NIK:          r.NIK,
		Name:         r.Name,
		Occupation:   r.Occupation,
		FamilyCardID: r.FamilyCardID,
	}
	if r.BirthDate != nil {
		birth, err := parseDate(*r.BirthDate)
		if err != nil {
			return c, err
		}
		c.BirthDate = &birth
	}
	if r.Sex != nil {
		sex := population.Sex(*r.Sex)
		c.Sex = &sex
	}
	if r.Status != nil {
		status := population.Status(*r.Status)
		c.Status = &status
	}
	if r.Relationship != nil {
		rel := population.Relationship(*r.Relationship)
		c.Relationship = &rel
	}
	return c, nil
}

func (f ResidentListFilter) toDomain() population.ResidentFilter {
	filter := population.ResidentFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		FamilyCardID: f.FamilyCardID,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if f.Status != "" {
		s := population.Status(f.Status)
		filter.Status = &s
	}
	return filter
}
