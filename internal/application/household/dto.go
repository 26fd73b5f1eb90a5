package household

import (
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateCardRequest represents a request to create a family card
type CreateCardRequest struct {
	Number  string    `json:"no_kk" binding:"required,digits16"`
	Address string    `json:"alamat" binding:"required,min=1,max=500"`
	RTID    uuid.UUID `json:"rt_id" binding:"required"`
}

// UpdateCardRequest represents a partial update of a family card
type UpdateCardRequest struct {
	Number  *string    `json:"no_kk" binding:"omitempty,digits16"`
	Address *string    `json:"alamat" binding:"omitempty,min=1,max=500"`
	RTID    *uuid.UUID `json:"rt_id"`
}

// CardListFilter represents query parameters for listing family cards
type CardListFilter struct {
	Search   string     `form:"search"`
	RTID     *uuid.UUID `form:"-"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CardResponse represents a family card in API responses
type CardResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"no_kk"`
	Address   string    `json:"alamat"`
	RTID      uuid.UUID `json:"rt_id"`
	Members   *int64    `json:"jumlah_anggota,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCardResponse converts a domain card to a response
func ToCardResponse(c *household.FamilyCard) CardResponse {
	return CardResponse{
		ID:        c.ID,
		Number:    c.Number,
		Address:   c.Address,
		RTID:      c.RTID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r UpdateCardRequest) toChange() household.CardChange {
	return household.CardChange{Number: r.Number, Address: r.Address, RTID: r.RTID}
}

func (f CardListFilter) toDomain() household.CardFilter {
	filter := household.CardFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		RTID: f.RTID,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return filter
}
