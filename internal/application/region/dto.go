package region

import (
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateRWRequest represents a request to create an RW
type CreateRWRequest struct {
	Number string `json:"nomor_rw" binding:"required,max=3"`
}

// UpdateRWRequest represents a request to renumber an RW
type UpdateRWRequest struct {
	Number *string `json:"nomor_rw" binding:"omitempty,max=3"`
}

// CreateRTRequest represents a request to create an RT
type CreateRTRequest struct {
	Number string    `json:"nomor_rt" binding:"required,max=3"`
	RWID   uuid.UUID `json:"rw_id" binding:"required"`
}

// UpdateRTRequest represents a partial update of an RT
type UpdateRTRequest struct {
	Number *string    `json:"nomor_rt" binding:"omitempty,max=3"`
	RWID   *uuid.UUID `json:"rw_id"`
}

// ListFilter represents paging parameters for RW/RT listings
type ListFilter struct {
	RWID     *uuid.UUID `form:"-"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

func (f ListFilter) base() shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "number", OrderDir: "asc"}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return filter
}

// RWResponse represents an RW in API responses
type RWResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"nomor_rw"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RTResponse represents an RT in API responses
type RTResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"nomor_rt"`
	RWID      uuid.UUID `json:"rw_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToRWResponse converts a domain RW
func ToRWResponse(rw *region.RW) RWResponse {
	return RWResponse{ID: rw.ID, Number: rw.Number, CreatedAt: rw.CreatedAt, UpdatedAt: rw.UpdatedAt}
}

// ToRTResponse converts a domain RT
func ToRTResponse(rt *region.RT) RTResponse {
	return RTResponse{ID: rt.ID, Number: rt.Number, RWID: rt.RWID, CreatedAt: rt.CreatedAt, UpdatedAt: rt.UpdatedAt}
}
