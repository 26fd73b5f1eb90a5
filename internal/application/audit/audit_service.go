package audit

import (
	"context"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter represents query parameters for the audit trail
type ListFilter struct {
	TableName string     `form:"table_name"`
	RecordID  *uuid.UUID `form:"-"`
	ActorID   *uuid.UUID `form:"-"`
	Action    string     `form:"action" binding:"omitempty,oneof=CREATE UPDATE DELETE APPROVE REJECT"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
}

// RecordResponse represents an audit record in API responses
type RecordResponse struct {
	ID        uuid.UUID `json:"id"`
	ActorID   uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	TableName string    `json:"table_name"`
	RecordID  uuid.UUID `json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Service reads the audit trail
type Service struct {
	records audit.Repository
}

// NewService creates a new audit Service
func NewService(records audit.Repository) *Service {
	return &Service{records: records}
}

// List returns audit records newest first. ADMIN only.
func (s *Service) List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]RecordResponse, int64, error) {
	if err := actor.Require("Only ADMIN can read the audit log", identity.RoleAdmin); err != nil {
		return nil, 0, err
	}

	f := audit.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
		TableName: filter.TableName,
		RecordID:  filter.RecordID,
		ActorID:   filter.ActorID,
		Action:    audit.Action(filter.Action),
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	records, err := s.records.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.records.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = RecordResponse{
			ID:        r.ID,
			ActorID:   r.ActorID,
			Action:    string(r.Action),
			TableName: r.TableName,
			RecordID:  r.RecordID,
			CreatedAt: r.CreatedAt,
		}
	}
	return out, total, nil
}
