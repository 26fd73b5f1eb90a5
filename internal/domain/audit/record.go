// Package audit is the append-only trail of registry mutations
package audit

import (
	"context"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is the kind of mutation recorded
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"

	// ActionApprove and ActionReject complete the audit_logs vocabulary and
	// stay valid list filters. No registry mutation emits them.
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Table names recorded in the trail
const (
	TableResidents   = "residents"
	TableFamilyCards = "family_cards"
	TableRWs         = "rws"
	TableRTs         = "rts"
)

// Record is one audit entry. RecordID is a weak reference; the audited row
// may be deleted later without touching the trail.
type Record struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	Action    Action
	TableName string
	RecordID  uuid.UUID
	CreatedAt time.Time
}

// NewRecord builds an entry stamped now
func NewRecord(actorID uuid.UUID, action Action, table string, recordID uuid.UUID) *Record {
	return &Record{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		CreatedAt: time.Now(),
	}
}

// Filter narrows audit listings
type Filter struct {
	shared.Filter
	TableName string
	RecordID  *uuid.UUID
	ActorID   *uuid.UUID
	Action    Action
}

// Repository appends and reads audit records
type Repository interface {
	Append(ctx context.Context, record *Record) error
	FindAll(ctx context.Context, filter Filter) ([]Record, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
