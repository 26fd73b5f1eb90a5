// Package txn defines the unit of work every registry mutation runs in
package txn

import (
	"context"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
)

// TransactionScope runs a function inside one database transaction.
// A non-nil error from fn rolls back every write made through the
// repositories it was given, including the audit append.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories hands out repositories bound to the current transaction
type Repositories interface {
	Residents() population.ResidentRepository
	Cards() household.CardRepository
	RWs() region.RWRepository
	RTs() region.RTRepository
	Audit() audit.Repository
}

// NoOpTransactionScope runs fn directly against fixed repositories.
// Used by unit tests that mock the repositories.
type NoOpTransactionScope struct {
	residents population.ResidentRepository
	cards     household.CardRepository
	rws       region.RWRepository
	rts       region.RTRepository
	audit     audit.Repository
}

// NoOpOption sets one repository on a NoOpTransactionScope
type NoOpOption func(*NoOpTransactionScope)

func WithResidents(r population.ResidentRepository) NoOpOption {
	return func(s *NoOpTransactionScope) { s.residents = r }
}

func WithCards(r household.CardRepository) NoOpOption {
	return func(s *NoOpTransactionScope) { s.cards = r }
}

func WithRWs(r region.RWRepository) NoOpOption {
	return func(s *NoOpTransactionScope) { s.rws = r }
}

func WithRTs(r region.RTRepository) NoOpOption {
	return func(s *NoOpTransactionScope) { s.rts = r }
}

func WithAudit(r audit.Repository) NoOpOption {
	return func(s *NoOpTransactionScope) { s.audit = r }
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(opts ...NoOpOption) *NoOpTransactionScope {
	s := &NoOpTransactionScope{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute calls fn with the scope itself
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Residents() population.ResidentRepository { return s.residents }
func (s *NoOpTransactionScope) Cards() household.CardRepository          { return s.cards }
func (s *NoOpTransactionScope) RWs() region.RWRepository                 { return s.rws }
func (s *NoOpTransactionScope) RTs() region.RTRepository                 { return s.rts }
func (s *NoOpTransactionScope) Audit() audit.Repository                  { return s.audit }

var (
	_ TransactionScope = (*NoOpTransactionScope)(nil)
	_ Repositories     = (*NoOpTransactionScope)(nil)
)
