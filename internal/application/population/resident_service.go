package population

import (
	"context"
	"errors"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResidentService applies resident mutations under the household locking protocol
type ResidentService struct {
	residents population.ResidentRepository
	cards     household.CardRepository
	scope     txn.TransactionScope
	metrics   txn.Recorder
	logger    *zap.Logger
}

// NewResidentService creates a new ResidentService
func NewResidentService(
	residents population.ResidentRepository,
	cards household.CardRepository,
	scope txn.TransactionScope,
	metrics txn.Recorder,
	logger *zap.Logger,
) *ResidentService {
	if metrics == nil {
		metrics = txn.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResidentService{
		residents: residents,
		cards:     cards,
		scope:     scope,
		metrics:   metrics,
		logger:    logger,
	}
}

var mutators = []identity.Role{identity.RoleAdmin, identity.RoleRT}

// Create registers a resident on an existing, live family card
func (s *ResidentService) Create(ctx context.Context, actor identity.Actor, req CreateResidentRequest) (resp *ResidentResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableResidents, string(audit.ActionCreate), err) }()

	if err := actor.Require("Only ADMIN or RT can register residents", mutators...); err != nil {
		return nil, err
	}

	params, err := req.toParams()
	if err != nil {
		return nil, err
	}
	resident, err := population.NewResident(params)
	if err != nil {
		return nil, err
	}

	exists, err := s.residents.ExistsByNIK(ctx, resident.NIK, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, population.ErrNIKTaken
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := s.lock(ctx, repos.Cards(), resident.FamilyCardID); err != nil {
			return err
		}

		if resident.IsHead() {
			n, err := repos.Residents().CountActiveHeads(ctx, resident.FamilyCardID, nil)
			if err != nil {
				return err
			}
			if n > 0 {
				return population.ErrHeadAlreadyActive
			}
		}

		if err := repos.Residents().Create(ctx, resident); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionCreate, audit.TableResidents, resident.ID))
	})
	if err != nil {
		s.logRejected(ctx, "create", resident.ID, resident.FamilyCardID, err)
		return nil, err
	}

	s.logger.Info("Resident created",
		zap.String("resident_id", resident.ID.String()),
		zap.String("kk_id", resident.FamilyCardID.String()),
		zap.String("actor_id", actor.ID.String()))

	out := ToResidentResponse(resident)
	return &out, nil
}

// Update applies a partial change. Status, relationship and card changes
// that could add an active head to a card are checked under the card lock,
// against the resident as reloaded inside the transaction.
func (s *ResidentService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateResidentRequest) (resp *ResidentResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableResidents, string(audit.ActionUpdate), err) }()

	if err := actor.Require("Only ADMIN or RT can update residents", mutators...); err != nil {
		return nil, err
	}

	resident, err := s.residents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := resident.EnsureMutable(); err != nil {
		return nil, err
	}

	change, err := req.toChange()
	if err != nil {
		return nil, err
	}
	if err := change.Validate(); err != nil {
		return nil, err
	}

	if change.ChangesNIK(resident.NIK) {
		exists, err := s.residents.ExistsByNIK(ctx, *change.NIK, &resident.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, population.ErrNIKTaken
		}
	}

	if err := resident.Admits(change); err != nil {
		return nil, err
	}

	plan := resident.PlanChange(change)

	var updated *population.Resident
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := s.lock(ctx, repos.Cards(), plan.LockCards...); err != nil {
			return err
		}

		current, fresh, err := s.reload(ctx, repos, id, change, household.LockOrder(plan.LockCards...))
		if err != nil {
			return err
		}
		plan = fresh

		if plan.NeedsHeadCheck {
			n, err := repos.Residents().CountActiveHeads(ctx, plan.TargetCard, &current.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return population.ErrHeadAlreadyActive
			}
		}

		updated, err = repos.Residents().Update(ctx, current, change)
		if err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionUpdate, audit.TableResidents, id))
	})
	if err != nil {
		s.logRejected(ctx, "update", id, plan.TargetCard, err)
		return nil, err
	}

	s.logger.Info("Resident updated",
		zap.String("resident_id", updated.ID.String()),
		zap.String("kk_id", updated.FamilyCardID.String()),
		zap.Bool("transferred", plan.Transfers),
		zap.String("actor_id", actor.ID.String()))

	out := ToResidentResponse(updated)
	return &out, nil
}

// maxReloads bounds how often reload chases a resident whose row keeps
// asking for cards that are not locked yet.
const maxReloads = 3

// reload reads the resident inside the transaction and replans change
// against it. When the stored row needs cards beyond held, they are locked
// and the row is read again, so the returned plan is always covered by the
// locks this transaction holds.
func (s *ResidentService) reload(ctx context.Context, repos txn.Repositories, id uuid.UUID, change population.Change, held []uuid.UUID) (*population.Resident, population.ChangePlan, error) {
	for range maxReloads {
		current, err := repos.Residents().FindByID(ctx, id)
		if err != nil {
			return nil, population.ChangePlan{}, err
		}
		if err := current.Admits(change); err != nil {
			return nil, population.ChangePlan{}, err
		}

		plan := current.PlanChange(change)
		add, ok := household.ExtendLocks(held, plan.LockCards...)
		if len(add) == 0 {
			return current, plan, nil
		}
		if !ok {
			return nil, plan, population.ErrResidentChanged
		}
		if err := s.lock(ctx, repos.Cards(), add...); err != nil {
			return nil, plan, err
		}
		held = household.LockOrder(append(held, add...)...)
	}
	return nil, population.ChangePlan{}, population.ErrResidentChanged
}

// Remove hard-deletes a resident. Removing a row can never add a head, so
// no card lock is taken.
func (s *ResidentService) Remove(ctx context.Context, actor identity.Actor, id uuid.UUID) (err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableResidents, string(audit.ActionDelete), err) }()

	if err := actor.Require("Only ADMIN can delete residents", identity.RoleAdmin); err != nil {
		return err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Residents().FindByID(ctx, id); err != nil {
			return err
		}
		if err := repos.Residents().Delete(ctx, id); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionDelete, audit.TableResidents, id))
	})
	if err != nil {
		return err
	}

	s.logger.Info("Resident deleted",
		zap.String("resident_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

// GetByID returns a resident with its family card
func (s *ResidentService) GetByID(ctx context.Context, id uuid.UUID) (*ResidentResponse, error) {
	resident, err := s.residents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := ToResidentResponse(resident)
	card, err := s.cards.FindByID(ctx, resident.FamilyCardID)
	switch {
	case err == nil:
		out.FamilyCard = toCardSummary(card)
	case !shared.HasCode(err, shared.CodeNotFound):
		return nil, err
	}
	return &out, nil
}

// List returns a page of residents
func (s *ResidentService) List(ctx context.Context, filter ResidentListFilter) ([]ResidentResponse, int64, error) {
	f := filter.toDomain()

	residents, err := s.residents.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.residents.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ResidentResponse, len(residents))
	for i := range residents {
		out[i] = ToResidentResponse(&residents[i])
	}
	return out, total, nil
}

// lock acquires the card locks of one mutation and records the wait
func (s *ResidentService) lock(ctx context.Context, cards household.CardRepository, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	if err := household.LockCards(ctx, cards, ids...); err != nil {
		return err
	}
	s.metrics.LocksAcquired(ctx, len(ids), time.Since(start))
	return nil
}

func (s *ResidentService) logRejected(ctx context.Context, op string, residentID, cardID uuid.UUID, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("resident_id", residentID.String()),
		zap.String("kk_id", cardID.String()),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, population.ErrHeadAlreadyActive):
		s.metrics.HeadRejected(ctx)
		s.logger.Warn("Kepala Keluarga check rejected resident mutation", fields...)
	case shared.HasCode(err, shared.CodeTransient):
		s.logger.Warn("Resident mutation hit lock contention", fields...)
	case shared.CodeOf(err) == "":
		s.logger.Error("Resident mutation failed", fields...)
	}
}
