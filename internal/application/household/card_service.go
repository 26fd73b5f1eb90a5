package household

import (
	"context"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CardService manages family cards
type CardService struct {
	cards     household.CardRepository
	residents population.ResidentRepository
	scope     txn.TransactionScope
	metrics   txn.Recorder
	logger    *zap.Logger
}

// NewCardService creates a new CardService
func NewCardService(
	cards household.CardRepository,
	residents population.ResidentRepository,
	scope txn.TransactionScope,
	metrics txn.Recorder,
	logger *zap.Logger,
) *CardService {
	if metrics == nil {
		metrics = txn.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardService{
		cards:     cards,
		residents: residents,
		scope:     scope,
		metrics:   metrics,
		logger:    logger,
	}
}

const adminOnly = "Only ADMIN can manage Kartu Keluarga"

// Create registers a family card under a live RT
func (s *CardService) Create(ctx context.Context, actor identity.Actor, req CreateCardRequest) (resp *CardResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableFamilyCards, string(audit.ActionCreate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}

	card, err := household.NewFamilyCard(req.Number, req.Address, req.RTID)
	if err != nil {
		return nil, err
	}

	exists, err := s.cards.ExistsByNumber(ctx, card.Number, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, household.ErrCardNumberTaken
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRT(ctx, repos.RTs(), card.RTID); err != nil {
			return err
		}
		if err := repos.Cards().Create(ctx, card); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionCreate, audit.TableFamilyCards, card.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Kartu Keluarga created",
		zap.String("kk_id", card.ID.String()),
		zap.String("rt_id", card.RTID.String()),
		zap.String("actor_id", actor.ID.String()))

	out := ToCardResponse(card)
	return &out, nil
}

// Update changes a family card's number, address or RT. The card is read
// again under its lock so a concurrent edit to another field survives.
func (s *CardService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateCardRequest) (resp *CardResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableFamilyCards, string(audit.ActionUpdate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}

	change := req.toChange()
	if err := change.Validate(); err != nil {
		return nil, err
	}

	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if change.Number != nil && *change.Number != card.Number {
		exists, err := s.cards.ExistsByNumber(ctx, *change.Number, &card.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, household.ErrCardNumberTaken
		}
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := household.LockCards(ctx, repos.Cards(), id); err != nil {
			return err
		}
		card, err = repos.Cards().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if change.RTID != nil && *change.RTID != card.RTID {
			if err := lockRT(ctx, repos.RTs(), *change.RTID); err != nil {
				return err
			}
		}

		card.Apply(change)
		if err := repos.Cards().Save(ctx, card); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionUpdate, audit.TableFamilyCards, card.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Kartu Keluarga updated",
		zap.String("kk_id", card.ID.String()),
		zap.String("actor_id", actor.ID.String()))

	out := ToCardResponse(card)
	return &out, nil
}

// Archive soft-deletes a family card that no resident references.
// Holding the card lock keeps residents from joining while the count runs.
func (s *CardService) Archive(ctx context.Context, actor identity.Actor, id uuid.UUID) (err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableFamilyCards, string(audit.ActionDelete), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := household.LockCards(ctx, repos.Cards(), id); err != nil {
			return err
		}

		members, err := repos.Residents().CountOnCard(ctx, id)
		if err != nil {
			return err
		}
		if members > 0 {
			return household.ErrCardHasMembers
		}

		card, err := repos.Cards().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := card.Retire(time.Now()); err != nil {
			return err
		}
		if err := repos.Cards().Save(ctx, card); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionDelete, audit.TableFamilyCards, id))
	})
	if err != nil {
		return err
	}

	s.logger.Info("Kartu Keluarga archived",
		zap.String("kk_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

// GetByID returns a live family card with its member count
func (s *CardService) GetByID(ctx context.Context, id uuid.UUID) (*CardResponse, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.residents.CountOnCard(ctx, id)
	if err != nil {
		return nil, err
	}

	out := ToCardResponse(card)
	out.Members = &members
	return &out, nil
}

// List returns a page of live family cards
func (s *CardService) List(ctx context.Context, filter CardListFilter) ([]CardResponse, int64, error) {
	f := filter.toDomain()

	cards, err := s.cards.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.cards.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]CardResponse, len(cards))
	for i := range cards {
		out[i] = ToCardResponse(&cards[i])
	}
	return out, total, nil
}

func lockRT(ctx context.Context, rts region.RTRepository, id uuid.UUID) error {
	n, err := rts.AcquireLock(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return region.ErrRTNotFound
	}
	return nil
}
