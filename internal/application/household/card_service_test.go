package household

import (
	"context"
	"testing"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/Faiz-abdurrachman/SIDESA/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cards     *testutil.MockCardRepository
	residents *testutil.MockResidentRepository
	rts       *testutil.MockRTRepository
	audit     *testutil.AuditSpy
	svc       *CardService
}

func newFixture() *fixture {
	f := &fixture{
		cards:     new(testutil.MockCardRepository),
		residents: new(testutil.MockResidentRepository),
		rts:       new(testutil.MockRTRepository),
		audit:     &testutil.AuditSpy{},
	}
	scope := txn.NewNoOpTransactionScope(
		txn.WithCards(f.cards),
		txn.WithResidents(f.residents),
		txn.WithRTs(f.rts),
		txn.WithAudit(f.audit),
	)
	f.svc = NewCardService(f.cards, f.residents, scope, nil, nil)
	return f
}

var (
	admin = identity.NewActor(uuid.New(), identity.RoleAdmin)
	rtOp  = identity.NewActor(uuid.New(), identity.RoleRT)
)

func liveCard() *household.FamilyCard {
	return &household.FamilyCard{
		BaseEntity: shared.NewBaseEntity(),
		Number:     "3201010101010001",
		Address:    "Jl. Melati",
		RTID:       uuid.New(),
	}
}

func TestCardService_Create(t *testing.T) {
	ctx := context.Background()
	rt := uuid.New()
	req := CreateCardRequest{Number: "3201010101010001", Address: "Jl. Melati", RTID: rt}

	t.Run("creates under live rt", func(t *testing.T) {
		f := newFixture()
		f.cards.On("ExistsByNumber", ctx, req.Number, (*uuid.UUID)(nil)).Return(false, nil)
		f.rts.On("AcquireLock", ctx, rt).Return(int64(1), nil)
		f.cards.On("Create", ctx, mock.AnythingOfType("*household.FamilyCard")).Return(nil)

		resp, err := f.svc.Create(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, req.Number, resp.Number)
		require.Len(t, f.audit.Records, 1)
		assert.Equal(t, audit.TableFamilyCards, f.audit.Records[0].TableName)
	})

	t.Run("rt archived", func(t *testing.T) {
		f := newFixture()
		f.cards.On("ExistsByNumber", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.rts.On("AcquireLock", ctx, rt).Return(int64(0), nil)

		_, err := f.svc.Create(ctx, admin, req)
		assert.ErrorIs(t, err, region.ErrRTNotFound)
		f.cards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("number taken", func(t *testing.T) {
		f := newFixture()
		f.cards.On("ExistsByNumber", ctx, mock.Anything, mock.Anything).Return(true, nil)

		_, err := f.svc.Create(ctx, admin, req)
		assert.ErrorIs(t, err, household.ErrCardNumberTaken)
	})

	t.Run("bad number", func(t *testing.T) {
		f := newFixture()
		bad := req
		bad.Number = "12"
		_, err := f.svc.Create(ctx, admin, bad)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidFormat))
	})

	t.Run("admin only", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, rtOp, req)
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
	})
}

func TestCardService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("moves card to another rt", func(t *testing.T) {
		f := newFixture()
		card := liveCard()
		newRT := uuid.New()
		f.cards.On("FindByID", ctx, card.ID).Return(card, nil)
		f.cards.On("AcquireLock", ctx, card.ID).Return(int64(1), nil)
		f.rts.On("AcquireLock", ctx, newRT).Return(int64(1), nil)
		f.cards.On("Save", ctx, card).Return(nil)

		resp, err := f.svc.Update(ctx, admin, card.ID, UpdateCardRequest{RTID: &newRT})
		require.NoError(t, err)
		assert.Equal(t, newRT, resp.RTID)
		assert.Equal(t, []audit.Action{audit.ActionUpdate}, f.audit.Actions())
	})

	t.Run("new number already used", func(t *testing.T) {
		f := newFixture()
		card := liveCard()
		number := "3201010101019999"
		f.cards.On("FindByID", ctx, card.ID).Return(card, nil)
		f.cards.On("ExistsByNumber", ctx, number, &card.ID).Return(true, nil)

		_, err := f.svc.Update(ctx, admin, card.ID, UpdateCardRequest{Number: &number})
		assert.ErrorIs(t, err, household.ErrCardNumberTaken)
	})

	t.Run("applies the change to the card read under the lock", func(t *testing.T) {
		f := newFixture()
		stale := liveCard()
		fresh := *stale
		fresh.Address = "Jl. Edit Lain No. 9"
		number := "3201010101017777"
		f.cards.On("FindByID", ctx, stale.ID).Return(stale, nil).Once()
		f.cards.On("FindByID", ctx, stale.ID).Return(&fresh, nil).Once()
		f.cards.On("ExistsByNumber", ctx, number, &stale.ID).Return(false, nil)
		f.cards.On("AcquireLock", ctx, stale.ID).Return(int64(1), nil)
		f.cards.On("Save", ctx, mock.MatchedBy(func(c *household.FamilyCard) bool {
			return c.Number == number && c.Address == fresh.Address
		})).Return(nil)

		resp, err := f.svc.Update(ctx, admin, stale.ID, UpdateCardRequest{Number: &number})
		require.NoError(t, err)
		assert.Equal(t, number, resp.Number)
		assert.Equal(t, fresh.Address, resp.Address)
		f.cards.AssertExpectations(t)
	})

	t.Run("card archived between read and lock", func(t *testing.T) {
		f := newFixture()
		card := liveCard()
		addr := "Jl. Baru"
		f.cards.On("FindByID", ctx, card.ID).Return(card, nil)
		f.cards.On("AcquireLock", ctx, card.ID).Return(int64(0), nil)

		_, err := f.svc.Update(ctx, admin, card.ID, UpdateCardRequest{Address: &addr})
		assert.ErrorIs(t, err, household.ErrCardNotFound)
	})
}

func TestCardService_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("archives empty card", func(t *testing.T) {
		f := newFixture()
		card := liveCard()
		f.cards.On("AcquireLock", ctx, card.ID).Return(int64(1), nil)
		f.residents.On("CountOnCard", ctx, card.ID).Return(int64(0), nil)
		f.cards.On("FindByID", ctx, card.ID).Return(card, nil)
		f.cards.On("Save", ctx, card).Return(nil)

		require.NoError(t, f.svc.Archive(ctx, admin, card.ID))
		assert.False(t, card.IsActive())
		assert.Equal(t, []audit.Action{audit.ActionDelete}, f.audit.Actions())
	})

	t.Run("refuses while residents reference it", func(t *testing.T) {
		f := newFixture()
		card := liveCard()
		f.cards.On("AcquireLock", ctx, card.ID).Return(int64(1), nil)
		f.residents.On("CountOnCard", ctx, card.ID).Return(int64(3), nil)

		err := f.svc.Archive(ctx, admin, card.ID)
		assert.ErrorIs(t, err, household.ErrCardHasMembers)
		assert.True(t, shared.HasCode(err, shared.CodeConflict))
		f.cards.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCardService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	card := liveCard()
	f.cards.On("FindByID", ctx, card.ID).Return(card, nil)
	f.residents.On("CountOnCard", ctx, card.ID).Return(int64(4), nil)

	resp, err := f.svc.GetByID(ctx, card.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Members)
	assert.Equal(t, int64(4), *resp.Members)
}
