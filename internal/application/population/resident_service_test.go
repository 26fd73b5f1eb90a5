package population

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/Faiz-abdurrachman/SIDESA/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	residents *testutil.MockResidentRepository
	cards     *testutil.MockCardRepository
	audit     *testutil.AuditSpy
	metrics   *testutil.RecorderSpy
	svc       *ResidentService
}

func newFixture() *fixture {
	f := &fixture{
		residents: new(testutil.MockResidentRepository),
		cards:     new(testutil.MockCardRepository),
		audit:     &testutil.AuditSpy{},
		metrics:   &testutil.RecorderSpy{},
	}
	scope := txn.NewNoOpTransactionScope(
		txn.WithResidents(f.residents),
		txn.WithCards(f.cards),
		txn.WithAudit(f.audit),
	)
	f.svc = NewResidentService(f.residents, f.cards, scope, f.metrics, nil)
	return f
}

var (
	admin = identity.NewActor(uuid.New(), identity.RoleAdmin)
	rtOp  = identity.NewActor(uuid.New(), identity.RoleRT)
	kades = identity.NewActor(uuid.New(), identity.RoleKepalaDesa)
)

func strPtr(s string) *string { return &s }

func ptr[T any](v T) *T { return &v }

// applied is r with c written onto a copy, as the repository returns it
func applied(r *population.Resident, c population.Change) *population.Resident {
	next := *r
	next.Apply(c)
	return &next
}

func createReq(card uuid.UUID, rel population.Relationship) CreateResidentRequest {
	return CreateResidentRequest{
		NIK:          "3201010101010001",
		Name:         "Ahmad",
		BirthDate:    "1980-02-01",
		Sex:          "LAKI_LAKI",
		Relationship: string(rel),
		FamilyCardID: card,
	}
}

func existing(card uuid.UUID, rel population.Relationship, status population.Status) *population.Resident {
	return &population.Resident{
		BaseEntity:   shared.NewBaseEntity(),
		NIK:          "3201010101010099",
		Name:         "Existing",
		BirthDate:    time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		Sex:          population.SexFemale,
		Relationship: rel,
		Status:       status,
		FamilyCardID: card,
	}
}

func TestResidentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates head on empty card", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.residents.On("ExistsByNIK", ctx, "3201010101010001", (*uuid.UUID)(nil)).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, card, (*uuid.UUID)(nil)).Return(int64(0), nil)
		f.residents.On("Create", ctx, mock.AnythingOfType("*population.Resident")).Return(nil)

		resp, err := f.svc.Create(ctx, admin, createReq(card, population.RelationshipHead))
		require.NoError(t, err)
		assert.Equal(t, "AKTIF", resp.Status)
		assert.Equal(t, card, resp.FamilyCardID)
		assert.Equal(t, "1980-02-01", resp.BirthDate)

		require.Len(t, f.audit.Records, 1)
		assert.Equal(t, audit.ActionCreate, f.audit.Records[0].Action)
		assert.Equal(t, audit.TableResidents, f.audit.Records[0].TableName)
		assert.Equal(t, resp.ID, f.audit.Records[0].RecordID)
		assert.Equal(t, admin.ID, f.audit.Records[0].ActorID)
		assert.Equal(t, 1, f.metrics.LockedCards)
		f.residents.AssertExpectations(t)
		f.cards.AssertExpectations(t)
	})

	t.Run("non head skips the head count", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Create(ctx, rtOp, createReq(card, population.RelationshipChild))
		require.NoError(t, err)
		f.residents.AssertNotCalled(t, "CountActiveHeads", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second head is rejected", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, card, (*uuid.UUID)(nil)).Return(int64(1), nil)

		_, err := f.svc.Create(ctx, admin, createReq(card, population.RelationshipHead))
		assert.ErrorIs(t, err, population.ErrHeadAlreadyActive)
		assert.True(t, shared.HasCode(err, shared.CodeInvariantViolation))
		assert.Empty(t, f.audit.Records)
		assert.Equal(t, 1, f.metrics.HeadRejects)
		assert.Equal(t, 1, f.metrics.Failures)
		f.residents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing card", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(0), nil)

		_, err := f.svc.Create(ctx, admin, createReq(card, population.RelationshipChild))
		assert.ErrorIs(t, err, household.ErrCardNotFound)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("duplicate nik", func(t *testing.T) {
		f := newFixture()
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(true, nil)

		_, err := f.svc.Create(ctx, admin, createReq(uuid.New(), population.RelationshipChild))
		assert.ErrorIs(t, err, population.ErrNIKTaken)
		f.cards.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything)
	})

	t.Run("duplicate nik at commit maps to the same error", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("Create", ctx, mock.Anything).Return(population.ErrNIKTaken)

		_, err := f.svc.Create(ctx, admin, createReq(card, population.RelationshipChild))
		assert.ErrorIs(t, err, population.ErrNIKTaken)
		assert.Empty(t, f.audit.Records)
	})

	t.Run("bad nik never touches storage", func(t *testing.T) {
		f := newFixture()
		req := createReq(uuid.New(), population.RelationshipChild)
		req.NIK = "12345"

		_, err := f.svc.Create(ctx, admin, req)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidFormat))
		f.residents.AssertNotCalled(t, "ExistsByNIK", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("kepala desa cannot create", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, kades, createReq(uuid.New(), population.RelationshipChild))
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
	})

	t.Run("audit failure rolls back", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		f.audit.Err = errors.New("audit down")
		f.residents.On("ExistsByNIK", ctx, mock.Anything, mock.Anything).Return(false, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Create(ctx, admin, createReq(card, population.RelationshipChild))
		assert.EqualError(t, err, "audit down")
	})
}

func TestResidentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("deceased resident is frozen before anything else", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusDeceased)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{NIK: strPtr("bad")})
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTransition))
		f.residents.AssertNotCalled(t, "ExistsByNIK", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.residents.On("FindByID", ctx, id).Return(nil, population.ErrResidentNotFound)

		_, err := f.svc.Update(ctx, admin, id, UpdateResidentRequest{})
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("unknown status is rejected before the transaction", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Status: strPtr("HILANG")})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidFormat))
		f.residents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nik taken by someone else", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.residents.On("ExistsByNIK", ctx, "3201010101019999", &r.ID).Return(true, nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{NIK: strPtr("3201010101019999")})
		assert.ErrorIs(t, err, population.ErrNIKTaken)
	})

	t.Run("unchanged nik skips uniqueness check", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.residents.On("Update", ctx, r, mock.Anything).Return(r, nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{NIK: strPtr(r.NIK)})
		require.NoError(t, err)
		f.residents.AssertNotCalled(t, "ExistsByNIK", mock.Anything, mock.Anything, mock.Anything)
		f.cards.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything)
	})

	t.Run("promotion to head locks card and excludes self", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		r := existing(card, population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, card, &r.ID).Return(int64(0), nil)
		f.residents.On("Update", ctx, r, mock.Anything).
			Return(applied(r, population.Change{Relationship: ptr(population.RelationshipHead)}), nil)

		resp, err := f.svc.Update(ctx, rtOp, r.ID, UpdateResidentRequest{Relationship: strPtr("KEPALA_KELUARGA")})
		require.NoError(t, err)
		assert.Equal(t, "KEPALA_KELUARGA", resp.Relationship)
		assert.Equal(t, []audit.Action{audit.ActionUpdate}, f.audit.Actions())
	})

	t.Run("promotion rejected when card already has a head", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		r := existing(card, population.RelationshipSpouse, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, card, &r.ID).Return(int64(1), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Relationship: strPtr("KEPALA_KELUARGA")})
		assert.ErrorIs(t, err, population.ErrHeadAlreadyActive)
		assert.Empty(t, f.audit.Records)
		f.residents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("head transfer locks both cards in byte order and counts on target", func(t *testing.T) {
		f := newFixture()
		low := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
		high := uuid.MustParse("ffffffff-0000-0000-0000-00000000000b")
		r := existing(high, population.RelationshipHead, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)

		var order []uuid.UUID
		f.cards.On("AcquireLock", ctx, mock.Anything).Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(uuid.UUID))
		}).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, low, &r.ID).Return(int64(0), nil)
		f.residents.On("Update", ctx, r, mock.Anything).Return(applied(r, population.Change{FamilyCardID: &low}), nil)

		resp, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{FamilyCardID: &low})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{low, high}, order)
		assert.Equal(t, low, resp.FamilyCardID)
		assert.Equal(t, 2, f.metrics.LockedCards)
	})

	t.Run("member transfer locks only the target", func(t *testing.T) {
		f := newFixture()
		source := uuid.New()
		target := uuid.New()
		r := existing(source, population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, target).Return(int64(1), nil)
		f.residents.On("Update", ctx, r, mock.Anything).Return(applied(r, population.Change{FamilyCardID: &target}), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{FamilyCardID: &target})
		require.NoError(t, err)
		f.cards.AssertNotCalled(t, "AcquireLock", ctx, source)
		f.residents.AssertNotCalled(t, "CountActiveHeads", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transfer to archived card", func(t *testing.T) {
		f := newFixture()
		target := uuid.New()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, target).Return(int64(0), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{FamilyCardID: &target})
		assert.ErrorIs(t, err, household.ErrCardNotFound)
	})

	t.Run("reactivating head re-checks the card", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		r := existing(card, population.RelationshipHead, population.StatusRelocated)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil)
		f.residents.On("CountActiveHeads", ctx, card, &r.ID).Return(int64(1), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Status: strPtr("AKTIF")})
		assert.ErrorIs(t, err, population.ErrHeadAlreadyActive)
	})

	t.Run("marking deceased", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipHead, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.residents.On("Update", ctx, r, mock.Anything).
			Return(applied(r, population.Change{Status: ptr(population.StatusDeceased)}), nil)

		resp, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Status: strPtr("MENINGGAL")})
		require.NoError(t, err)
		assert.Equal(t, "MENINGGAL", resp.Status)
	})

	t.Run("resident reloaded as deceased inside the transaction is frozen", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		dead := *r
		dead.Status = population.StatusDeceased
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil).Once()
		f.residents.On("FindByID", ctx, r.ID).Return(&dead, nil).Once()

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Name: strPtr("Renamed")})
		assert.ErrorIs(t, err, population.ErrRecordFrozen)
		assert.Empty(t, f.audit.Records)
		f.residents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reloaded row that became head locks its card before the check", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		r := existing(card, population.RelationshipChild, population.StatusRelocated)
		promoted := *r
		promoted.Relationship = population.RelationshipHead
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil).Once()
		f.residents.On("FindByID", ctx, r.ID).Return(&promoted, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(1), nil).Once()
		f.residents.On("CountActiveHeads", ctx, card, &r.ID).Return(int64(1), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Status: strPtr("AKTIF")})
		assert.ErrorIs(t, err, population.ErrHeadAlreadyActive)
		f.cards.AssertNumberOfCalls(t, "AcquireLock", 1)
		f.residents.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reloaded row needing a lock out of order asks for a retry", func(t *testing.T) {
		f := newFixture()
		low := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
		mid := uuid.MustParse("80000000-0000-0000-0000-00000000000b")
		high := uuid.MustParse("ffffffff-0000-0000-0000-00000000000c")
		r := existing(high, population.RelationshipChild, population.StatusActive)
		moved := *r
		moved.Relationship = population.RelationshipHead
		moved.FamilyCardID = low
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil).Once()
		f.residents.On("FindByID", ctx, r.ID).Return(&moved, nil)
		f.cards.On("AcquireLock", ctx, mid).Return(int64(1), nil)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{FamilyCardID: &mid})
		assert.ErrorIs(t, err, population.ErrResidentChanged)
		assert.True(t, shared.HasCode(err, shared.CodeTransient))
		f.cards.AssertNotCalled(t, "AcquireLock", ctx, low)
	})

	t.Run("repository refusal after the checks is returned", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.residents.On("Update", ctx, r, mock.Anything).Return(nil, population.ErrRecordFrozen)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Occupation: strPtr("Guru")})
		assert.ErrorIs(t, err, population.ErrRecordFrozen)
		assert.Empty(t, f.audit.Records)
	})

	t.Run("transient lock failure propagates", func(t *testing.T) {
		f := newFixture()
		card := uuid.New()
		r := existing(card, population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("AcquireLock", ctx, card).Return(int64(0), shared.ErrTransient)

		_, err := f.svc.Update(ctx, admin, r.ID, UpdateResidentRequest{Relationship: strPtr("KEPALA_KELUARGA")})
		assert.True(t, shared.HasCode(err, shared.CodeTransient))
	})
}

func TestResidentService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipHead, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.residents.On("Delete", ctx, r.ID).Return(nil)

		require.NoError(t, f.svc.Remove(ctx, admin, r.ID))
		assert.Equal(t, []audit.Action{audit.ActionDelete}, f.audit.Actions())
		f.cards.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything)
	})

	t.Run("rt cannot delete", func(t *testing.T) {
		f := newFixture()
		err := f.svc.Remove(ctx, rtOp, uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodePermissionDenied))
		f.residents.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.residents.On("FindByID", ctx, id).Return(nil, population.ErrResidentNotFound)
		assert.ErrorIs(t, f.svc.Remove(ctx, admin, id), population.ErrResidentNotFound)
		assert.Empty(t, f.audit.Records)
		f.residents.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestResidentService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("get includes card", func(t *testing.T) {
		f := newFixture()
		card := &household.FamilyCard{BaseEntity: shared.NewBaseEntity(), Number: "3201010101010101", Address: "Jl. Mawar"}
		r := existing(card.ID, population.RelationshipHead, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("FindByID", ctx, card.ID).Return(card, nil)

		resp, err := f.svc.GetByID(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, resp.FamilyCard)
		assert.Equal(t, "3201010101010101", resp.FamilyCard.Number)
	})

	t.Run("get tolerates archived card", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		f.residents.On("FindByID", ctx, r.ID).Return(r, nil)
		f.cards.On("FindByID", ctx, r.FamilyCardID).Return(nil, household.ErrCardNotFound)

		resp, err := f.svc.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Nil(t, resp.FamilyCard)
	})

	t.Run("list applies defaults", func(t *testing.T) {
		f := newFixture()
		r := existing(uuid.New(), population.RelationshipChild, population.StatusActive)
		match := mock.MatchedBy(func(fl population.ResidentFilter) bool {
			return fl.Page == 1 && fl.PageSize == 20 && fl.Status != nil && *fl.Status == population.StatusActive
		})
		f.residents.On("FindAll", ctx, match).Return([]population.Resident{*r}, nil)
		f.residents.On("Count", ctx, match).Return(int64(1), nil)

		items, total, err := f.svc.List(ctx, ResidentListFilter{Status: "AKTIF"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, r.ID, items[0].ID)
	})
}
