package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/household"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/population"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockResidentRepository is a mock implementation of population.ResidentRepository
type MockResidentRepository struct {
	mock.Mock
}

func (m *MockResidentRepository) FindByID(ctx context.Context, id uuid.UUID) (*population.Resident, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*population.Resident), args.Error(1)
}

func (m *MockResidentRepository) ExistsByNIK(ctx context.Context, nik string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, nik, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockResidentRepository) FindAll(ctx context.Context, filter population.ResidentFilter) ([]population.Resident, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]population.Resident), args.Error(1)
}

func (m *MockResidentRepository) Count(ctx context.Context, filter population.ResidentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResidentRepository) Create(ctx context.Context, resident *population.Resident) error {
	return m.Called(ctx, resident).Error(0)
}

func (m *MockResidentRepository) Update(ctx context.Context, current *population.Resident, c population.Change) (*population.Resident, error) {
	args := m.Called(ctx, current, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*population.Resident), args.Error(1)
}

func (m *MockResidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockResidentRepository) CountActiveHeads(ctx context.Context, cardID uuid.UUID, exclude *uuid.UUID) (int64, error) {
	args := m.Called(ctx, cardID, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResidentRepository) CountOnCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	args := m.Called(ctx, cardID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCardRepository is a mock implementation of household.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*household.FamilyCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*household.FamilyCard), args.Error(1)
}

func (m *MockCardRepository) ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCardRepository) FindAll(ctx context.Context, filter household.CardFilter) ([]household.FamilyCard, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]household.FamilyCard), args.Error(1)
}

func (m *MockCardRepository) Count(ctx context.Context, filter household.CardFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) CountActiveByRT(ctx context.Context, rtID uuid.UUID) (int64, error) {
	args := m.Called(ctx, rtID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Create(ctx context.Context, card *household.FamilyCard) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardRepository) Save(ctx context.Context, card *household.FamilyCard) error {
	return m.Called(ctx, card).Error(0)
}

// MockRWRepository is a mock implementation of region.RWRepository
type MockRWRepository struct {
	mock.Mock
}

func (m *MockRWRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRWRepository) FindByID(ctx context.Context, id uuid.UUID) (*region.RW, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*region.RW), args.Error(1)
}

func (m *MockRWRepository) ExistsByNumber(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRWRepository) FindAll(ctx context.Context, filter shared.Filter) ([]region.RW, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]region.RW), args.Error(1)
}

func (m *MockRWRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRWRepository) Create(ctx context.Context, rw *region.RW) error {
	return m.Called(ctx, rw).Error(0)
}

func (m *MockRWRepository) Save(ctx context.Context, rw *region.RW) error {
	return m.Called(ctx, rw).Error(0)
}

// MockRTRepository is a mock implementation of region.RTRepository
type MockRTRepository struct {
	mock.Mock
}

func (m *MockRTRepository) AcquireLock(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRTRepository) FindByID(ctx context.Context, id uuid.UUID) (*region.RT, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*region.RT), args.Error(1)
}

func (m *MockRTRepository) ExistsByNumber(ctx context.Context, rwID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, rwID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRTRepository) FindAll(ctx context.Context, filter region.RTFilter) ([]region.RT, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]region.RT), args.Error(1)
}

func (m *MockRTRepository) Count(ctx context.Context, filter region.RTFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRTRepository) CountActiveByRW(ctx context.Context, rwID uuid.UUID) (int64, error) {
	args := m.Called(ctx, rwID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRTRepository) Create(ctx context.Context, rt *region.RT) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockRTRepository) Save(ctx context.Context, rt *region.RT) error {
	return m.Called(ctx, rt).Error(0)
}

// AuditSpy records appended audit entries in memory
type AuditSpy struct {
	mu      sync.Mutex
	Records []audit.Record
	Err     error
}

func (a *AuditSpy) Append(_ context.Context, r *audit.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.Records = append(a.Records, *r)
	return nil
}

func (a *AuditSpy) FindAll(_ context.Context, _ audit.Filter) ([]audit.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Record(nil), a.Records...), nil
}

func (a *AuditSpy) Count(_ context.Context, _ audit.Filter) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.Records)), nil
}

// Actions returns the recorded actions in append order
func (a *AuditSpy) Actions() []audit.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Action, len(a.Records))
	for i, r := range a.Records {
		out[i] = r.Action
	}
	return out
}

// RecorderSpy counts metric callbacks
type RecorderSpy struct {
	mu          sync.Mutex
	Mutations   int
	Failures    int
	HeadRejects int
	LockedCards int
}

func (r *RecorderSpy) Mutation(_ context.Context, _, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Mutations++
	if err != nil {
		r.Failures++
	}
}

func (r *RecorderSpy) HeadRejected(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HeadRejects++
}

func (r *RecorderSpy) LocksAcquired(_ context.Context, cards int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LockedCards += cards
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

var (
	_ shared.IdempotencyStore       = (*MockIdempotencyStore)(nil)
	_ population.ResidentRepository = (*MockResidentRepository)(nil)
	_ household.CardRepository      = (*MockCardRepository)(nil)
	_ region.RWRepository           = (*MockRWRepository)(nil)
	_ region.RTRepository           = (*MockRTRepository)(nil)
	_ audit.Repository              = (*AuditSpy)(nil)
)
