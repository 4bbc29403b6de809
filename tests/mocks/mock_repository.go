package mocks

import (
	"context"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) Create(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error {
	args := m.Called(ctx, credit, schedule)
	return args.Error(0)
}

func (m *MockCreditRepository) GetByID(ctx context.Context, id int64) (*domain.CreditObligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditObligation), args.Error(1)
}

func (m *MockCreditRepository) List(ctx context.Context) ([]*domain.CreditObligation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CreditObligation), args.Error(1)
}

func (m *MockCreditRepository) Update(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error {
	args := m.Called(ctx, credit, schedule)
	return args.Error(0)
}

func (m *MockCreditRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCreditRepository) GetSchedule(ctx context.Context, creditID int64) (domain.Schedule, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Schedule), args.Error(1)
}

func (m *MockCreditRepository) GetSchedules(ctx context.Context, creditIDs []int64) (map[int64]domain.Schedule, error) {
	args := m.Called(ctx, creditIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.Schedule), args.Error(1)
}

func (m *MockCreditRepository) ReplaceSchedule(ctx context.Context, creditID int64, schedule domain.Schedule) error {
	args := m.Called(ctx, creditID, schedule)
	return args.Error(0)
}

type MockScenarioRepository struct {
	mock.Mock
}

func (m *MockScenarioRepository) Create(ctx context.Context, scenario *domain.RateScenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockScenarioRepository) GetByID(ctx context.Context, id int64) (*domain.RateScenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateScenario), args.Error(1)
}

func (m *MockScenarioRepository) ListPublic(ctx context.Context) ([]domain.RateScenario, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateScenario), args.Error(1)
}

func (m *MockScenarioRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.RateScenario, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateScenario), args.Error(1)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Add(ctx context.Context, point domain.RatePoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockRateRepository) History(ctx context.Context, indicator domain.BaseRateIndicator) ([]domain.RatePoint, error) {
	args := m.Called(ctx, indicator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatePoint), args.Error(1)
}

func (m *MockRateRepository) Latest(ctx context.Context, indicator domain.BaseRateIndicator) (*domain.RatePoint, error) {
	args := m.Called(ctx, indicator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePoint), args.Error(1)
}

type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) Create(ctx context.Context, def *domain.InstrumentDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockInstrumentRepository) List(ctx context.Context) ([]domain.InstrumentDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstrumentDefinition), args.Error(1)
}

func (m *MockInstrumentRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.InstrumentDefinition, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstrumentDefinition), args.Error(1)
}
