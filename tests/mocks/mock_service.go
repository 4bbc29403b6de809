package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) Create(ctx context.Context, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateCreditResponse), args.Error(1)
}

func (m *MockCreditService) Get(ctx context.Context, id int64) (*domain.CreditObligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditObligation), args.Error(1)
}

func (m *MockCreditService) List(ctx context.Context) ([]*domain.CreditObligation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CreditObligation), args.Error(1)
}

func (m *MockCreditService) Update(ctx context.Context, id int64, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateCreditResponse), args.Error(1)
}

func (m *MockCreditService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCreditService) GetSchedule(ctx context.Context, id int64) (domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Schedule), args.Error(1)
}

func (m *MockCreditService) EditSchedule(ctx context.Context, id int64, req domain.ScheduleEditRequest) (*domain.ScheduleEditResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleEditResponse), args.Error(1)
}

func (m *MockCreditService) SaveSchedule(ctx context.Context, id int64, sched domain.Schedule) (*domain.ScheduleEditResponse, error) {
	args := m.Called(ctx, id, sched)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleEditResponse), args.Error(1)
}

func (m *MockCreditService) ScheduleSummary(ctx context.Context, id int64) (*domain.ScheduleSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleSummary), args.Error(1)
}

func (m *MockCreditService) PortfolioSummary(ctx context.Context) (*domain.PortfolioSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioSummary), args.Error(1)
}

type MockScenarioService struct {
	mock.Mock
}

func (m *MockScenarioService) Create(ctx context.Context, req *domain.CreateScenarioRequest) (*domain.RateScenario, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateScenario), args.Error(1)
}

func (m *MockScenarioService) List(ctx context.Context, ownerID int64) ([]domain.RateScenario, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateScenario), args.Error(1)
}

func (m *MockScenarioService) Get(ctx context.Context, ownerID, id int64) (*domain.RateScenario, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateScenario), args.Error(1)
}

type MockInstrumentService struct {
	mock.Mock
}

func (m *MockInstrumentService) Create(ctx context.Context, def *domain.InstrumentDefinition) (*domain.InstrumentDefinition, error) {
	args := m.Called(ctx, def)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstrumentDefinition), args.Error(1)
}

func (m *MockInstrumentService) List(ctx context.Context) ([]domain.InstrumentDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstrumentDefinition), args.Error(1)
}

type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Record(ctx context.Context, point domain.RatePoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockRateService) Current(ctx context.Context, indicator domain.BaseRateIndicator) (decimal.Decimal, error) {
	args := m.Called(ctx, indicator)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateService) History(ctx context.Context, indicator domain.BaseRateIndicator) (schedule.RateHistory, error) {
	args := m.Called(ctx, indicator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(schedule.RateHistory), args.Error(1)
}

type MockRecalculationTrigger struct {
	mock.Mock
}

func (m *MockRecalculationTrigger) Submit(ctx context.Context, today time.Time) uuid.UUID {
	args := m.Called(ctx, today)
	return args.Get(0).(uuid.UUID)
}
