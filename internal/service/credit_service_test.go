package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/tests/mocks"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedRequest() *domain.CreateCreditRequest {
	return &domain.CreateCreditRequest{
		CreditName:        "Working capital line",
		PrincipalAmount:   dec("1200000"),
		Currency:          domain.CurrencyRUB,
		StartDate:         date(2025, 1, 1),
		EndDate:           date(2026, 1, 1),
		BaseRateIndicator: domain.IndicatorFixed,
		BaseRateValue:     dec("12"),
		CreditSpread:      dec("2"),
		PaymentFrequency:  domain.FrequencyMonthly,
		PaymentType:       domain.PaymentDifferentiated,
	}
}

func floatingRequest() *domain.CreateCreditRequest {
	req := fixedRequest()
	req.CreditName = "Capex facility"
	req.BaseRateIndicator = domain.IndicatorKeyRate
	req.BaseRateValue = decimal.Zero
	return req
}

// storedCredit is fixedRequest as the repository would return it.
func storedCredit(id int64) (*domain.CreditObligation, domain.Schedule) {
	credit := fixedRequest().Credit()
	credit.ID = id
	credit.Normalize()
	sched := schedule.NewGenerator(0, zerolog.Nop()).Generate(schedule.ParamsFor(credit, 0))
	return credit, sched
}

type creditFixture struct {
	credits *mocks.MockCreditRepository
	rates   *mocks.MockRateRepository
	svc     *CreditService
}

func newCreditFixture(maxPeriods int) creditFixture {
	credits := new(mocks.MockCreditRepository)
	rates := new(mocks.MockRateRepository)
	defaults := map[domain.BaseRateIndicator]decimal.Decimal{
		domain.IndicatorKeyRate: dec("16"),
		domain.IndicatorRUONIA:  dec("15.5"),
	}
	src := NewRateSource(rates, defaults, zerolog.Nop())
	svc := NewCreditService(credits, src, schedule.NewGenerator(maxPeriods, zerolog.Nop()), zerolog.Nop())
	return creditFixture{credits: credits, rates: rates, svc: svc}
}

func TestCreditService_Create(t *testing.T) {
	tests := []struct {
		name       string
		request    func() *domain.CreateCreditRequest
		maxPeriods int
		setupMocks func(f creditFixture)
		wantCode   string
		check      func(t *testing.T, resp *domain.CreateCreditResponse)
	}{
		{
			name:    "fixed credit drops its spread",
			request: fixedRequest,
			setupMocks: func(f creditFixture) {
				f.credits.On("Create", mock.Anything,
					mock.MatchedBy(func(c *domain.CreditObligation) bool { return c.CreditSpread.IsZero() }),
					mock.MatchedBy(func(s domain.Schedule) bool { return len(s) == 12 }),
				).Return(nil).Once()
			},
			check: func(t *testing.T, resp *domain.CreateCreditResponse) {
				assert.True(t, resp.Credit.TotalRate().Equal(dec("12")))
				assert.Len(t, resp.Schedule, 12)
				assert.True(t, resp.Schedule[11].EndingBalance().IsZero())
			},
		},
		{
			name:    "floating credit takes the latest key rate",
			request: floatingRequest,
			setupMocks: func(f creditFixture) {
				f.rates.On("Latest", mock.Anything, domain.IndicatorKeyRate).
					Return(&domain.RatePoint{Indicator: domain.IndicatorKeyRate, EffectiveDate: date(2024, 12, 20), Rate: dec("21")}, nil)
				f.credits.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, resp *domain.CreateCreditResponse) {
				assert.True(t, resp.Credit.BaseRateValue.Equal(dec("21")))
				assert.True(t, resp.Credit.TotalRate().Equal(dec("23")))
				assert.True(t, resp.Schedule[0].InterestRate.Equal(dec("23")))
			},
		},
		{
			name:    "floating credit without history uses the configured default",
			request: floatingRequest,
			setupMocks: func(f creditFixture) {
				f.rates.On("Latest", mock.Anything, domain.IndicatorKeyRate).Return(nil, nil)
				f.credits.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, resp *domain.CreateCreditResponse) {
				assert.True(t, resp.Credit.BaseRateValue.Equal(dec("16")))
			},
		},
		{
			name: "invalid request",
			request: func() *domain.CreateCreditRequest {
				req := fixedRequest()
				req.CreditName = ""
				req.EndDate = date(2024, 1, 1)
				return req
			},
			setupMocks: func(f creditFixture) {},
			wantCode:   customError.ErrCodeValidationFailed,
		},
		{
			name:       "too many periods",
			request:    fixedRequest,
			maxPeriods: 6,
			setupMocks: func(f creditFixture) {},
			wantCode:   customError.ErrCodeScheduleNotGenerated,
		},
		{
			name:    "repository failure",
			request: fixedRequest,
			setupMocks: func(f creditFixture) {
				f.credits.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
			},
			wantCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCreditFixture(tt.maxPeriods)
			tt.setupMocks(f)

			resp, err := f.svc.Create(context.Background(), tt.request())

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, customError.CodeOf(err))
				assert.Nil(t, resp)
				if tt.wantCode != customError.ErrCodeDatabaseError {
					f.credits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, resp)
			f.credits.AssertExpectations(t)
		})
	}
}

func TestCreditService_CreateReportsEveryInvalidField(t *testing.T) {
	f := newCreditFixture(0)
	req := fixedRequest()
	req.CreditName = ""
	req.Currency = "GBP"

	_, err := f.svc.Create(context.Background(), req)

	var be *customError.BusinessError
	require.ErrorAs(t, err, &be)
	details, ok := be.Details.([]domain.ValidationError)
	require.True(t, ok)
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"credit_name", "currency"}, fields)
}

func TestCreditService_Update(t *testing.T) {
	f := newCreditFixture(0)
	existing, _ := storedCredit(5)
	existing.CreatedAt = date(2024, 11, 1)
	f.credits.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)

	req := fixedRequest()
	req.PaymentFrequency = domain.FrequencyQuarterly
	f.credits.On("Update", mock.Anything,
		mock.MatchedBy(func(c *domain.CreditObligation) bool { return c.ID == 5 && c.CreatedAt.Equal(existing.CreatedAt) }),
		mock.MatchedBy(func(s domain.Schedule) bool { return len(s) == 4 && s[0].CreditID == 5 }),
	).Return(nil).Once()

	resp, err := f.svc.Update(context.Background(), 5, req)
	require.NoError(t, err)
	assert.Len(t, resp.Schedule, 4)
	f.credits.AssertExpectations(t)
}

func TestCreditService_GetMissing(t *testing.T) {
	f := newCreditFixture(0)
	f.credits.On("GetByID", mock.Anything, int64(42)).Return(nil, customError.WrapCreditNotFound(42))

	_, err := f.svc.Get(context.Background(), 42)
	assert.Equal(t, customError.ErrCodeCreditNotFound, customError.CodeOf(err))

	_, err = f.svc.GetSchedule(context.Background(), 42)
	assert.Equal(t, customError.ErrCodeCreditNotFound, customError.CodeOf(err))
}

func TestCreditService_EditSchedule(t *testing.T) {
	balance := func(v string) *decimal.Decimal {
		d := dec(v)
		return &d
	}

	tests := []struct {
		name     string
		req      domain.ScheduleEditRequest
		wantCode string
		check    func(t *testing.T, resp *domain.ScheduleEditResponse)
	}{
		{
			name: "balance edit cascades forward",
			req:  domain.ScheduleEditRequest{Index: 3, OutstandingBalance: balance("500000")},
			check: func(t *testing.T, resp *domain.ScheduleEditResponse) {
				require.Len(t, resp.Schedule, 12)
				assert.True(t, resp.Schedule[2].OutstandingBalance.Equal(dec("1000000")))
				for _, e := range resp.Schedule[3:] {
					assert.True(t, e.OutstandingBalance.Equal(dec("500000")))
				}
				assert.Empty(t, resp.Errors)
			},
		},
		{
			name: "rising balance is a warning",
			req:  domain.ScheduleEditRequest{Index: 3, OutstandingBalance: balance("2000000")},
			check: func(t *testing.T, resp *domain.ScheduleEditResponse) {
				require.Len(t, resp.Errors, 1)
				assert.Equal(t, 3, resp.Errors[0].Index)
				assert.Equal(t, domain.SeverityWarning, resp.Errors[0].Severity)
				assert.False(t, domain.HasErrors(resp.Errors))
			},
		},
		{
			name: "non-positive balance is applied and reported",
			req:  domain.ScheduleEditRequest{Index: 11, OutstandingBalance: balance("0")},
			check: func(t *testing.T, resp *domain.ScheduleEditResponse) {
				assert.True(t, resp.Schedule[11].OutstandingBalance.IsZero())
				assert.True(t, domain.HasErrors(resp.Errors))
			},
		},
		{
			name: "shortened period is split",
			req: func() domain.ScheduleEditRequest {
				end := date(2025, 1, 15)
				return domain.ScheduleEditRequest{Index: 0, PeriodEndDate: &end}
			}(),
			check: func(t *testing.T, resp *domain.ScheduleEditResponse) {
				require.Len(t, resp.Schedule, 13)
				assert.Equal(t, date(2025, 1, 15), resp.Schedule[1].PeriodStartDate)
				assert.Equal(t, date(2025, 2, 1), resp.Schedule[1].PeriodEndDate)
				assert.Equal(t, 2, resp.Schedule[1].PeriodNumber)
			},
		},
		{
			name:     "index out of range",
			req:      domain.ScheduleEditRequest{Index: 12, OutstandingBalance: balance("1")},
			wantCode: customError.ErrCodeEditIndexOutOfRange,
		},
		{
			name:     "nothing to edit",
			req:      domain.ScheduleEditRequest{Index: 0},
			wantCode: customError.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCreditFixture(0)
			credit, sched := storedCredit(5)
			f.credits.On("GetByID", mock.Anything, int64(5)).Return(credit, nil)
			f.credits.On("GetSchedule", mock.Anything, int64(5)).Return(sched, nil)

			resp, err := f.svc.EditSchedule(context.Background(), 5, tt.req)
			f.credits.AssertNotCalled(t, "ReplaceSchedule", mock.Anything, mock.Anything, mock.Anything)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, customError.CodeOf(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, resp)
		})
	}
}

func TestCreditService_SaveSchedule(t *testing.T) {
	tests := []struct {
		name     string
		edit     func(s domain.Schedule) domain.Schedule
		wantCode string
	}{
		{
			name: "valid schedule replaces the stored one",
			edit: func(s domain.Schedule) domain.Schedule { return s },
		},
		{
			name: "period past the credit end blocks the save",
			edit: func(s domain.Schedule) domain.Schedule {
				s[len(s)-1].PeriodEndDate = date(2026, 2, 1)
				return s
			},
			wantCode: customError.ErrCodeInvalidSchedule,
		},
		{
			name:     "empty schedule blocks the save",
			edit:     func(domain.Schedule) domain.Schedule { return domain.Schedule{} },
			wantCode: customError.ErrCodeInvalidSchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCreditFixture(0)
			credit, sched := storedCredit(5)
			f.credits.On("GetByID", mock.Anything, int64(5)).Return(credit, nil)
			f.credits.On("ReplaceSchedule", mock.Anything, int64(5),
				mock.MatchedBy(func(s domain.Schedule) bool { return len(s) == 12 && s[11].PeriodNumber == 12 }),
			).Return(nil)

			resp, err := f.svc.SaveSchedule(context.Background(), 5, tt.edit(sched.Clone()))

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, customError.CodeOf(err))
				f.credits.AssertNotCalled(t, "ReplaceSchedule", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, resp.Errors)
			f.credits.AssertNumberOfCalls(t, "ReplaceSchedule", 1)
		})
	}
}

func TestCreditService_PortfolioSummary(t *testing.T) {
	f := newCreditFixture(0)
	fixed, fixedSchedule := storedCredit(1)
	floating := floatingRequest().Credit()
	floating.ID = 2
	floating.Currency = domain.CurrencyUSD
	floating.PrincipalAmount = dec("2000000")
	floating.BaseRateValue = dec("16")
	floating.PaymentFrequency = domain.FrequencyQuarterly

	f.credits.On("List", mock.Anything).Return([]*domain.CreditObligation{fixed, floating}, nil)
	f.credits.On("GetSchedules", mock.Anything, []int64{1, 2}).
		Return(map[int64]domain.Schedule{1: fixedSchedule}, nil)

	summary, err := f.svc.PortfolioSummary(context.Background())
	require.NoError(t, err)

	// the floating credit has no stored schedule: 2M at 18% for 365 days
	wantInterest := fixedSchedule.TotalInterest().Add(dec("360000"))
	assert.Equal(t, 2, summary.TotalCount)
	assert.True(t, summary.TotalPrincipal.Equal(dec("3200000")))
	assert.True(t, summary.TotalInterest.Equal(wantInterest), summary.TotalInterest.String())
	assert.True(t, summary.TotalPayments.Equal(dec("3200000").Add(wantInterest)))
	assert.True(t, summary.AverageRate.Equal(dec("15")))
	assert.True(t, summary.CurrencyBreakdown[domain.CurrencyRUB].Equal(dec("1200000")))
	assert.True(t, summary.CurrencyBreakdown[domain.CurrencyUSD].Equal(dec("2000000")))
	assert.Equal(t, 1, summary.FrequencyBreakdown[domain.FrequencyMonthly])
	assert.Equal(t, 1, summary.FrequencyBreakdown[domain.FrequencyQuarterly])
	assert.Equal(t, 2, summary.PaymentTypeBreakdown[domain.PaymentDifferentiated])
}

func TestCreditService_RecalculateFloatingSchedules(t *testing.T) {
	f := newCreditFixture(0)
	ctx := context.Background()

	fixed, _ := storedCredit(1)

	floating := floatingRequest().Credit()
	floating.ID = 2
	floating.BaseRateValue = dec("16")
	floatingSchedule := schedule.NewGenerator(0, zerolog.Nop()).Generate(schedule.ParamsFor(floating, 0))

	matured := floatingRequest().Credit()
	matured.ID = 3
	matured.EndDate = date(2025, 3, 1)

	f.credits.On("List", ctx).Return([]*domain.CreditObligation{fixed, floating, matured}, nil)
	f.rates.On("History", ctx, domain.IndicatorKeyRate).
		Return([]domain.RatePoint{{Indicator: domain.IndicatorKeyRate, EffectiveDate: date(2024, 12, 20), Rate: dec("20")}}, nil).Once()
	f.credits.On("GetSchedule", ctx, int64(2)).Return(floatingSchedule, nil)
	f.credits.On("ReplaceSchedule", ctx, int64(2), mock.MatchedBy(func(s domain.Schedule) bool {
		return len(s) == 12 && s[0].InterestRate.Equal(dec("22")) && s[11].InterestRate.Equal(dec("22"))
	})).Return(nil).Once()

	changed, err := f.svc.RecalculateFloatingSchedules(ctx, date(2025, 6, 15))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	f.credits.AssertExpectations(t)
	f.rates.AssertExpectations(t)
	f.credits.AssertNotCalled(t, "GetSchedule", ctx, int64(1))
	f.credits.AssertNotCalled(t, "GetSchedule", ctx, int64(3))
}

func TestCreditService_RecalculateSkipsUnchangedSchedules(t *testing.T) {
	f := newCreditFixture(0)
	ctx := context.Background()

	floating := floatingRequest().Credit()
	floating.ID = 2
	floating.BaseRateValue = dec("16")
	sched := schedule.NewGenerator(0, zerolog.Nop()).Generate(schedule.ParamsFor(floating, 0))

	f.credits.On("List", ctx).Return([]*domain.CreditObligation{floating}, nil)
	f.rates.On("History", ctx, domain.IndicatorKeyRate).
		Return([]domain.RatePoint{{Indicator: domain.IndicatorKeyRate, EffectiveDate: date(2024, 1, 1), Rate: dec("16")}}, nil)
	f.credits.On("GetSchedule", ctx, int64(2)).Return(sched, nil)

	changed, err := f.svc.RecalculateFloatingSchedules(ctx, date(2025, 6, 15))
	require.NoError(t, err)
	assert.Zero(t, changed)
	f.credits.AssertNotCalled(t, "ReplaceSchedule", mock.Anything, mock.Anything, mock.Anything)
}
