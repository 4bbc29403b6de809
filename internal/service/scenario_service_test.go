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
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/tests/mocks"
)

func TestScenarioService_ListMergesPublicAndOwn(t *testing.T) {
	repo := new(mocks.MockScenarioRepository)
	svc := NewScenarioService(repo, nil, zerolog.Nop())

	repo.On("ListPublic", mock.Anything).Return([]domain.RateScenario{
		{ID: 1, Name: "Baseline"},
		{ID: 4, Name: "Stress"},
	}, nil)
	repo.On("ListByOwner", mock.Anything, int64(9)).Return([]domain.RateScenario{
		{ID: 4, OwnerID: 9, Name: "Stress (mine)"},
		{ID: 7, OwnerID: 9, Name: "Soft landing"},
	}, nil)

	got, err := svc.List(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 4, 7}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Stress (mine)", got[1].Name)

	public, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	repo.AssertNumberOfCalls(t, "ListByOwner", 1)
}

func TestScenarioService_ListUsesCache(t *testing.T) {
	repo := new(mocks.MockScenarioRepository)
	cache := new(mocks.MockScenarioCache)
	svc := NewScenarioService(repo, cache, zerolog.Nop())

	public := []domain.RateScenario{{ID: 1, Name: "Baseline"}}
	own := []domain.RateScenario{{ID: 2, OwnerID: 9, Name: "Mine"}}
	cache.On("Get", mock.Anything, int64(0)).Return(public, true)
	cache.On("Get", mock.Anything, int64(9)).Return(nil, false)
	repo.On("ListByOwner", mock.Anything, int64(9)).Return(own, nil).Once()
	cache.On("Set", mock.Anything, int64(9), own).Once()

	got, err := svc.List(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertNotCalled(t, "ListPublic", mock.Anything)
	cache.AssertExpectations(t)
}

func TestScenarioService_ListDatabaseFailure(t *testing.T) {
	repo := new(mocks.MockScenarioRepository)
	svc := NewScenarioService(repo, nil, zerolog.Nop())
	repo.On("ListPublic", mock.Anything).Return(nil, errors.New("timeout"))

	_, err := svc.List(context.Background(), 0)
	assert.Equal(t, customError.ErrCodeDatabaseError, customError.CodeOf(err))
}

func TestScenarioService_Create(t *testing.T) {
	valid := func() *domain.CreateScenarioRequest {
		return &domain.CreateScenarioRequest{
			OwnerID:      9,
			Name:         "Easing cycle",
			ScenarioType: domain.ScenarioOptimistic,
			Forecasts: []domain.RateForecast{
				{ForecastDate: date(2025, 6, 1), RateValue: dec("19"), Indicator: domain.IndicatorKeyRate},
				{ForecastDate: date(2025, 12, 1), RateValue: dec("16")},
			},
		}
	}

	t.Run("stores and invalidates the owner's cache", func(t *testing.T) {
		repo := new(mocks.MockScenarioRepository)
		cache := new(mocks.MockScenarioCache)
		svc := NewScenarioService(repo, cache, zerolog.Nop())

		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.RateScenario) bool {
			return s.OwnerID == 9 && len(s.Forecasts) == 2
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.RateScenario).ID = 11
		}).Return(nil).Once()
		cache.On("Invalidate", mock.Anything, []int64{9}).Return(nil).Once()

		sc, err := svc.Create(context.Background(), valid())
		require.NoError(t, err)
		assert.Equal(t, int64(11), sc.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache failure does not fail the create", func(t *testing.T) {
		repo := new(mocks.MockScenarioRepository)
		cache := new(mocks.MockScenarioCache)
		svc := NewScenarioService(repo, cache, zerolog.Nop())
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		cache.On("Invalidate", mock.Anything, []int64{9}).Return(errors.New("redis down"))

		_, err := svc.Create(context.Background(), valid())
		assert.NoError(t, err)
	})

	t.Run("invalid forecast", func(t *testing.T) {
		repo := new(mocks.MockScenarioRepository)
		svc := NewScenarioService(repo, nil, zerolog.Nop())
		req := valid()
		req.Forecasts[1].RateValue = dec("-1")
		req.ScenarioType = "WHATEVER"

		_, err := svc.Create(context.Background(), req)
		assert.Equal(t, customError.ErrCodeValidationFailed, customError.CodeOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestScenarioService_GetHidesOtherOwners(t *testing.T) {
	repo := new(mocks.MockScenarioRepository)
	svc := NewScenarioService(repo, nil, zerolog.Nop())
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.RateScenario{ID: 7, OwnerID: 9}, nil)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.RateScenario{ID: 1}, nil)

	_, err := svc.Get(context.Background(), 3, 7)
	assert.Equal(t, customError.ErrCodeScenarioNotFound, customError.CodeOf(err))

	sc, err := svc.Get(context.Background(), 9, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sc.ID)

	_, err = svc.Get(context.Background(), 3, 1)
	assert.NoError(t, err)
}

func TestInstrumentService_Create(t *testing.T) {
	tests := []struct {
		name     string
		def      domain.InstrumentDefinition
		wantCode string
		wantType string
	}{
		{
			name: "swap alias is stored as IRS",
			def: domain.InstrumentDefinition{Name: "5y payer swap", Type: "swap", Parameters: domain.InstrumentParameters{
				FixedRate:       decimal.NewNullDecimal(dec("17.5")),
				HedgePercentage: dec("100"),
			}},
			wantType: "IRS",
		},
		{
			name: "collar with inverted bounds",
			def: domain.InstrumentDefinition{Name: "Collar", Type: "COLLAR", Parameters: domain.InstrumentParameters{
				Cap:   decimal.NewNullDecimal(dec("15")),
				Floor: decimal.NewNullDecimal(dec("18")),
			}},
			wantCode: customError.ErrCodeInvalidInstrument,
		},
		{
			name:     "missing name",
			def:      domain.InstrumentDefinition{Type: "CAP", Parameters: domain.InstrumentParameters{Cap: decimal.NewNullDecimal(dec("18"))}},
			wantCode: customError.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockInstrumentRepository)
			svc := NewInstrumentService(repo, zerolog.Nop())
			repo.On("Create", mock.Anything, mock.Anything).Return(nil)

			def := tt.def
			got, err := svc.Create(context.Background(), &def)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, customError.CodeOf(err))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, domain.CostAnnual, got.Parameters.CostType)
		})
	}
}

func TestInstrumentService_Load(t *testing.T) {
	repo := new(mocks.MockInstrumentRepository)
	svc := NewInstrumentService(repo, zerolog.Nop())

	insts, err := svc.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, insts)
	repo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)

	repo.On("GetByIDs", mock.Anything, []int64{3}).Return(nil, customError.WrapInstrumentNotFound(3))
	_, err = svc.Load(context.Background(), []int64{3})
	assert.Equal(t, customError.ErrCodeInstrumentNotFound, customError.CodeOf(err))
}

func TestRateSource(t *testing.T) {
	ctx := context.Background()

	t.Run("fixed needs no rate", func(t *testing.T) {
		repo := new(mocks.MockRateRepository)
		src := NewRateSource(repo, nil, zerolog.Nop())
		rate, err := src.Current(ctx, domain.IndicatorFixed)
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
		repo.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything)
	})

	t.Run("record normalises the date", func(t *testing.T) {
		repo := new(mocks.MockRateRepository)
		src := NewRateSource(repo, nil, zerolog.Nop())
		repo.On("Add", ctx, mock.MatchedBy(func(p domain.RatePoint) bool {
			return p.EffectiveDate.Equal(date(2025, 2, 14))
		})).Return(nil).Once()

		err := src.Record(ctx, domain.RatePoint{
			Indicator:     domain.IndicatorRUONIA,
			EffectiveDate: date(2025, 2, 14).Add(15 * time.Hour),
			Rate:          dec("20.93"),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("record rejects fixed", func(t *testing.T) {
		repo := new(mocks.MockRateRepository)
		src := NewRateSource(repo, nil, zerolog.Nop())
		err := src.Record(ctx, domain.RatePoint{Indicator: domain.IndicatorFixed, EffectiveDate: date(2025, 2, 14), Rate: dec("10")})
		assert.Equal(t, customError.ErrCodeValidationFailed, customError.CodeOf(err))
	})

	t.Run("history is sorted", func(t *testing.T) {
		repo := new(mocks.MockRateRepository)
		src := NewRateSource(repo, nil, zerolog.Nop())
		repo.On("History", ctx, domain.IndicatorKeyRate).Return([]domain.RatePoint{
			{Indicator: domain.IndicatorKeyRate, EffectiveDate: date(2024, 12, 20), Rate: dec("21")},
			{Indicator: domain.IndicatorKeyRate, EffectiveDate: date(2024, 7, 29), Rate: dec("18")},
		}, nil)

		h, err := src.History(ctx, domain.IndicatorKeyRate)
		require.NoError(t, err)
		latest, ok := h.Latest()
		require.True(t, ok)
		assert.True(t, latest.Equal(dec("21")))
	})
}
