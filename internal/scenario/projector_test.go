package scenario

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/hedging"
)

func keyRateCredit() *domain.CreditObligation {
	return &domain.CreditObligation{
		ID:                1,
		CreditName:        "Revolver",
		PrincipalAmount:   d("1000000"),
		Currency:          domain.CurrencyRUB,
		StartDate:         date(2025, 1, 1),
		EndDate:           date(2026, 1, 1),
		BaseRateIndicator: domain.IndicatorKeyRate,
		BaseRateValue:     d("18"),
		CreditSpread:      d("2"),
		PaymentFrequency:  domain.FrequencyMonthly,
		PaymentType:       domain.PaymentBullet,
	}
}

func baseScenario() *domain.RateScenario {
	return &domain.RateScenario{
		ID:           1,
		ScenarioType: domain.ScenarioBase,
		Forecasts: []domain.RateForecast{
			forecast(date(2025, 1, 1), "20", domain.IndicatorKeyRate),
			forecast(date(2025, 7, 1), "22", domain.IndicatorKeyRate),
			forecast(date(2025, 7, 1), "9", domain.IndicatorRUONIA),
		},
	}
}

func newTestProjector() *Projector {
	return NewProjector(DefaultFallbackMultipliers(), zerolog.Nop())
}

func TestProject_FloatingUnhedged(t *testing.T) {
	p := newTestProjector().Project(Input{
		Credit:   keyRateCredit(),
		Scenario: baseScenario(),
		AsOf:     date(2025, 1, 1),
	})

	assert.Equal(t, 365, p.FutureDays)
	assert.True(t, d("21").Equal(p.ScenarioRate))
	assert.True(t, d("23").Equal(p.EffectiveRate))
	assert.True(t, d("230000").Equal(p.FutureInterest), p.FutureInterest.String())
	assert.True(t, p.PastInterest.IsZero())
	assert.True(t, d("230000").Equal(p.TotalInterest))
	assert.False(t, p.Fallback)
	assert.Nil(t, p.Chosen())
}

func TestProject_FixedIgnoresScenario(t *testing.T) {
	c := keyRateCredit()
	c.BaseRateIndicator = domain.IndicatorFixed
	c.BaseRateValue = d("15")
	c.Normalize()

	p := newTestProjector().Project(Input{
		Credit:      c,
		Scenario:    baseScenario(),
		AsOf:        date(2025, 7, 2),
		Instruments: []hedging.Instrument{hedging.Swap{FixedRate: d("1")}},
	})

	assert.Equal(t, 183, p.FutureDays)
	assert.True(t, d("75205.48").Equal(p.FutureInterest), p.FutureInterest.String())
	assert.True(t, d("74794.52").Equal(p.PastInterest), p.PastInterest.String())
	assert.True(t, d("150000").Equal(p.TotalInterest))
	assert.Empty(t, p.Instrument)
}

func TestProject_MaturedCreditHasNoFutureInterest(t *testing.T) {
	p := newTestProjector().Project(Input{
		Credit:   keyRateCredit(),
		Scenario: baseScenario(),
		AsOf:     date(2026, 2, 1),
	})

	assert.Zero(t, p.FutureDays)
	assert.True(t, p.FutureInterest.IsZero())
	assert.True(t, d("200000").Equal(p.PastInterest), p.PastInterest.String())
}

func TestProject_PastInterestFromCompletedPeriods(t *testing.T) {
	c := keyRateCredit()
	sched := domain.Schedule{
		{PeriodStartDate: date(2025, 1, 1), PeriodEndDate: date(2025, 7, 1), InterestAmount: d("99000")},
		{PeriodStartDate: date(2025, 7, 1), PeriodEndDate: date(2026, 1, 1), InterestAmount: d("101000")},
	}

	p := newTestProjector().Project(Input{Credit: c, Schedule: sched, Scenario: baseScenario(), AsOf: date(2025, 7, 1)})
	assert.True(t, d("99000").Equal(p.PastInterest))
}

func TestProject_CapHedge(t *testing.T) {
	capInst := hedging.Cap{
		Terms: hedging.Terms{Name: "Cap 18", Cost: d("10000"), CostType: domain.CostAnnual, HedgePercentage: d("100")},
		Level: decimal18(),
	}

	p := newTestProjector().Project(Input{
		Credit:      keyRateCredit(),
		Scenario:    baseScenario(),
		AsOf:        date(2025, 1, 1),
		Instruments: []hedging.Instrument{capInst},
	})

	assert.True(t, d("200000").Equal(p.FutureInterest), p.FutureInterest.String())
	assert.True(t, d("230000").Equal(p.UnhedgedInterest))
	assert.True(t, d("10000").Equal(p.HedgingPremium), p.HedgingPremium.String())
	assert.True(t, d("20").Equal(p.EffectiveRate), p.EffectiveRate.String())
	assert.True(t, d("210000").Equal(p.TotalInterest))
	assert.Equal(t, "Cap 18", p.Instrument)
	assert.Equal(t, hedging.KindCap, p.InstrumentKind)
}

func TestProject_PicksCheapestInstrument(t *testing.T) {
	instruments := []hedging.Instrument{
		hedging.Cap{Terms: hedging.Terms{HedgePercentage: d("100")}, Level: decimal18()},
		hedging.Swap{Terms: hedging.Terms{HedgePercentage: d("100")}, FixedRate: d("19.5")},
	}

	p := newTestProjector().Project(Input{
		Credit:      keyRateCredit(),
		Scenario:    baseScenario(),
		AsOf:        date(2025, 1, 1),
		Instruments: instruments,
	})

	require.NotNil(t, p.Chosen())
	assert.Equal(t, hedging.KindSwap, p.Chosen().Kind())
	assert.True(t, d("195000").Equal(p.FutureInterest), p.FutureInterest.String())
}

func TestProject_PartialCoverageWithinTerm(t *testing.T) {
	capInst := hedging.Cap{
		Terms: hedging.Terms{HedgePercentage: d("50"), TermMonths: 6},
		Level: decimal18(),
	}

	p := newTestProjector().Project(Input{
		Credit:      keyRateCredit(),
		Scenario:    baseScenario(),
		AsOf:        date(2025, 1, 1),
		Instruments: []hedging.Instrument{capInst},
	})

	// half the principal at 20% for the 181 days to July, everything else at 23%
	assert.True(t, d("222561.64").Equal(p.FutureInterest), p.FutureInterest.String())
}

func TestProject_UpfrontCapCost(t *testing.T) {
	upfront := func(level string) hedging.Instrument {
		return hedging.Cap{
			Terms: hedging.Terms{Cost: d("5000"), CostType: domain.CostUpfront, HedgePercentage: d("100")},
			Level: decimal.NewNullDecimal(d(level)),
		}
	}
	in := Input{Credit: keyRateCredit(), Scenario: baseScenario(), AsOf: date(2025, 1, 1)}

	in.Instruments = []hedging.Instrument{upfront("18")}
	p := newTestProjector().Project(in)
	assert.True(t, d("5000").Equal(p.UpfrontCost))
	assert.True(t, p.HedgingPremium.IsZero())

	in.Instruments = []hedging.Instrument{upfront("25")}
	p = newTestProjector().Project(in)
	assert.True(t, p.UpfrontCost.IsZero(), "scenario average never reaches the cap")
	assert.True(t, d("230000").Equal(p.FutureInterest))
}

func TestProject_FallbackWithoutForecasts(t *testing.T) {
	tests := []struct {
		scenarioType domain.ScenarioType
		want         string
	}{
		{domain.ScenarioOptimistic, "170000"},
		{domain.ScenarioPessimistic, "250000"},
		{domain.ScenarioStress, "210000"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scenarioType), func(t *testing.T) {
			p := newTestProjector().Project(Input{
				Credit:   keyRateCredit(),
				Scenario: &domain.RateScenario{ScenarioType: tt.scenarioType},
				AsOf:     date(2025, 1, 1),
			})
			assert.True(t, p.Fallback)
			// current interest is 1,000,000 at 20% for a year
			assert.True(t, d(tt.want).Equal(p.FutureInterest), p.FutureInterest.String())
			assert.True(t, d(tt.want).Equal(p.TotalInterest))
		})
	}
}

func decimal18() decimal.NullDecimal {
	return decimal.NewNullDecimal(d("18"))
}
