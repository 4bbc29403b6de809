package hedging

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

func TestAggregate_PicksLowestRate(t *testing.T) {
	instruments := []Instrument{
		Cap{Level: nd("18")},
		Swap{FixedRate: d("19.5")},
		Floor{Level: nd("12")},
	}

	rate, best := Aggregate(d("21"), instruments, d("2"), "")
	require.NotNil(t, best)
	assert.Equal(t, KindSwap, best.Kind())
	assert.True(t, d("19.5").Equal(rate))

	rate, best = Aggregate(d("21"), instruments, d("2"), KindCap)
	assert.Equal(t, KindCap, best.Kind())
	assert.True(t, d("20").Equal(rate))
}

func TestAggregate_NoCandidates(t *testing.T) {
	rate, best := Aggregate(d("21"), []Instrument{Floor{Level: nd("12")}}, d("2"), KindCollar)
	assert.Nil(t, best)
	assert.True(t, d("23").Equal(rate))
}

func TestHedgedRate_BlendsByCoverage(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Cap{Terms: Terms{HedgePercentage: d("50")}, Level: nd("18")}

	// half at 18+2, half at 22+2
	got := HedgedRate(c, d("22"), d("2"), today, today)
	assert.True(t, d("22").Equal(got), got.String())

	got = HedgedRate(c, d("22"), d("2"), today, today.AddDate(0, 0, -1))
	assert.True(t, d("24").Equal(got), "past dates stay unhedged")
}

func seriesPortfolio() []Position {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entry := func(balance string) domain.Schedule {
		return domain.Schedule{{
			PeriodNumber:       1,
			PeriodStartDate:    start,
			PeriodEndDate:      end,
			OutstandingBalance: d(balance),
		}}
	}

	keyRate := &domain.CreditObligation{
		ID: 1, StartDate: start, EndDate: end,
		BaseRateIndicator: domain.IndicatorKeyRate, BaseRateValue: d("21"), CreditSpread: d("2"),
	}
	fixed := &domain.CreditObligation{
		ID: 2, StartDate: start, EndDate: end,
		BaseRateIndicator: domain.IndicatorFixed, BaseRateValue: d("15"),
	}
	return []Position{
		{Credit: keyRate, Schedule: entry("3000"), Instruments: []Instrument{
			Cap{Terms: Terms{HedgePercentage: d("100"), TermMonths: 3}, Level: nd("18")},
		}},
		{Credit: fixed, Schedule: entry("1000")},
	}
}

func TestWeightedSeries_PerCredit(t *testing.T) {
	today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),  // before today
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),  // within the cap's term
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),  // after it expires
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),  // after maturity
	}
	opts := SeriesOptions{
		Today:  today,
		Mode:   ViewPerCredit,
		RateAt: func(domain.BaseRateIndicator, time.Time) (decimal.Decimal, bool) { return d("21"), true },
	}

	pts := WeightedSeries(seriesPortfolio(), dates, opts)
	require.Len(t, pts, 4)

	// (23*3000 + 15*1000) / 4000
	for _, pt := range pts[:3] {
		assert.True(t, d("21").Equal(pt.UnhedgedRate), pt.UnhedgedRate.String())
		assert.Equal(t, 2, pt.Credits)
	}
	assert.True(t, d("21").Equal(pts[0].HedgedRate))
	// (20*3000 + 15*1000) / 4000
	assert.True(t, d("18.75").Equal(pts[1].HedgedRate), pts[1].HedgedRate.String())
	assert.True(t, d("21").Equal(pts[2].HedgedRate))

	assert.True(t, pts[3].TotalBalance.IsZero())
	assert.True(t, pts[3].HedgedRate.IsZero())
}

func TestWeightedSeries_AggregateViewFiltersByIndicator(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	opts := SeriesOptions{
		Today:     date,
		Mode:      ViewAggregate,
		Indicator: domain.IndicatorFixed,
	}

	pts := WeightedSeries(seriesPortfolio(), []time.Time{date}, opts)
	require.Len(t, pts, 1)
	assert.Equal(t, 1, pts[0].Credits)
	assert.True(t, d("1000").Equal(pts[0].TotalBalance))
	assert.True(t, d("15").Equal(pts[0].UnhedgedRate))
}
