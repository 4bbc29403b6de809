package scenario

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func forecast(t time.Time, rate string, ind domain.BaseRateIndicator) domain.RateForecast {
	return domain.RateForecast{ForecastDate: t, RateValue: d(rate), Indicator: ind}
}

func TestCurve_RateAt(t *testing.T) {
	c := NewCurve([]domain.RateForecast{
		forecast(date(2025, 7, 1), "22", domain.IndicatorKeyRate),
		forecast(date(2025, 1, 1), "20", domain.IndicatorKeyRate),
	})

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"on first point", date(2025, 1, 1), "20"},
		{"interpolated", date(2025, 4, 1), "20.9945"},
		{"on last point", date(2025, 7, 1), "22"},
		{"held before range", date(2024, 6, 1), "20"},
		{"held after range", date(2026, 6, 1), "22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.RateAt(tt.at)
			assert.True(t, d(tt.want).Equal(got), got.String())
		})
	}
}

func TestCurve_Statistics(t *testing.T) {
	c := NewCurve([]domain.RateForecast{
		forecast(date(2025, 1, 1), "20", ""),
		forecast(date(2025, 7, 1), "22", ""),
	})
	assert.True(t, d("21").Equal(c.Average()))
	assert.InDelta(t, 1.41421, c.StdDev(), 1e-5)
}

func TestCurve_SameDatePointsAreAveraged(t *testing.T) {
	c := NewCurve([]domain.RateForecast{
		forecast(date(2025, 1, 1), "20", ""),
		forecast(date(2025, 1, 1), "22", ""),
		forecast(date(2025, 7, 1), "30", ""),
	})
	assert.True(t, d("21").Equal(c.RateAt(date(2025, 1, 1))))
	assert.True(t, d("24").Equal(c.Average()), "average counts every forecast")
}

func TestCurve_SinglePointAndEmpty(t *testing.T) {
	single := NewCurve([]domain.RateForecast{forecast(date(2025, 1, 1), "19.5", "")})
	assert.True(t, d("19.5").Equal(single.RateAt(date(2030, 1, 1))))
	assert.Zero(t, single.StdDev())

	empty := NewCurve(nil)
	assert.True(t, empty.Empty())
	assert.True(t, empty.RateAt(date(2025, 1, 1)).IsZero())
	assert.True(t, empty.Average().IsZero())
}

func TestForIndicator(t *testing.T) {
	all := []domain.RateForecast{
		forecast(date(2025, 1, 1), "10", domain.IndicatorRUONIA),
		forecast(date(2025, 1, 1), "20", domain.IndicatorKeyRate),
		forecast(date(2025, 4, 1), "21", ""),
	}

	assert.Len(t, ForIndicator(all, domain.IndicatorKeyRate), 2)
	assert.Len(t, ForIndicator(all[:1], domain.IndicatorKeyRate), 1, "falls back to every forecast")
}
