// Package scenario projects future interest under programmed rate scenarios.
package scenario

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// Curve is a rate path built from sparse forecast points. Between points the
// rate is linearly interpolated; outside them it is held at the nearest end.
type Curve struct {
	values []decimal.Decimal
	xs     []float64
	ys     []float64
	pl     *interp.PiecewiseLinear
}

func dayNumber(t time.Time) float64 {
	return float64(t.Unix()) / 86400
}

// NewCurve builds a curve from forecasts. Points sharing a date are averaged
// so the interpolation grid stays strictly increasing.
func NewCurve(forecasts []domain.RateForecast) Curve {
	c := Curve{values: make([]decimal.Decimal, 0, len(forecasts))}
	if len(forecasts) == 0 {
		return c
	}

	sorted := make([]domain.RateForecast, len(forecasts))
	copy(sorted, forecasts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ForecastDate.Before(sorted[j].ForecastDate)
	})

	var sum float64
	var n int
	for i, f := range sorted {
		c.values = append(c.values, f.RateValue)
		sum += f.RateValue.InexactFloat64()
		n++
		last := i == len(sorted)-1 || !sorted[i+1].ForecastDate.Equal(f.ForecastDate)
		if last {
			c.xs = append(c.xs, dayNumber(f.ForecastDate))
			c.ys = append(c.ys, sum/float64(n))
			sum, n = 0, 0
		}
	}

	if len(c.xs) > 1 {
		pl := &interp.PiecewiseLinear{}
		if err := pl.Fit(c.xs, c.ys); err == nil {
			c.pl = pl
		}
	}
	return c
}

// ForIndicator keeps the forecasts for indicator. Forecasts without an
// indicator apply to any. When nothing matches, every forecast is kept.
func ForIndicator(forecasts []domain.RateForecast, indicator domain.BaseRateIndicator) []domain.RateForecast {
	var out []domain.RateForecast
	for _, f := range forecasts {
		if f.Indicator == "" || f.Indicator == indicator {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return forecasts
	}
	return out
}

func (c Curve) Empty() bool { return len(c.values) == 0 }

// RateAt returns the interpolated rate on date, rounded to 4 places.
func (c Curve) RateAt(date time.Time) decimal.Decimal {
	switch {
	case len(c.ys) == 0:
		return decimal.Zero
	case c.pl == nil:
		return decimal.NewFromFloat(c.ys[0]).Round(4)
	}
	return decimal.NewFromFloat(c.pl.Predict(dayNumber(date))).Round(4)
}

// Average is the plain mean of every forecast value.
func (c Curve) Average() decimal.Decimal {
	if len(c.values) == 0 {
		return decimal.Zero
	}
	return decimal.Avg(c.values[0], c.values[1:]...)
}

// StdDev is the sample standard deviation of the forecast values.
func (c Curve) StdDev() float64 {
	if len(c.values) < 2 {
		return 0
	}
	fs := make([]float64, len(c.values))
	for i, v := range c.values {
		fs[i] = v.InexactFloat64()
	}
	return stat.StdDev(fs, nil)
}
