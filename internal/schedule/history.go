package schedule

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// RateHistory is a sorted series of reference rate changes.
type RateHistory []domain.RatePoint

// NewRateHistory sorts points by effective date.
func NewRateHistory(points []domain.RatePoint) RateHistory {
	h := make(RateHistory, len(points))
	copy(h, points)
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].EffectiveDate.Before(h[j].EffectiveDate)
	})
	return h
}

// RateOn returns the rate in effect on date.
func (h RateHistory) RateOn(date time.Time) (decimal.Decimal, bool) {
	i := sort.Search(len(h), func(i int) bool {
		return h[i].EffectiveDate.After(date)
	})
	if i == 0 {
		return decimal.Zero, false
	}
	return h[i-1].Rate, true
}

// Latest returns the most recent rate.
func (h RateHistory) Latest() (decimal.Decimal, bool) {
	if len(h) == 0 {
		return decimal.Zero, false
	}
	return h[len(h)-1].Rate, true
}

// AverageOver returns the day-weighted average rate over [start, end].
// Days before the first known rate are not counted.
func (h RateHistory) AverageOver(start, end time.Time) (decimal.Decimal, bool) {
	total := utils.DaysBetween(start, end)
	if total <= 0 {
		return h.RateOn(start)
	}

	weighted := decimal.Zero
	weight := 0
	cursor := start
	for cursor.Before(end) {
		rate, ok := h.RateOn(cursor)
		next := h.nextChange(cursor, end)
		if ok {
			days := utils.DaysBetween(cursor, next)
			weighted = weighted.Add(rate.Mul(decimal.NewFromInt(int64(days))))
			weight += days
		}
		cursor = next
	}
	if weight == 0 {
		return decimal.Zero, false
	}
	return weighted.Div(decimal.NewFromInt(int64(weight))), true
}

func (h RateHistory) nextChange(after, limit time.Time) time.Time {
	i := sort.Search(len(h), func(i int) bool {
		return h[i].EffectiveDate.After(after)
	})
	if i < len(h) && h[i].EffectiveDate.Before(limit) {
		return h[i].EffectiveDate
	}
	return limit
}

// RecalculateWithHistory reprices a floating-rate schedule against actual
// reference rates. Periods that started on or before today take the
// day-weighted average base rate over the period; later periods take the
// latest known rate. Periods without any rate data keep their stored rate.
// The returned count is the number of repriced periods.
func RecalculateWithHistory(s domain.Schedule, history RateHistory, spread decimal.Decimal, today time.Time, logger zerolog.Logger) (domain.Schedule, int) {
	out := s.Clone()
	updated := 0
	for i := range out {
		e := &out[i]

		var base decimal.Decimal
		var ok bool
		if e.PeriodStartDate.After(today) {
			base, ok = history.Latest()
		} else {
			base, ok = history.AverageOver(e.PeriodStartDate, e.PeriodEndDate)
		}
		if !ok {
			logger.Warn().
				Int("period", e.PeriodNumber).
				Time("start", e.PeriodStartDate).
				Msg("no reference rate data for period, keeping stored rate")
			continue
		}

		e.InterestRate = base.Add(spread).Round(4)
		e.InterestAmount = utils.Interest(e.OutstandingBalance, e.InterestRate, e.PeriodDays).Round(2)
		e.TotalPayment = e.InterestAmount.Add(e.PrincipalAmount)
		updated++
	}
	return out, updated
}
