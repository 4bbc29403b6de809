package hedging

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
)

// Aggregate returns the lowest all-in rate among instruments of kind (empty
// kind means any) and the instrument that produced it. With no candidate the
// unhedged rate base+spread is returned with a nil instrument.
func Aggregate(baseRate decimal.Decimal, instruments []Instrument, spread decimal.Decimal, kind Kind) (decimal.Decimal, Instrument) {
	best := baseRate.Add(spread)
	var chosen Instrument
	for _, inst := range instruments {
		if kind != "" && inst.Kind() != kind {
			continue
		}
		rate := ComposeRate(inst.Apply(baseRate), spread, inst.Kind())
		if chosen == nil || rate.LessThan(best) {
			best = rate
			chosen = inst
		}
	}
	return best, chosen
}

// HedgedRate blends the instrument's all-in rate with the unhedged rate by
// the instrument's coverage. Outside the instrument's active window the
// unhedged rate is returned unchanged.
func HedgedRate(inst Instrument, baseRate, spread decimal.Decimal, today, date time.Time) decimal.Decimal {
	unhedged := baseRate.Add(spread)
	terms := inst.Details()
	if !terms.ActiveOn(today, date) {
		return unhedged
	}
	hedged := ComposeRate(inst.Apply(baseRate), spread, inst.Kind())
	cov := terms.Coverage()
	return hedged.Mul(cov).Add(unhedged.Mul(decimal.NewFromInt(1).Sub(cov)))
}

type ViewMode string

const (
	ViewAggregate ViewMode = "aggregate"
	ViewPerCredit ViewMode = "per_credit"
)

// Position is one credit with its schedule and the instruments hedging it.
type Position struct {
	Credit      *domain.CreditObligation
	Schedule    domain.Schedule
	Instruments []Instrument
}

// SeriesOptions controls WeightedSeries.
type SeriesOptions struct {
	Today time.Time
	Mode  ViewMode
	// Indicator restricts the aggregate view to credits on the same
	// reference rate. Empty admits every credit.
	Indicator domain.BaseRateIndicator
	// RateAt supplies the projected reference rate for floating credits.
	// When it reports false the credit's own base rate is used.
	RateAt func(indicator domain.BaseRateIndicator, date time.Time) (decimal.Decimal, bool)
}

type SeriesPoint struct {
	Date         time.Time       `json:"date"`
	UnhedgedRate decimal.Decimal `json:"unhedged_rate"`
	HedgedRate   decimal.Decimal `json:"hedged_rate"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Credits      int             `json:"credits"`
}

func (o SeriesOptions) eligible(c *domain.CreditObligation) bool {
	if o.Mode == ViewPerCredit || o.Indicator == "" {
		return true
	}
	return c.BaseRateIndicator == o.Indicator
}

func (o SeriesOptions) baseRate(c *domain.CreditObligation, date time.Time) decimal.Decimal {
	if !c.BaseRateIndicator.IsFloating() || o.RateAt == nil {
		return c.BaseRateValue
	}
	if rate, ok := o.RateAt(c.BaseRateIndicator, date); ok {
		return rate
	}
	return c.BaseRateValue
}

// WeightedSeries computes balance-weighted unhedged and hedged rates over
// dates. A credit with zero balance on a date does not contribute to it.
// Each credit is hedged with whichever of its instruments gives the lowest
// rate on that date.
func WeightedSeries(positions []Position, dates []time.Time, opts SeriesOptions) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(dates))
	for _, date := range dates {
		pt := SeriesPoint{Date: date, UnhedgedRate: decimal.Zero, HedgedRate: decimal.Zero, TotalBalance: decimal.Zero}
		unhedgedSum, hedgedSum := decimal.Zero, decimal.Zero

		for _, pos := range positions {
			if pos.Credit == nil || !opts.eligible(pos.Credit) {
				continue
			}
			balance := schedule.BalanceAt(pos.Credit, pos.Schedule, date)
			if !balance.IsPositive() {
				continue
			}
			base := opts.baseRate(pos.Credit, date)
			spread := decimal.Zero
			if pos.Credit.BaseRateIndicator.IsFloating() {
				spread = pos.Credit.CreditSpread
			}
			unhedged := base.Add(spread)
			hedged := unhedged
			for _, inst := range pos.Instruments {
				if r := HedgedRate(inst, base, spread, opts.Today, date); r.LessThan(hedged) {
					hedged = r
				}
			}

			unhedgedSum = unhedgedSum.Add(unhedged.Mul(balance))
			hedgedSum = hedgedSum.Add(hedged.Mul(balance))
			pt.TotalBalance = pt.TotalBalance.Add(balance)
			pt.Credits++
		}

		if pt.TotalBalance.IsPositive() {
			pt.UnhedgedRate = unhedgedSum.Div(pt.TotalBalance).Round(4)
			pt.HedgedRate = hedgedSum.Div(pt.TotalBalance).Round(4)
		}
		out = append(out, pt)
	}
	return out
}
