package scenario

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/hedging"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// FallbackMultipliers scale a credit's current interest when its scenario
// has no forecasts to project from.
type FallbackMultipliers struct {
	Optimistic  decimal.Decimal
	Pessimistic decimal.Decimal
	Other       decimal.Decimal
}

func DefaultFallbackMultipliers() FallbackMultipliers {
	return FallbackMultipliers{
		Optimistic:  decimal.RequireFromString("0.85"),
		Pessimistic: decimal.RequireFromString("1.25"),
		Other:       decimal.RequireFromString("1.05"),
	}
}

func (m FallbackMultipliers) For(t domain.ScenarioType) decimal.Decimal {
	switch t {
	case domain.ScenarioOptimistic:
		return m.Optimistic
	case domain.ScenarioPessimistic:
		return m.Pessimistic
	}
	return m.Other
}

type Input struct {
	Credit      *domain.CreditObligation
	Schedule    domain.Schedule
	Scenario    *domain.RateScenario
	AsOf        time.Time
	Instruments []hedging.Instrument
}

// Projection splits a credit's interest cost at AsOf into what has already
// accrued and what the scenario implies for the remaining term.
type Projection struct {
	CreditID         int64           `json:"credit_id"`
	PastInterest     decimal.Decimal `json:"past_interest"`
	FutureInterest   decimal.Decimal `json:"future_interest"`
	UnhedgedInterest decimal.Decimal `json:"unhedged_future_interest"`
	HedgingPremium   decimal.Decimal `json:"hedging_premium"`
	UpfrontCost      decimal.Decimal `json:"upfront_cost"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	ScenarioRate     decimal.Decimal `json:"scenario_rate"`
	EffectiveRate    decimal.Decimal `json:"effective_rate"`
	FutureDays       int             `json:"future_days"`
	Instrument       string          `json:"instrument,omitempty"`
	InstrumentKind   hedging.Kind    `json:"instrument_kind,omitempty"`
	Fallback         bool            `json:"fallback"`

	chosen hedging.Instrument
}

// Chosen returns the instrument the projection was hedged with, if any.
func (p Projection) Chosen() hedging.Instrument { return p.chosen }

// Cost is the future interest plus every hedging charge.
func (p Projection) Cost() decimal.Decimal {
	return p.FutureInterest.Add(p.HedgingPremium).Add(p.UpfrontCost)
}

type Projector struct {
	fallback FallbackMultipliers
	logger   zerolog.Logger
}

func NewProjector(fallback FallbackMultipliers, logger zerolog.Logger) *Projector {
	return &Projector{
		fallback: fallback,
		logger:   logger.With().Str("component", "scenario_projector").Logger(),
	}
}

// Project computes the projection for one credit. It never fails: a floating
// credit whose scenario has no forecasts is projected with a fixed multiplier
// on its current interest and flagged as a fallback.
func (p *Projector) Project(in Input) Projection {
	out := p.project(in)
	out.TotalInterest = out.PastInterest.Add(out.Cost())
	return out
}

func (p *Projector) project(in Input) Projection {
	c := in.Credit
	out := Projection{
		CreditID:         c.ID,
		PastInterest:     pastInterest(c, in.Schedule, in.AsOf),
		FutureInterest:   decimal.Zero,
		UnhedgedInterest: decimal.Zero,
		HedgingPremium:   decimal.Zero,
		UpfrontCost:      decimal.Zero,
		ScenarioRate:     c.BaseRateValue,
		EffectiveRate:    c.TotalRate(),
	}
	if !c.EndDate.After(in.AsOf) {
		return out
	}
	from := utils.MaxTime(in.AsOf, c.StartDate)
	out.FutureDays = utils.DaysBetween(from, c.EndDate)

	if !c.BaseRateIndicator.IsFloating() {
		out.FutureInterest = utils.Interest(c.PrincipalAmount, c.BaseRateValue, out.FutureDays).Round(2)
		out.UnhedgedInterest = out.FutureInterest
		return out
	}

	var forecasts []domain.RateForecast
	scenarioType := domain.ScenarioBase
	if in.Scenario != nil {
		forecasts = ForIndicator(in.Scenario.Forecasts, c.BaseRateIndicator)
		scenarioType = in.Scenario.ScenarioType
	}
	if len(forecasts) == 0 {
		m := p.fallback.For(scenarioType)
		p.logger.Warn().
			Int64("credit_id", c.ID).
			Str("scenario_type", string(scenarioType)).
			Str("multiplier", m.String()).
			Msg("Scenario has no forecasts, using multiplier fallback")
		out.PastInterest = decimal.Zero
		out.FutureInterest = c.InterestAmount(in.Schedule).Mul(m).Round(2)
		out.UnhedgedInterest = out.FutureInterest
		out.Fallback = true
		return out
	}

	avg := NewCurve(forecasts).Average()
	out.ScenarioRate = avg.Round(4)
	unhedgedRate := avg.Add(c.CreditSpread)
	out.EffectiveRate = unhedgedRate.Round(4)
	out.UnhedgedInterest = utils.Interest(c.PrincipalAmount, unhedgedRate, out.FutureDays).Round(2)
	out.FutureInterest = out.UnhedgedInterest

	// Each instrument is priced over the remaining term; the cheapest wins.
	first := true
	for _, inst := range in.Instruments {
		h := hedge(c, inst, avg, from, in.AsOf, out.FutureDays)
		if first || h.cost().LessThan(out.Cost()) {
			out.FutureInterest = h.interest
			out.HedgingPremium = h.premium
			out.UpfrontCost = h.upfront
			out.EffectiveRate = h.rate
			out.Instrument = inst.Details().Name
			out.InstrumentKind = inst.Kind()
			out.chosen = inst
			first = false
		}
	}
	return out
}

type hedgeResult struct {
	interest, premium, upfront, rate decimal.Decimal
}

func (h hedgeResult) cost() decimal.Decimal {
	return h.interest.Add(h.premium).Add(h.upfront)
}

// hedge prices inst over the future days. Only the days inside the
// instrument's term and only its covered share of principal take the hedged
// rate; the remainder accrues at the scenario rate.
func hedge(c *domain.CreditObligation, inst hedging.Instrument, avg decimal.Decimal, from, asOf time.Time, futureDays int) hedgeResult {
	terms := inst.Details()
	spread := c.CreditSpread
	unhedgedRate := avg.Add(spread)
	effect := inst.Apply(avg)
	hedgedRate := hedging.ComposeRate(effect, spread, inst.Kind())

	hedgedDays := terms.ActiveDays(asOf, from, c.EndDate)
	if hedgedDays > futureDays {
		hedgedDays = futureDays
	}
	cov := terms.Coverage()
	covered := c.PrincipalAmount.Mul(cov)
	uncovered := c.PrincipalAmount.Sub(covered)

	interest := utils.Interest(covered, hedgedRate, hedgedDays).
		Add(utils.Interest(uncovered, unhedgedRate, hedgedDays)).
		Add(utils.Interest(c.PrincipalAmount, unhedgedRate, futureDays-hedgedDays))

	res := hedgeResult{
		interest: interest.Round(2),
		premium:  effect.Premium.Mul(utils.YearFraction(hedgedDays)).Round(2),
		upfront:  decimal.Zero,
		rate:     unhedgedRate,
	}
	if futureDays > 0 {
		// day and coverage weighted all-in rate
		res.rate = interest.Mul(decimal.NewFromInt(100 * utils.DaysInYear)).
			Div(c.PrincipalAmount.Mul(decimal.NewFromInt(int64(futureDays))))
	}
	res.rate = res.rate.Round(4)

	if terms.CostType == domain.CostUpfront && hedgedDays > 0 {
		switch v := inst.(type) {
		case hedging.Cap:
			if v.Level.Valid && avg.GreaterThan(v.Level.Decimal) {
				res.upfront = terms.Cost
			}
		default:
			res.upfront = terms.Cost
		}
	}
	return res
}

// pastInterest is the interest already accrued at asOf: scheduled interest of
// completed periods, or simple interest from the start when no schedule exists.
func pastInterest(c *domain.CreditObligation, s domain.Schedule, asOf time.Time) decimal.Decimal {
	if len(s) > 0 {
		sum := decimal.Zero
		for _, e := range s {
			if !e.PeriodEndDate.After(asOf) {
				sum = sum.Add(e.InterestAmount)
			}
		}
		return sum
	}
	if !asOf.After(c.StartDate) {
		return decimal.Zero
	}
	days := utils.DaysBetween(c.StartDate, utils.MinTime(asOf, c.EndDate))
	return utils.Interest(c.PrincipalAmount, c.TotalRate(), days).Round(2)
}
