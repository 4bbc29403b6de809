package hedging

import "github.com/shopspring/decimal"

var maxCombinedEffectiveness = decimal.RequireFromString("0.95")

// DefaultEffectiveness is the share of rate risk an instrument of kind is
// assumed to remove when no measured figure exists.
func (k Kind) DefaultEffectiveness() decimal.Decimal {
	switch k {
	case KindSwap:
		return decimal.RequireFromString("0.85")
	case KindCollar:
		return decimal.RequireFromString("0.7")
	case KindCap:
		return decimal.RequireFromString("0.6")
	case KindFloor:
		return decimal.RequireFromString("0.4")
	}
	return decimal.Zero
}

// CombinedEffectiveness stacks effectiveness values so each instrument only
// hedges what the previous ones left open. The result never exceeds 0.95.
func CombinedEffectiveness(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	one := decimal.NewFromInt(1)
	for _, v := range values {
		total = total.Add(v.Mul(one.Sub(total)))
	}
	return decimal.Min(total, maxCombinedEffectiveness)
}

type ScenarioEffect struct {
	OriginalImpact    decimal.Decimal `json:"original_impact"`
	HedgedImpact      decimal.Decimal `json:"hedged_impact"`
	Benefit           decimal.Decimal `json:"hedging_benefit"`
	BenefitPercentage decimal.Decimal `json:"hedging_benefit_percentage"`
	EffectiveRatio    decimal.Decimal `json:"effective_hedge_ratio"`
}

// EffectOnScenario shrinks the move from current to scenarioImpact by the
// hedge effectiveness.
func EffectOnScenario(scenarioImpact, current, effectiveness decimal.Decimal) ScenarioEffect {
	diff := scenarioImpact.Sub(current)
	hedgedDiff := diff.Mul(decimal.NewFromInt(1).Sub(effectiveness))
	benefit := diff.Abs().Sub(hedgedDiff.Abs())

	pct := decimal.Zero
	if !diff.IsZero() {
		pct = benefit.Div(diff.Abs()).Mul(hundred).Round(2)
	}
	return ScenarioEffect{
		OriginalImpact:    scenarioImpact,
		HedgedImpact:      current.Add(hedgedDiff).Round(2),
		Benefit:           benefit.Round(2),
		BenefitPercentage: pct,
		EffectiveRatio:    effectiveness,
	}
}
