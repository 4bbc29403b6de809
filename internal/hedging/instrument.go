// Package hedging applies interest-rate hedging instruments to projected
// rates and aggregates hedged rates across credits.
package hedging

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

type Kind string

const (
	KindCap       Kind = "CAP"
	KindFloor     Kind = "FLOOR"
	KindFloorSell Kind = "FLOOR_SELL"
	KindCollar    Kind = "COLLAR"
	KindSwap      Kind = "IRS"
)

var hundred = decimal.NewFromInt(100)

// Terms are the commercial terms every instrument carries.
type Terms struct {
	ID              int64
	Name            string
	Cost            decimal.Decimal
	CostType        domain.CostType
	HedgePercentage decimal.Decimal // share of principal covered, 0-100
	TermMonths      int             // months from today; 0 means open-ended
}

// Coverage returns the hedged share of principal as a fraction.
func (t Terms) Coverage() decimal.Decimal {
	return t.HedgePercentage.Div(hundred)
}

// ActiveOn reports whether the instrument affects date. Dates before today
// are never hedged, and nothing is hedged past the instrument's term.
func (t Terms) ActiveOn(today, date time.Time) bool {
	if date.Before(today) {
		return false
	}
	if t.TermMonths <= 0 {
		return true
	}
	return date.Before(utils.AddMonths(today, t.TermMonths))
}

// ActiveDays returns how many of the days in [from, to) the instrument covers.
func (t Terms) ActiveDays(today, from, to time.Time) int {
	start := utils.MaxTime(today, from)
	end := to
	if t.TermMonths > 0 {
		end = utils.MinTime(end, utils.AddMonths(today, t.TermMonths))
	}
	if !end.After(start) {
		return 0
	}
	return utils.DaysBetween(start, end)
}

func (t Terms) annualPremium() decimal.Decimal {
	if t.CostType == domain.CostAnnual {
		return t.Cost
	}
	return decimal.Zero
}

// Effect is the outcome of applying an instrument to a base rate.
//
// Premium is the annual cash premium (negative when received). RatePremium
// is added to the rate in percentage points; it carries the compensation
// owed on a sold floor.
type Effect struct {
	AdjustedRate decimal.Decimal
	Premium      decimal.Decimal
	RatePremium  decimal.Decimal
	Active       bool // the instrument changed the rate
}

// Instrument is implemented only by Cap, Floor, FloorSell, Collar and Swap.
type Instrument interface {
	Kind() Kind
	Details() Terms
	Apply(baseRate decimal.Decimal) Effect
	sealed()
}

type Cap struct {
	Terms
	Level decimal.NullDecimal
}

func (c Cap) Kind() Kind     { return KindCap }
func (c Cap) Details() Terms { return c.Terms }
func (Cap) sealed()          {}

// Apply caps the rate when it exceeds the level. The annual premium is
// charged whether or not the cap is in the money.
func (c Cap) Apply(base decimal.Decimal) Effect {
	e := Effect{AdjustedRate: base, Premium: c.annualPremium()}
	if c.Level.Valid && base.GreaterThan(c.Level.Decimal) {
		e.AdjustedRate = c.Level.Decimal
		e.Active = true
	}
	return e
}

type Floor struct {
	Terms
	Level decimal.NullDecimal
}

func (f Floor) Kind() Kind     { return KindFloor }
func (f Floor) Details() Terms { return f.Terms }
func (Floor) sealed()          {}

func (f Floor) Apply(base decimal.Decimal) Effect {
	e := Effect{AdjustedRate: base, Premium: f.annualPremium()}
	if f.Level.Valid && base.LessThan(f.Level.Decimal) {
		e.AdjustedRate = f.Level.Decimal
		e.Active = true
	}
	return e
}

// FloorSell is a floor the borrower has sold: the rate is never floored,
// the shortfall below the level is owed to the counterparty and the annual
// cost is received.
type FloorSell struct {
	Terms
	Level decimal.NullDecimal
}

func (f FloorSell) Kind() Kind     { return KindFloorSell }
func (f FloorSell) Details() Terms { return f.Terms }
func (FloorSell) sealed()          {}

func (f FloorSell) Apply(base decimal.Decimal) Effect {
	e := Effect{AdjustedRate: base, Premium: f.annualPremium().Neg()}
	if f.Level.Valid && base.LessThan(f.Level.Decimal) {
		e.RatePremium = f.Level.Decimal.Sub(base)
		e.Active = true
	}
	return e
}

// Collar bounds the rate from both sides. Cap > Floor is enforced at build
// time, so at most one bound triggers.
type Collar struct {
	Terms
	CapLevel   decimal.Decimal
	FloorLevel decimal.Decimal
}

func (c Collar) Kind() Kind     { return KindCollar }
func (c Collar) Details() Terms { return c.Terms }
func (Collar) sealed()          {}

func (c Collar) Apply(base decimal.Decimal) Effect {
	e := Effect{AdjustedRate: base, Premium: c.annualPremium()}
	switch {
	case base.GreaterThan(c.CapLevel):
		e.AdjustedRate = c.CapLevel
		e.Active = true
	case base.LessThan(c.FloorLevel):
		e.AdjustedRate = c.FloorLevel
		e.Active = true
	}
	return e
}

// Swap exchanges the floating rate for an all-in fixed rate.
type Swap struct {
	Terms
	FixedRate decimal.Decimal
}

func (s Swap) Kind() Kind     { return KindSwap }
func (s Swap) Details() Terms { return s.Terms }
func (Swap) sealed()          {}

func (s Swap) Apply(decimal.Decimal) Effect {
	return Effect{AdjustedRate: s.FixedRate, Premium: s.annualPremium(), Active: true}
}

// Apply runs inst against baseRate.
func Apply(baseRate decimal.Decimal, inst Instrument) Effect {
	return inst.Apply(baseRate)
}

// ComposeRate builds the credit's all-in rate from an effect. A swap rate
// already is the all-in fixed cost; other instruments add the credit spread.
func ComposeRate(e Effect, spread decimal.Decimal, kind Kind) decimal.Decimal {
	rate := e.AdjustedRate.Add(e.RatePremium)
	if kind == KindSwap {
		return rate
	}
	return rate.Add(spread)
}

// Build validates a stored definition and returns its instrument.
func Build(def domain.InstrumentDefinition) (Instrument, error) {
	p := def.Parameters
	invalid := func(msg string) error {
		return customError.WrapInvalidInstrument(def.ID, msg)
	}

	if p.HedgePercentage.IsNegative() || p.HedgePercentage.GreaterThan(hundred) {
		return nil, invalid("hedgePercentage must be between 0 and 100")
	}
	if p.Cost.IsNegative() {
		return nil, invalid("cost must not be negative")
	}
	if p.HedgingTerm < 0 {
		return nil, invalid("hedgingTerm must not be negative")
	}
	costType := p.CostType
	if costType == "" {
		costType = domain.CostAnnual
	}
	if costType != domain.CostAnnual && costType != domain.CostUpfront {
		return nil, invalid(fmt.Sprintf("unknown costType %q", p.CostType))
	}

	terms := Terms{
		ID:              def.ID,
		Name:            def.Name,
		Cost:            p.Cost,
		CostType:        costType,
		HedgePercentage: p.HedgePercentage,
		TermMonths:      p.HedgingTerm,
	}

	switch Kind(strings.ToUpper(def.Type)) {
	case KindCap:
		if !p.Cap.Valid {
			return nil, invalid("CAP requires cap")
		}
		return Cap{Terms: terms, Level: p.Cap}, nil
	case KindFloor:
		if !p.Floor.Valid {
			return nil, invalid("FLOOR requires floor")
		}
		return Floor{Terms: terms, Level: p.Floor}, nil
	case KindFloorSell:
		if !p.Floor.Valid {
			return nil, invalid("FLOOR_SELL requires floor")
		}
		return FloorSell{Terms: terms, Level: p.Floor}, nil
	case KindCollar:
		if !p.Cap.Valid || !p.Floor.Valid {
			return nil, invalid("COLLAR requires cap and floor")
		}
		if !p.Cap.Decimal.GreaterThan(p.Floor.Decimal) {
			return nil, invalid("cap must be higher than floor")
		}
		return Collar{Terms: terms, CapLevel: p.Cap.Decimal, FloorLevel: p.Floor.Decimal}, nil
	case KindSwap, "SWAP":
		if !p.FixedRate.Valid {
			return nil, invalid("IRS requires fixedRate")
		}
		return Swap{Terms: terms, FixedRate: p.FixedRate.Decimal}, nil
	}
	return nil, invalid(fmt.Sprintf("unknown instrument type %q", def.Type))
}

// BuildAll builds every definition, stopping at the first invalid one.
func BuildAll(defs []domain.InstrumentDefinition) ([]Instrument, error) {
	out := make([]Instrument, 0, len(defs))
	for _, def := range defs {
		inst, err := Build(def)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}
