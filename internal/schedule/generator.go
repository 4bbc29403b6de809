// Package schedule builds, edits and queries credit payment schedules.
package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// DefaultMaxPeriods bounds the number of generated periods.
const DefaultMaxPeriods = 600

// Params are the credit parameters a schedule is generated from.
type Params struct {
	CreditID    int64
	Principal   decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	Frequency   domain.PaymentFrequency
	PaymentType domain.PaymentType
	TotalRate   decimal.Decimal // annual, percent
	PaymentDay  int             // optional 1-31; 0 keeps the start date's day
}

// ParamsFor derives generation parameters from a credit.
func ParamsFor(credit *domain.CreditObligation, paymentDay int) Params {
	return Params{
		CreditID:    credit.ID,
		Principal:   credit.PrincipalAmount,
		StartDate:   credit.StartDate,
		EndDate:     credit.EndDate,
		Frequency:   credit.PaymentFrequency,
		PaymentType: credit.PaymentType,
		TotalRate:   credit.TotalRate(),
		PaymentDay:  paymentDay,
	}
}

type Generator struct {
	maxPeriods int
	logger     zerolog.Logger
}

func NewGenerator(maxPeriods int, logger zerolog.Logger) *Generator {
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}
	return &Generator{maxPeriods: maxPeriods, logger: logger}
}

// Check returns the unmet preconditions for p, if any.
func (g *Generator) Check(p Params) []domain.ValidationError {
	var errs []domain.ValidationError
	if !p.Principal.IsPositive() {
		errs = append(errs, domain.FieldError("principal_amount", "principal amount must be greater than 0"))
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() || !p.StartDate.Before(p.EndDate) {
		errs = append(errs, domain.FieldError("end_date", "start date must be before end date"))
	}
	if p.TotalRate.IsNegative() {
		errs = append(errs, domain.FieldError("total_rate", "total rate must not be negative"))
	}
	if p.Frequency.Months() == 0 {
		errs = append(errs, domain.FieldError("payment_frequency", "unknown payment frequency "+string(p.Frequency)))
	}
	if !p.PaymentType.Valid() {
		errs = append(errs, domain.FieldError("payment_type", "unknown payment type "+string(p.PaymentType)))
	}
	if p.PaymentDay < 0 || p.PaymentDay > 31 {
		errs = append(errs, domain.FieldError("payment_day", "payment day must be between 1 and 31"))
	}
	return errs
}

// Generate builds the full schedule for p. It returns an empty schedule when
// any precondition is unmet; no partial schedule is ever produced.
func (g *Generator) Generate(p Params) domain.Schedule {
	if errs := g.Check(p); len(errs) > 0 {
		g.logger.Warn().
			Int("problems", len(errs)).
			Str("first", errs[0].Message).
			Msg("schedule generation refused")
		return domain.Schedule{}
	}

	bounds, ok := g.periodBounds(p)
	if !ok || len(bounds) == 0 {
		g.logger.Warn().Int("max", g.maxPeriods).Msg("schedule generation refused: too many periods")
		return domain.Schedule{}
	}

	n := len(bounds)
	entries := make(domain.Schedule, 0, n)
	balance := p.Principal

	var level, straight decimal.Decimal
	switch p.PaymentType {
	case domain.PaymentAnnuity:
		level = AnnuityPayment(p.Principal, p.TotalRate, p.Frequency.PeriodsPerYear(), n)
	case domain.PaymentDifferentiated:
		straight = p.Principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	}

	for i, b := range bounds {
		days := utils.DaysBetween(b.start, b.end)
		interest := utils.Interest(balance, p.TotalRate, days).Round(2)
		last := i == n-1

		var repaid decimal.Decimal
		switch {
		case last:
			repaid = balance
		case p.PaymentType.RepaysAtMaturity():
			repaid = decimal.Zero
		case p.PaymentType == domain.PaymentDifferentiated:
			repaid = straight
		default:
			repaid = level.Sub(interest)
		}
		repaid = clamp(repaid, decimal.Zero, balance)

		entries = append(entries, domain.PaymentScheduleEntry{
			ID:                 uuid.New(),
			CreditID:           p.CreditID,
			PeriodNumber:       i + 1,
			PeriodStartDate:    b.start,
			PeriodEndDate:      b.end,
			PaymentDate:        b.end,
			OutstandingBalance: balance,
			InterestAmount:     interest,
			PrincipalAmount:    repaid,
			TotalPayment:       interest.Add(repaid),
			PeriodDays:         days,
			InterestRate:       p.TotalRate,
		})
		balance = balance.Sub(repaid)
	}

	g.logger.Debug().
		Int64("credit_id", p.CreditID).
		Str("payment_type", string(p.PaymentType)).
		Int("periods", n).
		Msg("schedule generated")

	return entries
}

type period struct {
	start, end time.Time
}

// periodBounds partitions [start, end] at the frequency's cadence. Every
// boundary is measured from the start date so month-end clamping does not
// drift; the last period is truncated at end. ok is false when the
// partition would exceed the period limit.
func (g *Generator) periodBounds(p Params) (out []period, ok bool) {
	step := p.Frequency.Months()
	current := p.StartDate
	for k := 1; current.Before(p.EndDate); k++ {
		if len(out) >= g.maxPeriods {
			return nil, false
		}
		next := utils.AddMonths(p.StartDate, k*step)
		if p.PaymentDay > 0 {
			next = utils.WithDay(p.StartDate, k*step, p.PaymentDay)
		}
		if next.After(p.EndDate) {
			next = p.EndDate
		}
		if !next.After(current) {
			continue
		}
		out = append(out, period{start: current, end: next})
		current = next
	}
	return out, true
}

// AnnuityPayment solves A = P*r*(1+r)^n / ((1+r)^n - 1) with r the
// per-period rate. A zero rate degenerates to straight-line repayment.
func AnnuityPayment(principal, annualRate decimal.Decimal, periodsPerYear, n int) decimal.Decimal {
	if n <= 0 || periodsPerYear <= 0 {
		return decimal.Zero
	}
	r := utils.PercentToFraction(annualRate).Div(decimal.NewFromInt(int64(periodsPerYear)))
	if r.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	growth := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(n)))
	return principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
