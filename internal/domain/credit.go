package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// BaseRateIndicator is the reference rate a credit is pegged to.
type BaseRateIndicator string

const (
	IndicatorFixed   BaseRateIndicator = "FIXED"
	IndicatorKeyRate BaseRateIndicator = "KEY_RATE"
	IndicatorRUONIA  BaseRateIndicator = "RUONIA"
)

// IsFloating reports whether the rate is supplied by an external reference.
func (i BaseRateIndicator) IsFloating() bool {
	return i == IndicatorKeyRate || i == IndicatorRUONIA
}

func (i BaseRateIndicator) Valid() bool {
	return i == IndicatorFixed || i.IsFloating()
}

type PaymentFrequency string

const (
	FrequencyMonthly    PaymentFrequency = "MONTHLY"
	FrequencyQuarterly  PaymentFrequency = "QUARTERLY"
	FrequencySemiAnnual PaymentFrequency = "SEMI_ANNUAL"
	FrequencyAnnual     PaymentFrequency = "ANNUAL"
)

// Months returns the calendar months per period, or 0 for an unknown frequency.
func (f PaymentFrequency) Months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencySemiAnnual:
		return 6
	case FrequencyAnnual:
		return 12
	}
	return 0
}

// PeriodsPerYear returns how many payment periods fit in a year.
func (f PaymentFrequency) PeriodsPerYear() int {
	if m := f.Months(); m > 0 {
		return 12 / m
	}
	return 0
}

type PaymentType string

const (
	PaymentAnnuity        PaymentType = "ANNUITY"
	PaymentDifferentiated PaymentType = "DIFFERENTIATED"
	PaymentBullet         PaymentType = "BULLET"
	PaymentInterestOnly   PaymentType = "INTEREST_ONLY"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentAnnuity, PaymentDifferentiated, PaymentBullet, PaymentInterestOnly:
		return true
	}
	return false
}

// RepaysAtMaturity reports whether principal is repaid only in the final period.
func (p PaymentType) RepaysAtMaturity() bool {
	return p == PaymentBullet || p == PaymentInterestOnly
}

type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCNY Currency = "CNY"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyRUB, CurrencyUSD, CurrencyEUR, CurrencyCNY:
		return true
	}
	return false
}

// CreditObligation represents a credit obligation entity.
// ID is zero until the credit is persisted.
type CreditObligation struct {
	ID                int64             `json:"id" db:"id"`
	CreditName        string            `json:"credit_name" db:"credit_name"`
	PrincipalAmount   decimal.Decimal   `json:"principal_amount" db:"principal_amount"`
	Currency          Currency          `json:"currency" db:"currency"`
	StartDate         time.Time         `json:"start_date" db:"start_date"`
	EndDate           time.Time         `json:"end_date" db:"end_date"`
	BaseRateIndicator BaseRateIndicator `json:"base_rate_indicator" db:"base_rate_indicator"`
	BaseRateValue     decimal.Decimal   `json:"base_rate_value" db:"base_rate_value"`
	CreditSpread      decimal.Decimal   `json:"credit_spread" db:"credit_spread"`
	PaymentFrequency  PaymentFrequency  `json:"payment_frequency" db:"payment_frequency"`
	PaymentType       PaymentType       `json:"payment_type" db:"payment_type"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// Normalize forces the spread to zero for fixed-rate credits.
func (c *CreditObligation) Normalize() {
	if c.BaseRateIndicator == IndicatorFixed {
		c.CreditSpread = decimal.Zero
	}
}

// TotalRate returns base rate plus spread, in percent.
func (c *CreditObligation) TotalRate() decimal.Decimal {
	if c.BaseRateIndicator == IndicatorFixed {
		return c.BaseRateValue
	}
	return c.BaseRateValue.Add(c.CreditSpread)
}

// Validate collects field-level problems. It never fails fast.
func (c *CreditObligation) Validate() []ValidationError {
	var errs []ValidationError
	if c.CreditName == "" {
		errs = append(errs, FieldError("credit_name", "credit name is required"))
	}
	if !c.PrincipalAmount.IsPositive() {
		errs = append(errs, FieldError("principal_amount", "principal amount must be greater than 0"))
	}
	if !c.Currency.Valid() {
		errs = append(errs, FieldError("currency", "unsupported currency "+string(c.Currency)))
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		errs = append(errs, FieldError("start_date", "start and end dates are required"))
	} else if !c.EndDate.After(c.StartDate) {
		errs = append(errs, FieldError("end_date", "end date must be after start date"))
	}
	if !c.BaseRateIndicator.Valid() {
		errs = append(errs, FieldError("base_rate_indicator", "unknown base rate indicator "+string(c.BaseRateIndicator)))
	}
	if c.BaseRateValue.IsNegative() {
		errs = append(errs, FieldError("base_rate_value", "base rate must not be negative"))
	}
	if c.CreditSpread.IsNegative() {
		errs = append(errs, FieldError("credit_spread", "credit spread must not be negative"))
	}
	if c.PaymentFrequency.Months() == 0 {
		errs = append(errs, FieldError("payment_frequency", "unknown payment frequency "+string(c.PaymentFrequency)))
	}
	if !c.PaymentType.Valid() {
		errs = append(errs, FieldError("payment_type", "unknown payment type "+string(c.PaymentType)))
	}
	return errs
}

// SimpleInterest is principal x rate x days/365 over the whole term.
func (c *CreditObligation) SimpleInterest() decimal.Decimal {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return decimal.Zero
	}
	days := utils.DaysBetween(c.StartDate, c.EndDate)
	return utils.Interest(c.PrincipalAmount, c.TotalRate(), days).Round(2)
}

// InterestAmount prefers the schedule's interest when it has any.
func (c *CreditObligation) InterestAmount(schedule Schedule) decimal.Decimal {
	if total := schedule.TotalInterest(); total.IsPositive() {
		return total
	}
	return c.SimpleInterest()
}

// TotalPayment is principal plus interest.
func (c *CreditObligation) TotalPayment(schedule Schedule) decimal.Decimal {
	return c.PrincipalAmount.Add(c.InterestAmount(schedule))
}

// CreateCreditRequest is the input for creating or updating a credit.
type CreateCreditRequest struct {
	CreditName        string            `json:"credit_name" validate:"required,max=255"`
	PrincipalAmount   decimal.Decimal   `json:"principal_amount" validate:"gt=0"`
	Currency          Currency          `json:"currency" validate:"required,oneof=RUB USD EUR CNY"`
	StartDate         time.Time         `json:"start_date" validate:"required"`
	EndDate           time.Time         `json:"end_date" validate:"required,gtfield=StartDate"`
	BaseRateIndicator BaseRateIndicator `json:"base_rate_indicator" validate:"required,oneof=FIXED KEY_RATE RUONIA"`
	BaseRateValue     decimal.Decimal   `json:"base_rate_value" validate:"gte=0"`
	CreditSpread      decimal.Decimal   `json:"credit_spread" validate:"gte=0"`
	PaymentFrequency  PaymentFrequency  `json:"payment_frequency" validate:"required,oneof=MONTHLY QUARTERLY SEMI_ANNUAL ANNUAL"`
	PaymentType       PaymentType       `json:"payment_type" validate:"required,oneof=ANNUITY DIFFERENTIATED BULLET INTEREST_ONLY"`
	PaymentDay        int               `json:"payment_day,omitempty" validate:"omitempty,min=1,max=31"`
}

// Credit builds an unsaved credit from the request.
func (r *CreateCreditRequest) Credit() *CreditObligation {
	return &CreditObligation{
		CreditName:        r.CreditName,
		PrincipalAmount:   r.PrincipalAmount,
		Currency:          r.Currency,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		BaseRateIndicator: r.BaseRateIndicator,
		BaseRateValue:     r.BaseRateValue,
		CreditSpread:      r.CreditSpread,
		PaymentFrequency:  r.PaymentFrequency,
		PaymentType:       r.PaymentType,
	}
}

type CreateCreditResponse struct {
	Credit   *CreditObligation `json:"credit"`
	Schedule Schedule          `json:"schedule"`
}

// PortfolioSummary aggregates statistics over a set of credits.
type PortfolioSummary struct {
	TotalCount           int                          `json:"total_count"`
	TotalPrincipal       decimal.Decimal              `json:"total_principal"`
	TotalInterest        decimal.Decimal              `json:"total_interest"`
	TotalPayments        decimal.Decimal              `json:"total_payments"`
	AverageRate          decimal.Decimal              `json:"avg_rate"`
	CurrencyBreakdown    map[Currency]decimal.Decimal `json:"currency_breakdown"`
	FrequencyBreakdown   map[PaymentFrequency]int     `json:"payment_frequency_breakdown"`
	PaymentTypeBreakdown map[PaymentType]int          `json:"payment_type_breakdown"`
}
