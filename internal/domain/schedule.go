package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentScheduleEntry represents one period of a credit's schedule.
// ID stays stable across edits so callers can key side data on it
// instead of on the entry position.
type PaymentScheduleEntry struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	CreditID           int64           `json:"credit_id" db:"credit_id"`
	PeriodNumber       int             `json:"period_number" db:"period_number"`
	PeriodStartDate    time.Time       `json:"period_start_date" db:"period_start_date"`
	PeriodEndDate      time.Time       `json:"period_end_date" db:"period_end_date"`
	PaymentDate        time.Time       `json:"payment_date" db:"payment_date"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"` // as of period start
	InterestAmount     decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount" db:"principal_amount"` // repaid in period
	TotalPayment       decimal.Decimal `json:"total_payment" db:"total_payment"`
	PeriodDays         int             `json:"period_days" db:"period_days"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Notes              string          `json:"notes,omitempty" db:"notes"`
}

// EndingBalance is the balance left after the period's repayment.
func (e PaymentScheduleEntry) EndingBalance() decimal.Decimal {
	return e.OutstandingBalance.Sub(e.PrincipalAmount)
}

// Contains reports whether date lies within the closed period range.
func (e PaymentScheduleEntry) Contains(date time.Time) bool {
	return !date.Before(e.PeriodStartDate) && !date.After(e.PeriodEndDate)
}

// Schedule is an ordered sequence of entries. Entries are values, so a
// copied slice can be edited without touching the original.
type Schedule []PaymentScheduleEntry

func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// Renumber restores 1-based sequential period numbers.
func (s Schedule) Renumber() {
	for i := range s {
		s[i].PeriodNumber = i + 1
	}
}

func (s Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.InterestAmount)
	}
	return total
}

func (s Schedule) TotalPayments() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.TotalPayment)
	}
	return total
}

// ScheduleSummary describes a schedule at a glance.
type ScheduleSummary struct {
	PeriodsCount  int             `json:"periods_count"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	AvgPeriodDays decimal.Decimal `json:"avg_period_days"`
	FirstPayment  *time.Time      `json:"first_payment"`
	LastPayment   *time.Time      `json:"last_payment"`
}

// ScheduleEditRequest carries a single edit to apply to a stored schedule.
// Exactly one of OutstandingBalance or PeriodEndDate is expected.
type ScheduleEditRequest struct {
	Index              int              `json:"index" validate:"gte=0"`
	OutstandingBalance *decimal.Decimal `json:"outstanding_balance,omitempty"`
	PeriodEndDate      *time.Time       `json:"period_end_date,omitempty"`
}

// ScheduleEditResponse returns the full updated schedule.
type ScheduleEditResponse struct {
	Schedule Schedule          `json:"schedule"`
	Errors   []ValidationError `json:"errors,omitempty"`
}
