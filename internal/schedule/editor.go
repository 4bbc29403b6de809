package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// Editor applies single structural edits to a schedule. Every operation
// works on a copy and returns the full updated schedule.
type Editor struct{}

func NewEditor() *Editor {
	return &Editor{}
}

// SetBalance sets the opening balance of entry i and every later entry:
// the edited value is the balance from that period forward. Only the edited
// value is checked for positivity; the edit is applied either way and the
// caller decides whether to keep it.
func (ed *Editor) SetBalance(s domain.Schedule, i int, balance decimal.Decimal) (domain.Schedule, []domain.ValidationError) {
	out := s.Clone()
	if i < 0 || i >= len(out) {
		return out, []domain.ValidationError{domain.EntryError(i, "outstanding_balance", "entry index out of range")}
	}

	var errs []domain.ValidationError
	if !balance.IsPositive() {
		errs = append(errs, domain.EntryError(i, "outstanding_balance", "outstanding balance must be greater than 0"))
	}
	for j := i; j < len(out); j++ {
		out[j].OutstandingBalance = balance
	}
	ed.Reconcile(out)
	return out, errs
}

// SetPeriodEnd changes the end date of entry i. When the new date is earlier
// than the original and does not meet the next period's start, a new period
// covering [newEnd, originalEnd] is inserted after i; it inherits i's balance
// and rate and pays on the original end date. The last period is never split.
func (ed *Editor) SetPeriodEnd(s domain.Schedule, i int, newEnd time.Time) (domain.Schedule, []domain.ValidationError) {
	out := s.Clone()
	if i < 0 || i >= len(out) {
		return out, []domain.ValidationError{domain.EntryError(i, "period_end_date", "entry index out of range")}
	}

	entry := out[i]
	if !newEnd.After(entry.PeriodStartDate) {
		return out, []domain.ValidationError{domain.EntryError(i, "period_end_date", "period end must be after period start")}
	}

	originalEnd := entry.PeriodEndDate
	out[i].PeriodEndDate = newEnd
	out[i].PaymentDate = newEnd

	isLast := i == len(out)-1
	if !isLast && newEnd.Before(originalEnd) && !newEnd.Equal(out[i+1].PeriodStartDate) {
		split := domain.PaymentScheduleEntry{
			ID:                 uuid.New(),
			CreditID:           entry.CreditID,
			PeriodStartDate:    newEnd,
			PeriodEndDate:      originalEnd,
			PaymentDate:        originalEnd,
			OutstandingBalance: entry.OutstandingBalance,
			InterestRate:       entry.InterestRate,
		}
		out = append(out, domain.PaymentScheduleEntry{})
		copy(out[i+2:], out[i+1:])
		out[i+1] = split
	}

	out.Renumber()
	ed.Reconcile(out)
	return out, nil
}

// Reconcile re-derives the computed fields of every entry from its dates,
// opening balance and rate. Principal repaid is the drop to the next
// period's opening balance; the last period repays what is left.
func (ed *Editor) Reconcile(s domain.Schedule) {
	for i := range s {
		e := &s[i]
		e.PeriodDays = utils.DaysBetween(e.PeriodStartDate, e.PeriodEndDate)
		e.InterestAmount = utils.Interest(e.OutstandingBalance, e.InterestRate, e.PeriodDays).Round(2)

		repaid := e.OutstandingBalance
		if i < len(s)-1 {
			repaid = e.OutstandingBalance.Sub(s[i+1].OutstandingBalance)
		}
		if repaid.IsNegative() {
			repaid = decimal.Zero
		}
		e.PrincipalAmount = repaid
		e.TotalPayment = e.InterestAmount.Add(repaid)
	}
}

// Validate checks every entry against the credit's bounds and its
// neighbours. Rising balances after an edit are reported as warnings.
func Validate(credit *domain.CreditObligation, s domain.Schedule) []domain.ValidationError {
	var errs []domain.ValidationError
	for i, e := range s {
		if credit != nil {
			if e.PeriodStartDate.Before(credit.StartDate) {
				errs = append(errs, domain.EntryError(i, "period_start_date",
					fmt.Sprintf("period start %s is before credit start %s", day(e.PeriodStartDate), day(credit.StartDate))))
			}
			if e.PeriodEndDate.After(credit.EndDate) {
				errs = append(errs, domain.EntryError(i, "period_end_date",
					fmt.Sprintf("period end %s is after credit end %s", day(e.PeriodEndDate), day(credit.EndDate))))
			}
		}
		if !e.PeriodEndDate.After(e.PeriodStartDate) {
			errs = append(errs, domain.EntryError(i, "period_end_date", "period end must be after period start"))
		}
		if !e.OutstandingBalance.IsPositive() {
			errs = append(errs, domain.EntryError(i, "outstanding_balance", "outstanding balance must be greater than 0"))
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		if e.PeriodStartDate.Before(prev.PeriodEndDate) {
			errs = append(errs, domain.EntryError(i, "period_start_date", "period overlaps the previous period"))
		} else if e.PeriodStartDate.After(prev.PeriodEndDate) {
			errs = append(errs, domain.EntryWarning(i, "period_start_date", "gap after the previous period"))
		}
		if e.OutstandingBalance.GreaterThan(prev.OutstandingBalance) {
			errs = append(errs, domain.EntryWarning(i, "outstanding_balance", "balance exceeds the previous period's balance"))
		}
	}
	return errs
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
