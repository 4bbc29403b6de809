package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// BalanceAt returns the outstanding balance applicable on date.
//
// Dates outside the credit's term, and credits without schedule data, yield
// zero: the balance is never reconstructed from credit parameters alone.
// A date inside exactly one period takes that period's opening balance;
// otherwise (period boundaries, gaps left by manual edits) the last period
// starting on or before the date wins.
func BalanceAt(credit *domain.CreditObligation, s domain.Schedule, date time.Time) decimal.Decimal {
	if len(s) == 0 {
		return decimal.Zero
	}

	start, end := s[0].PeriodStartDate, s[len(s)-1].PeriodEndDate
	if credit != nil {
		start, end = credit.StartDate, credit.EndDate
	}
	if date.Before(start) || date.After(end) {
		return decimal.Zero
	}

	matches := 0
	var match domain.PaymentScheduleEntry
	for _, e := range s {
		if e.Contains(date) {
			matches++
			match = e
		}
	}
	if matches == 1 {
		return match.OutstandingBalance
	}

	found := false
	var latest domain.PaymentScheduleEntry
	for _, e := range s {
		if !e.PeriodStartDate.After(date) {
			if !found || !e.PeriodStartDate.Before(latest.PeriodStartDate) {
				latest = e
				found = true
			}
		}
	}
	if !found {
		return decimal.Zero
	}
	return latest.OutstandingBalance
}
