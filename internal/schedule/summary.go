package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// Summarize reports totals for s. An empty schedule yields a zero summary.
func Summarize(s domain.Schedule) domain.ScheduleSummary {
	summary := domain.ScheduleSummary{
		TotalInterest: decimal.Zero,
		TotalPayments: decimal.Zero,
		AvgPeriodDays: decimal.Zero,
	}
	if len(s) == 0 {
		return summary
	}

	days := 0
	for _, e := range s {
		days += e.PeriodDays
	}
	first := s[0].PaymentDate
	last := s[len(s)-1].PaymentDate

	summary.PeriodsCount = len(s)
	summary.TotalInterest = s.TotalInterest()
	summary.TotalPayments = s.TotalPayments()
	summary.AvgPeriodDays = decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(len(s)))).Round(1)
	summary.FirstPayment = &first
	summary.LastPayment = &last
	return summary
}
