package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

func twoPeriodSchedule() (*domain.CreditObligation, domain.Schedule) {
	credit := &domain.CreditObligation{
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 3, 1),
	}
	s := domain.Schedule{
		{PeriodNumber: 1, PeriodStartDate: date(2024, 1, 1), PeriodEndDate: date(2024, 2, 1), OutstandingBalance: decimal.NewFromInt(100000000)},
		{PeriodNumber: 2, PeriodStartDate: date(2024, 2, 1), PeriodEndDate: date(2024, 3, 1), OutstandingBalance: decimal.NewFromInt(95000000)},
	}
	return credit, s
}

func TestBalanceAt(t *testing.T) {
	credit, s := twoPeriodSchedule()

	tests := []struct {
		name     string
		date     time.Time
		expected int64
	}{
		{name: "inside second period", date: date(2024, 2, 15), expected: 95000000},
		{name: "inside first period", date: date(2024, 1, 20), expected: 100000000},
		{name: "credit start", date: date(2024, 1, 1), expected: 100000000},
		{name: "boundary belongs to the later period", date: date(2024, 2, 1), expected: 95000000},
		{name: "credit end", date: date(2024, 3, 1), expected: 95000000},
		{name: "before start", date: date(2023, 12, 1), expected: 0},
		{name: "after end", date: date(2025, 6, 1), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BalanceAt(credit, s, tt.date)
			assert.True(t, result.Equal(decimal.NewFromInt(tt.expected)), "Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestBalanceAt_GapFallsBackToLatestStartedPeriod(t *testing.T) {
	credit, s := twoPeriodSchedule()
	s[1].PeriodStartDate = date(2024, 2, 10)

	result := BalanceAt(credit, s, date(2024, 2, 5))
	assert.True(t, result.Equal(decimal.NewFromInt(100000000)))
}

func TestBalanceAt_NoScheduleIsZero(t *testing.T) {
	credit := &domain.CreditObligation{
		PrincipalAmount: decimal.NewFromInt(5000000),
		StartDate:       date(2024, 1, 1),
		EndDate:         date(2025, 1, 1),
	}
	assert.True(t, BalanceAt(credit, nil, date(2024, 6, 1)).IsZero())
}

func TestBalanceAt_UsesScheduleBoundsWithoutCredit(t *testing.T) {
	_, s := twoPeriodSchedule()
	assert.True(t, BalanceAt(nil, s, date(2024, 2, 15)).Equal(decimal.NewFromInt(95000000)))
	assert.True(t, BalanceAt(nil, s, date(2024, 3, 2)).IsZero())
}
