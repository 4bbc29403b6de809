package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DaysInYear is the Actual/365 fixed denominator.
const DaysInYear = 365

var (
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(DaysInYear)
)

// DaysBetween returns the ceiling of the whole-day difference from d0 to d1.
func DaysBetween(d0, d1 time.Time) int {
	return int(math.Ceil(d1.Sub(d0).Hours() / 24))
}

// YearFraction converts a day count to years on an Actual/365 basis.
func YearFraction(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Div(daysInYear)
}

// Interest calculates principal x (annualRate/100) x days/365, unrounded.
// Formula order is fixed so stored fields reproduce the same value.
func Interest(principal, annualRate decimal.Decimal, days int) decimal.Decimal {
	return principal.Mul(annualRate).Mul(decimal.NewFromInt(int64(days))).Div(hundred.Mul(daysInYear))
}

// PercentToFraction turns 19.5 into 0.195.
func PercentToFraction(rate decimal.Decimal) decimal.Decimal {
	return rate.Div(hundred)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths behaves like Excel's EDATE: the day is clamped to the last day
// of the target month instead of overflowing into the next one.
func AddMonths(t time.Time, months int) time.Time {
	return WithDay(t, months, t.Day())
}

// WithDay moves t by months and sets the day of month, clamped to the
// month length.
func WithDay(t time.Time, months, day int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if last := DaysInMonth(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// MinTime returns the earlier of a and b.
func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxTime returns the later of a and b.
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
