// Package stats derives summary figures from ledger aggregates.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/core"
)

// NoCategory names the top category of an empty spending map.
const NoCategory = "None"

var hundred = decimal.NewFromInt(100)

// DailyAverage returns total/days, or zero when days is zero.
func DailyAverage(total decimal.Decimal, days int) decimal.Decimal {
	if days == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(days)))
}

// TopCategory returns the entry with the largest amount. Ties resolve to the
// first entry in slice order; the store orders spending by amount then name.
func TopCategory(spend []core.CategoryAmount) core.CategoryAmount {
	if len(spend) == 0 {
		return core.CategoryAmount{Name: NoCategory, Amount: decimal.Zero}
	}
	top := spend[0]
	for _, c := range spend[1:] {
		if c.Amount.GreaterThan(top.Amount) {
			top = c
		}
	}
	return top
}

// CategoryPercentage returns amount as a percentage of total, or zero when
// total is zero.
func CategoryPercentage(amount, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return amount.Div(total).Mul(hundred)
}

// Total sums the amounts of spend.
func Total(spend []core.CategoryAmount) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range spend {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// DaysInPeriod counts the days a YYYY-MM period covers as of now: the full
// month for past months, the elapsed days for the current month and zero for
// future months. An unparsable month yields zero.
func DaysInPeriod(month string, now time.Time) int {
	start, err := time.Parse(core.MonthLayout, month)
	if err != nil {
		return 0
	}
	end := start.AddDate(0, 1, 0)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !today.Before(end):
		return int(end.Sub(start).Hours() / 24)
	case today.Before(start):
		return 0
	default:
		return today.Day()
	}
}

// DaysSince counts calendar days from first through now, inclusive.
func DaysSince(first core.Date, now time.Time) int {
	if first.IsZero() {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today.Before(first.Time) {
		return 0
	}
	return int(today.Sub(first.Time).Hours()/24) + 1
}
