package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Balance sums a period by kind.
type Balance struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// MonthTotals is one point of the monthly income/expense series.
type MonthTotals struct {
	Month   string // YYYY-MM
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func NewBalance(income, expense decimal.Decimal) Balance {
	return Balance{Income: income, Expense: expense, Net: income.Sub(expense)}
}

// Add returns the field-wise sum of two balances.
func (b Balance) Add(o Balance) Balance {
	return NewBalance(b.Income.Add(o.Income), b.Expense.Add(o.Expense))
}

// SavingsRate is the share of income left after expenses, in percent.
func (b Balance) SavingsRate() decimal.Decimal {
	if b.Income.IsZero() {
		return decimal.Zero
	}
	return b.Net.Div(b.Income).Mul(decimal.NewFromInt(100))
}
