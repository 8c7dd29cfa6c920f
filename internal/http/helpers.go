package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/core"
	"budgettracker/internal/format"
	"budgettracker/internal/services"
	"budgettracker/internal/stats"
)

// sanitizeInput trims s and drops control characters other than tab and
// line breaks.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// amountString renders a decimal with exactly two fractional digits.
func amountString(d decimal.Decimal) string {
	return d.StringFixed(core.AmountPlaces)
}

func percentString(d decimal.Decimal) string {
	return d.StringFixed(1)
}

type transactionDTO struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	Display     struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
	} `json:"display"`
}

func presentTransaction(tx core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:          tx.ID,
		Kind:        tx.Kind.String(),
		Amount:      amountString(tx.Amount),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
	dto.Display.Amount = format.Currency(tx.Amount)
	dto.Display.Date = format.Date(tx.Date.String(), "")
	return dto
}

type balanceDTO struct {
	Month       string `json:"month,omitempty"`
	Income      string `json:"income"`
	Expense     string `json:"expense"`
	Net         string `json:"net"`
	SavingsRate string `json:"savings_rate"`
	Display     struct {
		Income      string `json:"income"`
		Expense     string `json:"expense"`
		Net         string `json:"net"`
		SavingsRate string `json:"savings_rate"`
	} `json:"display"`
}

func presentBalance(month string, b core.Balance) balanceDTO {
	dto := balanceDTO{
		Month:       month,
		Income:      amountString(b.Income),
		Expense:     amountString(b.Expense),
		Net:         amountString(b.Net),
		SavingsRate: percentString(b.SavingsRate()),
	}
	dto.Display.Income = format.Currency(b.Income)
	dto.Display.Expense = format.Currency(b.Expense)
	dto.Display.Net = format.Currency(b.Net)
	dto.Display.SavingsRate = format.Percentage(b.SavingsRate())
	return dto
}

type categoryShareDTO struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage"`
	Display    struct {
		Amount     string `json:"amount"`
		Percentage string `json:"percentage"`
	} `json:"display"`
}

func presentShare(name string, amount, pct decimal.Decimal) categoryShareDTO {
	dto := categoryShareDTO{
		Name:       name,
		Amount:     amountString(amount),
		Percentage: percentString(pct),
	}
	dto.Display.Amount = format.Currency(amount)
	dto.Display.Percentage = format.Percentage(pct)
	return dto
}

// presentSpending attaches each category's share of the total.
func presentSpending(spend []core.CategoryAmount) []categoryShareDTO {
	total := stats.Total(spend)
	out := make([]categoryShareDTO, 0, len(spend))
	for _, c := range spend {
		out = append(out, presentShare(c.Name, c.Amount, stats.CategoryPercentage(c.Amount, total)))
	}
	return out
}

type summaryDTO struct {
	Month        string             `json:"month,omitempty"`
	Label        string             `json:"label"`
	Balance      balanceDTO         `json:"balance"`
	Spending     []categoryShareDTO `json:"spending"`
	TopCategory  categoryShareDTO   `json:"top_category"`
	Days         int                `json:"days"`
	DailyAverage string             `json:"daily_average"`
	Display      struct {
		DailyAverage string `json:"daily_average"`
	} `json:"display"`
}

const allTimeLabel = "Tutto il periodo"

func presentSummary(s services.Summary) summaryDTO {
	dto := summaryDTO{
		Month:        s.Month,
		Label:        allTimeLabel,
		Balance:      presentBalance(s.Month, s.Balance),
		Spending:     make([]categoryShareDTO, 0, len(s.Spending)),
		Days:         s.Days,
		DailyAverage: amountString(s.DailyAverage),
	}
	if s.Month != "" {
		dto.Label = format.MonthLabel(s.Month)
	}
	topPct := decimal.Zero
	for _, c := range s.Spending {
		dto.Spending = append(dto.Spending, presentShare(c.Name, c.Amount, c.Percentage))
		if c.Name == s.TopCategory.Name {
			topPct = c.Percentage
		}
	}
	dto.TopCategory = presentShare(s.TopCategory.Name, s.TopCategory.Amount, topPct)
	dto.Display.DailyAverage = format.Currency(s.DailyAverage)
	return dto
}

type monthTotalsDTO struct {
	Month   string `json:"month"`
	Label   string `json:"label"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

func presentTrend(series []core.MonthTotals) []monthTotalsDTO {
	out := make([]monthTotalsDTO, 0, len(series))
	for _, m := range series {
		out = append(out, monthTotalsDTO{
			Month:   m.Month,
			Label:   format.MonthLabel(m.Month),
			Income:  amountString(m.Income),
			Expense: amountString(m.Expense),
			Net:     amountString(m.Income.Sub(m.Expense)),
		})
	}
	return out
}

type monthDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func presentMonths(ids []string) []monthDTO {
	out := make([]monthDTO, 0, len(ids))
	for _, id := range ids {
		out = append(out, monthDTO{ID: id, Label: format.MonthLabel(id)})
	}
	return out
}
