package core

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateFormatting(t *testing.T) {
	d := NewDate(2025, 6, 1)
	if d.String() != "2025-06-01" {
		t.Fatalf("unexpected canonical form %q", d.String())
	}
	if d.MonthID() != "2025-06" {
		t.Fatalf("unexpected month id %q", d.MonthID())
	}
	parsed, err := ParseDate("2025-06-01")
	if err != nil || !parsed.Equal(d.Time) {
		t.Fatalf("ParseDate round trip failed: %v %v", parsed, err)
	}
	if _, err := ParseDate("01/06/2025"); err == nil {
		t.Fatalf("expected error for non-canonical date")
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{
		Kind:     Expense,
		Amount:   decimal.RequireFromString("45"),
		Category: "Groceries",
		Date:     NewDate(2025, 6, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []NewTransaction{
		{Kind: "gift", Amount: decimal.NewFromInt(1), Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.Zero, Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.NewFromInt(2_000_000_000), Category: "c", Date: NewDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.NewFromInt(1), Category: " ", Date: NewDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.NewFromInt(1), Category: "c"},
	}
	for i, n := range bads {
		if err := n.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionString(t *testing.T) {
	tx := Transaction{
		Kind:     Expense,
		Amount:   decimal.RequireFromString("45"),
		Category: "Groceries",
		Date:     NewDate(2025, 6, 1),
	}
	if got := tx.String(); got != "EXPENSE: 45.00€ - Groceries (2025-06-01)" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestDefaultCategories(t *testing.T) {
	var expense, income int
	for _, c := range DefaultCategories {
		switch c.Kind {
		case Expense:
			expense++
		case Income:
			income++
		default:
			t.Fatalf("unexpected kind %q", c.Kind)
		}
	}
	if expense != 9 || income != 4 {
		t.Fatalf("expected 9 expense and 4 income categories, got %d and %d", expense, income)
	}
}

func TestRecentMonths(t *testing.T) {
	now := time.Date(2025, 2, 28, 15, 0, 0, 0, time.UTC)
	got := RecentMonths(now, 4)
	want := []string{"2025-02", "2025-01", "2024-12", "2024-11"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if RecentMonths(now, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestBalance(t *testing.T) {
	b := NewBalance(decimal.NewFromInt(1000), decimal.NewFromInt(45))
	if !b.Net.Equal(decimal.NewFromInt(955)) {
		t.Fatalf("unexpected net %s", b.Net)
	}
	if !b.SavingsRate().Equal(decimal.RequireFromString("95.5")) {
		t.Fatalf("unexpected savings rate %s", b.SavingsRate())
	}
	sum := b.Add(NewBalance(decimal.NewFromInt(10), decimal.NewFromInt(20)))
	if !sum.Income.Equal(decimal.NewFromInt(1010)) || !sum.Expense.Equal(decimal.NewFromInt(65)) || !sum.Net.Equal(decimal.NewFromInt(945)) {
		t.Fatalf("unexpected sum %+v", sum)
	}
	if !(Balance{}).SavingsRate().IsZero() {
		t.Fatalf("expected zero savings rate without income")
	}
}
