package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the canonical storage representation of a calendar date.
const DateLayout = "2006-01-02"

// MonthLayout identifies a calendar month (period filter).
const MonthLayout = "2006-01"

type (
	// Kind classifies transactions and categories.
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Kind        Kind
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}

	// NewTransaction holds validated fields of a transaction that has not
	// been stored yet.
	NewTransaction struct {
		Kind        Kind
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
	}

	Category struct {
		Name string
		Kind Kind
	}
)

// DefaultCategories is seeded into an empty catalog.
var DefaultCategories = []Category{
	{Name: "Groceries", Kind: Expense},
	{Name: "Transport", Kind: Expense},
	{Name: "Leisure", Kind: Expense},
	{Name: "Utilities", Kind: Expense},
	{Name: "Health", Kind: Expense},
	{Name: "Clothing", Kind: Expense},
	{Name: "Education", Kind: Expense},
	{Name: "Housing", Kind: Expense},
	{Name: "Other", Kind: Expense},
	{Name: "Salary", Kind: Income},
	{Name: "Bonus", Kind: Income},
	{Name: "Investments", Kind: Income},
	{Name: "Other", Kind: Income},
}

var ErrInvalidDate = errors.New("invalid date")

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a canonical YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthID returns the YYYY-MM period the date belongs to.
func (d Date) MonthID() string {
	return d.Format(MonthLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s: %s€ - %s (%s)",
		strings.ToUpper(t.Kind.String()), t.Amount.StringFixed(2), t.Category, t.Date)
}

// Validate checks the invariants the ledger schema relies on.
func (n NewTransaction) Validate() error {
	if !n.Kind.Valid() {
		return &ValidationError{Field: FieldKind, Reason: ReasonInvalidKind}
	}
	if !n.Amount.IsPositive() {
		return &ValidationError{Field: FieldAmount, Reason: ReasonNonPositive}
	}
	if n.Amount.GreaterThan(MaxAmount) {
		return &ValidationError{Field: FieldAmount, Reason: ReasonTooLarge}
	}
	if strings.TrimSpace(n.Category) == "" {
		return &ValidationError{Field: FieldCategory, Reason: ReasonEmptyInput}
	}
	if err := n.Date.Validate(); err != nil {
		return &ValidationError{Field: FieldDate, Reason: ReasonEmptyInput}
	}
	return nil
}

// RecentMonths returns the last n month identifiers ending at now's month,
// newest first.
func RecentMonths(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, -i, 0).Format(MonthLayout))
	}
	return out
}
