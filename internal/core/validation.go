package core

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultDescriptionMaxLength bounds descriptions, counted in characters.
const DefaultDescriptionMaxLength = 200

// MaxDateAgeYears is how far back a transaction date may go.
const MaxDateAgeYears = 100

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"2006-1-2", // YYYY-MM-DD
	"2/1/2006", // DD/MM/YYYY
	"2-1-2006", // DD-MM-YYYY
	"2006/1/2", // YYYY/MM/DD
}

// ValidateAmount parses raw amount text, see ParseAmount.
func ValidateAmount(raw string) (decimal.Decimal, error) {
	return ParseAmount(raw)
}

// ValidateDate parses raw date text against the accepted layouts and checks
// it against the clock's current date.
func ValidateDate(raw string, clock Clock) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, &ValidationError{Field: FieldDate, Reason: ReasonEmptyInput}
	}

	now := clockOrSystem(clock).Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.After(today) {
			return Date{}, &ValidationError{Field: FieldDate, Reason: ReasonFutureDate}
		}
		if t.Year() < now.Year()-MaxDateAgeYears {
			return Date{}, &ValidationError{Field: FieldDate, Reason: ReasonTooOld}
		}
		return Date{Time: t}, nil
	}

	return Date{}, &ValidationError{Field: FieldDate, Reason: ReasonUnrecognizedFormat}
}

// ValidateCategory checks name against the catalog for the transaction kind.
// Matching is exact and case-sensitive.
func ValidateCategory(name string, allowed []string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: FieldCategory, Reason: ReasonEmptyInput}
	}
	if !slices.Contains(allowed, name) {
		return &ValidationError{Field: FieldCategory, Reason: ReasonNotInCatalog}
	}
	return nil
}

func ValidateKind(value string) (Kind, error) {
	k := Kind(value)
	if !k.Valid() {
		return "", &ValidationError{Field: FieldKind, Reason: ReasonInvalidKind}
	}
	return k, nil
}

// ValidateDescription trims raw and enforces maxLength. A non-positive
// maxLength selects DefaultDescriptionMaxLength.
func ValidateDescription(raw string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultDescriptionMaxLength
	}
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) > maxLength {
		return "", &ValidationError{Field: FieldDescription, Reason: ReasonTooLong, Limit: maxLength}
	}
	return s, nil
}

// RawTransaction is a transaction as typed by the user.
type RawTransaction struct {
	Kind        string
	Amount      string
	Category    string
	Description string
	Date        string

	// DefaultToday substitutes the current date for an empty Date.
	DefaultToday bool
}

// Validator bundles the validators with an injected clock.
type Validator struct {
	clock Clock
}

func NewValidator(clock Clock) *Validator {
	return &Validator{clock: clockOrSystem(clock)}
}

func (v *Validator) Date(raw string) (Date, error) {
	return ValidateDate(raw, v.clock)
}

// Transaction validates every field of raw and returns the first failure.
// catalog resolves the allowed category names for the validated kind, so
// the category list stays owned by the store.
func (v *Validator) Transaction(raw RawTransaction, catalog func(Kind) ([]string, error)) (NewTransaction, error) {
	kind, err := ValidateKind(raw.Kind)
	if err != nil {
		return NewTransaction{}, err
	}

	amount, err := ValidateAmount(raw.Amount)
	if err != nil {
		return NewTransaction{}, err
	}

	allowed, err := catalog(kind)
	if err != nil {
		return NewTransaction{}, err
	}
	if err := ValidateCategory(raw.Category, allowed); err != nil {
		return NewTransaction{}, err
	}

	dateText := raw.Date
	if strings.TrimSpace(dateText) == "" && raw.DefaultToday {
		dateText = v.clock.Now().Format(DateLayout)
	}
	date, err := v.Date(dateText)
	if err != nil {
		return NewTransaction{}, err
	}

	desc, err := ValidateDescription(raw.Description, DefaultDescriptionMaxLength)
	if err != nil {
		return NewTransaction{}, err
	}

	return NewTransaction{
		Kind:        kind,
		Amount:      amount,
		Category:    raw.Category,
		Description: desc,
		Date:        date,
	}, nil
}
