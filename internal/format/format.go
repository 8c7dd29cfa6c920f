// Package format renders ledger values as Italian display strings.
//
// Every function assumes already-validated input and never fails: text that
// cannot be parsed is returned unchanged.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"budgettracker/internal/core"
)

// DefaultDatePattern is used when Date is called with an empty pattern.
const DefaultDatePattern = "DD/MM/YYYY"

// CurrencySymbol is appended to formatted amounts.
const CurrencySymbol = "€"

var monthNames = [12]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// Tokens accepted in output patterns, both spelled-out and strftime style.
var patternReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"MM", "01",
	"DD", "02",
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
)

func printer() *message.Printer {
	return message.NewPrinter(language.Italian)
}

// Currency renders an amount with grouped thousands and two decimals,
// e.g. 1234.5 -> "1.234,50 €".
func Currency(amount decimal.Decimal) string {
	return printer().Sprintf("%.2f", amount.Round(core.AmountPlaces).InexactFloat64()) + " " + CurrencySymbol
}

// Percentage renders value with one decimal, e.g. 25.5 -> "25,5%".
func Percentage(value decimal.Decimal) string {
	return printer().Sprintf("%.1f", value.Round(1).InexactFloat64()) + "%"
}

// Date reformats a canonical YYYY-MM-DD date using pattern.
func Date(canonical, pattern string) string {
	if pattern == "" {
		pattern = DefaultDatePattern
	}
	t, err := time.Parse(core.DateLayout, canonical)
	if err != nil {
		return canonical
	}
	return t.Format(patternReplacer.Replace(pattern))
}

// MonthLabel maps a YYYY-MM identifier to "MonthName Year".
func MonthLabel(monthID string) string {
	t, err := time.Parse("2006-1", monthID)
	if err != nil {
		return monthID
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}
