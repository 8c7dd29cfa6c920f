package google

import (
	"fmt"
	"strconv"
	"strings"

	"budgettracker/internal/core"
)

// Columns: ID, Date, Kind, Category, Description, Amount, Created.
const lastColumn = "G"

func transactionRow(tx core.Transaction) []any {
	created := ""
	if !tx.CreatedAt.IsZero() {
		created = tx.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Kind.String(),
		tx.Category,
		tx.Description,
		tx.Amount.InexactFloat64(),
		created,
	}
}

// findRowByID returns the 1-based sheet row whose first cell is id, or 0.
func findRowByID(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err == nil && v == id {
			return i + 1
		}
	}
	return 0
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
