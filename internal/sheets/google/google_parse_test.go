package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/core"
)

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:          7,
		Kind:        core.Expense,
		Amount:      decimal.RequireFromString("45.50"),
		Category:    "Groceries",
		Description: "weekly shop",
		Date:        core.NewDate(2025, 6, 1),
		CreatedAt:   time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
	}
	row := transactionRow(tx)
	want := []any{int64(7), "2025-06-01", "expense", "Groceries", "weekly shop", 45.5, "2025-06-01 18:30:00"}
	if len(row) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d: got %v (%T), want %v (%T)", i, row[i], row[i], want[i], want[i])
		}
	}
}

func TestFindRowByID(t *testing.T) {
	values := [][]any{
		{"ID"},
		{},
		{"3"},
		{float64(12)},
		{" 42 "},
	}
	tests := []struct {
		id   int64
		want int
	}{
		{3, 3},
		{12, 4},
		{42, 5},
		{99, 0},
	}
	for _, tt := range tests {
		if got := findRowByID(values, tt.id); got != tt.want {
			t.Errorf("findRowByID(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"2024 Transactions", 2025, "2024 Transactions"},
		{"  Ledger ", 2023, "2023 Ledger"},
		{"", 2025, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	got, err := loadCredentials(Options{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: "/nope"})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("inline JSON should win, got %q err=%v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	got, err = loadCredentials(Options{CredentialsFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("expected file credentials, got %q err=%v", got, err)
	}

	if _, err := loadCredentials(Options{}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}
