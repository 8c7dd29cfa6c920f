package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"budgettracker/internal/core"

	_ "modernc.org/sqlite"
)

// AllCategories disables category filtering in QueryTransactions.
const AllCategories = "all"

// CreatedAtLayout is the storage layout of record-creation timestamps.
const CreatedAtLayout = "2006-01-02 15:04:05"

var (
	ErrClosed   = errors.New("ledger store is closed")
	ErrNotFound = errors.New("transaction not found")
)

// Error wraps a storage-engine failure with the operation that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// TransactionFilter narrows QueryTransactions. Empty fields match all.
type TransactionFilter struct {
	Month    string // YYYY-MM
	Category string // AllCategories or "" disables the filter
}

// SQLiteRepository owns the durable ledger: transactions and the category
// catalog.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
	clock   core.Clock
	closed  atomic.Bool
}

// NewSQLiteRepository opens (or creates) the ledger at dbPath, applies the
// schema and seeds the default catalog when it is empty. A nil clock uses
// the system clock for creation timestamps.
func NewSQLiteRepository(dbPath string, clock core.Clock) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, storeErr("initialize", fmt.Errorf("create db directory: %w", err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeErr("initialize", fmt.Errorf("open sqlite database: %w", err))
	}
	// Single handle for the process lifetime.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeErr("initialize", fmt.Errorf("ping database: %w", err))
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, storeErr("initialize", err)
	}

	if clock == nil {
		clock = core.SystemClock
	}
	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
		clock:   clock,
	}

	if err := repo.seedCategories(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) seedCategories(ctx context.Context) error {
	count, err := r.queries.CountCategories(ctx)
	if err != nil {
		return storeErr("initialize", fmt.Errorf("count categories: %w", err))
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("initialize", fmt.Errorf("begin seed: %w", err))
	}
	defer tx.Rollback()

	q := New(tx)
	for _, c := range core.DefaultCategories {
		if err := q.CreateCategory(ctx, c.Name, string(c.Kind)); err != nil {
			return storeErr("initialize", fmt.Errorf("seed category %s/%s: %w", c.Kind, c.Name, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("initialize", fmt.Errorf("commit seed: %w", err))
	}

	slog.InfoContext(ctx, "Seeded default category catalog", "count", len(core.DefaultCategories))
	return nil
}

// Path returns the database file backing the store.
func (r *SQLiteRepository) Path() string {
	return r.path
}

func (r *SQLiteRepository) checkOpen(op string) error {
	if r.closed.Load() {
		return storeErr(op, ErrClosed)
	}
	return nil
}

// Close releases the handle. Later operations fail with ErrClosed.
func (r *SQLiteRepository) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	if err := r.db.Close(); err != nil {
		return storeErr("close", err)
	}
	return nil
}

// InsertTransaction stores n with a fresh id and creation timestamp. Callers
// validate first; the schema constraints are only a last-resort guard.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := r.checkOpen("insert"); err != nil {
		return core.Transaction{}, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Kind:        string(n.Kind),
		Amount:      core.RoundAmount(n.Amount).InexactFloat64(),
		Category:    n.Category,
		Description: sql.NullString{String: n.Description, Valid: n.Description != ""},
		Date:        n.Date.String(),
		CreatedAt:   r.clock.Now().Format(CreatedAtLayout),
	})
	if err != nil {
		return core.Transaction{}, storeErr("insert", fmt.Errorf("create transaction: %w", err))
	}

	tx, err := toTransaction(row)
	if err != nil {
		return core.Transaction{}, storeErr("insert", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount.StringFixed(2),
		"category", tx.Category,
		"date", tx.Date.String())

	return tx, nil
}

// GetTransaction returns the transaction with id, or ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	if err := r.checkOpen("get"); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, storeErr("get", ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, storeErr("get", fmt.Errorf("get transaction %d: %w", id, err))
	}
	tx, err := toTransaction(row)
	if err != nil {
		return core.Transaction{}, storeErr("get", err)
	}
	return tx, nil
}

// QueryTransactions returns matching records, newest date first and, within
// a day, most recently entered first.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	if err := r.checkOpen("query"); err != nil {
		return nil, err
	}

	category := f.Category
	if category == AllCategories {
		category = ""
	}

	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{Month: f.Month, Category: category})
	if err != nil {
		return nil, storeErr("query", fmt.Errorf("list transactions: %w", err))
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return nil, storeErr("query", err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// DeleteTransaction removes id. Deleting a missing id is a no-op.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if err := r.checkOpen("delete"); err != nil {
		return err
	}
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return storeErr("delete", fmt.Errorf("delete transaction %d: %w", id, err))
	}
	if n == 0 {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListCategories returns catalog names for kind, alphabetically. An empty
// kind lists every distinct name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, kind core.Kind) ([]string, error) {
	if err := r.checkOpen("list categories"); err != nil {
		return nil, err
	}
	names, err := r.queries.ListCategoryNames(ctx, string(kind))
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return names, nil
}

// Balance sums income and expense over month ("" for all time).
func (r *SQLiteRepository) Balance(ctx context.Context, month string) (core.Balance, error) {
	if err := r.checkOpen("balance"); err != nil {
		return core.Balance{}, err
	}
	rows, err := r.queries.SumByKind(ctx, month)
	if err != nil {
		return core.Balance{}, storeErr("balance", fmt.Errorf("sum by kind: %w", err))
	}

	income, expense := core.AmountFromFloat(0), core.AmountFromFloat(0)
	for _, row := range rows {
		switch core.Kind(row.Kind) {
		case core.Income:
			income = core.AmountFromFloat(row.Total)
		case core.Expense:
			expense = core.AmountFromFloat(row.Total)
		}
	}
	return core.NewBalance(income, expense), nil
}

// SpendByCategory sums expenses per category over month, largest first.
// Equal totals are ordered by category name.
func (r *SQLiteRepository) SpendByCategory(ctx context.Context, month string) ([]core.CategoryAmount, error) {
	if err := r.checkOpen("spend by category"); err != nil {
		return nil, err
	}
	rows, err := r.queries.SumExpensesByCategory(ctx, month)
	if err != nil {
		return nil, storeErr("spend by category", err)
	}
	out := make([]core.CategoryAmount, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.CategoryAmount{Name: row.Category, Amount: core.AmountFromFloat(row.Total)})
	}
	return out, nil
}

// MonthlyTotals returns income and expense per month for every month in
// [from, to], both YYYY-MM. Months without transactions report zeros.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, from, to string) ([]core.MonthTotals, error) {
	if err := r.checkOpen("monthly totals"); err != nil {
		return nil, err
	}
	start, err := time.Parse(core.MonthLayout, from)
	if err != nil {
		return nil, storeErr("monthly totals", fmt.Errorf("invalid start month %q: %w", from, err))
	}
	end, err := time.Parse(core.MonthLayout, to)
	if err != nil {
		return nil, storeErr("monthly totals", fmt.Errorf("invalid end month %q: %w", to, err))
	}

	rows, err := r.queries.SumByMonth(ctx, from, to)
	if err != nil {
		return nil, storeErr("monthly totals", err)
	}
	byMonth := make(map[string]MonthSumRow, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row
	}

	var out []core.MonthTotals
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		id := m.Format(core.MonthLayout)
		row := byMonth[id]
		out = append(out, core.MonthTotals{
			Month:   id,
			Income:  core.AmountFromFloat(row.Income),
			Expense: core.AmountFromFloat(row.Expense),
		})
	}
	return out, nil
}

// FirstTransactionDate returns the oldest transaction date, or the zero Date
// for an empty ledger.
func (r *SQLiteRepository) FirstTransactionDate(ctx context.Context) (core.Date, error) {
	if err := r.checkOpen("first date"); err != nil {
		return core.Date{}, err
	}
	s, err := r.queries.FirstTransactionDate(ctx)
	if err != nil {
		return core.Date{}, storeErr("first date", err)
	}
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, storeErr("first date", err)
	}
	return d, nil
}

// Backup writes a byte-identical copy of the database file to destination.
// The copy goes to a temporary file in the destination directory and is
// renamed into place once complete.
func (r *SQLiteRepository) Backup(ctx context.Context, destination string) error {
	if err := r.checkOpen("backup"); err != nil {
		return err
	}

	src, err := os.Open(r.path)
	if err != nil {
		return storeErr("backup", fmt.Errorf("open source: %w", err))
	}
	defer src.Close()

	srcInfo, err := src.Stat()
	if err != nil {
		return storeErr("backup", fmt.Errorf("stat source: %w", err))
	}
	if dstInfo, err := os.Stat(destination); err == nil && os.SameFile(srcInfo, dstInfo) {
		return storeErr("backup", fmt.Errorf("destination %s is the live database", destination))
	}

	tmp, err := os.CreateTemp(filepath.Dir(destination), ".backup-*")
	if err != nil {
		return storeErr("backup", fmt.Errorf("create destination: %w", err))
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	written, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		return storeErr("backup", fmt.Errorf("copy database: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return storeErr("backup", fmt.Errorf("sync destination: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storeErr("backup", fmt.Errorf("close destination: %w", err))
	}
	if err := os.Chmod(tmpName, srcInfo.Mode().Perm()); err != nil {
		os.Remove(tmpName)
		return storeErr("backup", fmt.Errorf("set permissions: %w", err))
	}
	if err := os.Rename(tmpName, destination); err != nil {
		os.Remove(tmpName)
		return storeErr("backup", fmt.Errorf("move backup into place: %w", err))
	}
	// Keep the source modification time, like a plain file copy would.
	_ = os.Chtimes(destination, srcInfo.ModTime(), srcInfo.ModTime())

	slog.InfoContext(ctx, "Database backup written", "destination", destination, "bytes", written)
	return nil
}

func toTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", row.ID, err)
	}
	createdAt, err := time.ParseInLocation(CreatedAtLayout, row.CreatedAt, time.Local)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: invalid created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Kind:        core.Kind(row.Kind),
		Amount:      core.AmountFromFloat(row.Amount),
		Category:    row.Category,
		Description: row.Description.String,
		Date:        date,
		CreatedAt:   createdAt,
	}, nil
}
