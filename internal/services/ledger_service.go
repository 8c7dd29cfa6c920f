package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"budgettracker/internal/amqp"
	"budgettracker/internal/cache"
	"budgettracker/internal/core"
	"budgettracker/internal/stats"
	"budgettracker/internal/storage"
)

// Publisher fans ledger changes out to other processes.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
	Close() error
}

// CategoryShare is one slice of the spending breakdown.
type CategoryShare struct {
	Name       string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// Summary is the derived view of one period. An empty Month means all time.
type Summary struct {
	Month        string
	Balance      core.Balance
	Spending     []CategoryShare
	TopCategory  core.CategoryAmount
	Days         int
	DailyAverage decimal.Decimal
	SavingsRate  decimal.Decimal
}

const allTimeKey = "*"

// LedgerService orchestrates validation, the ledger store, the summary cache
// and event publishing.
type LedgerService struct {
	store     *storage.SQLiteRepository
	publisher Publisher
	summaries cache.Cache[Summary]
	// writes counts invalidations so a Summary computed across a write is
	// never left in the cache.
	writes    atomic.Uint64
	validator *core.Validator
	clock     core.Clock
	backupDir string
}

type Option func(*LedgerService)

// WithPublisher enables event publishing after each write.
func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithSummaryCache memoizes Summary per period until the next write.
func WithSummaryCache(c cache.Cache[Summary]) Option {
	return func(s *LedgerService) { s.summaries = c }
}

func WithClock(c core.Clock) Option {
	return func(s *LedgerService) { s.clock = c }
}

// WithBackupDir sets where Backup writes timestamped copies.
func WithBackupDir(dir string) Option {
	return func(s *LedgerService) { s.backupDir = dir }
}

func NewLedgerService(store *storage.SQLiteRepository, opts ...Option) *LedgerService {
	s := &LedgerService{store: store, clock: core.SystemClock, backupDir: "."}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = core.NewValidator(s.clock)
	return s
}

// AddTransaction validates raw against the catalog, stores it and publishes
// a created event. Validation errors are returned untouched.
func (s *LedgerService) AddTransaction(ctx context.Context, raw core.RawTransaction) (core.Transaction, error) {
	n, err := s.validator.Transaction(raw, func(k core.Kind) ([]string, error) {
		return s.store.ListCategories(ctx, k)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.InsertTransaction(ctx, n)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate()

	if err := s.publish(ctx, amqp.TransactionCreated, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event", "id", tx.ID, "error", err)
	}
	return tx, nil
}

// DeleteTransaction removes id and publishes a deleted event. Unknown ids
// are a no-op.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate()

	if err := s.publish(ctx, amqp.TransactionDeleted, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event", "id", id, "error", err)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, t amqp.EventType, tx core.Transaction) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "type", t, "id", tx.ID)
		return nil
	}
	return s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(t, tx))
}

func (s *LedgerService) invalidate() {
	s.writes.Add(1)
	if s.summaries != nil {
		s.summaries.Purge()
	}
}

func (s *LedgerService) Transactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.QueryTransactions(ctx, f)
}

func (s *LedgerService) Categories(ctx context.Context, kind core.Kind) ([]string, error) {
	return s.store.ListCategories(ctx, kind)
}

func (s *LedgerService) Balance(ctx context.Context, month string) (core.Balance, error) {
	return s.store.Balance(ctx, month)
}

func (s *LedgerService) SpendByCategory(ctx context.Context, month string) ([]core.CategoryAmount, error) {
	return s.store.SpendByCategory(ctx, month)
}

// Summary computes balance, spending breakdown and averages for month.
func (s *LedgerService) Summary(ctx context.Context, month string) (Summary, error) {
	key := month
	if key == "" {
		key = allTimeKey
	}
	if s.summaries != nil {
		if sum, ok := s.summaries.Get(key); ok {
			return sum, nil
		}
	}
	gen := s.writes.Load()

	bal, err := s.store.Balance(ctx, month)
	if err != nil {
		return Summary{}, err
	}
	spend, err := s.store.SpendByCategory(ctx, month)
	if err != nil {
		return Summary{}, err
	}

	now := s.clock.Now()
	var days int
	if month == "" {
		first, err := s.store.FirstTransactionDate(ctx)
		if err != nil {
			return Summary{}, err
		}
		days = stats.DaysSince(first, now)
	} else {
		days = stats.DaysInPeriod(month, now)
	}

	total := stats.Total(spend)
	shares := make([]CategoryShare, 0, len(spend))
	for _, c := range spend {
		shares = append(shares, CategoryShare{
			Name:       c.Name,
			Amount:     c.Amount,
			Percentage: stats.CategoryPercentage(c.Amount, total),
		})
	}

	sum := Summary{
		Month:        month,
		Balance:      bal,
		Spending:     shares,
		TopCategory:  stats.TopCategory(spend),
		Days:         days,
		DailyAverage: stats.DailyAverage(bal.Expense, days),
		SavingsRate:  bal.SavingsRate(),
	}
	if s.summaries != nil && s.writes.Load() == gen {
		s.summaries.Set(key, sum)
		if s.writes.Load() != gen {
			s.summaries.Delete(key)
		}
	}
	return sum, nil
}

// Trend returns income and expense for the last n months, oldest first.
func (s *LedgerService) Trend(ctx context.Context, n int) ([]core.MonthTotals, error) {
	months := core.RecentMonths(s.clock.Now(), n)
	if len(months) == 0 {
		return nil, nil
	}
	return s.store.MonthlyTotals(ctx, months[len(months)-1], months[0])
}

// RecentMonths lists the last n month ids, newest first.
func (s *LedgerService) RecentMonths(n int) []string {
	return core.RecentMonths(s.clock.Now(), n)
}

// Backup writes a timestamped copy of the ledger into the backup directory
// and returns its path.
func (s *LedgerService) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := fmt.Sprintf("budgettracker-%s.db", s.clock.Now().Format("20060102-150405"))
	dest := filepath.Join(s.backupDir, name)
	if err := s.store.Backup(ctx, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Close closes the store and the publisher.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
