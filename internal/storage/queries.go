package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID          int64
	Kind        string
	Amount      float64
	Category    string
	Description sql.NullString
	Date        string
	CreatedAt   string
}

const transactionColumns = `id, kind, amount, category, description, date, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Amount,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.CreatedAt,
	)
	return i, err
}

const createTransaction = `
INSERT INTO transactions (kind, amount, category, description, date, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	Kind        string
	Amount      float64
	Category    string
	Description sql.NullString
	Date        string
	CreatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Kind,
		arg.Amount,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.CreatedAt,
	)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

// An empty Month or Category disables that filter.
const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
WHERE (? = '' OR substr(date, 1, 7) = ?)
  AND (? = '' OR category = ?)
ORDER BY date DESC, created_at DESC, id DESC`

type ListTransactionsParams struct {
	Month    string
	Category string
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.Month, arg.Month, arg.Category, arg.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const firstTransactionDate = `SELECT COALESCE(MIN(date), '') FROM transactions`

func (q *Queries) FirstTransactionDate(ctx context.Context) (string, error) {
	var date string
	err := q.db.QueryRowContext(ctx, firstTransactionDate).Scan(&date)
	return date, err
}

const countCategories = `SELECT COUNT(*) FROM categories`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&count)
	return count, err
}

const createCategory = `INSERT OR IGNORE INTO categories (name, kind) VALUES (?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, name, kind string) error {
	_, err := q.db.ExecContext(ctx, createCategory, name, kind)
	return err
}

const listCategoriesByKind = `SELECT name FROM categories WHERE kind = ? ORDER BY name`

const listAllCategoryNames = `SELECT DISTINCT name FROM categories ORDER BY name`

// ListCategoryNames lists the catalog for kind, or every distinct name when
// kind is empty.
func (q *Queries) ListCategoryNames(ctx context.Context, kind string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = q.db.QueryContext(ctx, listAllCategoryNames)
	} else {
		rows, err = q.db.QueryContext(ctx, listCategoriesByKind, kind)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

const sumByKind = `
SELECT kind, ROUND(SUM(amount), 2)
FROM transactions
WHERE (? = '' OR substr(date, 1, 7) = ?)
GROUP BY kind`

type SumByKindRow struct {
	Kind  string
	Total float64
}

func (q *Queries) SumByKind(ctx context.Context, month string) ([]SumByKindRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByKind, month, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByKindRow
	for rows.Next() {
		var i SumByKindRow
		if err := rows.Scan(&i.Kind, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumExpensesByCategory = `
SELECT category, ROUND(SUM(amount), 2) AS total
FROM transactions
WHERE kind = 'expense'
  AND (? = '' OR substr(date, 1, 7) = ?)
GROUP BY category
ORDER BY total DESC, category ASC`

type CategorySumRow struct {
	Category string
	Total    float64
}

func (q *Queries) SumExpensesByCategory(ctx context.Context, month string) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, sumExpensesByCategory, month, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySumRow
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumByMonth = `
SELECT substr(date, 1, 7) AS month,
       ROUND(COALESCE(SUM(CASE WHEN kind = 'income' THEN amount END), 0), 2) AS income,
       ROUND(COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount END), 0), 2) AS expense
FROM transactions
WHERE substr(date, 1, 7) BETWEEN ? AND ?
GROUP BY month
ORDER BY month`

type MonthSumRow struct {
	Month   string
	Income  float64
	Expense float64
}

func (q *Queries) SumByMonth(ctx context.Context, fromMonth, toMonth string) ([]MonthSumRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByMonth, fromMonth, toMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthSumRow
	for rows.Next() {
		var i MonthSumRow
		if err := rows.Scan(&i.Month, &i.Income, &i.Expense); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
