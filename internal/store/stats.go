package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
)

// Read-only aggregates backing the statistics engine. Month bucketing uses
// the stored date text's year-month prefix, so results never drift across
// timezone boundaries.

// SumAmounts returns the total amount of transactions of one type with
// date in [from, to] inclusive. Zero-valued bounds are open.
func (s *Store) SumAmounts(ctx context.Context, flowType model.FlowType, from, to date.Date) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE type = ?`
	args := []any{string(flowType)}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.String())
	}

	var cents int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("summing %s transactions: %w", flowType, err)
	}
	return fromCents(cents), nil
}

// MonthFlows holds one calendar month's income and expense totals.
type MonthFlows struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// FlowsByMonth returns income/expense totals grouped by year-month for
// transactions dated within [fromMonth, toMonth] inclusive ("2006-01"
// identifiers). Months with no transactions are absent from the map.
func (s *Store) FlowsByMonth(ctx context.Context, fromMonth, toMonth string) (map[string]MonthFlows, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(date, 1, 7) AS month,
		       COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE substr(date, 1, 7) >= ? AND substr(date, 1, 7) <= ?
		GROUP BY month`,
		fromMonth, toMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("grouping flows by month: %w", err)
	}
	defer rows.Close()

	out := make(map[string]MonthFlows)
	for rows.Next() {
		var (
			month            string
			income, expenses int64
		)
		if err := rows.Scan(&month, &income, &expenses); err != nil {
			return nil, fmt.Errorf("scanning month flows: %w", err)
		}
		out[month] = MonthFlows{Income: fromCents(income), Expenses: fromCents(expenses)}
	}
	return out, rows.Err()
}

// CategoryTotal is an expense sum attributed to one category.
type CategoryTotal struct {
	CategoryID int64           `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
	Total      decimal.Decimal `json:"total"`
}

// ExpensesByCategory sums expense amounts per category for dates in
// [from, to] inclusive, largest first. Categories without matching
// transactions are omitted, as are uncategorized expenses.
func (s *Store) ExpensesByCategory(ctx context.Context, from, to date.Date) ([]CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, c.color, c.icon, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.type = 'expense'`
	var args []any
	if !from.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, to.String())
	}
	query += ` GROUP BY c.id, c.name, c.color, c.icon ORDER BY total DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("grouping expenses by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var (
			ct    CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &ct.Icon, &cents); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		ct.Total = fromCents(cents)
		out = append(out, ct)
	}
	return out, rows.Err()
}

// TopExpenses returns the limit largest expense transactions with date in
// [from, to] inclusive (open bounds when zero), ties broken by most
// recent date first.
func (s *Store) TopExpenses(ctx context.Context, limit int, from, to date.Date) ([]model.Transaction, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE type = 'expense'`
	var args []any
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY amount_cents DESC, date DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing top expenses: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
