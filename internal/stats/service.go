// Package stats computes point-in-time and windowed aggregates over the
// ledger. All queries are read-only and take an explicit reference date or
// range, so results are deterministic and testable without a wall clock.
package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

// Service answers statistics queries against the ledger store.
type Service struct {
	store *store.Store
}

// NewService creates a statistics Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// CurrentStats is the dashboard headline for a reference month.
type CurrentStats struct {
	TotalBalance    decimal.Decimal `json:"totalBalance"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	MonthlyBalance  decimal.Decimal `json:"monthlyBalance"`
}

// Current returns the total balance across all accounts and the income,
// expense, and net totals for ref's calendar month.
func (s *Service) Current(ctx context.Context, ref date.Date) (CurrentStats, error) {
	total, err := s.store.TotalBalance(ctx)
	if err != nil {
		return CurrentStats{}, err
	}
	period, err := s.Period(ctx, ref.MonthStart(), ref.MonthEnd())
	if err != nil {
		return CurrentStats{}, err
	}
	return CurrentStats{
		TotalBalance:    total,
		MonthlyIncome:   period.Income,
		MonthlyExpenses: period.Expenses,
		MonthlyBalance:  period.Balance,
	}, nil
}

// PeriodTotals holds income/expense/net sums for an inclusive date range.
type PeriodTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// Period returns totals for transactions dated in [start, end] inclusive.
func (s *Service) Period(ctx context.Context, start, end date.Date) (PeriodTotals, error) {
	income, err := s.store.SumAmounts(ctx, model.FlowIncome, start, end)
	if err != nil {
		return PeriodTotals{}, err
	}
	expenses, err := s.store.SumAmounts(ctx, model.FlowExpense, start, end)
	if err != nil {
		return PeriodTotals{}, err
	}
	return PeriodTotals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}, nil
}

// ExpensesByCategory sums expenses per category for the inclusive range,
// largest first. Categories with no matching transactions are omitted.
func (s *Service) ExpensesByCategory(ctx context.Context, start, end date.Date) ([]store.CategoryTotal, error) {
	return s.store.ExpensesByCategory(ctx, start, end)
}

// MonthTotals is one month's entry in a balance history series.
type MonthTotals struct {
	Month    string          `json:"month"` // "2006-01"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// BalanceHistory returns totals for the last monthsBack calendar months
// ending with ref's month, oldest first. Months with no transactions
// report zeros rather than being omitted.
func (s *Service) BalanceHistory(ctx context.Context, ref date.Date, monthsBack int) ([]MonthTotals, error) {
	if monthsBack <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", store.ErrValidation, monthsBack)
	}

	first := ref.MonthStart().AddMonths(-(monthsBack - 1))
	flows, err := s.store.FlowsByMonth(ctx, first.YearMonth(), ref.YearMonth())
	if err != nil {
		return nil, err
	}

	history := make([]MonthTotals, 0, monthsBack)
	for i := 0; i < monthsBack; i++ {
		month := first.AddMonths(i).YearMonth()
		f := flows[month] // zero-valued when absent
		history = append(history, MonthTotals{
			Month:    month,
			Income:   f.Income,
			Expenses: f.Expenses,
			Balance:  f.Income.Sub(f.Expenses),
		})
	}
	return history, nil
}

// Comparison pairs a reference month's totals with the preceding month's,
// for period-over-period display by the caller.
type Comparison struct {
	Current  MonthTotals `json:"current"`
	Previous MonthTotals `json:"previous"`
}

// MonthlyComparison returns ref's month vs the immediately preceding one.
func (s *Service) MonthlyComparison(ctx context.Context, ref date.Date) (Comparison, error) {
	history, err := s.BalanceHistory(ctx, ref, 2)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Previous: history[0], Current: history[1]}, nil
}

// TopExpenses returns the limit largest expense transactions in the
// inclusive range (all time when the bounds are zero), ties broken by
// most recent date first.
func (s *Service) TopExpenses(ctx context.Context, limit int, from, to date.Date) ([]model.Transaction, error) {
	return s.store.TopExpenses(ctx, limit, from, to)
}
