// Package salary manages the singleton salary schedule and its idempotent
// monthly processing.
package salary

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

// Description used for the generated income transaction.
const paymentDescription = "Monthly salary"

// Service manages salary configuration and processing.
type Service struct {
	store *store.Store
}

// NewService creates a salary Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Get returns the configured salary, or ErrNotFound when none is set.
func (s *Service) Get(ctx context.Context) (model.SalaryConfig, error) {
	return s.store.GetSalaryConfig(ctx)
}

// Save creates or replaces the salary configuration. The last-paid month
// marker is preserved so re-saving cannot re-trigger a paid month.
func (s *Service) Save(ctx context.Context, amount decimal.Decimal, accountID int64, categoryID *int64) (model.SalaryConfig, error) {
	if !amount.IsPositive() {
		return model.SalaryConfig{}, fmt.Errorf("%w: amount must be positive, got %s", store.ErrValidation, amount)
	}
	err := s.store.SaveSalaryConfig(ctx, model.SalaryConfig{
		Amount:     amount,
		AccountID:  accountID,
		CategoryID: categoryID,
	})
	if err != nil {
		return model.SalaryConfig{}, err
	}
	return s.store.GetSalaryConfig(ctx)
}

// Process creates today's salary income transaction and marks the month
// paid. Calling it twice in the same calendar month fails the second call
// with ErrAlreadyProcessed and creates no duplicate transaction.
func (s *Service) Process(ctx context.Context, today date.Date) (model.Transaction, error) {
	return s.store.RecordSalaryPayment(ctx, today, paymentDescription)
}

// Due reports whether the salary should be processed on the given day:
// a configuration exists, the month is unpaid, and the day is on or after
// the month's first business day.
func (s *Service) Due(ctx context.Context, today date.Date) (bool, error) {
	cfg, err := s.store.GetSalaryConfig(ctx)
	if err != nil {
		return false, err
	}
	if cfg.LastPaidMonth == today.YearMonth() {
		return false, nil
	}
	first := FirstBusinessDay(today.Year(), today.Month())
	return !today.Before(first), nil
}

// FirstBusinessDay returns the first day of the month shifted off
// weekends: a Saturday or Sunday 1st rolls forward to Monday.
func FirstBusinessDay(year int, month time.Month) date.Date {
	d := date.New(year, month, 1)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}
