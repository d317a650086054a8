package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
)

// GetSalaryConfig returns the singleton salary configuration.
func (s *Store) GetSalaryConfig(ctx context.Context) (model.SalaryConfig, error) {
	var (
		cfg        model.SalaryConfig
		cents      int64
		categoryID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, account_id, category_id, last_paid_month FROM salary_config WHERE id = 1`,
	).Scan(&cfg.ID, &cents, &cfg.AccountID, &categoryID, &cfg.LastPaidMonth)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SalaryConfig{}, fmt.Errorf("%w: salary config", ErrNotFound)
	}
	if err != nil {
		return model.SalaryConfig{}, fmt.Errorf("loading salary config: %w", err)
	}
	cfg.Amount = fromCents(cents)
	if categoryID.Valid {
		cfg.CategoryID = &categoryID.Int64
	}
	return cfg, nil
}

// SaveSalaryConfig creates or replaces the singleton salary configuration.
// LastPaidMonth is preserved across saves; only processing moves it.
func (s *Store) SaveSalaryConfig(ctx context.Context, cfg model.SalaryConfig) error {
	cents, ok := toCents(cfg.Amount)
	if !ok {
		return fmt.Errorf("%w: amount %s has more than 2 decimal places", ErrValidation, cfg.Amount)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := accountExists(ctx, tx, cfg.AccountID); err != nil {
			return err
		}
		if err := checkCategoryRef(ctx, tx, cfg.CategoryID, model.FlowIncome); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO salary_config (id, amount_cents, account_id, category_id)
			VALUES (1, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET amount_cents = excluded.amount_cents,
				account_id = excluded.account_id, category_id = excluded.category_id`,
			cents, cfg.AccountID, cfg.CategoryID,
		); err != nil {
			return fmt.Errorf("saving salary config: %w", err)
		}
		return nil
	})
}

// RecordSalaryPayment creates the month's income transaction and advances
// last_paid_month in one commit. The guard re-reads last_paid_month inside
// the transaction, so processing is idempotent per calendar month even
// under concurrent calls.
func (s *Store) RecordSalaryPayment(ctx context.Context, payDate date.Date, description string) (model.Transaction, error) {
	if payDate.IsZero() {
		return model.Transaction{}, fmt.Errorf("%w: pay date is required", ErrValidation)
	}
	month := payDate.YearMonth()

	var txnID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			cents      int64
			accountID  int64
			categoryID sql.NullInt64
			lastPaid   string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT amount_cents, account_id, category_id, last_paid_month FROM salary_config WHERE id = 1`,
		).Scan(&cents, &accountID, &categoryID, &lastPaid)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: salary config", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("loading salary config: %w", err)
		}
		if lastPaid == month {
			return fmt.Errorf("%w: %s", ErrAlreadyProcessed, month)
		}

		t := model.Transaction{
			AccountID:   accountID,
			Type:        model.FlowIncome,
			Amount:      fromCents(cents),
			Description: description,
			Date:        payDate,
		}
		if categoryID.Valid {
			t.CategoryID = &categoryID.Int64
		}
		txnID, err = insertTransaction(ctx, tx, t, cents)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE salary_config SET last_paid_month = ? WHERE id = 1`, month,
		); err != nil {
			return fmt.Errorf("recording paid month: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return s.GetTransaction(ctx, txnID)
}
