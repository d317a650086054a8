package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/model"
)

// CreateAccount inserts a new account and returns it with its id set.
func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.Name == "" {
		return model.Account{}, fmt.Errorf("%w: account name is required", ErrValidation)
	}
	if !model.ValidAccountType(a.Type) {
		return model.Account{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, a.Type)
	}
	cents, ok := toCents(a.Balance)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: balance %s has more than 2 decimal places", ErrValidation, a.Balance)
	}
	if a.Color == "" {
		a.Color = "#3B82F6"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (name, type, balance_cents, color) VALUES (?, ?, ?, ?)`,
		a.Name, string(a.Type), cents, a.Color,
	)
	if err != nil {
		return model.Account{}, fmt.Errorf("inserting account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account id: %w", err)
	}
	return s.GetAccount(ctx, id)
}

// UpdateAccount updates an account's descriptive fields. Balance is not
// touched here: it only moves through the transaction write path.
func (s *Store) UpdateAccount(ctx context.Context, a model.Account) error {
	if a.Name == "" {
		return fmt.Errorf("%w: account name is required", ErrValidation)
	}
	if !model.ValidAccountType(a.Type) {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, a.Type)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, color = ? WHERE id = ?`,
		a.Name, string(a.Type), a.Color, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, a.ID)
	}
	return nil
}

// DeleteAccount removes an account and cascades to everything referencing
// it: transactions, installment schedules, and the salary config. No
// orphaned ledger entries survive.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := accountExists(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM salary_config WHERE account_id = ?`, id); err != nil {
			return fmt.Errorf("deleting salary config: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM installment_purchases WHERE account_id = ?`, id); err != nil {
			return fmt.Errorf("deleting installment purchases: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, id); err != nil {
			return fmt.Errorf("deleting transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting account: %w", err)
		}
		return nil
	})
}

// GetAccount returns an account by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, balance_cents, color, created_at FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// ListAccounts returns all accounts, most recently created first.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, balance_cents, color, created_at FROM accounts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// TotalBalance returns the sum of all account balances.
func (s *Store) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance_cents), 0) FROM accounts`).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing balances: %w", err)
	}
	return fromCents(cents), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var (
		a         model.Account
		accType   string
		cents     int64
		createdAt string
	)
	err := row.Scan(&a.ID, &a.Name, &accType, &cents, &a.Color, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("%w: account", ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	a.Type = model.AccountType(accType)
	a.Balance = fromCents(cents)
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

// accountExists verifies an account reference inside a transaction.
func accountExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var found int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("checking account %d: %w", id, err)
	}
	return nil
}

// applyBalanceDelta adds deltaCents to an account balance within tx. This
// is the balance maintainer: it runs only alongside a transaction-row
// mutation inside the same commit boundary.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, accountID, deltaCents int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`, deltaCents, accountID)
	if err != nil {
		return fmt.Errorf("adjusting balance of account %d: %w", accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjusting balance of account %d: %w", accountID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
	}
	return nil
}
