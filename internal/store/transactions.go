package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavo-dev/centavo/internal/model"
)

// signedCents converts a validated transaction amount into its balance
// effect: +cents for income, -cents for expense.
func signedCents(flowType model.FlowType, cents int64) int64 {
	if flowType == model.FlowIncome {
		return cents
	}
	return -cents
}

// validateTransaction checks the fields that do not need database access.
func validateTransaction(t model.Transaction) (int64, error) {
	if !model.ValidFlowType(t.Type) {
		return 0, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}
	if !t.Amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, t.Amount)
	}
	cents, ok := toCents(t.Amount)
	if !ok {
		return 0, fmt.Errorf("%w: amount %s has more than 2 decimal places", ErrValidation, t.Amount)
	}
	if t.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if t.AccountID == 0 {
		return 0, fmt.Errorf("%w: account is required", ErrValidation)
	}
	return cents, nil
}

// CreateTransaction inserts a transaction and applies its balance delta to
// the owning account, atomically.
func (s *Store) CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	cents, err := validateTransaction(t)
	if err != nil {
		return model.Transaction{}, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertTransaction(ctx, tx, t, cents)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return s.GetTransaction(ctx, id)
}

// insertTransaction writes a transaction row plus its balance delta inside
// an existing store transaction. Installment payments, salary processing,
// and investment sales reuse it so their ledger entries go through the
// same validation and balance maintenance as direct entry. Positivity is
// re-checked here because internal callers pass stored or derived amounts
// that never went through validateTransaction.
func insertTransaction(ctx context.Context, tx *sql.Tx, t model.Transaction, cents int64) (int64, error) {
	if cents <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, fromCents(cents))
	}
	if err := accountExists(ctx, tx, t.AccountID); err != nil {
		return 0, err
	}
	if err := checkCategoryRef(ctx, tx, t.CategoryID, t.Type); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, category_id, type, amount_cents, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.CategoryID, string(t.Type), cents, t.Description, t.Date,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading transaction id: %w", err)
	}

	if err := applyBalanceDelta(ctx, tx, t.AccountID, signedCents(t.Type, cents)); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateTransaction replaces a transaction's fields, first reversing the
// old balance delta on the old account and then applying the new delta to
// the new account. Both steps commit together or not at all; the accounts
// may differ.
func (s *Store) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	cents, err := validateTransaction(t)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, t.ID)
		if err != nil {
			return err
		}

		// Reverse before reassigning: applying the new delta first would
		// corrupt both balances when the account changes.
		oldCents, _ := toCents(old.Amount)
		if err := applyBalanceDelta(ctx, tx, old.AccountID, -signedCents(old.Type, oldCents)); err != nil {
			return err
		}

		if err := accountExists(ctx, tx, t.AccountID); err != nil {
			return err
		}
		if err := checkCategoryRef(ctx, tx, t.CategoryID, t.Type); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET account_id = ?, category_id = ?, type = ?, amount_cents = ?, description = ?, date = ?
			 WHERE id = ?`,
			t.AccountID, t.CategoryID, string(t.Type), cents, t.Description, t.Date, t.ID,
		); err != nil {
			return fmt.Errorf("updating transaction: %w", err)
		}

		return applyBalanceDelta(ctx, tx, t.AccountID, signedCents(t.Type, cents))
	})
}

// DeleteTransaction removes a transaction and reverses its balance delta.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteTransactionTx(ctx, tx, id)
	})
}

func deleteTransactionTx(ctx context.Context, tx *sql.Tx, id int64) error {
	old, err := getTransactionTx(ctx, tx, id)
	if err != nil {
		return err
	}
	oldCents, _ := toCents(old.Amount)
	if err := applyBalanceDelta(ctx, tx, old.AccountID, -signedCents(old.Type, oldCents)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

const transactionColumns = `id, account_id, category_id, type, amount_cents, description, date, created_at`

// GetTransaction returns a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, id int64) (model.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any

	if f.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		if !model.ValidFlowType(f.Type) {
			return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, f.Type)
		}
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.Search != "" {
		query += ` AND description LIKE ? COLLATE NOCASE`
		args = append(args, "%"+f.Search+"%")
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
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

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t          model.Transaction
		categoryID sql.NullInt64
		flowType   string
		cents      int64
		createdAt  string
	)
	err := row.Scan(&t.ID, &t.AccountID, &categoryID, &flowType, &cents, &t.Description, &t.Date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("%w: transaction", ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	t.Type = model.FlowType(flowType)
	t.Amount = fromCents(cents)
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}
