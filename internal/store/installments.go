package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
)

// CreateInstallmentPurchase inserts a purchase and its full obligation
// schedule in one commit. A partial schedule is never observable. Field
// validation and schedule construction belong to the installment service;
// this enforces references and atomicity.
func (s *Store) CreateInstallmentPurchase(ctx context.Context, p model.InstallmentPurchase) error {
	totalCents, ok := toCents(p.TotalAmount)
	if !ok {
		return fmt.Errorf("%w: total %s has more than 2 decimal places", ErrValidation, p.TotalAmount)
	}
	perCents, ok := toCents(p.InstallmentAmount)
	if !ok {
		return fmt.Errorf("%w: installment amount %s has more than 2 decimal places", ErrValidation, p.InstallmentAmount)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := accountExists(ctx, tx, p.AccountID); err != nil {
			return err
		}
		if err := checkCategoryRef(ctx, tx, p.CategoryID, model.FlowExpense); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO installment_purchases
			 (id, description, total_cents, installments_count, installment_cents, start_date, account_id, category_id, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Description, totalCents, p.Count, perCents, p.StartDate, p.AccountID, p.CategoryID, string(p.Status),
		); err != nil {
			return fmt.Errorf("inserting installment purchase: %w", err)
		}

		for _, o := range p.Obligations {
			cents, ok := toCents(o.Amount)
			if !ok {
				return fmt.Errorf("%w: obligation %d amount %s has more than 2 decimal places", ErrValidation, o.Number, o.Amount)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO installment_payments (id, purchase_id, number, amount_cents, due_date)
				 VALUES (?, ?, ?, ?, ?)`,
				o.ID, p.ID, o.Number, cents, o.DueDate,
			); err != nil {
				return fmt.Errorf("inserting obligation %d: %w", o.Number, err)
			}
		}
		return nil
	})
}

// SettleObligationParams describes paying a single obligation.
type SettleObligationParams struct {
	PurchaseID   string
	ObligationID string
	PaidDate     date.Date
	Description  string // ledger entry description, built by the service
}

// SettleObligation marks an obligation paid and records the matching
// expense transaction with its balance delta, all in one commit. Paying is
// one-way: an already-paid obligation fails with ErrAlreadyPaid.
func (s *Store) SettleObligation(ctx context.Context, params SettleObligationParams) (model.Transaction, error) {
	if params.PaidDate.IsZero() {
		return model.Transaction{}, fmt.Errorf("%w: paid date is required", ErrValidation)
	}

	var txnID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			amountCents int64
			paidDate    sql.NullString
			accountID   int64
			categoryID  sql.NullInt64
			unpaidLeft  int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT ip.amount_cents, ip.paid_date, p.account_id, p.category_id
			FROM installment_payments ip
			JOIN installment_purchases p ON p.id = ip.purchase_id
			WHERE ip.id = ? AND ip.purchase_id = ?`,
			params.ObligationID, params.PurchaseID,
		).Scan(&amountCents, &paidDate, &accountID, &categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: obligation %s of purchase %s", ErrNotFound, params.ObligationID, params.PurchaseID)
		}
		if err != nil {
			return fmt.Errorf("loading obligation: %w", err)
		}
		if paidDate.Valid {
			return fmt.Errorf("%w: obligation %s", ErrAlreadyPaid, params.ObligationID)
		}

		t := model.Transaction{
			AccountID:   accountID,
			Type:        model.FlowExpense,
			Amount:      fromCents(amountCents),
			Description: params.Description,
			Date:        params.PaidDate,
		}
		if categoryID.Valid {
			t.CategoryID = &categoryID.Int64
		}
		txnID, err = insertTransaction(ctx, tx, t, amountCents)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE installment_payments SET paid_date = ?, transaction_id = ? WHERE id = ?`,
			params.PaidDate, txnID, params.ObligationID,
		); err != nil {
			return fmt.Errorf("marking obligation paid: %w", err)
		}

		// Completed iff no unpaid obligation remains.
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM installment_payments WHERE purchase_id = ? AND paid_date IS NULL`,
			params.PurchaseID,
		).Scan(&unpaidLeft); err != nil {
			return fmt.Errorf("counting unpaid obligations: %w", err)
		}
		if unpaidLeft == 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE installment_purchases SET status = ? WHERE id = ?`,
				string(model.InstallmentCompleted), params.PurchaseID,
			); err != nil {
				return fmt.Errorf("completing purchase: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return s.GetTransaction(ctx, txnID)
}

// DeleteInstallmentPurchase removes a purchase and its obligations. When
// cascadeTransactions is true, ledger entries created by prior payments
// are also deleted (reversing their balance effect); otherwise they stay
// as standalone entries.
func (s *Store) DeleteInstallmentPurchase(ctx context.Context, id string, cascadeTransactions bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var found string
		err := tx.QueryRowContext(ctx, `SELECT id FROM installment_purchases WHERE id = ?`, id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: installment purchase %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("checking purchase: %w", err)
		}

		if cascadeTransactions {
			rows, err := tx.QueryContext(ctx,
				`SELECT transaction_id FROM installment_payments WHERE purchase_id = ? AND transaction_id IS NOT NULL`, id)
			if err != nil {
				return fmt.Errorf("listing payment transactions: %w", err)
			}
			var txnIDs []int64
			for rows.Next() {
				var txnID int64
				if err := rows.Scan(&txnID); err != nil {
					rows.Close()
					return fmt.Errorf("scanning payment transaction id: %w", err)
				}
				txnIDs = append(txnIDs, txnID)
			}
			if err := rows.Close(); err != nil {
				return fmt.Errorf("listing payment transactions: %w", err)
			}
			for _, txnID := range txnIDs {
				if err := deleteTransactionTx(ctx, tx, txnID); err != nil {
					return err
				}
			}
		}

		// Obligations go via ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, `DELETE FROM installment_purchases WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting installment purchase: %w", err)
		}
		return nil
	})
}

// GetInstallmentPurchase returns a purchase with its ordered obligations.
func (s *Store) GetInstallmentPurchase(ctx context.Context, id string) (model.InstallmentPurchase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, total_cents, installments_count, installment_cents,
		       start_date, account_id, category_id, status, created_at
		FROM installment_purchases WHERE id = ?`, id)
	p, err := scanInstallmentPurchase(row)
	if err != nil {
		return model.InstallmentPurchase{}, err
	}
	obligations, err := s.listObligations(ctx, id)
	if err != nil {
		return model.InstallmentPurchase{}, err
	}
	p.Obligations = obligations
	return p, nil
}

// ListInstallmentPurchases returns all purchases with their obligations,
// most recently created first.
func (s *Store) ListInstallmentPurchases(ctx context.Context) ([]model.InstallmentPurchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, total_cents, installments_count, installment_cents,
		       start_date, account_id, category_id, status, created_at
		FROM installment_purchases ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing installment purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.InstallmentPurchase
	for rows.Next() {
		p, err := scanInstallmentPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range purchases {
		obligations, err := s.listObligations(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Obligations = obligations
	}
	return purchases, nil
}

func (s *Store) listObligations(ctx context.Context, purchaseID string) ([]model.Obligation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, purchase_id, number, amount_cents, due_date, paid_date, transaction_id
		FROM installment_payments WHERE purchase_id = ? ORDER BY number`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("listing obligations: %w", err)
	}
	defer rows.Close()

	var out []model.Obligation
	for rows.Next() {
		var (
			o        model.Obligation
			cents    int64
			paidDate sql.NullString
			txnID    sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.PurchaseID, &o.Number, &cents, &o.DueDate, &paidDate, &txnID); err != nil {
			return nil, fmt.Errorf("scanning obligation: %w", err)
		}
		o.Amount = fromCents(cents)
		if paidDate.Valid {
			d, err := date.Parse(paidDate.String)
			if err != nil {
				return nil, err
			}
			o.PaidDate = &d
		}
		if txnID.Valid {
			o.TransactionID = &txnID.Int64
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanInstallmentPurchase(row rowScanner) (model.InstallmentPurchase, error) {
	var (
		p          model.InstallmentPurchase
		totalCents int64
		perCents   int64
		categoryID sql.NullInt64
		status     string
		createdAt  string
	)
	err := row.Scan(&p.ID, &p.Description, &totalCents, &p.Count, &perCents,
		&p.StartDate, &p.AccountID, &categoryID, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InstallmentPurchase{}, fmt.Errorf("%w: installment purchase", ErrNotFound)
	}
	if err != nil {
		return model.InstallmentPurchase{}, fmt.Errorf("scanning installment purchase: %w", err)
	}
	p.TotalAmount = fromCents(totalCents)
	p.InstallmentAmount = fromCents(perCents)
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	p.Status = model.InstallmentStatus(status)
	p.CreatedAt = parseTimestamp(createdAt)
	return p, nil
}
