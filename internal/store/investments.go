package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
)

const positionColumns = `id, ticker, name, type, quantity, average_price, total_invested,
	current_price, current_value, profit_loss, profit_loss_percent, notes, created_at, updated_at`

// CreatePosition inserts an investment position, optionally together with
// its funding expense transaction. Both land in one commit, so a funded
// purchase can never exist without its ledger entry.
func (s *Store) CreatePosition(ctx context.Context, p model.Position, funding *model.Transaction) error {
	var fundingCents int64
	if funding != nil {
		var err error
		if fundingCents, err = validateTransaction(*funding); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO positions (id, ticker, name, type, quantity, average_price, total_invested,
				current_price, current_value, profit_loss, profit_loss_percent, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Ticker, p.Name, p.Type,
			p.Quantity.String(), p.AveragePrice.String(), p.TotalInvested.String(),
			decimalString(p.CurrentPrice), decimalString(p.CurrentValue),
			decimalString(p.ProfitLoss), decimalString(p.ProfitLossPct), p.Notes,
		); err != nil {
			return fmt.Errorf("inserting position: %w", err)
		}

		if funding != nil {
			if _, err := insertTransaction(ctx, tx, *funding, fundingCents); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePosition persists a position's fields, derived values included.
func (s *Store) UpdatePosition(ctx context.Context, p model.Position) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET ticker = ?, name = ?, type = ?, quantity = ?, average_price = ?,
			total_invested = ?, current_price = ?, current_value = ?, profit_loss = ?,
			profit_loss_percent = ?, notes = ?, updated_at = datetime('now')
		WHERE id = ?`,
		p.Ticker, p.Name, p.Type,
		p.Quantity.String(), p.AveragePrice.String(), p.TotalInvested.String(),
		decimalString(p.CurrentPrice), decimalString(p.CurrentValue),
		decimalString(p.ProfitLoss), decimalString(p.ProfitLossPct), p.Notes, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating position: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: position %s", ErrNotFound, p.ID)
	}
	return nil
}

// DeletePosition removes a position. The ledger is untouched.
func (s *Store) DeletePosition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting position: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	return nil
}

// GetPosition returns a position by id.
func (s *Store) GetPosition(ctx context.Context, id string) (model.Position, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	return scanPosition(row)
}

// ListPositions returns all positions, most recently created first.
func (s *Store) ListPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	defer rows.Close()

	var out []model.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SellPositionParams describes realizing part or all of a position.
// Proceeds is the 2dp amount credited to the account; the realized P/L
// math belongs to the investment service.
type SellPositionParams struct {
	PositionID  string
	Quantity    decimal.Decimal
	Proceeds    decimal.Decimal
	AccountID   int64
	CategoryID  *int64
	Date        date.Date
	Description string
}

// SellPosition decrements a position's quantity (deleting it at zero) and
// credits the sale proceeds to an account as an income transaction, all in
// one commit. The quantity guard re-checks stored state inside the
// transaction so a concurrent sell cannot oversell.
func (s *Store) SellPosition(ctx context.Context, params SellPositionParams) (decimal.Decimal, error) {
	proceedsCents, ok := toCents(params.Proceeds)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: proceeds %s has more than 2 decimal places", ErrValidation, params.Proceeds)
	}

	var remaining decimal.Decimal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ?`, params.PositionID)
		p, err := scanPosition(row)
		if err != nil {
			return err
		}
		if params.Quantity.GreaterThan(p.Quantity) {
			return fmt.Errorf("%w: selling %s of %s held", ErrInsufficientQuantity, params.Quantity, p.Quantity)
		}

		t := model.Transaction{
			AccountID:   params.AccountID,
			CategoryID:  params.CategoryID,
			Type:        model.FlowIncome,
			Amount:      params.Proceeds,
			Description: params.Description,
			Date:        params.Date,
		}
		if _, err := insertTransaction(ctx, tx, t, proceedsCents); err != nil {
			return err
		}

		remaining = p.Quantity.Sub(params.Quantity)
		if remaining.IsZero() {
			if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, params.PositionID); err != nil {
				return fmt.Errorf("deleting emptied position: %w", err)
			}
			return nil
		}

		p.Quantity = remaining
		p.Revalue()
		if _, err := tx.ExecContext(ctx, `
			UPDATE positions SET quantity = ?, total_invested = ?, current_value = ?,
				profit_loss = ?, profit_loss_percent = ?, updated_at = datetime('now')
			WHERE id = ?`,
			p.Quantity.String(), p.TotalInvested.String(),
			decimalString(p.CurrentValue), decimalString(p.ProfitLoss),
			decimalString(p.ProfitLossPct), params.PositionID,
		); err != nil {
			return fmt.Errorf("updating sold position: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

func scanPosition(row rowScanner) (model.Position, error) {
	var (
		p                    model.Position
		quantity, avg, total string
		price, value         sql.NullString
		pl, plPct            sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.Ticker, &p.Name, &p.Type, &quantity, &avg, &total,
		&price, &value, &pl, &plPct, &p.Notes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, fmt.Errorf("%w: position", ErrNotFound)
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("scanning position: %w", err)
	}

	if p.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return model.Position{}, fmt.Errorf("parsing quantity %q: %w", quantity, err)
	}
	if p.AveragePrice, err = decimal.NewFromString(avg); err != nil {
		return model.Position{}, fmt.Errorf("parsing average price %q: %w", avg, err)
	}
	if p.TotalInvested, err = decimal.NewFromString(total); err != nil {
		return model.Position{}, fmt.Errorf("parsing total invested %q: %w", total, err)
	}
	if p.CurrentPrice, err = nullDecimal(price); err != nil {
		return model.Position{}, err
	}
	if p.CurrentValue, err = nullDecimal(value); err != nil {
		return model.Position{}, err
	}
	if p.ProfitLoss, err = nullDecimal(pl); err != nil {
		return model.Position{}, err
	}
	if p.ProfitLossPct, err = nullDecimal(plPct); err != nil {
		return model.Position{}, err
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return p, nil
}
