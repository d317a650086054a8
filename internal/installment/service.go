// Package installment splits a purchase into dated payment obligations and
// reconciles payments against the ledger.
package installment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

// DeletePolicy decides what happens to payment transactions when their
// originating schedule is deleted.
type DeletePolicy string

const (
	// PreserveHistory keeps payment transactions as standalone ledger
	// entries (the schedule disappears, the money stayed spent).
	PreserveHistory DeletePolicy = "preserve-history"
	// StrictCascade deletes payment transactions too, reversing their
	// balance effect.
	StrictCascade DeletePolicy = "strict-cascade"
)

// ParseDeletePolicy validates a configured policy name. Empty selects
// PreserveHistory.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case "":
		return PreserveHistory, nil
	case PreserveHistory, StrictCascade:
		return DeletePolicy(s), nil
	}
	return "", fmt.Errorf("%w: unknown installment delete policy %q", store.ErrValidation, s)
}

// Service manages installment purchases and their obligations.
type Service struct {
	store  *store.Store
	policy DeletePolicy
}

// NewService creates an installment Service with the given delete policy.
func NewService(st *store.Store, policy DeletePolicy) *Service {
	return &Service{store: st, policy: policy}
}

// CreateParams holds parameters for creating an installment purchase.
type CreateParams struct {
	Description string
	TotalAmount decimal.Decimal
	Count       int
	StartDate   date.Date
	AccountID   int64
	CategoryID  *int64
}

// Create validates the purchase, generates its obligation schedule, and
// persists both atomically.
func (s *Service) Create(ctx context.Context, params CreateParams) (model.InstallmentPurchase, error) {
	if params.Description == "" {
		return model.InstallmentPurchase{}, fmt.Errorf("%w: description is required", store.ErrValidation)
	}
	if !params.TotalAmount.IsPositive() {
		return model.InstallmentPurchase{}, fmt.Errorf("%w: total must be positive, got %s", store.ErrValidation, params.TotalAmount)
	}
	if params.Count < 1 {
		return model.InstallmentPurchase{}, fmt.Errorf("%w: installment count must be at least 1, got %d", store.ErrValidation, params.Count)
	}
	if params.StartDate.IsZero() {
		return model.InstallmentPurchase{}, fmt.Errorf("%w: start date is required", store.ErrValidation)
	}

	amounts := SplitAmount(params.TotalAmount, params.Count)
	// Every middle slice equals the first, so checking the first and last
	// covers the whole schedule. A slice rounds to zero (or the last goes
	// negative) when total/count falls below one cent.
	if !amounts[0].IsPositive() || !amounts[params.Count-1].IsPositive() {
		return model.InstallmentPurchase{}, fmt.Errorf(
			"%w: total %s cannot be split into %d installments of at least 0.01",
			store.ErrValidation, params.TotalAmount, params.Count)
	}
	p := model.InstallmentPurchase{
		ID:                uuid.NewString(),
		Description:       params.Description,
		TotalAmount:       params.TotalAmount,
		Count:             params.Count,
		InstallmentAmount: amounts[0],
		StartDate:         params.StartDate,
		AccountID:         params.AccountID,
		CategoryID:        params.CategoryID,
		Status:            model.InstallmentActive,
	}
	for i, amount := range amounts {
		p.Obligations = append(p.Obligations, model.Obligation{
			ID:         uuid.NewString(),
			PurchaseID: p.ID,
			Number:     i + 1,
			Amount:     amount,
			DueDate:    params.StartDate.AddMonths(i),
		})
	}

	if err := s.store.CreateInstallmentPurchase(ctx, p); err != nil {
		return model.InstallmentPurchase{}, err
	}
	return s.store.GetInstallmentPurchase(ctx, p.ID)
}

// SplitAmount divides total into count 2dp slices that sum exactly to
// total: every slice is round(total/count, 2) except the last, which
// absorbs the rounding remainder.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	per := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	amounts := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		amounts[i] = per
	}
	amounts[count-1] = total.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))
	return amounts
}

// Pay settles one obligation: it creates the expense transaction for the
// obligation's amount against the purchase's account and category, marks
// the obligation paid, and completes the purchase when it was the last
// unpaid one. Fails with ErrAlreadyPaid on a settled obligation.
func (s *Service) Pay(ctx context.Context, purchaseID, obligationID string, paidDate date.Date) (model.Transaction, error) {
	p, err := s.store.GetInstallmentPurchase(ctx, purchaseID)
	if err != nil {
		return model.Transaction{}, err
	}

	number := 0
	for _, o := range p.Obligations {
		if o.ID == obligationID {
			number = o.Number
			break
		}
	}
	if number == 0 {
		return model.Transaction{}, fmt.Errorf("%w: obligation %s of purchase %s", store.ErrNotFound, obligationID, purchaseID)
	}

	return s.store.SettleObligation(ctx, store.SettleObligationParams{
		PurchaseID:   purchaseID,
		ObligationID: obligationID,
		PaidDate:     paidDate,
		Description:  fmt.Sprintf("%s (%d/%d)", p.Description, number, p.Count),
	})
}

// Delete removes a purchase and its schedule. Whether payment
// transactions already in the ledger survive depends on the configured
// delete policy.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteInstallmentPurchase(ctx, id, s.policy == StrictCascade)
}

// Get returns one purchase with its ordered obligations.
func (s *Service) Get(ctx context.Context, id string) (model.InstallmentPurchase, error) {
	return s.store.GetInstallmentPurchase(ctx, id)
}

// List returns all purchases with their obligations.
func (s *Service) List(ctx context.Context) ([]model.InstallmentPurchase, error) {
	return s.store.ListInstallmentPurchases(ctx)
}
