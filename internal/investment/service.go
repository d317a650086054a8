// Package investment tracks held positions at average cost, applies
// externally supplied prices to value them, and realizes gains or losses
// through the ledger on sale.
package investment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

var hundred = decimal.NewFromInt(100)

// Service manages investment positions.
type Service struct {
	store    *store.Store
	provider Provider
}

// Provider is the external price source. See package quotes for
// implementations.
type Provider interface {
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// NewService creates an investment Service. The provider may be nil when
// price refresh is disabled.
func NewService(st *store.Store, provider Provider) *Service {
	return &Service{store: st, provider: provider}
}

// RecordParams holds parameters for recording a position.
type RecordParams struct {
	Ticker       string
	Name         string
	Type         string
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
	CurrentPrice *decimal.Decimal
	Notes        string

	// FundFromAccount, when nonzero, also records the purchase as an
	// expense transaction for the invested amount against that account.
	FundFromAccount int64
	FundCategoryID  *int64
	FundDate        date.Date
}

func validatePosition(params RecordParams) error {
	if params.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", store.ErrValidation)
	}
	if params.Name == "" {
		return fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if !params.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", store.ErrValidation, params.Quantity)
	}
	if !params.AveragePrice.IsPositive() {
		return fmt.Errorf("%w: average price must be positive, got %s", store.ErrValidation, params.AveragePrice)
	}
	return nil
}

// Record creates a new position, deriving its valuation fields, and
// optionally records the funding expense in the ledger. Position and
// funding entry commit together or not at all.
func (s *Service) Record(ctx context.Context, params RecordParams) (model.Position, error) {
	if err := validatePosition(params); err != nil {
		return model.Position{}, err
	}

	p := model.Position{
		ID:           uuid.NewString(),
		Ticker:       params.Ticker,
		Name:         params.Name,
		Type:         params.Type,
		Quantity:     params.Quantity,
		AveragePrice: params.AveragePrice,
		CurrentPrice: params.CurrentPrice,
		Notes:        params.Notes,
	}
	p.Revalue()

	var funding *model.Transaction
	if params.FundFromAccount != 0 {
		if params.FundDate.IsZero() {
			return model.Position{}, fmt.Errorf("%w: funding date is required", store.ErrValidation)
		}
		funding = &model.Transaction{
			AccountID:   params.FundFromAccount,
			CategoryID:  params.FundCategoryID,
			Type:        model.FlowExpense,
			Amount:      p.TotalInvested.Round(2),
			Description: fmt.Sprintf("Investment: %s (%s)", p.Ticker, p.Name),
			Date:        params.FundDate,
		}
	}

	if err := s.store.CreatePosition(ctx, p, funding); err != nil {
		return model.Position{}, err
	}
	return s.store.GetPosition(ctx, p.ID)
}

// Update edits a position's descriptive and cost-basis fields and
// rederives its valuation.
func (s *Service) Update(ctx context.Context, id string, params RecordParams) (model.Position, error) {
	if err := validatePosition(params); err != nil {
		return model.Position{}, err
	}

	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return model.Position{}, err
	}
	p.Ticker = params.Ticker
	p.Name = params.Name
	p.Type = params.Type
	p.Quantity = params.Quantity
	p.AveragePrice = params.AveragePrice
	if params.CurrentPrice != nil {
		p.CurrentPrice = params.CurrentPrice
	}
	p.Notes = params.Notes
	p.Revalue()

	if err := s.store.UpdatePosition(ctx, p); err != nil {
		return model.Position{}, err
	}
	return s.store.GetPosition(ctx, id)
}

// Delete removes a position without touching the ledger.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeletePosition(ctx, id)
}

// Get returns one position.
func (s *Service) Get(ctx context.Context, id string) (model.Position, error) {
	return s.store.GetPosition(ctx, id)
}

// List returns all positions.
func (s *Service) List(ctx context.Context) ([]model.Position, error) {
	return s.store.ListPositions(ctx)
}

// ApplyPrice sets a position's current price and rederives current value,
// profit/loss, and profit/loss percent.
func (s *Service) ApplyPrice(ctx context.Context, id string, price decimal.Decimal) (model.Position, error) {
	if !price.IsPositive() {
		return model.Position{}, fmt.Errorf("%w: price must be positive, got %s", store.ErrValidation, price)
	}
	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return model.Position{}, err
	}
	p.CurrentPrice = &price
	p.Revalue()
	if err := s.store.UpdatePosition(ctx, p); err != nil {
		return model.Position{}, err
	}
	return s.store.GetPosition(ctx, id)
}

// RefreshResult summarizes a bulk price refresh.
type RefreshResult struct {
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// RefreshPrices fetches a quote for every position and applies it.
// Provider failures are collected, classified as external-service errors,
// and never interrupt the remaining positions or touch the ledger.
func (s *Service) RefreshPrices(ctx context.Context) (RefreshResult, error) {
	if s.provider == nil {
		return RefreshResult{}, fmt.Errorf("%w: no quote provider configured", store.ErrExternalService)
	}

	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	var result RefreshResult
	for _, p := range positions {
		price, err := s.provider.Quote(ctx, p.Ticker)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Errorf("%w: %s: %v", store.ErrExternalService, p.Ticker, err).Error())
			continue
		}
		if _, err := s.ApplyPrice(ctx, p.ID, price); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Ticker, err))
			continue
		}
		result.Updated++
	}
	return result, nil
}

// Sell realizes part or all of a position at sellPrice: it credits the
// proceeds to accountID as an income transaction dated sellDate,
// decrements the held quantity (deleting the position at zero), and
// reports the realized gain or loss against average cost.
func (s *Service) Sell(ctx context.Context, id string, quantity, sellPrice decimal.Decimal, accountID int64, sellDate date.Date) (model.SaleResult, error) {
	if !quantity.IsPositive() {
		return model.SaleResult{}, fmt.Errorf("%w: quantity must be positive, got %s", store.ErrValidation, quantity)
	}
	if !sellPrice.IsPositive() {
		return model.SaleResult{}, fmt.Errorf("%w: sell price must be positive, got %s", store.ErrValidation, sellPrice)
	}
	if sellDate.IsZero() {
		return model.SaleResult{}, fmt.Errorf("%w: sell date is required", store.ErrValidation)
	}

	p, err := s.store.GetPosition(ctx, id)
	if err != nil {
		return model.SaleResult{}, err
	}
	if quantity.GreaterThan(p.Quantity) {
		return model.SaleResult{}, fmt.Errorf("%w: selling %s of %s held", store.ErrInsufficientQuantity, quantity, p.Quantity)
	}

	sellValue := quantity.Mul(sellPrice).Round(2)
	if !sellValue.IsPositive() {
		return model.SaleResult{}, fmt.Errorf("%w: proceeds of %s at %s round below 0.01", store.ErrValidation, quantity, sellPrice)
	}
	costOfSold := quantity.Mul(p.AveragePrice).Round(2)
	realized := sellValue.Sub(costOfSold)

	remaining, err := s.store.SellPosition(ctx, store.SellPositionParams{
		PositionID:  id,
		Quantity:    quantity,
		Proceeds:    sellValue,
		AccountID:   accountID,
		Date:        sellDate,
		Description: fmt.Sprintf("Sale: %s x%s", p.Ticker, quantity),
	})
	if err != nil {
		return model.SaleResult{}, err
	}

	result := model.SaleResult{
		SellValue:  sellValue,
		RealizedPL: realized,
		Remaining:  remaining,
	}
	if !costOfSold.IsZero() {
		result.RealizedPLPct = realized.Div(costOfSold).Mul(hundred).Round(2)
	}
	return result, nil
}

// Summary aggregates valuation across all positions. The percent is
// omitted when nothing is invested.
func (s *Service) Summary(ctx context.Context) (model.PortfolioSummary, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := model.PortfolioSummary{Count: len(positions)}
	for _, p := range positions {
		summary.TotalInvested = summary.TotalInvested.Add(p.TotalInvested)
		if p.CurrentValue != nil {
			summary.TotalCurrentValue = summary.TotalCurrentValue.Add(*p.CurrentValue)
		}
		if p.ProfitLoss != nil {
			summary.TotalProfitLoss = summary.TotalProfitLoss.Add(*p.ProfitLoss)
		}
	}
	if summary.TotalInvested.IsPositive() {
		pct := summary.TotalProfitLoss.Div(summary.TotalInvested).Mul(hundred)
		summary.TotalProfitLossPct = &pct
	}
	return summary, nil
}
