package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a held investment lot tracked at average cost.
// CurrentPrice is externally supplied; the Current*/ProfitLoss* fields are
// derived from it and stay nil until a price has been applied.
type Position struct {
	ID            string           `json:"id"`
	Ticker        string           `json:"ticker"`
	Name          string           `json:"name"`
	Type          string           `json:"type"` // asset class label, e.g. "FII", "stock", "ETF"
	Quantity      decimal.Decimal  `json:"quantity"`
	AveragePrice  decimal.Decimal  `json:"average_price"`
	TotalInvested decimal.Decimal  `json:"total_invested"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	CurrentValue  *decimal.Decimal `json:"current_value"`
	ProfitLoss    *decimal.Decimal `json:"profit_loss"`
	ProfitLossPct *decimal.Decimal `json:"profit_loss_percent"`
	Notes         string           `json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// Revalue recomputes the derived fields from Quantity, AveragePrice, and
// CurrentPrice. ProfitLossPct stays nil when nothing has been invested.
func (p *Position) Revalue() {
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	if p.CurrentPrice == nil {
		p.CurrentValue = nil
		p.ProfitLoss = nil
		p.ProfitLossPct = nil
		return
	}
	value := p.Quantity.Mul(*p.CurrentPrice)
	pl := value.Sub(p.TotalInvested)
	p.CurrentValue = &value
	p.ProfitLoss = &pl
	if p.TotalInvested.IsZero() {
		p.ProfitLossPct = nil
		return
	}
	pct := pl.Div(p.TotalInvested).Mul(hundred)
	p.ProfitLossPct = &pct
}

// SaleResult reports the outcome of selling part or all of a position.
type SaleResult struct {
	SellValue     decimal.Decimal `json:"sell_value"`
	RealizedPL    decimal.Decimal `json:"profit_loss"`
	RealizedPLPct decimal.Decimal `json:"profit_loss_percent"`
	Remaining     decimal.Decimal `json:"remaining_quantity"`
}

// PortfolioSummary aggregates valuation across all positions.
type PortfolioSummary struct {
	Count              int              `json:"count"`
	TotalInvested      decimal.Decimal  `json:"total_invested"`
	TotalCurrentValue  decimal.Decimal  `json:"total_current_value"`
	TotalProfitLoss    decimal.Decimal  `json:"total_profit_loss"`
	TotalProfitLossPct *decimal.Decimal `json:"total_profit_loss_percent"`
}
