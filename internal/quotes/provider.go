// Package quotes isolates external market-data lookups behind a small,
// timeout-bounded interface so a slow provider can never block ledger
// writes.
package quotes

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider returns the latest price for a ticker.
type Provider interface {
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Static is a fixed price table, for tests and offline use.
type Static map[string]decimal.Decimal

// Quote returns the configured price for ticker.
func (s Static) Quote(_ context.Context, ticker string) (decimal.Decimal, error) {
	price, ok := s[ticker]
	if !ok {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "no static price configured"}
	}
	return price, nil
}
