package model

import (
	"github.com/shopspring/decimal"
)

// SalaryConfig is the singleton salary schedule. LastPaidMonth holds the
// "2006-01" identifier of the last month a salary transaction was created,
// making processing idempotent per calendar month.
type SalaryConfig struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	AccountID     int64           `json:"account_id"`
	CategoryID    *int64          `json:"category_id"`
	LastPaidMonth string          `json:"last_paid_month"`
}
