package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
)

// FlowType is the direction of a transaction or the kind of a category.
type FlowType string

const (
	FlowIncome  FlowType = "income"
	FlowExpense FlowType = "expense"
)

// ValidFlowType reports whether t is income or expense.
func ValidFlowType(t FlowType) bool {
	return t == FlowIncome || t == FlowExpense
}

// Category is a reference-list entry constraining which transactions may
// use it: an income category only tags income transactions, and vice versa.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      FlowType  `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is a single dated ledger entry. Amount is always positive;
// the sign of its balance effect derives from Type.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	CategoryID  *int64          `json:"category_id"`
	Type        FlowType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        date.Date       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SignedAmount returns the transaction's effect on its account balance:
// +Amount for income, -Amount for expense.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == FlowIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TransactionFilter narrows a transaction listing. Zero fields are ignored.
type TransactionFilter struct {
	AccountID  int64
	CategoryID int64
	Type       FlowType
	From       date.Date
	To         date.Date
	Search     string // case-insensitive description substring
}
