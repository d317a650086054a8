package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts. Advisory only: all types behave the same.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeWallet     AccountType = "wallet"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeBank, AccountTypeWallet, AccountTypeSavings, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account is a balance-carrying ledger account.
//
// Balance is an invariant, not a free field: it always equals the initial
// balance plus the sum of signed amounts of every transaction currently
// referencing the account. Only the store's transaction write path moves it.
type Account struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Color     string          `json:"color"`
	CreatedAt time.Time       `json:"created_at"`
}
