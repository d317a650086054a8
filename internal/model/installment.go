package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavo-dev/centavo/internal/date"
)

// InstallmentStatus is the lifecycle state of an installment purchase.
type InstallmentStatus string

const (
	InstallmentActive    InstallmentStatus = "active"
	InstallmentCompleted InstallmentStatus = "completed"
)

// InstallmentPurchase splits a purchase into monthly payment obligations.
//
// InstallmentAmount = round(TotalAmount/Count, 2); the rounding remainder
// is absorbed by the last obligation so the obligations always sum to
// TotalAmount exactly.
type InstallmentPurchase struct {
	ID                string            `json:"id"`
	Description       string            `json:"description"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	Count             int               `json:"installments_count"`
	InstallmentAmount decimal.Decimal   `json:"installment_amount"`
	StartDate         date.Date         `json:"start_date"`
	AccountID         int64             `json:"account_id"`
	CategoryID        *int64            `json:"category_id"`
	Status            InstallmentStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	Obligations       []Obligation      `json:"payments,omitempty"`
}

// Obligation is one scheduled installment payment. PaidDate transitions
// nil -> set exactly once; paying creates the TransactionID ledger entry.
type Obligation struct {
	ID            string          `json:"id"`
	PurchaseID    string          `json:"purchase_id"`
	Number        int             `json:"installment_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       date.Date       `json:"due_date"`
	PaidDate      *date.Date      `json:"paid_date"`
	TransactionID *int64          `json:"transaction_id"`
}

// Paid reports whether the obligation has been settled.
func (o Obligation) Paid() bool { return o.PaidDate != nil }
