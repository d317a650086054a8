package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-dev/centavo/internal/model"
)

// testPurchase builds a three-part purchase of 300.00 starting 2024-01-05.
func testPurchase(t *testing.T, s *Store, accountID int64) model.InstallmentPurchase {
	t.Helper()
	p := model.InstallmentPurchase{
		ID:                uuid.NewString(),
		Description:       "Notebook",
		TotalAmount:       dec("300.00"),
		Count:             3,
		InstallmentAmount: dec("100.00"),
		StartDate:         day("2024-01-05"),
		AccountID:         accountID,
		Status:            model.InstallmentActive,
	}
	for i := 0; i < 3; i++ {
		p.Obligations = append(p.Obligations, model.Obligation{
			ID:         uuid.NewString(),
			PurchaseID: p.ID,
			Number:     i + 1,
			Amount:     dec("100.00"),
			DueDate:    day("2024-01-05").AddMonths(i),
		})
	}
	require.NoError(t, s.CreateInstallmentPurchase(context.Background(), p))
	return p
}

func TestCreateInstallmentPurchase_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "0.00")
	p := testPurchase(t, s, a.ID)

	got, err := s.GetInstallmentPurchase(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", got.Description)
	assert.Equal(t, model.InstallmentActive, got.Status)
	require.Len(t, got.Obligations, 3)
	assert.Equal(t, "2024-02-05", got.Obligations[1].DueDate.String())
	assert.False(t, got.Obligations[0].Paid())

	// No ledger entries or balance movement until a payment.
	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestCreateInstallmentPurchase_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	p := model.InstallmentPurchase{
		ID: uuid.NewString(), Description: "X", TotalAmount: dec("10.00"),
		Count: 1, InstallmentAmount: dec("10.00"), StartDate: day("2024-01-01"),
		AccountID: 999, Status: model.InstallmentActive,
		Obligations: []model.Obligation{{ID: uuid.NewString(), Number: 1, Amount: dec("10.00"), DueDate: day("2024-01-01")}},
	}
	assert.ErrorIs(t, s.CreateInstallmentPurchase(context.Background(), p), ErrNotFound)
}

func TestSettleObligation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "500.00")
	p := testPurchase(t, s, a.ID)

	txn, err := s.SettleObligation(ctx, SettleObligationParams{
		PurchaseID:   p.ID,
		ObligationID: p.Obligations[0].ID,
		PaidDate:     day("2024-01-06"),
		Description:  "Notebook (1/3)",
	})
	require.NoError(t, err)
	assert.Equal(t, model.FlowExpense, txn.Type)
	assert.True(t, txn.Amount.Equal(dec("100.00")))

	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("400.00")))

	got, err := s.GetInstallmentPurchase(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Obligations[0].Paid())
	require.NotNil(t, got.Obligations[0].TransactionID)
	assert.Equal(t, txn.ID, *got.Obligations[0].TransactionID)
	assert.Equal(t, model.InstallmentActive, got.Status)
}

func TestSettleObligation_AlreadyPaid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "500.00")
	p := testPurchase(t, s, a.ID)

	params := SettleObligationParams{
		PurchaseID: p.ID, ObligationID: p.Obligations[0].ID,
		PaidDate: day("2024-01-06"), Description: "Notebook (1/3)",
	}
	_, err := s.SettleObligation(ctx, params)
	require.NoError(t, err)

	_, err = s.SettleObligation(ctx, params)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// The failed retry must not double-charge.
	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("400.00")))
}

func TestSettleObligation_CompletesPurchase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "500.00")
	p := testPurchase(t, s, a.ID)

	for i, o := range p.Obligations {
		_, err := s.SettleObligation(ctx, SettleObligationParams{
			PurchaseID: p.ID, ObligationID: o.ID,
			PaidDate:    day("2024-01-06").AddMonths(i),
			Description: fmt.Sprintf("Notebook (%d/3)", i+1),
		})
		require.NoError(t, err)
	}

	got, err := s.GetInstallmentPurchase(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InstallmentCompleted, got.Status)

	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("200.00")))
}

func TestDeleteInstallmentPurchase_PreservesPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "500.00")
	p := testPurchase(t, s, a.ID)
	txn, err := s.SettleObligation(ctx, SettleObligationParams{
		PurchaseID: p.ID, ObligationID: p.Obligations[0].ID,
		PaidDate: day("2024-01-06"), Description: "Notebook (1/3)",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteInstallmentPurchase(ctx, p.ID, false))

	_, err = s.GetInstallmentPurchase(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Payment transaction and its balance effect survive.
	_, err = s.GetTransaction(ctx, txn.ID)
	assert.NoError(t, err)
	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("400.00")))
}

func TestDeleteInstallmentPurchase_CascadesPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "500.00")
	p := testPurchase(t, s, a.ID)
	txn, err := s.SettleObligation(ctx, SettleObligationParams{
		PurchaseID: p.ID, ObligationID: p.Obligations[0].ID,
		PaidDate: day("2024-01-06"), Description: "Notebook (1/3)",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteInstallmentPurchase(ctx, p.ID, true))

	// Payment transaction gone, balance effect reversed.
	_, err = s.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("500.00")))
}

func TestSettleObligation_RejectsNonPositiveAmount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Card", "1000.00")
	p := model.InstallmentPurchase{
		ID: uuid.NewString(), Description: "Corrupt", TotalAmount: dec("0.10"),
		Count: 2, InstallmentAmount: dec("0.11"), StartDate: day("2024-01-05"),
		AccountID: a.ID, Status: model.InstallmentActive,
		Obligations: []model.Obligation{
			{ID: uuid.NewString(), Number: 1, Amount: dec("0.11"), DueDate: day("2024-01-05")},
			{ID: uuid.NewString(), Number: 2, Amount: dec("-0.01"), DueDate: day("2024-02-05")},
		},
	}
	require.NoError(t, s.CreateInstallmentPurchase(ctx, p))

	// A stored non-positive amount must never reach the ledger.
	_, err := s.SettleObligation(ctx, SettleObligationParams{
		PurchaseID: p.ID, ObligationID: p.Obligations[1].ID,
		PaidDate: day("2024-02-06"), Description: "Corrupt (2/2)",
	})
	assert.ErrorIs(t, err, ErrValidation)

	account, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("1000.00")))

	got, err := s.GetInstallmentPurchase(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Obligations[1].Paid())
}

func TestDeleteInstallmentPurchase_NotFound(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.DeleteInstallmentPurchase(context.Background(), "missing", false), ErrNotFound)
}
