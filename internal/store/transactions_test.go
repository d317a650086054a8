package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-dev/centavo/internal/model"
)

func TestCreateTransaction_MovesBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Main", "1000.00")

	_, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowExpense, Amount: dec("150.00"),
		Description: "Groceries", Date: day("2024-03-10"),
	})
	require.NoError(t, err)

	_, err = s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowIncome, Amount: dec("500.00"),
		Description: "Freelance", Date: day("2024-03-15"),
	})
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("1350.00")), "got %s", got.Balance)
}

func TestCreateTransaction_Invalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAccount(t, s, "Main", "0.00")

	cases := []struct {
		name string
		txn  model.Transaction
	}{
		{"zero amount", model.Transaction{AccountID: a.ID, Type: model.FlowIncome, Amount: dec("0"), Date: day("2024-01-01")}},
		{"negative amount", model.Transaction{AccountID: a.ID, Type: model.FlowIncome, Amount: dec("-5.00"), Date: day("2024-01-01")}},
		{"sub-cent precision", model.Transaction{AccountID: a.ID, Type: model.FlowIncome, Amount: dec("1.005"), Date: day("2024-01-01")}},
		{"bad type", model.Transaction{AccountID: a.ID, Type: "transfer", Amount: dec("1.00"), Date: day("2024-01-01")}},
		{"missing date", model.Transaction{AccountID: a.ID, Type: model.FlowIncome, Amount: dec("1.00")}},
		{"missing account", model.Transaction{Type: model.FlowIncome, Amount: dec("1.00"), Date: day("2024-01-01")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateTransaction(ctx, tc.txn)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateTransaction_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTransaction(context.Background(), model.Transaction{
		AccountID: 777, Type: model.FlowIncome, Amount: dec("1.00"), Date: day("2024-01-01"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTransaction_CategoryTypeMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Main", "0.00")
	foodCat := seededCategory(t, s, "Alimentação", model.FlowExpense)

	_, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, CategoryID: &foodCat, Type: model.FlowIncome,
		Amount: dec("10.00"), Date: day("2024-01-01"),
	})
	assert.ErrorIs(t, err, ErrInvalidReference)

	// No balance movement from the rejected write.
	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestUpdateTransaction_ReappliesDelta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Main", "1000.00")
	txn, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowExpense, Amount: dec("150.00"), Date: day("2024-03-10"),
	})
	require.NoError(t, err)

	txn.Amount = dec("200.00")
	require.NoError(t, s.UpdateTransaction(ctx, txn))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("800.00")), "got %s", got.Balance)
}

func TestUpdateTransaction_MovesBetweenAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "A", "100.00")
	b := mustAccount(t, s, "B", "100.00")

	txn, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowExpense, Amount: dec("30.00"), Date: day("2024-02-01"),
	})
	require.NoError(t, err)

	txn.AccountID = b.ID
	require.NoError(t, s.UpdateTransaction(ctx, txn))

	gotA, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := s.GetAccount(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, gotA.Balance.Equal(dec("100.00")), "A restored, got %s", gotA.Balance)
	assert.True(t, gotB.Balance.Equal(dec("70.00")), "B debited, got %s", gotB.Balance)
}

func TestUpdateTransaction_TypeFlip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Main", "0.00")
	txn, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowExpense, Amount: dec("50.00"), Date: day("2024-02-01"),
	})
	require.NoError(t, err)

	txn.Type = model.FlowIncome
	require.NoError(t, s.UpdateTransaction(ctx, txn))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("50.00")), "got %s", got.Balance)
}

func TestDeleteTransaction_ReversesDelta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "Main", "100.00")
	txn, err := s.CreateTransaction(ctx, model.Transaction{
		AccountID: a.ID, Type: model.FlowIncome, Amount: dec("25.00"), Date: day("2024-02-01"),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, txn.ID))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("100.00")))

	assert.ErrorIs(t, s.DeleteTransaction(ctx, txn.ID), ErrNotFound)
}

func TestListTransactions_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "A", "0.00")
	b := mustAccount(t, s, "B", "0.00")

	mk := func(accountID int64, flowType model.FlowType, amount, desc, d string) {
		_, err := s.CreateTransaction(ctx, model.Transaction{
			AccountID: accountID, Type: flowType, Amount: dec(amount),
			Description: desc, Date: day(d),
		})
		require.NoError(t, err)
	}
	mk(a.ID, model.FlowExpense, "10.00", "Coffee beans", "2024-01-05")
	mk(a.ID, model.FlowIncome, "100.00", "Refund", "2024-01-10")
	mk(b.ID, model.FlowExpense, "20.00", "More COFFEE", "2024-02-01")

	byAccount, err := s.ListTransactions(ctx, model.TransactionFilter{AccountID: a.ID})
	require.NoError(t, err)
	assert.Len(t, byAccount, 2)

	byType, err := s.ListTransactions(ctx, model.TransactionFilter{Type: model.FlowExpense})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byRange, err := s.ListTransactions(ctx, model.TransactionFilter{From: day("2024-01-06"), To: day("2024-02-28")})
	require.NoError(t, err)
	assert.Len(t, byRange, 2)

	// Case-insensitive substring search.
	bySearch, err := s.ListTransactions(ctx, model.TransactionFilter{Search: "coffee"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAccount(t, s, "A", "0.00")
	for _, d := range []string{"2024-01-02", "2024-01-03", "2024-01-01"} {
		_, err := s.CreateTransaction(ctx, model.Transaction{
			AccountID: a.ID, Type: model.FlowIncome, Amount: dec("1.00"), Date: day(d),
		})
		require.NoError(t, err)
	}

	all, err := s.ListTransactions(ctx, model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-03", all[0].Date.String())
	assert.Equal(t, "2024-01-02", all[1].Date.String())
	assert.Equal(t, "2024-01-01", all[2].Date.String())
}
