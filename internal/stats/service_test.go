package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-dev/centavo/internal/date"
	"github.com/centavo-dev/centavo/internal/model"
	"github.com/centavo-dev/centavo/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) date.Date {
	return date.MustParse(s)
}

type fixture struct {
	store   *store.Store
	service *Service
	account model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stats.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	a, err := st.CreateAccount(context.Background(), model.Account{
		Name: "Main", Type: model.AccountTypeBank, Balance: dec("0.00"),
	})
	require.NoError(t, err)

	return &fixture{store: st, service: NewService(st), account: a}
}

func (f *fixture) transact(t *testing.T, flowType model.FlowType, amount, d string) model.Transaction {
	t.Helper()
	txn, err := f.store.CreateTransaction(context.Background(), model.Transaction{
		AccountID: f.account.ID, Type: flowType, Amount: dec(amount), Date: day(d),
	})
	require.NoError(t, err)
	return txn
}

func TestCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.transact(t, model.FlowExpense, "150.00", "2024-03-10")
	f.transact(t, model.FlowIncome, "500.00", "2024-03-15")
	// Outside the reference month.
	f.transact(t, model.FlowIncome, "999.00", "2024-02-28")

	stats, err := f.service.Current(ctx, day("2024-03-20"))
	require.NoError(t, err)
	assert.True(t, stats.TotalBalance.Equal(dec("1349.00")), "got %s", stats.TotalBalance)
	assert.True(t, stats.MonthlyIncome.Equal(dec("500.00")))
	assert.True(t, stats.MonthlyExpenses.Equal(dec("150.00")))
	assert.True(t, stats.MonthlyBalance.Equal(dec("350.00")))
}

func TestCurrent_EmptyLedger(t *testing.T) {
	f := newFixture(t)

	stats, err := f.service.Current(context.Background(), day("2024-03-20"))
	require.NoError(t, err)
	assert.True(t, stats.TotalBalance.IsZero())
	assert.True(t, stats.MonthlyIncome.IsZero())
	assert.True(t, stats.MonthlyExpenses.IsZero())
	assert.True(t, stats.MonthlyBalance.IsZero())
}

func TestPeriod_InclusiveBounds(t *testing.T) {
	f := newFixture(t)

	f.transact(t, model.FlowIncome, "10.00", "2024-01-01")
	f.transact(t, model.FlowIncome, "20.00", "2024-01-31")
	f.transact(t, model.FlowExpense, "5.00", "2024-02-01")

	totals, err := f.service.Period(context.Background(), day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.True(t, totals.Income.Equal(dec("30.00")))
	assert.True(t, totals.Expenses.IsZero())
	assert.True(t, totals.Balance.Equal(dec("30.00")))
}

func TestBalanceHistory_ZeroFillsEmptyMonths(t *testing.T) {
	f := newFixture(t)

	f.transact(t, model.FlowIncome, "100.00", "2024-01-15")
	f.transact(t, model.FlowExpense, "40.00", "2024-03-02")

	history, err := f.service.BalanceHistory(context.Background(), day("2024-03-20"), 4)
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, "2023-12", history[0].Month)
	assert.True(t, history[0].Income.IsZero())

	assert.Equal(t, "2024-01", history[1].Month)
	assert.True(t, history[1].Income.Equal(dec("100.00")))

	assert.Equal(t, "2024-02", history[2].Month)
	assert.True(t, history[2].Balance.IsZero())

	assert.Equal(t, "2024-03", history[3].Month)
	assert.True(t, history[3].Balance.Equal(dec("-40.00")))
}

func TestBalanceHistory_InvalidMonths(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.BalanceHistory(context.Background(), day("2024-03-20"), 0)
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestMonthlyComparison(t *testing.T) {
	f := newFixture(t)

	f.transact(t, model.FlowIncome, "200.00", "2024-02-10")
	f.transact(t, model.FlowIncome, "300.00", "2024-03-10")
	f.transact(t, model.FlowExpense, "50.00", "2024-03-11")

	comparison, err := f.service.MonthlyComparison(context.Background(), day("2024-03-20"))
	require.NoError(t, err)
	assert.Equal(t, "2024-02", comparison.Previous.Month)
	assert.True(t, comparison.Previous.Balance.Equal(dec("200.00")))
	assert.Equal(t, "2024-03", comparison.Current.Month)
	assert.True(t, comparison.Current.Balance.Equal(dec("250.00")))
}

func TestExpensesByCategory_LargestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	categories, err := f.store.ListCategories(ctx, model.FlowExpense)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(categories), 2)
	food, transport := categories[0].ID, categories[1].ID

	mk := func(categoryID int64, amount, d string) {
		_, err := f.store.CreateTransaction(ctx, model.Transaction{
			AccountID: f.account.ID, CategoryID: &categoryID,
			Type: model.FlowExpense, Amount: dec(amount), Date: day(d),
		})
		require.NoError(t, err)
	}
	mk(food, "30.00", "2024-03-05")
	mk(food, "20.00", "2024-03-06")
	mk(transport, "80.00", "2024-03-07")
	// Uncategorized expenses are excluded.
	f.transact(t, model.FlowExpense, "500.00", "2024-03-08")

	totals, err := f.service.ExpensesByCategory(ctx, day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, transport, totals[0].CategoryID)
	assert.True(t, totals[0].Total.Equal(dec("80.00")))
	assert.Equal(t, food, totals[1].CategoryID)
	assert.True(t, totals[1].Total.Equal(dec("50.00")))
}

func TestTopExpenses(t *testing.T) {
	f := newFixture(t)

	f.transact(t, model.FlowExpense, "10.00", "2024-03-01")
	f.transact(t, model.FlowExpense, "50.00", "2024-03-02")
	f.transact(t, model.FlowExpense, "30.00", "2024-03-03")
	f.transact(t, model.FlowIncome, "999.00", "2024-03-04")

	top, err := f.service.TopExpenses(context.Background(), 2, date.Date{}, date.Date{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.True(t, top[0].Amount.Equal(dec("50.00")))
	assert.True(t, top[1].Amount.Equal(dec("30.00")))
}
