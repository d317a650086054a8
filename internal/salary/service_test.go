package salary

import (
	"context"
	"path/filepath"
	"testing"
	"time"

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

func newFixture(t *testing.T) (*store.Store, *Service, model.Account) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "salary.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	a, err := st.CreateAccount(context.Background(), model.Account{
		Name: "Main", Type: model.AccountTypeBank, Balance: dec("0.00"),
	})
	require.NoError(t, err)

	return st, NewService(st), a
}

func TestFirstBusinessDay(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2024, time.April, "2024-04-01"},   // Monday
		{2024, time.March, "2024-03-01"},   // Friday
		{2024, time.June, "2024-06-03"},    // 1st is Saturday
		{2024, time.September, "2024-09-02"}, // 1st is Sunday
	}
	for _, tc := range cases {
		got := FirstBusinessDay(tc.year, tc.month)
		assert.Equal(t, tc.want, got.String(), "%d-%d", tc.year, tc.month)
	}
}

func TestSave_RejectsNonPositive(t *testing.T) {
	_, svc, a := newFixture(t)

	_, err := svc.Save(context.Background(), dec("0"), a.ID, nil)
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = svc.Save(context.Background(), dec("-100.00"), a.ID, nil)
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestDue(t *testing.T) {
	_, svc, a := newFixture(t)
	ctx := context.Background()

	// No config yet.
	_, err := svc.Due(ctx, day("2024-06-05"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Save(ctx, dec("5000.00"), a.ID, nil)
	require.NoError(t, err)

	// June 2024: the 1st is a Saturday, so not due until Monday the 3rd.
	due, err := svc.Due(ctx, day("2024-06-01"))
	require.NoError(t, err)
	assert.False(t, due)

	due, err = svc.Due(ctx, day("2024-06-03"))
	require.NoError(t, err)
	assert.True(t, due)

	// After processing the month is no longer due.
	_, err = svc.Process(ctx, day("2024-06-03"))
	require.NoError(t, err)
	due, err = svc.Due(ctx, day("2024-06-10"))
	require.NoError(t, err)
	assert.False(t, due)

	// Next month becomes due again.
	due, err = svc.Due(ctx, day("2024-07-01"))
	require.NoError(t, err)
	assert.True(t, due)
}

func TestProcess_CreatesIncomeOnce(t *testing.T) {
	st, svc, a := newFixture(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, dec("5000.00"), a.ID, nil)
	require.NoError(t, err)

	txn, err := svc.Process(ctx, day("2024-06-03"))
	require.NoError(t, err)
	assert.Equal(t, model.FlowIncome, txn.Type)
	assert.Equal(t, "Monthly salary", txn.Description)

	_, err = svc.Process(ctx, day("2024-06-28"))
	assert.ErrorIs(t, err, store.ErrAlreadyProcessed)

	account, err := st.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("5000.00")))
}
