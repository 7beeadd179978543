package loans

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

func newTestService(t *testing.T) (*Service, *ledger.MemoryLedger) {
	t.Helper()
	led := ledger.NewMemory()
	return NewService(NewMemoryStore(led), led, nil), led
}

func rate(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestApplyValidatesTerms(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	cases := []ApplyInput{
		{CustomerID: "cust-1", AccountID: acct.ID, Principal: 0, RatePercent: rate("7.5"), TermMonths: 12},
		{CustomerID: "cust-1", AccountID: acct.ID, Principal: -100, RatePercent: rate("7.5"), TermMonths: 12},
		{CustomerID: "cust-1", AccountID: acct.ID, Principal: 1_000, RatePercent: rate("7.5"), TermMonths: 0},
		{CustomerID: "cust-1", AccountID: acct.ID, Principal: 1_000, RatePercent: rate("-1"), TermMonths: 12},
	}
	for i, input := range cases {
		_, err := svc.Apply(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidTerms, "case %d", i)
	}
}

func TestApplyRejectsForeignAccount(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, ApplyInput{
		CustomerID:  "cust-2",
		AccountID:   acct.ID,
		Principal:   100_000,
		RatePercent: rate("9.25"),
		TermMonths:  24,
	})
	assert.ErrorIs(t, err, ledger.ErrNotOwned)
}

func TestApproveDisbursesExactlyOnce(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	loan, err := svc.Apply(ctx, ApplyInput{
		CustomerID:  "cust-1",
		AccountID:   acct.ID,
		Principal:   1_000_000,
		RatePercent: rate("7.5"),
		TermMonths:  36,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, loan.Status)
	assert.Nil(t, loan.DecidedAt)

	res, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, res.Loan.Status)
	require.NotNil(t, res.Loan.DecidedAt)
	assert.Equal(t, int64(1_000_000), res.AccountBalance)

	history, err := led.History(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ledger.KindLoanDisbursement, history[0].Kind)
	assert.Equal(t, int64(1_000_000), history[0].Amount)

	// terminal state: a second approve reports already-decided, no new money
	_, err = svc.Approve(ctx, loan.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	history, err = led.History(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	got, err := led.Account(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), got.Balance)
}

func TestRejectMovesNoMoney(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	loan, err := svc.Apply(ctx, ApplyInput{
		CustomerID:  "cust-1",
		AccountID:   acct.ID,
		Principal:   500_000,
		RatePercent: rate("11"),
		TermMonths:  12,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.DecidedAt)

	history, err := led.History(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.Approve(ctx, loan.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveRollsBackWhenAccountDeleted(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	loan, err := svc.Apply(ctx, ApplyInput{
		CustomerID:  "cust-1",
		AccountID:   acct.ID,
		Principal:   250_000,
		RatePercent: rate("8"),
		TermMonths:  24,
	})
	require.NoError(t, err)

	require.NoError(t, led.DeleteAccount(ctx, acct.ID))

	_, err = svc.Approve(ctx, loan.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	// the approval rolled back with the disbursement
	got, err := svc.Get(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.DecidedAt)
}

func TestListForCustomerNewestFirst(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	acct, err := led.CreateAccount(ctx, "cust-1", "savings")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Apply(ctx, ApplyInput{
			CustomerID:  "cust-1",
			AccountID:   acct.ID,
			Principal:   int64(100_000 * (i + 1)),
			RatePercent: rate("7"),
			TermMonths:  12,
		})
		require.NoError(t, err)
	}

	loans, err := svc.ListForCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, loans, 3)
	for i := 1; i < len(loans); i++ {
		assert.False(t, loans[i].AppliedAt.After(loans[i-1].AppliedAt), "loans not newest-first")
	}
}
