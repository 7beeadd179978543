package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

func TestOpenDefaultsToSavings(t *testing.T) {
	svc := NewService(ledger.NewMemory())

	acct, err := svc.Open(context.Background(), OpenInput{CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, "savings", acct.Type)
	assert.Equal(t, int64(0), acct.Balance)
	assert.Len(t, acct.Number, 10)
}

func TestGetRejectsForeignAccount(t *testing.T) {
	svc := NewService(ledger.NewMemory())
	ctx := context.Background()

	acct, err := svc.Open(ctx, OpenInput{CustomerID: "cust-1", Type: "checking"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, acct.ID, "cust-2")
	assert.ErrorIs(t, err, ledger.ErrNotOwned)

	got, err := svc.Get(ctx, acct.ID, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
}

func TestHistoryRequiresOwnership(t *testing.T) {
	led := ledger.NewMemory()
	svc := NewService(led)
	ctx := context.Background()

	acct, err := svc.Open(ctx, OpenInput{CustomerID: "cust-1"})
	require.NoError(t, err)
	ledger.SeedBalance(led, acct.ID, 5_000)

	_, err = svc.History(ctx, acct.ID, "cust-2")
	assert.ErrorIs(t, err, ledger.ErrNotOwned)

	entries, err := svc.History(ctx, acct.ID, "cust-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCloseRemovesAccount(t *testing.T) {
	svc := NewService(ledger.NewMemory())
	ctx := context.Background()

	acct, err := svc.Open(ctx, OpenInput{CustomerID: "cust-1"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Close(ctx, acct.ID, "cust-2"), ledger.ErrNotOwned)
	require.NoError(t, svc.Close(ctx, acct.ID, "cust-1"))

	_, err = svc.Get(ctx, acct.ID, "cust-1")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestListMineOnlyOwnAccounts(t *testing.T) {
	svc := NewService(ledger.NewMemory())
	ctx := context.Background()

	_, err := svc.Open(ctx, OpenInput{CustomerID: "cust-1"})
	require.NoError(t, err)
	_, err = svc.Open(ctx, OpenInput{CustomerID: "cust-1"})
	require.NoError(t, err)
	_, err = svc.Open(ctx, OpenInput{CustomerID: "cust-2"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, acct := range mine {
		assert.Equal(t, "cust-1", acct.CustomerID)
	}
}
