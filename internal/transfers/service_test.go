package transfers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/notification"
)

type captureNotifier struct {
	messages []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, message notification.Message) error {
	n.messages = append(n.messages, message)
	return nil
}

func seedAccount(t *testing.T, led *ledger.MemoryLedger, customerID string, balance int64) ledger.Account {
	t.Helper()
	acct, err := led.CreateAccount(context.Background(), customerID, "savings")
	require.NoError(t, err)
	if balance > 0 {
		ledger.SeedBalance(led, acct.ID, balance)
	}
	return acct
}

func TestExecuteMovesFundsAndNotifiesTarget(t *testing.T) {
	led := ledger.NewMemory()
	notifier := &captureNotifier{}
	svc := NewService(led, notifier, nil)
	ctx := context.Background()

	src := seedAccount(t, led, "cust-1", 50_000)
	tgt := seedAccount(t, led, "cust-2", 0)

	res, err := svc.Execute(ctx, Input{
		SourceID:     src.ID,
		CustomerID:   "cust-1",
		TargetNumber: tgt.Number,
		Amount:       20_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30_000), res.SourceBalance)
	assert.NotEmpty(t, res.DebitEntryID)
	assert.NotEmpty(t, res.CreditEntryID)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, notification.KindTransferReceived, notifier.messages[0].Kind)
	assert.Equal(t, "cust-2", notifier.messages[0].Destination)
	assert.Contains(t, notifier.messages[0].Body, "200.00")
}

func TestExecuteRejectsForeignSource(t *testing.T) {
	led := ledger.NewMemory()
	notifier := &captureNotifier{}
	svc := NewService(led, notifier, nil)
	ctx := context.Background()

	src := seedAccount(t, led, "cust-1", 50_000)
	tgt := seedAccount(t, led, "cust-2", 0)

	_, err := svc.Execute(ctx, Input{
		SourceID:     src.ID,
		CustomerID:   "cust-2",
		TargetNumber: tgt.Number,
		Amount:       1_000,
	})
	assert.ErrorIs(t, err, ledger.ErrNotOwned)
	assert.Empty(t, notifier.messages)

	got, _ := led.Account(ctx, src.ID)
	assert.Equal(t, int64(50_000), got.Balance)
}

func TestExecuteFailuresSendNoNotification(t *testing.T) {
	led := ledger.NewMemory()
	notifier := &captureNotifier{}
	svc := NewService(led, notifier, nil)
	ctx := context.Background()

	src := seedAccount(t, led, "cust-1", 100)
	tgt := seedAccount(t, led, "cust-2", 0)

	cases := []struct {
		name  string
		input Input
		want  error
	}{
		{"insufficient", Input{SourceID: src.ID, CustomerID: "cust-1", TargetNumber: tgt.Number, Amount: 200}, ledger.ErrInsufficientFunds},
		{"self", Input{SourceID: src.ID, CustomerID: "cust-1", TargetNumber: src.Number, Amount: 50}, ledger.ErrSelfTransfer},
		{"unknown target", Input{SourceID: src.ID, CustomerID: "cust-1", TargetNumber: "0000000000", Amount: 50}, ledger.ErrTargetNotFound},
		{"zero amount", Input{SourceID: src.ID, CustomerID: "cust-1", TargetNumber: tgt.Number, Amount: 0}, ledger.ErrInvalidAmount},
	}
	for _, tc := range cases {
		_, err := svc.Execute(ctx, tc.input)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
	assert.Empty(t, notifier.messages)
}
