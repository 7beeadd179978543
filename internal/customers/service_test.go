package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/loans"
)

func newTestService(t *testing.T) (*Service, *ledger.MemoryLedger, *loans.MemoryStore) {
	t.Helper()
	led := ledger.NewMemory()
	loanStore := loans.NewMemoryStore(led)
	svc := NewService(NewMemoryRepository(), NewMemoryAdminRepository(), led, loanStore)
	return svc, led, loanStore
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada Obi",
		Address:  "12 Marina Rd",
		Contact:  "ada@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.NotEqual(t, "hunter22", string(customer.PasswordHash))

	authed, err := svc.Authenticate(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegisterDuplicateContact(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Contact: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Imposter", Contact: "ada@example.com", Password: "hunter23"})
	assert.ErrorIs(t, err, ErrContactTaken)
}

func TestAdminSeedAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "ops", "sup3rsecret"))
	// idempotent
	require.NoError(t, svc.EnsureAdmin(ctx, "ops", "different"))

	admin, err := svc.AuthenticateAdmin(ctx, "ops", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "ops", admin.Username)

	_, err = svc.AuthenticateAdmin(ctx, "ops", "different")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestDeleteCascadesAccountsAndLoans(t *testing.T) {
	svc, led, loanStore := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{Name: "Ada", Contact: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)

	acct, err := led.CreateAccount(ctx, customer.ID, "savings")
	require.NoError(t, err)
	ledger.SeedBalance(led, acct.ID, 10_000)

	loanSvc := loans.NewService(loanStore, led, nil)
	loan, err := loanSvc.Apply(ctx, loans.ApplyInput{
		CustomerID: customer.ID,
		AccountID:  acct.ID,
		Principal:  100_000,
		TermMonths: 12,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, customer.ID))

	_, err = svc.Get(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = led.Account(ctx, acct.ID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = loanStore.Get(ctx, loan.ID)
	assert.ErrorIs(t, err, loans.ErrNotFound)
}
