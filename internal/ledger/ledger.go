// Package ledger is the authoritative store of account balances and their
// append-only transaction journal. Every balance change goes through a
// posting that updates the stored balance and writes its journal entry in a
// single atomic unit, so `balance == sum(entries.amount)` holds for every
// account at all times.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidAmount occurs when an operation is requested with a
	// non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when the source account lacks available
	// balance to cover a requested posting.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTargetNotFound indicates no account matches the transfer target number.
	ErrTargetNotFound = errors.New("target account not found")

	// ErrSelfTransfer indicates source and target of a transfer are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrNotOwned indicates the account does not belong to the acting customer.
	// Enforced by the service layer, never trusted from the caller.
	ErrNotOwned = errors.New("account not owned by customer")

	// ErrBusy reports lock or transaction contention; the caller decides
	// whether to retry.
	ErrBusy = errors.New("ledger busy, try again")

	// ErrStorage wraps failures of the durable store.
	ErrStorage = errors.New("storage failure")
)

// Kind tags a journal entry with the movement that produced it.
type Kind string

const (
	KindDeposit          Kind = "deposit"
	KindWithdrawal       Kind = "withdrawal"
	KindTransferDebit    Kind = "transfer_debit"
	KindTransferCredit   Kind = "transfer_credit"
	KindLoanDisbursement Kind = "loan_disbursement"
)

// Account is a customer-owned balance addressed externally by Number.
// Balance is in minor currency units.
type Account struct {
	ID         string
	CustomerID string
	Number     string
	Type       string
	Balance    int64
	CreatedAt  time.Time
}

// Entry is one immutable journal record: a signed balance change and its
// cause. CounterpartyID links the two legs of a transfer; empty otherwise.
type Entry struct {
	ID             string
	AccountID      string
	Kind           Kind
	Amount         int64
	Description    string
	CounterpartyID string
	CreatedAt      time.Time
}

// MovementResult captures the outcome of a single-account posting.
type MovementResult struct {
	EntryID string
	Balance int64
}

// TransferInput describes a transfer from an account to an externally
// addressed target account number.
type TransferInput struct {
	SourceID     string
	TargetNumber string
	Amount       int64
	Description  string
}

// TransferResult captures the outcome of both legs of a transfer.
type TransferResult struct {
	DebitEntryID  string
	CreditEntryID string
	TargetID      string
	SourceBalance int64
	TargetBalance int64
}

// Ledger defines the contract implemented by ledger backends (Postgres in
// production, in-memory for tests and development).
type Ledger interface {
	// CreateAccount opens a zero-balance account with a unique,
	// collision-retried account number.
	CreateAccount(ctx context.Context, customerID, accountType string) (Account, error)
	Account(ctx context.Context, id string) (Account, error)
	AccountByNumber(ctx context.Context, number string) (Account, error)
	AccountsForCustomer(ctx context.Context, customerID string) ([]Account, error)

	// Deposit credits amount and appends a Deposit entry atomically.
	Deposit(ctx context.Context, accountID string, amount int64, description string) (MovementResult, error)
	// Withdraw debits amount and appends a Withdrawal entry atomically;
	// sufficiency is checked under the same lock that performs the write.
	Withdraw(ctx context.Context, accountID string, amount int64, description string) (MovementResult, error)
	// Transfer moves amount between two accounts; both legs commit together
	// or neither does.
	Transfer(ctx context.Context, input TransferInput) (TransferResult, error)

	// History returns the account's journal, newest first. Read-only and
	// stable across calls absent new writes.
	History(ctx context.Context, accountID string) ([]Entry, error)

	// DeleteAccount removes an account together with its journal, nulling
	// counterparty references first so the deletion order preserves
	// referential integrity. Cascade policy belongs to the caller.
	DeleteAccount(ctx context.Context, accountID string) error
}
