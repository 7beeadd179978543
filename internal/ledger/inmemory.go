package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is a mutex-serialized in-memory ledger. It mirrors the
// Postgres backend's atomicity: a posting mutates the balance and appends the
// journal entry inside one critical section, so no partial state is ever
// observable. Used by tests and as the development fallback.
type MemoryLedger struct {
	mu       sync.Mutex
	accounts map[string]*Account
	numbers  map[string]string // account number -> account id
	journal  map[string][]Entry
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[string]*Account),
		numbers:  make(map[string]string),
		journal:  make(map[string][]Entry),
	}
}

// CreateAccount opens a zero-balance account with a unique number. The
// number map plays the role of the unique constraint: draw, redraw on
// collision, all under the ledger lock.
func (l *MemoryLedger) CreateAccount(_ context.Context, customerID, accountType string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	number := newAccountNumber()
	for _, taken := l.numbers[number]; taken; _, taken = l.numbers[number] {
		number = newAccountNumber()
	}

	acct := &Account{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Number:     number,
		Type:       accountType,
		CreatedAt:  time.Now().UTC(),
	}
	l.accounts[acct.ID] = acct
	l.numbers[number] = acct.ID
	return *acct, nil
}

// Account returns a snapshot of the account.
func (l *MemoryLedger) Account(_ context.Context, accountID string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *acct, nil
}

// AccountByNumber returns a snapshot of the account with the given number.
func (l *MemoryLedger) AccountByNumber(_ context.Context, number string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.numbers[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *l.accounts[id], nil
}

// AccountsForCustomer lists snapshots of the customer's accounts, oldest first.
func (l *MemoryLedger) AccountsForCustomer(_ context.Context, customerID string) ([]Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var accounts []Account
	for _, acct := range l.accounts {
		if acct.CustomerID == customerID {
			accounts = append(accounts, *acct)
		}
	}
	sortAccountsByCreation(accounts)
	return accounts, nil
}

func sortAccountsByCreation(accounts []Account) {
	for i := 1; i < len(accounts); i++ {
		for j := i; j > 0 && accounts[j].CreatedAt.Before(accounts[j-1].CreatedAt); j-- {
			accounts[j], accounts[j-1] = accounts[j-1], accounts[j]
		}
	}
}

// Deposit credits the account and appends a Deposit entry atomically.
func (l *MemoryLedger) Deposit(_ context.Context, accountID string, amount int64, description string) (MovementResult, error) {
	if amount <= 0 {
		return MovementResult{}, ErrInvalidAmount
	}
	entry, balance, err := l.Post(accountID, KindDeposit, amount, description, "")
	if err != nil {
		return MovementResult{}, err
	}
	return MovementResult{EntryID: entry.ID, Balance: balance}, nil
}

// Withdraw debits the account and appends a Withdrawal entry atomically;
// sufficiency is checked inside the same critical section.
func (l *MemoryLedger) Withdraw(_ context.Context, accountID string, amount int64, description string) (MovementResult, error) {
	if amount <= 0 {
		return MovementResult{}, ErrInvalidAmount
	}
	entry, balance, err := l.Post(accountID, KindWithdrawal, -amount, description, "")
	if err != nil {
		return MovementResult{}, err
	}
	return MovementResult{EntryID: entry.ID, Balance: balance}, nil
}

// Post applies one signed balance change and its journal entry under the
// ledger lock. The loan store uses it to disburse within an approval.
func (l *MemoryLedger) Post(accountID string, kind Kind, amount int64, description, counterpartyID string) (Entry, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.postLocked(accountID, kind, amount, description, counterpartyID)
}

func (l *MemoryLedger) postLocked(accountID string, kind Kind, amount int64, description, counterpartyID string) (Entry, int64, error) {
	acct, ok := l.accounts[accountID]
	if !ok {
		return Entry{}, 0, ErrAccountNotFound
	}
	newBalance := acct.Balance + amount
	if amount < 0 && newBalance < 0 {
		return Entry{}, 0, ErrInsufficientFunds
	}

	entry := Entry{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Kind:           kind,
		Amount:         amount,
		Description:    description,
		CounterpartyID: counterpartyID,
		CreatedAt:      time.Now().UTC(),
	}
	acct.Balance = newBalance
	l.journal[accountID] = append(l.journal[accountID], entry)
	return entry, newBalance, nil
}

// Transfer posts both legs inside one critical section: either both the
// debit on the source and the credit on the target are recorded, or neither.
func (l *MemoryLedger) Transfer(_ context.Context, input TransferInput) (TransferResult, error) {
	if input.Amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[input.SourceID]
	if !ok {
		return TransferResult{}, ErrAccountNotFound
	}
	tgtID, ok := l.numbers[input.TargetNumber]
	if !ok {
		return TransferResult{}, ErrTargetNotFound
	}
	if tgtID == input.SourceID {
		return TransferResult{}, ErrSelfTransfer
	}
	if src.Balance < input.Amount {
		return TransferResult{}, ErrInsufficientFunds
	}

	debitDesc := transferDescription("Transfer to account "+input.TargetNumber, input.Description)
	creditDesc := transferDescription("Transfer from account "+src.Number, input.Description)

	debit, srcBalance, err := l.postLocked(input.SourceID, KindTransferDebit, -input.Amount, debitDesc, tgtID)
	if err != nil {
		return TransferResult{}, err
	}
	credit, tgtBalance, err := l.postLocked(tgtID, KindTransferCredit, input.Amount, creditDesc, input.SourceID)
	if err != nil {
		return TransferResult{}, err
	}

	return TransferResult{
		DebitEntryID:  debit.ID,
		CreditEntryID: credit.ID,
		TargetID:      tgtID,
		SourceBalance: srcBalance,
		TargetBalance: tgtBalance,
	}, nil
}

// History returns a copy of the account's journal, newest first.
func (l *MemoryLedger) History(_ context.Context, accountID string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[accountID]; !ok {
		return nil, ErrAccountNotFound
	}
	stored := l.journal[accountID]
	entries := make([]Entry, len(stored))
	for i, e := range stored {
		entries[len(stored)-1-i] = e
	}
	return entries, nil
}

// DeleteAccount removes the account with its journal and nulls counterparty
// references held by surviving accounts' entries.
func (l *MemoryLedger) DeleteAccount(_ context.Context, accountID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	for id, entries := range l.journal {
		if id == accountID {
			continue
		}
		for i := range entries {
			if entries[i].CounterpartyID == accountID {
				entries[i].CounterpartyID = ""
			}
		}
	}
	delete(l.journal, accountID)
	delete(l.numbers, acct.Number)
	delete(l.accounts, accountID)
	return nil
}
