package ledger

// SeedBalance is a test helper that funds an account on the in-memory ledger.
// It posts a real Deposit entry so the balance/journal invariant keeps
// holding for seeded accounts.
func SeedBalance(l Ledger, accountID string, amount int64) {
	if mem, ok := l.(*MemoryLedger); ok {
		_, _, _ = mem.Post(accountID, KindDeposit, amount, "test seed", "")
	}
}

// JournalSum is a test helper returning the sum of signed entry amounts for
// the account, for asserting the ledger consistency invariant.
func JournalSum(l *MemoryLedger, accountID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum int64
	for _, e := range l.journal[accountID] {
		sum += e.Amount
	}
	return sum
}
