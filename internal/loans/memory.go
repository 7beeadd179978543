package loans

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

// MemoryStore is an in-memory loan store for tests and development. The
// status change only becomes visible after the disbursement posting succeeds,
// mirroring the Postgres store's single atomic unit.
type MemoryStore struct {
	mu     sync.Mutex
	loans  map[string]Loan
	ledger *ledger.MemoryLedger
}

// NewMemoryStore builds an in-memory loan store bound to an in-memory ledger.
func NewMemoryStore(led *ledger.MemoryLedger) *MemoryStore {
	return &MemoryStore{loans: make(map[string]Loan), ledger: led}
}

func (s *MemoryStore) Create(_ context.Context, loan Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.loans[loan.ID]; exists {
		return fmt.Errorf("%w: duplicate loan id", ledger.ErrStorage)
	}
	s.loans[loan.ID] = loan
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[id]
	if !ok {
		return Loan{}, ErrNotFound
	}
	return loan, nil
}

func (s *MemoryStore) ListForCustomer(_ context.Context, customerID string) ([]Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var loans []Loan
	for _, loan := range s.loans {
		if loan.CustomerID == customerID {
			loans = append(loans, loan)
		}
	}
	// newest application first
	for i := 1; i < len(loans); i++ {
		for j := i; j > 0 && loans[j].AppliedAt.After(loans[j-1].AppliedAt); j-- {
			loans[j], loans[j-1] = loans[j-1], loans[j]
		}
	}
	return loans, nil
}

func (s *MemoryStore) ListPending(_ context.Context) ([]Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var loans []Loan
	for _, loan := range s.loans {
		if loan.Status == StatusPending {
			loans = append(loans, loan)
		}
	}
	// oldest application first
	for i := 1; i < len(loans); i++ {
		for j := i; j > 0 && loans[j].AppliedAt.Before(loans[j-1].AppliedAt); j-- {
			loans[j], loans[j-1] = loans[j-1], loans[j]
		}
	}
	return loans, nil
}

func (s *MemoryStore) Approve(_ context.Context, id string) (Loan, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]
	if !ok {
		return Loan{}, 0, ErrNotFound
	}
	if loan.Status != StatusPending {
		return loan, 0, ErrInvalidTransition
	}

	_, balance, err := s.ledger.Post(loan.AccountID, ledger.KindLoanDisbursement,
		loan.Principal, fmt.Sprintf("Loan %s disbursed", loan.ID), "")
	if err != nil {
		// loan stays pending; the disbursement never happened
		return Loan{}, 0, err
	}

	decidedAt := time.Now().UTC()
	loan.Status = StatusApproved
	loan.DecidedAt = &decidedAt
	s.loans[id] = loan
	return loan, balance, nil
}

func (s *MemoryStore) Reject(_ context.Context, id string) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]
	if !ok {
		return Loan{}, ErrNotFound
	}
	if loan.Status != StatusPending {
		return loan, ErrInvalidTransition
	}

	decidedAt := time.Now().UTC()
	loan.Status = StatusRejected
	loan.DecidedAt = &decidedAt
	s.loans[id] = loan
	return loan, nil
}

func (s *MemoryStore) DeleteForCustomer(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, loan := range s.loans {
		if loan.CustomerID == customerID {
			delete(s.loans, id)
		}
	}
	return nil
}
