package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
	"github.com/atlasbank/atlasbank/internal/notification"
)

// AccountReader is the slice of the ledger the loan service needs to
// re-validate disbursement account ownership.
type AccountReader interface {
	Account(ctx context.Context, id string) (ledger.Account, error)
}

// Service coordinates loan applications and decisions.
type Service struct {
	store    Store
	accounts AccountReader
	notifier notification.Notifier
}

// NewService builds a loan service.
func NewService(store Store, accounts AccountReader, notifier notification.Notifier) *Service {
	return &Service{store: store, accounts: accounts, notifier: notifier}
}

// ApplyInput captures a loan application. CustomerID is the acting customer,
// passed explicitly by the caller.
type ApplyInput struct {
	CustomerID  string
	AccountID   string
	Principal   int64
	RatePercent decimal.Decimal
	TermMonths  int
}

// Apply validates terms, re-validates that the disbursement account belongs
// to the applicant, and records a pending loan. No money moves.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (Loan, error) {
	if input.Principal <= 0 || input.TermMonths <= 0 || input.RatePercent.IsNegative() {
		return Loan{}, ErrInvalidTerms
	}

	acct, err := s.accounts.Account(ctx, input.AccountID)
	if err != nil {
		return Loan{}, err
	}
	if acct.CustomerID != input.CustomerID {
		return Loan{}, ledger.ErrNotOwned
	}

	loan := Loan{
		ID:          uuid.NewString(),
		CustomerID:  input.CustomerID,
		AccountID:   input.AccountID,
		Principal:   input.Principal,
		RatePercent: input.RatePercent,
		TermMonths:  input.TermMonths,
		Status:      StatusPending,
		AppliedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, loan); err != nil {
		return Loan{}, err
	}
	return loan, nil
}

// ApprovalResult reports a successful approval and disbursement.
type ApprovalResult struct {
	Loan           Loan
	AccountBalance int64
}

// Approve executes the Pending -> Approved transition; the store performs the
// status change and the disbursement in one atomic unit.
func (s *Service) Approve(ctx context.Context, loanID string) (ApprovalResult, error) {
	loan, balance, err := s.store.Approve(ctx, loanID)
	if err != nil {
		return ApprovalResult{Loan: loan}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindLoanApproved,
			Destination: loan.CustomerID,
			Body:        fmt.Sprintf("Your loan of %s was approved and disbursed", money.Format(loan.Principal)),
		})
	}
	return ApprovalResult{Loan: loan, AccountBalance: balance}, nil
}

// Reject executes the Pending -> Rejected transition. No money moves.
func (s *Service) Reject(ctx context.Context, loanID string) (Loan, error) {
	loan, err := s.store.Reject(ctx, loanID)
	if err != nil {
		return loan, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindLoanRejected,
			Destination: loan.CustomerID,
			Body:        fmt.Sprintf("Your loan application %s was rejected", loan.ID),
		})
	}
	return loan, nil
}

// Get fetches a loan.
func (s *Service) Get(ctx context.Context, loanID string) (Loan, error) {
	return s.store.Get(ctx, loanID)
}

// ListForCustomer returns the customer's loans, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]Loan, error) {
	return s.store.ListForCustomer(ctx, customerID)
}

// ListPending returns the admin review queue, oldest application first.
func (s *Service) ListPending(ctx context.Context) ([]Loan, error) {
	return s.store.ListPending(ctx)
}

// DeleteForCustomer removes the customer's loans; part of the customer
// deletion cascade owned by the customers service.
func (s *Service) DeleteForCustomer(ctx context.Context, customerID string) error {
	return s.store.DeleteForCustomer(ctx, customerID)
}
