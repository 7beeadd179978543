// Package teller implements over-the-counter cash movements: deposits into
// and withdrawals from a customer's own account.
package teller

import (
	"context"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

// Service posts teller-window cash movements against the ledger.
type Service struct {
	ledger ledger.Ledger
}

func NewService(led ledger.Ledger) *Service {
	return &Service{ledger: led}
}

// MovementInput describes a cash deposit or withdrawal request.
type MovementInput struct {
	AccountID   string
	CustomerID  string
	Amount      int64
	Description string
}

func (s *Service) authorize(ctx context.Context, accountID, customerID string) error {
	acct, err := s.ledger.Account(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.CustomerID != customerID {
		return ledger.ErrNotOwned
	}
	return nil
}

// Deposit credits the customer's account. The amount has already been
// parsed to minor units; the ledger enforces positivity.
func (s *Service) Deposit(ctx context.Context, input MovementInput) (ledger.MovementResult, error) {
	if err := s.authorize(ctx, input.AccountID, input.CustomerID); err != nil {
		return ledger.MovementResult{}, err
	}
	description := input.Description
	if description == "" {
		description = "Cash deposit"
	}
	return s.ledger.Deposit(ctx, input.AccountID, input.Amount, description)
}

// Withdraw debits the customer's account. Sufficiency is decided by the
// ledger under its own lock, not here.
func (s *Service) Withdraw(ctx context.Context, input MovementInput) (ledger.MovementResult, error) {
	if err := s.authorize(ctx, input.AccountID, input.CustomerID); err != nil {
		return ledger.MovementResult{}, err
	}
	description := input.Description
	if description == "" {
		description = "Cash withdrawal"
	}
	return s.ledger.Withdraw(ctx, input.AccountID, input.Amount, description)
}
