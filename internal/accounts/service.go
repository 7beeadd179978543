// Package accounts exposes account lifecycle and inquiry operations over the
// ledger, re-validating ownership for every operation instead of trusting the
// caller's claims.
package accounts

import (
	"context"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

const defaultAccountType = "savings"

// Service wraps the ledger's account operations with ownership checks.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds an account service.
func NewService(led ledger.Ledger) *Service {
	return &Service{ledger: led}
}

// OpenInput captures data required to open an account.
type OpenInput struct {
	CustomerID string
	Type       string
}

// Open creates a zero-balance account of the requested type for the customer.
func (s *Service) Open(ctx context.Context, input OpenInput) (ledger.Account, error) {
	accountType := input.Type
	if accountType == "" {
		accountType = defaultAccountType
	}
	return s.ledger.CreateAccount(ctx, input.CustomerID, accountType)
}

// Get returns the account if it belongs to the requestor.
func (s *Service) Get(ctx context.Context, accountID, requestorID string) (ledger.Account, error) {
	acct, err := s.ledger.Account(ctx, accountID)
	if err != nil {
		return ledger.Account{}, err
	}
	if acct.CustomerID != requestorID {
		return ledger.Account{}, ledger.ErrNotOwned
	}
	return acct, nil
}

// ListMine returns all accounts owned by the customer.
func (s *Service) ListMine(ctx context.Context, customerID string) ([]ledger.Account, error) {
	return s.ledger.AccountsForCustomer(ctx, customerID)
}

// History returns the account's journal, newest first, after re-validating
// ownership.
func (s *Service) History(ctx context.Context, accountID, requestorID string) ([]ledger.Entry, error) {
	if _, err := s.Get(ctx, accountID, requestorID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, accountID)
}

// Close deletes the account together with its journal after re-validating
// ownership.
func (s *Service) Close(ctx context.Context, accountID, requestorID string) error {
	if _, err := s.Get(ctx, accountID, requestorID); err != nil {
		return err
	}
	return s.ledger.DeleteAccount(ctx, accountID)
}
