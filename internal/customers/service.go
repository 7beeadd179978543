package customers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

// AccountPurger is the slice of the ledger the deletion cascade needs: list a
// customer's accounts and delete each one together with its journal.
type AccountPurger interface {
	AccountsForCustomer(ctx context.Context, customerID string) ([]ledger.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

// LoanPurger removes a customer's loans during the deletion cascade.
type LoanPurger interface {
	DeleteForCustomer(ctx context.Context, customerID string) error
}

// Service manages customer and admin identity lifecycle.
type Service struct {
	repo     Repository
	admins   AdminRepository
	accounts AccountPurger
	loans    LoanPurger
}

// NewService creates a customer service.
func NewService(repo Repository, admins AdminRepository, accounts AccountPurger, loans LoanPurger) *Service {
	return &Service{repo: repo, admins: admins, accounts: accounts, loans: loans}
}

// RegisterInput captures customer onboarding data.
type RegisterInput struct {
	Name     string
	Address  string
	Contact  string
	Password string
}

// Register creates a customer with a bcrypt-hashed password. The contact
// identity must be unique; the store's constraint enforces it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Customer, error) {
	if input.Name == "" || input.Contact == "" {
		return Customer{}, errors.New("name and contact are required")
	}
	if len(input.Password) < 6 {
		return Customer{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}

	customer := Customer{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Address:      input.Address,
		Contact:      input.Contact,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// Authenticate verifies a customer's contact and password.
func (s *Service) Authenticate(ctx context.Context, contact, password string) (Customer, error) {
	customer, err := s.repo.FindByContact(ctx, contact)
	if err != nil {
		return Customer{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(customer.PasswordHash, []byte(password)); err != nil {
		return Customer{}, ErrBadCredentials
	}
	return customer, nil
}

// AuthenticateAdmin verifies an admin's username and password.
func (s *Service) AuthenticateAdmin(ctx context.Context, username, password string) (Admin, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return Admin{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		return Admin{}, ErrBadCredentials
	}
	return admin, nil
}

// EnsureAdmin creates the admin if the username is free; used to seed the
// first back-office operator at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if _, err := s.admins.FindByUsername(ctx, username); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.admins.Create(ctx, Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

// Get fetches a customer by identifier.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a customer and everything they own: each account with its
// journal through the ledger's deletion primitive, then their loans, then the
// customer record. The order keeps referential integrity at every step.
func (s *Service) Delete(ctx context.Context, customerID string) error {
	if _, err := s.repo.FindByID(ctx, customerID); err != nil {
		return err
	}

	accounts, err := s.accounts.AccountsForCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if s.loans != nil {
		if err := s.loans.DeleteForCustomer(ctx, customerID); err != nil {
			return err
		}
	}
	for _, acct := range accounts {
		if err := s.accounts.DeleteAccount(ctx, acct.ID); err != nil && !errors.Is(err, ledger.ErrAccountNotFound) {
			return err
		}
	}
	return s.repo.Delete(ctx, customerID)
}
