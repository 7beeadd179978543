// Package customers manages customer and admin identities and the cascade
// that removes a customer together with their accounts, journals and loans.
// Authentication decisions made here are consumed by the HTTP layer; the
// ledger core never reads them implicitly.
package customers

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the customer or admin does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrContactTaken indicates the contact identity is already registered.
	ErrContactTaken = errors.New("contact already registered")
	// ErrBadCredentials indicates authentication failed.
	ErrBadCredentials = errors.New("invalid credentials")
)

// Customer is a registered bank customer. Contact is the unique identity
// (email or phone) used to sign in.
type Customer struct {
	ID           string
	Name         string
	Address      string
	Contact      string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Admin is a back-office operator allowed to decide loans and manage
// customers.
type Admin struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
