// Package loans owns the loan lifecycle: application, the single
// Pending -> Approved/Rejected transition, and the disbursement that an
// approval triggers atomically.
package loans

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the referenced loan does not exist.
	ErrNotFound = errors.New("loan not found")

	// ErrInvalidTerms occurs when principal, term, or rate fail validation.
	ErrInvalidTerms = errors.New("invalid loan terms")

	// ErrInvalidTransition reports an approve/reject on a loan that is no
	// longer pending. The decision already stands; nothing is retried.
	ErrInvalidTransition = errors.New("loan is not pending")
)

// Status is the lifecycle state of a loan. Approved and Rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Loan is a customer's application for principal to be disbursed into one of
// their accounts. Principal is in minor currency units.
type Loan struct {
	ID          string
	CustomerID  string
	AccountID   string
	Principal   int64
	RatePercent decimal.Decimal
	TermMonths  int
	Status      Status
	AppliedAt   time.Time
	DecidedAt   *time.Time
}
