package loans

import "context"

// Store persists loans and performs the lifecycle transitions. Approve and
// Reject are the atomic units: the status check, the status update and (for
// Approve) the disbursement posting all happen under one lock/transaction, so
// two concurrent decisions on the same loan resolve to exactly one winner.
type Store interface {
	Create(ctx context.Context, loan Loan) error
	Get(ctx context.Context, id string) (Loan, error)
	ListForCustomer(ctx context.Context, customerID string) ([]Loan, error)

	// ListPending returns the review queue, oldest application first.
	ListPending(ctx context.Context) ([]Loan, error)

	// Approve flips a pending loan to approved and credits the principal to
	// the disbursement account with a LoanDisbursement journal entry, all in
	// one atomic unit. A missing account rolls the status change back too.
	// Returns the decided loan and the account's new balance.
	Approve(ctx context.Context, id string) (Loan, int64, error)

	// Reject flips a pending loan to rejected. No money moves.
	Reject(ctx context.Context, id string) (Loan, error)

	// DeleteForCustomer removes all of a customer's loans; used by the
	// customer-deletion cascade.
	DeleteForCustomer(ctx context.Context, customerID string) error
}
