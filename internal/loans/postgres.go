package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlasbank/atlasbank/internal/ledger"
)

const loanColumns = `id, customer_id, account_id, principal, rate_percent::text, term_months, status, applied_at, decided_at`

// PostgresStore persists loans in PostgreSQL. Transitions reuse the ledger's
// transaction discipline so an approval and its disbursement share one
// commit.
type PostgresStore struct {
	db     *pgxpool.Pool
	ledger *ledger.PostgresLedger
}

// NewPostgresStore builds a Postgres-backed loan store bound to the ledger
// whose accounts it disburses into.
func NewPostgresStore(db *pgxpool.Pool, led *ledger.PostgresLedger) *PostgresStore {
	return &PostgresStore{db: db, ledger: led}
}

// Create inserts a pending loan application.
func (s *PostgresStore) Create(ctx context.Context, loan Loan) error {
	loanID, err := uuid.Parse(loan.ID)
	if err != nil {
		return fmt.Errorf("%w: bad loan id", ledger.ErrStorage)
	}
	custID, err := uuid.Parse(loan.CustomerID)
	if err != nil {
		return fmt.Errorf("%w: bad customer id", ledger.ErrStorage)
	}
	acctID, err := uuid.Parse(loan.AccountID)
	if err != nil {
		return fmt.Errorf("%w: bad account id", ledger.ErrStorage)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO loans (id, customer_id, account_id, principal, rate_percent, term_months, status, applied_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		loanID, custID, acctID, loan.Principal, loan.RatePercent.String(), loan.TermMonths, string(loan.Status), loan.AppliedAt.UTC())
	return ledger.MapError(err)
}

// Get fetches a loan by identifier.
func (s *PostgresStore) Get(ctx context.Context, id string) (Loan, error) {
	loanID, err := uuid.Parse(id)
	if err != nil {
		return Loan{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, loanID)
	loan, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrNotFound
	}
	if err != nil {
		return Loan{}, ledger.MapError(err)
	}
	return loan, nil
}

// ListForCustomer returns the customer's loans, newest application first.
func (s *PostgresStore) ListForCustomer(ctx context.Context, customerID string) ([]Loan, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE customer_id = $1 ORDER BY applied_at DESC`, custID)
	if err != nil {
		return nil, ledger.MapError(err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, ledger.MapError(err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.MapError(err)
	}
	return loans, nil
}

// ListPending returns all pending applications, oldest first, so the review
// queue is worked in arrival order.
func (s *PostgresStore) ListPending(ctx context.Context) ([]Loan, error) {
	rows, err := s.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE status = $1 ORDER BY applied_at ASC`, string(StatusPending))
	if err != nil {
		return nil, ledger.MapError(err)
	}
	defer rows.Close()

	var loans []Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, ledger.MapError(err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.MapError(err)
	}
	return loans, nil
}

// Approve locks the loan row, requires Pending, marks it approved and posts
// the disbursement, all in one transaction. If the disbursement account is
// gone the whole unit rolls back and the loan stays pending.
func (s *PostgresStore) Approve(ctx context.Context, id string) (Loan, int64, error) {
	loanID, err := uuid.Parse(id)
	if err != nil {
		return Loan{}, 0, ErrNotFound
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return Loan{}, 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	loan, err := lockLoan(ctx, tx, loanID)
	if err != nil {
		return Loan{}, 0, err
	}
	if loan.Status != StatusPending {
		return loan, 0, ErrInvalidTransition
	}

	decidedAt := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE loans SET status = $1, decided_at = $2 WHERE id = $3`,
		string(StatusApproved), decidedAt, loanID); err != nil {
		return Loan{}, 0, ledger.MapError(err)
	}

	_, balance, err := ledger.PostEntry(ctx, tx, loan.AccountID, ledger.KindLoanDisbursement,
		loan.Principal, fmt.Sprintf("Loan %s disbursed", loan.ID), "")
	if err != nil {
		return Loan{}, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Loan{}, 0, ledger.MapError(err)
	}

	loan.Status = StatusApproved
	loan.DecidedAt = &decidedAt
	return loan, balance, nil
}

// Reject locks the loan row, requires Pending, and marks it rejected.
func (s *PostgresStore) Reject(ctx context.Context, id string) (Loan, error) {
	loanID, err := uuid.Parse(id)
	if err != nil {
		return Loan{}, ErrNotFound
	}

	tx, err := s.ledger.Begin(ctx)
	if err != nil {
		return Loan{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	loan, err := lockLoan(ctx, tx, loanID)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status != StatusPending {
		return loan, ErrInvalidTransition
	}

	decidedAt := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE loans SET status = $1, decided_at = $2 WHERE id = $3`,
		string(StatusRejected), decidedAt, loanID); err != nil {
		return Loan{}, ledger.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Loan{}, ledger.MapError(err)
	}

	loan.Status = StatusRejected
	loan.DecidedAt = &decidedAt
	return loan, nil
}

// DeleteForCustomer removes all loans belonging to the customer.
func (s *PostgresStore) DeleteForCustomer(ctx context.Context, customerID string) error {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return nil
	}
	_, err = s.db.Exec(ctx, `DELETE FROM loans WHERE customer_id = $1`, custID)
	return ledger.MapError(err)
}

func lockLoan(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (Loan, error) {
	row := tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	loan, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrNotFound
	}
	if err != nil {
		return Loan{}, ledger.MapError(err)
	}
	return loan, nil
}

func scanLoan(row pgx.Row) (Loan, error) {
	var (
		loan      Loan
		id        uuid.UUID
		custID    uuid.UUID
		acctID    uuid.UUID
		rate      string
		status    string
		appliedAt time.Time
		decidedAt *time.Time
	)
	if err := row.Scan(&id, &custID, &acctID, &loan.Principal, &rate, &loan.TermMonths, &status, &appliedAt, &decidedAt); err != nil {
		return Loan{}, err
	}
	parsedRate, err := decimal.NewFromString(rate)
	if err != nil {
		return Loan{}, fmt.Errorf("parse rate: %w", err)
	}
	loan.ID = id.String()
	loan.CustomerID = custID.String()
	loan.AccountID = acctID.String()
	loan.RatePercent = parsedRate
	loan.Status = Status(status)
	loan.AppliedAt = appliedAt.UTC()
	if decidedAt != nil {
		utc := decidedAt.UTC()
		loan.DecidedAt = &utc
	}
	return loan, nil
}
