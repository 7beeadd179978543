package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, customer_id, account_number, account_type, balance, created_at`

// createAccountAttempts bounds the account-number collision retry loop.
const createAccountAttempts = 5

// PostgresLedger persists accounts and journal entries in PostgreSQL. Every
// posting runs in a transaction that locks the account row, re-validates
// sufficiency under that lock, updates the stored balance and appends the
// journal entry.
type PostgresLedger struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresLedger constructs a Postgres-backed ledger. lockTimeout bounds
// how long a posting may wait on a row lock before surfacing ErrBusy.
func NewPostgresLedger(db *pgxpool.Pool, lockTimeout time.Duration) *PostgresLedger {
	return &PostgresLedger{db: db, lockTimeout: lockTimeout}
}

// MapError normalizes driver errors to the ledger taxonomy: lock timeouts,
// serialization failures and deadlocks become ErrBusy, everything else is
// wrapped in ErrStorage. Shared by stores that participate in ledger
// transactions.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrBusy
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40001", "40P01": // lock_not_available, serialization_failure, deadlock_detected
			return ErrBusy
		}
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Begin opens a transaction with the configured lock timeout applied. Exposed
// so the loan store can span its status transition and the disbursement
// posting in one atomic unit.
func (l *PostgresLedger) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, MapError(err)
	}
	if l.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			tx.Rollback(ctx) // nolint:errcheck
			return nil, MapError(err)
		}
	}
	return tx, nil
}

// PostEntry applies one signed balance change together with its journal entry
// inside the caller's transaction: it locks the account row, re-validates
// sufficiency for debits under that lock, updates the balance and inserts the
// entry. Never call the balance update outside this pairing.
func PostEntry(ctx context.Context, tx pgx.Tx, accountID string, kind Kind, amount int64, description, counterpartyID string) (Entry, int64, error) {
	acct, err := lockAccount(ctx, tx, accountID)
	if err != nil {
		return Entry{}, 0, err
	}

	newBalance := acct.Balance + amount
	if amount < 0 && newBalance < 0 {
		return Entry{}, 0, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, newBalance, acct.ID); err != nil {
		return Entry{}, 0, MapError(err)
	}

	entry := Entry{
		ID:             uuid.NewString(),
		AccountID:      acct.ID,
		Kind:           kind,
		Amount:         amount,
		Description:    description,
		CounterpartyID: counterpartyID,
		CreatedAt:      time.Now().UTC(),
	}

	var counterparty any
	if counterpartyID != "" {
		cp, err := uuid.Parse(counterpartyID)
		if err != nil {
			return Entry{}, 0, fmt.Errorf("%w: bad counterparty id", ErrStorage)
		}
		counterparty = cp
	}

	if _, err := tx.Exec(ctx, `INSERT INTO entries (id, account_id, kind, amount, description, counterparty_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, acct.ID, string(kind), amount, description, counterparty, entry.CreatedAt); err != nil {
		return Entry{}, 0, MapError(err)
	}

	return entry, newBalance, nil
}

func lockAccount(ctx context.Context, tx pgx.Tx, accountID string) (Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, MapError(err)
	}
	return acct, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acct      Account
		id        uuid.UUID
		custID    uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &custID, &acct.Number, &acct.Type, &acct.Balance, &createdAt); err != nil {
		return Account{}, err
	}
	acct.ID = id.String()
	acct.CustomerID = custID.String()
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}

// CreateAccount opens a zero-balance account. The account number draw relies
// on the unique constraint: on collision the insert fails and a fresh number
// is drawn, so concurrent creations cannot race a check-then-insert.
func (l *PostgresLedger) CreateAccount(ctx context.Context, customerID, accountType string) (Account, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return Account{}, fmt.Errorf("%w: bad customer id", ErrStorage)
	}

	for attempt := 0; attempt < createAccountAttempts; attempt++ {
		acct := Account{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			Number:     newAccountNumber(),
			Type:       accountType,
			CreatedAt:  time.Now().UTC(),
		}
		_, err := l.db.Exec(ctx, `INSERT INTO accounts (id, customer_id, account_number, account_type, balance, created_at)
            VALUES ($1, $2, $3, $4, 0, $5)`,
			acct.ID, custID, acct.Number, acct.Type, acct.CreatedAt)
		if err == nil {
			return acct, nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return Account{}, MapError(err)
	}
	return Account{}, fmt.Errorf("%w: account number space exhausted after %d draws", ErrStorage, createAccountAttempts)
}

// Account fetches an account by internal identifier.
func (l *PostgresLedger) Account(ctx context.Context, accountID string) (Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := l.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, MapError(err)
	}
	return acct, nil
}

// AccountByNumber fetches an account by its external number.
func (l *PostgresLedger) AccountByNumber(ctx context.Context, number string) (Account, error) {
	row := l.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, MapError(err)
	}
	return acct, nil
}

// AccountsForCustomer lists a customer's accounts, oldest first.
func (l *PostgresLedger) AccountsForCustomer(ctx context.Context, customerID string) ([]Account, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, nil
	}
	rows, err := l.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 ORDER BY created_at`, custID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, MapError(err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return accounts, nil
}

// Deposit credits the account and appends a Deposit entry in one transaction.
func (l *PostgresLedger) Deposit(ctx context.Context, accountID string, amount int64, description string) (MovementResult, error) {
	if amount <= 0 {
		return MovementResult{}, ErrInvalidAmount
	}
	return l.post(ctx, accountID, KindDeposit, amount, description)
}

// Withdraw debits the account and appends a Withdrawal entry in one
// transaction; the sufficiency check happens under the row lock.
func (l *PostgresLedger) Withdraw(ctx context.Context, accountID string, amount int64, description string) (MovementResult, error) {
	if amount <= 0 {
		return MovementResult{}, ErrInvalidAmount
	}
	return l.post(ctx, accountID, KindWithdrawal, -amount, description)
}

func (l *PostgresLedger) post(ctx context.Context, accountID string, kind Kind, amount int64, description string) (MovementResult, error) {
	tx, err := l.Begin(ctx)
	if err != nil {
		return MovementResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	entry, balance, err := PostEntry(ctx, tx, accountID, kind, amount, description, "")
	if err != nil {
		return MovementResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return MovementResult{}, MapError(err)
	}
	return MovementResult{EntryID: entry.ID, Balance: balance}, nil
}

// Transfer debits the source and credits the target in a single transaction.
// The two rows are locked in ascending account-ID order so two opposing
// transfers between the same pair cannot deadlock.
func (l *PostgresLedger) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if input.Amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	srcID, err := uuid.Parse(input.SourceID)
	if err != nil {
		return TransferResult{}, ErrAccountNotFound
	}

	tx, err := l.Begin(ctx)
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var srcNumber string
	err = tx.QueryRow(ctx, `SELECT account_number FROM accounts WHERE id = $1`, srcID).Scan(&srcNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return TransferResult{}, ErrAccountNotFound
	}
	if err != nil {
		return TransferResult{}, MapError(err)
	}

	var tgtID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM accounts WHERE account_number = $1`, input.TargetNumber).Scan(&tgtID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TransferResult{}, ErrTargetNotFound
	}
	if err != nil {
		return TransferResult{}, MapError(err)
	}
	if tgtID == srcID {
		return TransferResult{}, ErrSelfTransfer
	}

	debitDesc := transferDescription("Transfer to account "+input.TargetNumber, input.Description)
	creditDesc := transferDescription("Transfer from account "+srcNumber, input.Description)

	type posting struct {
		account      string
		kind         Kind
		amount       int64
		description  string
		counterparty string
	}
	debit := posting{input.SourceID, KindTransferDebit, -input.Amount, debitDesc, tgtID.String()}
	credit := posting{tgtID.String(), KindTransferCredit, input.Amount, creditDesc, input.SourceID}

	ordered := []posting{debit, credit}
	if credit.account < debit.account {
		ordered = []posting{credit, debit}
	}

	var res TransferResult
	res.TargetID = tgtID.String()
	for _, p := range ordered {
		entry, balance, err := PostEntry(ctx, tx, p.account, p.kind, p.amount, p.description, p.counterparty)
		if err != nil {
			return TransferResult{}, err
		}
		if p.kind == KindTransferDebit {
			res.DebitEntryID = entry.ID
			res.SourceBalance = balance
		} else {
			res.CreditEntryID = entry.ID
			res.TargetBalance = balance
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, MapError(err)
	}
	return res, nil
}

func transferDescription(base, extra string) string {
	if extra == "" {
		return base
	}
	return base + ": " + extra
}

// History returns the account's journal, newest first.
func (l *PostgresLedger) History(ctx context.Context, accountID string) ([]Entry, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	var exists bool
	if err := l.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, MapError(err)
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	rows, err := l.db.Query(ctx, `SELECT id, account_id, kind, amount, description, counterparty_id, created_at
        FROM entries WHERE account_id = $1 ORDER BY created_at DESC, id DESC`, id)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			entryID      uuid.UUID
			acctID       uuid.UUID
			kind         string
			counterparty *uuid.UUID
			createdAt    time.Time
		)
		if err := rows.Scan(&entryID, &acctID, &kind, &e.Amount, &e.Description, &counterparty, &createdAt); err != nil {
			return nil, MapError(err)
		}
		e.ID = entryID.String()
		e.AccountID = acctID.String()
		e.Kind = Kind(kind)
		if counterparty != nil {
			e.CounterpartyID = counterparty.String()
		}
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// DeleteAccount removes the account and its journal in one transaction.
// Counterparty references from other accounts' entries are nulled first so
// the audit trail of surviving accounts stays intact.
func (l *PostgresLedger) DeleteAccount(ctx context.Context, accountID string) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	tx, err := l.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := lockAccount(ctx, tx, accountID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE entries SET counterparty_id = NULL WHERE counterparty_id = $1`, id); err != nil {
		return MapError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE account_id = $1`, id); err != nil {
		return MapError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
		return MapError(err)
	}
	return MapError(tx.Commit(ctx))
}
