package customers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, customer Customer) error
	FindByID(ctx context.Context, id string) (Customer, error)
	FindByContact(ctx context.Context, contact string) (Customer, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepository persists back-office admins.
type AdminRepository interface {
	Create(ctx context.Context, admin Admin) error
	FindByID(ctx context.Context, id string) (Admin, error)
	FindByUsername(ctx context.Context, username string) (Admin, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new customer; the unique constraint on contact enforces
// one identity per contact.
func (r *PostgresRepository) Create(ctx context.Context, customer Customer) error {
	id, err := uuid.Parse(customer.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO customers (id, name, address, contact, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, customer.Name, customer.Address, customer.Contact, customer.PasswordHash, customer.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrContactTaken
	}
	return err
}

// FindByID fetches a customer by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Customer, error) {
	custID, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, address, contact, password_hash, created_at
        FROM customers WHERE id = $1`, custID)
	return scanCustomer(row)
}

// FindByContact fetches a customer by their unique contact identity.
func (r *PostgresRepository) FindByContact(ctx context.Context, contact string) (Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, address, contact, password_hash, created_at
        FROM customers WHERE contact = $1`, contact)
	return scanCustomer(row)
}

// Delete removes the customer row. The caller is responsible for deleting
// accounts and loans first; the foreign keys refuse the delete otherwise.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	custID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, custID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		c         Customer
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &c.Name, &c.Address, &c.Contact, &c.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	c.ID = id.String()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}

// PostgresAdminRepository implements AdminRepository using PostgreSQL.
type PostgresAdminRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAdminRepository builds a Postgres-backed admin repository.
func NewPostgresAdminRepository(db *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

// Create inserts a new admin.
func (r *PostgresAdminRepository) Create(ctx context.Context, admin Admin) error {
	id, err := uuid.Parse(admin.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO admins (id, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4) ON CONFLICT (username) DO NOTHING`,
		id, admin.Username, admin.PasswordHash, admin.CreatedAt.UTC())
	return err
}

// FindByID fetches an admin by identifier.
func (r *PostgresAdminRepository) FindByID(ctx context.Context, id string) (Admin, error) {
	adminID, err := uuid.Parse(id)
	if err != nil {
		return Admin{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE id = $1`, adminID)
	return scanAdmin(row)
}

// FindByUsername fetches an admin by username.
func (r *PostgresAdminRepository) FindByUsername(ctx context.Context, username string) (Admin, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username)
	return scanAdmin(row)
}

func scanAdmin(row pgx.Row) (Admin, error) {
	var (
		a         Admin
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &a.Username, &a.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, err
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	return a, nil
}
