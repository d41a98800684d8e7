package accountinfra

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fundora/fundora/pkg/errx"
	"github.com/fundora/fundora/pkg/iam/account"
	"github.com/fundora/fundora/pkg/kernel"
)

// PostgresAccountStore is the PostgreSQL implementation of account.Store.
// Schema: migrations/001_accounts.sql.
type PostgresAccountStore struct {
	db *sqlx.DB
}

// NewPostgresAccountStore creates a new Postgres-backed account store.
func NewPostgresAccountStore(db *sqlx.DB) account.Store {
	return &PostgresAccountStore{db: db}
}

// Create inserts a new account row.
func (s *PostgresAccountStore) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (
			id, name, email, password_hash, role, verified,
			otp_code, otp_expires_at,
			reset_otp, reset_otp_expires_at, reset_token,
			refresh_tokens, version, created_at, updated_at
		) VALUES (
			:id, :name, :email, :password_hash, :role, :verified,
			:otp_code, :otp_expires_at,
			:reset_otp, :reset_otp_expires_at, :reset_token,
			:refresh_tokens, :version, :created_at, :updated_at
		)`

	_, err := s.db.NamedExecContext(ctx, query, toPersistence(acc))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return account.ErrEmailTaken()
		}
		return errx.Wrap(err, "failed to create account", errx.TypeInternal).
			WithDetail("account_id", acc.ID.String())
	}
	return nil
}

// FindByEmail fetches an account by its unique email.
func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	var row accountRow
	query := `SELECT * FROM accounts WHERE email = $1`
	err := s.db.GetContext(ctx, &row, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound()
		}
		return nil, errx.Wrap(err, "failed to find account by email", errx.TypeInternal)
	}
	return toDomain(row), nil
}

// FindByID fetches an account by primary key.
func (s *PostgresAccountStore) FindByID(ctx context.Context, id kernel.AccountID) (*account.Account, error) {
	var row accountRow
	query := `SELECT * FROM accounts WHERE id = $1`
	err := s.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound()
		}
		return nil, errx.Wrap(err, "failed to find account by ID", errx.TypeInternal)
	}
	return toDomain(row), nil
}

// FindByRefreshToken locates the account whose session set contains the
// exact token string.
func (s *PostgresAccountStore) FindByRefreshToken(ctx context.Context, token string) (*account.Account, error) {
	var row accountRow
	query := `SELECT * FROM accounts WHERE $1 = ANY(refresh_tokens)`
	err := s.db.GetContext(ctx, &row, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound()
		}
		return nil, errx.Wrap(err, "failed to find account by refresh token", errx.TypeInternal)
	}
	return toDomain(row), nil
}

// Save performs the conditional update that backs optimistic concurrency:
// one round-trip, guarded on the version the caller read.
func (s *PostgresAccountStore) Save(ctx context.Context, acc *account.Account) error {
	acc.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE accounts SET
			name = :name,
			password_hash = :password_hash,
			role = :role,
			verified = :verified,
			otp_code = :otp_code,
			otp_expires_at = :otp_expires_at,
			reset_otp = :reset_otp,
			reset_otp_expires_at = :reset_otp_expires_at,
			reset_token = :reset_token,
			refresh_tokens = :refresh_tokens,
			version = version + 1,
			updated_at = :updated_at
		WHERE id = :id AND version = :version`

	result, err := s.db.NamedExecContext(ctx, query, toPersistence(acc))
	if err != nil {
		return errx.Wrap(err, "failed to save account", errx.TypeInternal).
			WithDetail("account_id", acc.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on save", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		// Either the row is gone or a concurrent writer bumped the version.
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, acc.ID.String()); err != nil {
			return errx.Wrap(err, "failed to check account existence", errx.TypeInternal)
		}
		if !exists {
			return account.ErrAccountNotFound()
		}
		return account.ErrStaleAccount().WithDetail("account_id", acc.ID.String())
	}

	acc.Version++
	return nil
}
