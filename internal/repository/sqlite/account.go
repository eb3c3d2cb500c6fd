package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/repository"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.AccountRepository = (*DB)(nil)

const accountColumns = `id, email, password, first_name, last_name, phone, avatar, email_verified, created_at`

// Create inserts a new account. ID and CreatedAt are filled in when empty,
// and the caller's struct is updated in place.
//
// The UNIQUE constraint on email does the duplicate check; its violation is
// translated into apperror.Conflict so callers never see a driver error.
func (db *DB) Create(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = xid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		account.Password,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Avatar,
		account.EmailVerified,
		account.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("account", account.Email)
		}
		return fmt.Errorf("sqlite: creating account: %w", err)
	}
	return nil
}

// GetByEmail looks an account up by its exact email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("account", email)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account by email: %w", err)
	}
	return a, nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return a, nil
}

// Update writes back the mutable columns. email, id and created_at are left alone.
//
// RowsAffected tells us whether the id existed: UPDATE on a missing row is not
// an SQL error, just a no-op.
func (db *DB) Update(ctx context.Context, account *model.Account) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE accounts
		 SET password = ?, first_name = ?, last_name = ?, phone = ?, avatar = ?,
		     email_verified = ?, updated_at = ?
		 WHERE id = ?`,
		account.Password,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Avatar,
		account.EmailVerified,
		time.Now().UTC(),
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %s: %w", account.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("account", account.ID)
	}
	return nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Password,
		&a.FirstName,
		&a.LastName,
		&a.Phone,
		&a.Avatar,
		&a.EmailVerified,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
