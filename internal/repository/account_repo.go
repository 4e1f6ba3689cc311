package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"testcasegen/internal/database"
	"testcasegen/internal/models"
)

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new account repository. db may be a *database.DB
// or a *database.Tx.
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, secret, created_at, last_active_at, is_active`

// CreateAccount inserts a new active account. email must already be normalized.
func (r *AccountRepository) CreateAccount(email, passwordHash string, now time.Time) (*models.Account, error) {
	now = now.UTC()
	query := `
		INSERT INTO accounts (email, password_hash, created_at, last_active_at, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, now, now, true)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}, nil
}

// GetAccountByEmail retrieves an account by normalized email
func (r *AccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return r.scanAccount(r.db.QueryRow(query, email))
}

// GetAccountByID retrieves an account by ID
func (r *AccountRepository) GetAccountByID(id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanAccount(r.db.QueryRow(query, id))
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var secret sql.NullString
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&secret,
		&account.CreatedAt,
		&account.LastActiveAt,
		&account.IsActive,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if secret.Valid {
		account.Secret = &secret.String
	}
	return account, nil
}

// TouchAccount records activity on an account
func (r *AccountRepository) TouchAccount(id int64, at time.Time) error {
	query := `UPDATE accounts SET last_active_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, at.UTC(), id); err != nil {
		return fmt.Errorf("failed to update last activity: %w", err)
	}
	return nil
}

// SetSecret overwrites the stored (sealed) API key
func (r *AccountRepository) SetSecret(id int64, sealed string) error {
	query := `UPDATE accounts SET secret = ? WHERE id = ?`
	result, err := r.db.Exec(query, sealed, id)
	if err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSecret returns the stored (sealed) API key, or nil when none is set
func (r *AccountRepository) GetSecret(id int64) (*string, error) {
	var secret sql.NullString
	err := r.db.QueryRow(`SELECT secret FROM accounts WHERE id = ?`, id).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	if !secret.Valid {
		return nil, nil
	}
	return &secret.String, nil
}

// DeleteInactiveAccounts hard-deletes accounts idle since cutoff or earlier
func (r *AccountRepository) DeleteInactiveAccounts(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE last_active_at <= ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive accounts: %w", err)
	}
	return result.RowsAffected()
}
