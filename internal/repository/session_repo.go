package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"testcasegen/internal/database"
	"testcasegen/internal/models"
)

// SessionRepository handles database operations for sessions
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession creates a new session for an account
func (r *SessionRepository) CreateSession(token string, accountID int64, expiresAt, now time.Time) (*models.Session, error) {
	expiresAt, now = expiresAt.UTC(), now.UTC()
	query := `
		INSERT INTO sessions (id, account_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, token, accountID, expiresAt, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        token,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetActiveSession retrieves a session that has not expired at now.
// Missing and expired sessions both return nil, nil.
func (r *SessionRepository) GetActiveSession(token string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, account_id, expires_at, created_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, token, now.UTC()).Scan(
		&session.ID,
		&session.AccountID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession deletes a session. Deleting a missing session is not an error.
func (r *SessionRepository) DeleteSession(token string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry is at or before now
func (r *SessionRepository) DeleteExpiredSessions(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// DeleteSessionsOfInactiveAccounts removes every session belonging to an
// account idle since cutoff or earlier
func (r *SessionRepository) DeleteSessionsOfInactiveAccounts(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE account_id IN (SELECT id FROM accounts WHERE last_active_at <= ?)
	`
	result, err := r.db.Exec(query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions of inactive accounts: %w", err)
	}
	return result.RowsAffected()
}
