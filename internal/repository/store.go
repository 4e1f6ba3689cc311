package repository

import (
	"time"

	"testcasegen/internal/database"
	"testcasegen/internal/models"
)

// AccountStore persists accounts
type AccountStore interface {
	CreateAccount(email, passwordHash string, now time.Time) (*models.Account, error)
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByID(id int64) (*models.Account, error)
	TouchAccount(id int64, at time.Time) error
	SetSecret(id int64, sealed string) error
	GetSecret(id int64) (*string, error)
	DeleteInactiveAccounts(cutoff time.Time) (int64, error)
}

// SessionStore persists sessions
type SessionStore interface {
	CreateSession(token string, accountID int64, expiresAt, now time.Time) (*models.Session, error)
	GetActiveSession(token string, now time.Time) (*models.Session, error)
	DeleteSession(token string) error
	DeleteExpiredSessions(now time.Time) (int64, error)
	DeleteSessionsOfInactiveAccounts(cutoff time.Time) (int64, error)
}

// Store is the persistence boundary of the auth service
type Store interface {
	AccountStore
	SessionStore
	// Atomically runs fn with a Store whose writes commit together or not at all
	Atomically(fn func(Store) error) error
}

// SQLStore implements Store over the dialect-aware database layer
type SQLStore struct {
	*AccountRepository
	*SessionRepository
	root *database.DB // nil when bound to a transaction
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store backed by db
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{
		AccountRepository: NewAccountRepository(db),
		SessionRepository: NewSessionRepository(db),
		root:              db,
	}
}

func newTxStore(tx *database.Tx) *SQLStore {
	return &SQLStore{
		AccountRepository: NewAccountRepository(tx),
		SessionRepository: NewSessionRepository(tx),
	}
}

// Atomically runs fn inside a transaction. Nested calls join the outer one.
func (s *SQLStore) Atomically(fn func(Store) error) error {
	if s.root == nil {
		return fn(s)
	}
	return s.root.WithTx(func(tx *database.Tx) error {
		return fn(newTxStore(tx))
	})
}
