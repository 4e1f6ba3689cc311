package repository

import (
	"sync"
	"time"

	"testcasegen/internal/models"
)

// MemoryStore is a Store held in process memory. Data does not survive a
// restart; it backs tests and DB_TYPE=memory development runs.
type MemoryStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	nextID   int64
	accounts map[int64]models.Account
	sessions map[string]models.Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]models.Account),
		sessions: make(map[string]models.Session),
	}
}

func (m *MemoryStore) CreateAccount(email, passwordHash string, now time.Time) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	m.nextID++
	a := models.Account{
		ID:           m.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}
	m.accounts[a.ID] = a
	return &a, nil
}

func (m *MemoryStore) GetAccountByEmail(email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == email {
			return copyAccount(a), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetAccountByID(id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return copyAccount(a), nil
}

func (m *MemoryStore) TouchAccount(id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.accounts[id]; ok {
		a.LastActiveAt = at
		m.accounts[id] = a
	}
	return nil
}

func (m *MemoryStore) SetSecret(id int64, sealed string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.Secret = &sealed
	m.accounts[id] = a
	return nil
}

func (m *MemoryStore) GetSecret(id int64) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Secret == nil {
		return nil, nil
	}
	secret := *a.Secret
	return &secret, nil
}

func (m *MemoryStore) DeleteInactiveAccounts(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, a := range m.accounts {
		if !a.LastActiveAt.After(cutoff) {
			delete(m.accounts, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateSession(token string, accountID int64, expiresAt, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[accountID]; !ok {
		return nil, ErrNotFound
	}
	s := models.Session{ID: token, AccountID: accountID, ExpiresAt: expiresAt, CreatedAt: now}
	m.sessions[token] = s
	return &s, nil
}

func (m *MemoryStore) GetActiveSession(token string, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok || s.IsExpired(now) {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) DeleteSession(token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteExpiredSessions(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteSessionsOfInactiveAccounts(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, s := range m.sessions {
		if a, ok := m.accounts[s.AccountID]; ok && !a.LastActiveAt.After(cutoff) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Atomically serializes units of work and restores the previous state when
// fn fails.
func (m *MemoryStore) Atomically(fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	accounts, sessions, nextID := m.snapshot()
	m.mu.Unlock()

	if err := fn(memoryTx{m}); err != nil {
		m.mu.Lock()
		m.accounts, m.sessions, m.nextID = accounts, sessions, nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) snapshot() (map[int64]models.Account, map[string]models.Session, int64) {
	accounts := make(map[int64]models.Account, len(m.accounts))
	for k, v := range m.accounts {
		accounts[k] = v
	}
	sessions := make(map[string]models.Session, len(m.sessions))
	for k, v := range m.sessions {
		sessions[k] = v
	}
	return accounts, sessions, m.nextID
}

// memoryTx is the store handed to fn; nested units of work join the outer one
type memoryTx struct {
	*MemoryStore
}

func (t memoryTx) Atomically(fn func(Store) error) error {
	return fn(t)
}

func copyAccount(a models.Account) *models.Account {
	if a.Secret != nil {
		secret := *a.Secret
		a.Secret = &secret
	}
	return &a
}
