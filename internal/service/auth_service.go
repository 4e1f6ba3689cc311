package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"testcasegen/internal/models"
	"testcasegen/internal/repository"
	"testcasegen/internal/security"
	"testcasegen/internal/validation"
)

const (
	DefaultSessionDuration  = 30 * 24 * time.Hour
	DefaultInactivityWindow = 30 * 24 * time.Hour

	notifyTimeout = 15 * time.Second
)

// AuthConfig holds the time windows the service enforces
type AuthConfig struct {
	SessionDuration  time.Duration
	InactivityWindow time.Duration
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Account   models.AccountView
	Token     string
	ExpiresAt time.Time
}

// AccountNotifier is told about new accounts after they are committed
type AccountNotifier interface {
	NotifyRegistered(ctx context.Context, email string) error
}

// AuthService handles authentication business logic
type AuthService struct {
	store    repository.Store
	hasher   *security.PasswordHasher
	sealer   security.SecretSealer
	cfg      AuthConfig
	notifier AccountNotifier
	logger   *slog.Logger

	now      func() time.Time
	newToken func() (string, error)

	pending sync.WaitGroup
}

// NewAuthService creates a new auth service. Zero durations in cfg fall back
// to 30 days.
func NewAuthService(store repository.Store, hasher *security.PasswordHasher, sealer security.SecretSealer, cfg AuthConfig) *AuthService {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}
	if cfg.InactivityWindow <= 0 {
		cfg.InactivityWindow = DefaultInactivityWindow
	}
	if sealer == nil {
		sealer = security.PlaintextSealer{}
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		sealer:   sealer,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		newToken: security.GenerateSessionToken,
	}
}

// SetNotifier registers the welcome notifier
func (s *AuthService) SetNotifier(n AccountNotifier) {
	s.notifier = n
}

// SetLogger replaces the service logger
func (s *AuthService) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Close waits for in-flight notifications
func (s *AuthService) Close() {
	s.pending.Wait()
}

// Register creates an account and its first session in one unit of work
func (s *AuthService) Register(email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.store.GetAccountByEmail(email)
	if err != nil {
		return nil, unavailable("register", err)
	}
	if existing != nil {
		return nil, ErrDuplicateAccount
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, unavailable("register", err)
	}

	now := s.now()
	var result *AuthResult
	err = s.store.Atomically(func(tx repository.Store) error {
		account, err := tx.CreateAccount(email, passwordHash, now)
		if err != nil {
			return err
		}
		session, err := s.issueSession(tx, account.ID, now)
		if err != nil {
			return err
		}
		result = &AuthResult{Account: account.View(), Token: session.ID, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrDuplicateAccount
	}
	if err != nil {
		return nil, unavailable("register", err)
	}

	s.logger.Info("account registered", "account_id", result.Account.ID)
	s.notifyRegistered(email)
	return result, nil
}

// Login verifies credentials and issues a new session. Every credential
// failure returns the same ErrInvalidCredentials.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil, &validation.ValidationError{Field: "email", Message: "email is required"}
	}
	if password == "" {
		return nil, &validation.ValidationError{Field: "password", Message: "password is required"}
	}

	account, err := s.store.GetAccountByEmail(email)
	if err != nil {
		return nil, unavailable("login", err)
	}
	if account == nil || !account.IsActive {
		s.hasher.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, unavailable("login", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	var session *models.Session
	err = s.store.Atomically(func(tx repository.Store) error {
		if err := tx.TouchAccount(account.ID, now); err != nil {
			return err
		}
		issued, err := s.issueSession(tx, account.ID, now)
		if err != nil {
			return err
		}
		session = issued
		return nil
	})
	if err != nil {
		return nil, unavailable("login", err)
	}

	return &AuthResult{Account: account.View(), Token: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) issueSession(store repository.SessionStore, accountID int64, now time.Time) (*models.Session, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, err
	}
	return store.CreateSession(token, accountID, now.Add(s.cfg.SessionDuration), now)
}

// ValidateSession resolves a token to its account and records activity.
// It never extends the session.
func (s *AuthService) ValidateSession(token string) (*models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSession
	}

	now := s.now()
	session, err := s.store.GetActiveSession(token, now)
	if err != nil {
		return nil, unavailable("validate session", err)
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	account, err := s.store.GetAccountByID(session.AccountID)
	if err != nil {
		return nil, unavailable("validate session", err)
	}
	if account == nil || !account.IsActive {
		return nil, ErrInvalidSession
	}

	if err := s.store.TouchAccount(account.ID, now); err != nil {
		return nil, unavailable("validate session", err)
	}
	account.LastActiveAt = now
	return account, nil
}

// Logout deletes a session. Unknown tokens are not an error.
func (s *AuthService) Logout(token string) error {
	if err := s.store.DeleteSession(token); err != nil {
		return unavailable("logout", err)
	}
	return nil
}

// UpdateSecret validates, seals and stores the provider API key
func (s *AuthService) UpdateSecret(accountID int64, secret string) error {
	secret = strings.TrimSpace(secret)
	if err := validation.ValidateSecret(secret); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(secret)
	if err != nil {
		return unavailable("update secret", err)
	}

	err = s.store.SetSecret(accountID, sealed)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return unavailable("update secret", err)
	}
	return nil
}

// GetSecret returns the stored provider API key. ok is false when none is set.
func (s *AuthService) GetSecret(accountID int64) (secret string, ok bool, err error) {
	stored, err := s.store.GetSecret(accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, ErrAccountNotFound
	}
	if err != nil {
		return "", false, unavailable("get secret", err)
	}
	if stored == nil || *stored == "" {
		return "", false, nil
	}

	secret, err = s.sealer.Open(*stored)
	if err != nil {
		return "", false, unavailable("get secret", err)
	}
	return secret, true, nil
}

// CleanupExpiredSessions deletes sessions whose expiry has passed
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	n, err := s.store.DeleteExpiredSessions(s.now())
	if err != nil {
		return 0, unavailable("cleanup expired sessions", err)
	}
	return n, nil
}

// CleanupInactiveAccounts deletes accounts idle for the inactivity window,
// together with their sessions. It returns the number of accounts removed.
func (s *AuthService) CleanupInactiveAccounts() (int64, error) {
	cutoff := s.now().Add(-s.cfg.InactivityWindow)

	var removed int64
	err := s.store.Atomically(func(tx repository.Store) error {
		if _, err := tx.DeleteSessionsOfInactiveAccounts(cutoff); err != nil {
			return err
		}
		n, err := tx.DeleteInactiveAccounts(cutoff)
		removed = n
		return err
	})
	if err != nil {
		return 0, unavailable("cleanup inactive accounts", err)
	}
	return removed, nil
}

func (s *AuthService) notifyRegistered(email string) {
	if s.notifier == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyRegistered(ctx, email); err != nil {
			s.logger.Warn("welcome notification failed", "error", err)
		}
	}()
}
