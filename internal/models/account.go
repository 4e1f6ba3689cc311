package models

import "time"

// Account is a registered user of the test case generator
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	// Secret is the sealed provider API key, nil when none is stored
	Secret       *string
	CreatedAt    time.Time
	LastActiveAt time.Time
	IsActive     bool
}

// HasSecret reports whether a provider API key is stored
func (a *Account) HasSecret() bool {
	return a.Secret != nil && *a.Secret != ""
}

// View returns the public projection of the account
func (a *Account) View() AccountView {
	return AccountView{ID: a.ID, Email: a.Email, HasAPIKey: a.HasSecret()}
}

// AccountView is the account as exposed to clients. It never carries the
// password hash or the key itself.
type AccountView struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	HasAPIKey bool   `json:"hasApiKey"`
}

// Session represents an authenticated session. ID is the bearer token.
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session is no longer valid at now.
// A session expiring exactly at now is expired.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
