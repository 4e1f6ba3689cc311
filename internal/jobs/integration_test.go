package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"testcasegen/internal/repository"
	"testcasegen/internal/security"
	"testcasegen/internal/service"
)

var _ Sweeper = (*service.AuthService)(nil)

func TestRunOnceAgainstAuthService(t *testing.T) {
	store := repository.NewMemoryStore()
	old := time.Now().Add(-40 * 24 * time.Hour)

	stale, err := store.CreateAccount("stale@example.com", "hash", old)
	require.NoError(t, err)
	_, err = store.CreateSession("expired-token", stale.ID, old.Add(time.Hour), old)
	require.NoError(t, err)

	fresh, err := store.CreateAccount("fresh@example.com", "hash", time.Now())
	require.NoError(t, err)
	_, err = store.CreateSession("live-token", fresh.ID, time.Now().Add(time.Hour), time.Now())
	require.NoError(t, err)

	authService := service.NewAuthService(store, security.NewPasswordHasher(bcrypt.MinCost), nil, service.AuthConfig{})
	report, err := newJob(t, authService, 2, 0).RunOnce()
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.ExpiredSessions)
	assert.Equal(t, int64(1), report.InactiveAccounts)

	gone, err := store.GetAccountByID(stale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	live, err := store.GetActiveSession("live-token", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, live)
}
