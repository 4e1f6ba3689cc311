package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testcasegen/internal/config"
)

func TestOpenMemory(t *testing.T) {
	store, closeFn, err := Open(&config.Config{DatabaseType: "memory"})
	require.NoError(t, err)
	defer closeFn()

	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestOpenSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite test in short mode")
	}
	path := filepath.Join(t.TempDir(), "nested", "open.db")

	store, closeFn, err := Open(&config.Config{DatabaseType: "sqlite", DatabasePath: path})
	require.NoError(t, err)
	defer closeFn()

	account, err := store.CreateAccount("open@example.com", "hash", time.Now())
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
}

func TestOpenUnknownType(t *testing.T) {
	_, _, err := Open(&config.Config{DatabaseType: "oracle"})
	assert.Error(t, err)
}
