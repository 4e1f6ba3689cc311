package database

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertAccount(t *testing.T, q DBTX, email string) int64 {
	t.Helper()
	now := time.Now().UTC()
	id, err := q.ExecReturningID(
		"INSERT INTO accounts (email, password_hash, created_at, last_active_at) VALUES (?, ?, ?, ?)",
		email, "hash", now, now)
	if err != nil {
		t.Fatalf("Failed to insert account: %v", err)
	}
	return id
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	for _, table := range []string{"accounts", "sessions", "migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// A second run must be a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

func TestDuplicateEmailIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	insertAccount(t, db, "dup@example.com")

	now := time.Now().UTC()
	_, err := db.Exec(
		"INSERT INTO accounts (email, password_hash, created_at, last_active_at) VALUES (?, ?, ?, ?)",
		"dup@example.com", "hash", now, now)
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !db.Dialect.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestSessionsCascadeOnAccountDelete(t *testing.T) {
	db := openTestDB(t)
	id := insertAccount(t, db, "cascade@example.com")

	now := time.Now().UTC()
	if _, err := db.Exec("INSERT INTO sessions (id, account_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		"tok", id, now.Add(time.Hour), now); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}
	if _, err := db.Exec("DELETE FROM accounts WHERE id = ?", id); err != nil {
		t.Fatalf("Failed to delete account: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected sessions to cascade, %d left", count)
	}
}

// TestWithTx tests commit and rollback through WithTx
func TestWithTx(t *testing.T) {
	db := openTestDB(t)

	err := db.WithTx(func(tx *Tx) error {
		insertAccount(t, tx, "commit@example.com")
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx commit path failed: %v", err)
	}

	errAbort := errors.New("abort")
	err = db.WithTx(func(tx *Tx) error {
		insertAccount(t, tx, "rollback@example.com")
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithTx error = %v, want %v", err, errAbort)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to be rethrown")
			}
		}()
		_ = db.WithTx(func(tx *Tx) error {
			insertAccount(t, tx, "panic@example.com")
			panic("boom")
		})
	}()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected only the committed account, got %d rows", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	insertAccount(t, db, "concurrent@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var email string
			err := db.QueryRow("SELECT email FROM accounts WHERE email = ?", "concurrent@example.com").Scan(&email)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
