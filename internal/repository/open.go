package repository

import (
	"fmt"
	"strings"

	"testcasegen/internal/config"
	"testcasegen/internal/database"
)

// Open builds the store selected by cfg.DatabaseType and applies migrations.
// DB_TYPE=memory gives a process-local MemoryStore. The returned close func
// is never nil.
func Open(cfg *config.Config) (Store, func() error, error) {
	if strings.EqualFold(cfg.DatabaseType, "memory") {
		return NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSQLStore(db), db.Close, nil
}
