package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"testcasegen/internal/config"
	"testcasegen/internal/jobs"
	"testcasegen/internal/repository"
	"testcasegen/internal/security"
	"testcasegen/internal/service"
)

func main() {
	// Define subcommands
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	nextCmd := flag.NewFlagSet("next", flag.ExitOnError)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	switch os.Args[1] {
	case "run":
		runCmd.Parse(os.Args[2:])
		if err := handleRun(cfg, logger); err != nil {
			logger.Error("cleanup failed", "error", err)
			os.Exit(1)
		}

	case "next":
		nextCmd.Parse(os.Args[2:])
		job, err := jobs.NewCleanupJob(nil, cfg.CleanupHour, cfg.CleanupMinute, time.UTC, logger)
		if err != nil {
			logger.Error("invalid cleanup schedule", "error", err)
			os.Exit(1)
		}
		fmt.Println(job.NextRun(time.Now()).Format(time.RFC3339))

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleRun(cfg *config.Config, logger *slog.Logger) error {
	store, closeStore, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// The sweeps never read secrets, so no sealer key is needed
	authService := service.NewAuthService(store, security.NewPasswordHasher(cfg.BcryptCost), nil, service.AuthConfig{
		SessionDuration:  cfg.SessionDuration,
		InactivityWindow: cfg.InactivityWindow,
	})
	authService.SetLogger(logger)

	job, err := jobs.NewCleanupJob(authService, cfg.CleanupHour, cfg.CleanupMinute, time.UTC, logger)
	if err != nil {
		return err
	}

	report, err := job.RunOnce()
	logger.Info("cleanup complete",
		"expired_sessions", report.ExpiredSessions,
		"inactive_accounts", report.InactiveAccounts,
		"duration", report.Duration,
	)
	return err
}

func printUsage() {
	fmt.Println("Test Case Generator Cleanup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cleanup run     Delete expired sessions and inactive accounts now")
	fmt.Println("  cleanup next    Print the next scheduled daily run (UTC)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE            sqlite, postgres or mysql (default: sqlite)")
	fmt.Println("  DB_PATH            SQLite database path (default: ./data/testcase-generator.db)")
	fmt.Println("  DATABASE_URL       PostgreSQL or MySQL connection URL")
	fmt.Println("  INACTIVITY_WINDOW  Idle time before an account is removed (default: 720h)")
	fmt.Println("  CLEANUP_HOUR       Hour of the daily run (default: 2)")
	fmt.Println("  CLEANUP_MINUTE     Minute of the daily run (default: 0)")
}
