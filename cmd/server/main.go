package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testcasegen/internal/config"
	"testcasegen/internal/handlers"
	"testcasegen/internal/jobs"
	"testcasegen/internal/repository"
	"testcasegen/internal/security"
	"testcasegen/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage (sqlite, postgres, mysql or memory)
	store, closeStore, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("storage ready", "type", cfg.DatabaseType)

	authService, err := newAuthService(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	defer authService.Close()

	// Rate limiter for register and login
	limiter := security.NewRateLimiter(cfg.RateLimitAttempts, cfg.RateLimitWindow)
	go limiter.Janitor(ctx, cfg.RateLimitWindow)

	// Daily cleanup of expired sessions and inactive accounts
	cleanupJob, err := jobs.NewCleanupJob(authService, cfg.CleanupHour, cfg.CleanupMinute, time.UTC, logger)
	if err != nil {
		return err
	}
	go cleanupJob.Start(ctx)

	// Initialize handlers
	secureCookies := cfg.IsProduction()
	middleware := handlers.NewMiddleware(authService, limiter, handlers.MiddlewareConfig{
		TrustProxy:    cfg.TrustProxy,
		SecureCookies: secureCookies,
	}, logger)
	authHandler := handlers.NewAuthHandler(authService, secureCookies, logger)
	healthHandler := handlers.NewHealthHandler(cfg.Environment, cfg.Version)

	// Setup routes
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, middleware, authHandler, healthHandler)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newAuthService(ctx context.Context, cfg *config.Config, store repository.Store, logger *slog.Logger) (*service.AuthService, error) {
	if cfg.SecretEncryptionKey == "" {
		logger.Warn("SECRET_ENCRYPTION_KEY not set: API keys are stored unencrypted")
	}
	sealer, err := security.NewSecretSealer(cfg.SecretEncryptionKey)
	if err != nil {
		return nil, err
	}

	authService := service.NewAuthService(store, security.NewPasswordHasher(cfg.BcryptCost), sealer, service.AuthConfig{
		SessionDuration:  cfg.SessionDuration,
		InactivityWindow: cfg.InactivityWindow,
	})
	authService.SetLogger(logger)

	emailService, err := service.NewEmailService(ctx, service.EmailConfig{
		AWSRegion:        cfg.AWSRegion,
		FromEmail:        cfg.SESFromEmail,
		FromName:         cfg.SESFromName,
		AppBaseURL:       cfg.AppBaseURL,
		InactivityWindow: cfg.InactivityWindow,
	}, logger)
	if err != nil {
		// Registration still works without the welcome email
		logger.Warn("email service unavailable", "error", err)
	} else if emailService.IsEnabled() {
		authService.SetNotifier(emailService)
	}

	return authService, nil
}
