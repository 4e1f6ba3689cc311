package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper is the part of the auth service the cleanup job drives
type Sweeper interface {
	CleanupExpiredSessions() (int64, error)
	CleanupInactiveAccounts() (int64, error)
}

// CleanupReport counts what one run removed
type CleanupReport struct {
	ExpiredSessions  int64
	InactiveAccounts int64
	StartedAt        time.Time
	Duration         time.Duration
}

// CleanupJob runs both sweeps once a day at a fixed wall-clock time
type CleanupJob struct {
	sweeper Sweeper
	hour    int
	minute  int
	loc     *time.Location
	logger  *slog.Logger
	now     func() time.Time
}

// NewCleanupJob creates a job that fires daily at hour:minute in loc.
// A nil loc means UTC.
func NewCleanupJob(sweeper Sweeper, hour, minute int, loc *time.Location, logger *slog.Logger) (*CleanupJob, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("cleanup hour out of range: %d", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("cleanup minute out of range: %d", minute)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		sweeper: sweeper,
		hour:    hour,
		minute:  minute,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// RunOnce sweeps expired sessions and then inactive accounts. The second
// sweep runs even when the first fails; the error joins both failures.
func (j *CleanupJob) RunOnce() (CleanupReport, error) {
	report := CleanupReport{StartedAt: j.now()}
	var errs []error

	n, err := j.sweeper.CleanupExpiredSessions()
	if err != nil {
		j.logger.Error("expired session cleanup failed", "error", err)
		errs = append(errs, fmt.Errorf("expired sessions: %w", err))
	} else {
		report.ExpiredSessions = n
	}

	n, err = j.sweeper.CleanupInactiveAccounts()
	if err != nil {
		j.logger.Error("inactive account cleanup failed", "error", err)
		errs = append(errs, fmt.Errorf("inactive accounts: %w", err))
	} else {
		report.InactiveAccounts = n
	}

	report.Duration = j.now().Sub(report.StartedAt)
	return report, errors.Join(errs...)
}

// NextRun returns the first hour:minute in the job's location strictly after now
func (j *CleanupJob) NextRun(now time.Time) time.Time {
	local := now.In(j.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), j.hour, j.minute, 0, 0, j.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, j.hour, j.minute, 0, 0, j.loc)
	}
	return next
}

// Start blocks, running the sweeps every day until ctx is cancelled
func (j *CleanupJob) Start(ctx context.Context) {
	for {
		next := j.NextRun(j.now())
		j.logger.Info("cleanup scheduled", "next_run", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(j.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("cleanup scheduler stopped")
			return
		case <-timer.C:
		}

		report, err := j.RunOnce()
		j.logger.Info("cleanup finished",
			"expired_sessions", report.ExpiredSessions,
			"inactive_accounts", report.InactiveAccounts,
			"duration", report.Duration,
			"failed", err != nil,
		)
	}
}
