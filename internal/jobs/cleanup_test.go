package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	sessions, accounts     int64
	sessionErr, accountErr error
	calls                  []string
	runs                   atomic.Int64
}

func (f *fakeSweeper) CleanupExpiredSessions() (int64, error) {
	f.calls = append(f.calls, "sessions")
	return f.sessions, f.sessionErr
}

func (f *fakeSweeper) CleanupInactiveAccounts() (int64, error) {
	f.calls = append(f.calls, "accounts")
	f.runs.Add(1)
	return f.accounts, f.accountErr
}

func newJob(t *testing.T, s Sweeper, hour, minute int) *CleanupJob {
	t.Helper()
	job, err := NewCleanupJob(s, hour, minute, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return job
}

func TestRunOnce(t *testing.T) {
	s := &fakeSweeper{sessions: 4, accounts: 2}
	report, err := newJob(t, s, 2, 0).RunOnce()

	require.NoError(t, err)
	assert.Equal(t, int64(4), report.ExpiredSessions)
	assert.Equal(t, int64(2), report.InactiveAccounts)
	assert.Equal(t, []string{"sessions", "accounts"}, s.calls)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	errDB := errors.New("database is locked")
	s := &fakeSweeper{sessionErr: errDB, accounts: 3}

	report, err := newJob(t, s, 2, 0).RunOnce()

	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.Equal(t, []string{"sessions", "accounts"}, s.calls)
	assert.Equal(t, int64(3), report.InactiveAccounts)
}

func TestRunOnceJoinsBothFailures(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	s := &fakeSweeper{sessionErr: first, accountErr: second}

	_, err := newJob(t, s, 2, 0).RunOnce()

	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestNextRun(t *testing.T) {
	job := newJob(t, &fakeSweeper{}, 2, 0)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today's run", time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)},
		{"exactly at run time", time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)},
		{"after today's run", time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)},
		{"month rollover", time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)},
		{"other zone input", time.Date(2026, 3, 10, 3, 0, 0, 0, time.FixedZone("CET", 3600)), time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(job.NextRun(tt.now)), "got %v", job.NextRun(tt.now))
		})
	}
}

func TestNewCleanupJobRejectsBadTime(t *testing.T) {
	_, err := NewCleanupJob(&fakeSweeper{}, 24, 0, nil, nil)
	assert.Error(t, err)
	_, err = NewCleanupJob(&fakeSweeper{}, 2, 60, nil, nil)
	assert.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	s := &fakeSweeper{}
	job := newJob(t, s, 2, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Zero(t, s.runs.Load())
}

func TestStartRunsWhenDue(t *testing.T) {
	s := &fakeSweeper{}
	job := newJob(t, s, 2, 0)
	// Put the clock a few milliseconds before the run time
	due := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	offset := time.Until(due) - 20*time.Millisecond
	job.now = func() time.Time { return time.Now().Add(offset) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go job.Start(ctx)

	require.Eventually(t, func() bool { return s.runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}
