package security

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter keeps a sliding log of attempt times per client key and
// allows at most limit attempts in any window.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
// limit: number of attempts allowed per window
// window: length of the sliding window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. When it is not, retryAfter is the time until the oldest attempt
// in the window expires. Rejected attempts are not recorded.
func (rl *RateLimiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	log := prune(rl.attempts[key], now.Add(-rl.window))

	if len(log) >= rl.limit {
		rl.attempts[key] = log
		return false, log[0].Add(rl.window).Sub(now)
	}

	rl.attempts[key] = append(log, now)
	return true, 0
}

// Reset forgets all attempts for key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	delete(rl.attempts, key)
	rl.mu.Unlock()
}

// Janitor drops keys with no attempts inside the window every interval
// until ctx is cancelled.
func (rl *RateLimiter) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, log := range rl.attempts {
		if log = prune(log, cutoff); len(log) == 0 {
			delete(rl.attempts, key)
		} else {
			rl.attempts[key] = log
		}
	}
}

// prune drops attempts at or before cutoff. log is sorted ascending.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	return log[i:]
}

// ClientIP extracts the client address used as the rate limit key.
// Forwarding headers are only honoured when trustProxy is set, since any
// client can send them.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// Check X-Forwarded-For header (when behind proxy)
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}

		// Check X-Real-IP header
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	// Fall back to RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
