package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"testcasegen/internal/models"
	"testcasegen/internal/security"
	"testcasegen/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	IdentityContextKey  ContextKey = "identity"
	TokenContextKey     ContextKey = "session_token"
	RequestIDContextKey ContextKey = "request_id"
)

// MiddlewareConfig holds the request gate settings
type MiddlewareConfig struct {
	TrustProxy    bool
	SecureCookies bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	cfg         MiddlewareConfig
	logger      *slog.Logger
}

// NewMiddleware creates a new middleware instance. A nil limiter disables
// rate limiting.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, cfg MiddlewareConfig, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		cfg:         cfg,
		logger:      logger,
	}
}

// sessionToken reads the token from the X-Session-Id header, then the cookie
func sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionHeader)); token != "" {
		return token
	}
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireSession is middleware that requires a valid session
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeServiceError(w, m.logger, service.ErrUnauthenticated)
			return
		}

		account, err := m.authService.ValidateSession(token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSession) {
				// Clear invalid cookie
				http.SetCookie(w, security.CreateDeleteCookie(r, m.cfg.SecureCookies))
			}
			writeServiceError(w, m.logger, err)
			return
		}

		next(w, r.WithContext(withIdentity(r.Context(), account, token)))
	}
}

// OptionalSession attaches the identity when a valid session is presented
// and never rejects the request
func (m *Middleware) OptionalSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next(w, r)
			return
		}

		account, err := m.authService.ValidateSession(token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidSession) {
				m.logger.Warn("optional session lookup failed", "error", err)
			}
			next(w, r)
			return
		}

		next(w, r.WithContext(withIdentity(r.Context(), account, token)))
	}
}

// RateLimit rejects callers over the attempt limit before next runs
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}

		key := security.ClientIP(r, m.cfg.TrustProxy)
		if ok, retryAfter := m.limiter.Allow(key); !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			m.logger.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
			writeServiceError(w, m.logger, service.ErrRateLimited)
			return
		}

		next(w, r)
	}
}

func withIdentity(ctx context.Context, account *models.Account, token string) context.Context {
	ctx = context.WithValue(ctx, IdentityContextKey, account.View())
	return context.WithValue(ctx, TokenContextKey, token)
}

// IdentityFromContext retrieves the authenticated account from the request context
func IdentityFromContext(ctx context.Context) (models.AccountView, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(models.AccountView)
	return identity, ok
}

// TokenFromContext retrieves the session token accepted by the gate
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenContextKey).(string)
	return token
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware assigns a request id and logs HTTP requests
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", requestID,
			)
		})
	}
}
