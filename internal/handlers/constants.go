package handlers

const (
	// SessionHeader carries the session token for the browser extension
	SessionHeader = "X-Session-Id"
	// RequestIDHeader echoes the per-request id
	RequestIDHeader = "X-Request-Id"

	maxBodyBytes = 1 << 20

	ErrAuthenticationRequired = "Authentication required"
	ErrInvalidSessionTitle    = "Invalid session"
	ErrValidationFailed       = "Validation failed"
	ErrInternalServerError    = "Internal server error"
	ErrTooManyAttempts        = "Too many authentication attempts"
)
