package service

import "errors"

var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("no session provided")
	ErrInvalidSession     = errors.New("session expired or invalid")
	ErrRateLimited        = errors.New("too many authentication attempts")
	ErrAccountNotFound    = errors.New("account not found")

	// ErrServiceUnavailable matches every *ServiceError via errors.Is
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// ServiceError wraps an infrastructure failure. Its message is generic so it
// can be shown to clients; the cause is kept for server-side logs.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return ErrServiceUnavailable.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// Detail returns the operation and underlying cause
func (e *ServiceError) Detail() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func unavailable(op string, err error) error {
	return &ServiceError{Op: op, Err: err}
}
