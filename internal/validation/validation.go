// Package validation checks user-supplied account input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
	MaxEmailLength    = 254
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	secretRegex = regexp.MustCompile(`^sk-[A-Za-z0-9_\-]{8,200}$`)
)

// passwordSymbols are the special characters a password must draw one from
const passwordSymbols = "@$!%*?&"

// ValidationError represents a validation error on one input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return newError("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return newError("email", "email is too long")
	}
	if !emailRegex.MatchString(email) {
		return newError("email", "invalid email format")
	}
	return nil
}

// ValidatePassword requires at least eight characters with one lowercase
// letter, one uppercase letter, one digit and one of @$!%*?&.
func ValidatePassword(password string) error {
	if password == "" {
		return newError("password", "password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return newError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return newError("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return newError("password",
			"password must contain uppercase and lowercase letters, a number and one of "+passwordSymbols)
	}
	return nil
}

// ValidateSecret checks the shape of a provider API key
func ValidateSecret(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return newError("apiKey", "API key is required")
	}
	if !secretRegex.MatchString(secret) {
		return newError("apiKey", "invalid API key format")
	}
	return nil
}
