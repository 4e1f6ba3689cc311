package repository

import "errors"

var (
	// ErrNotFound is returned when an update or lookup targets a missing row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an account with the email exists
	ErrDuplicateEmail = errors.New("email already registered")
)
