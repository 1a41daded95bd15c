package services

import "errors"

var (
	// ErrAuthenticationFailed is the generic failure returned to callers.
	// The underlying cause is logged and audited but never exposed.
	ErrAuthenticationFailed = errors.New("invalid username or password")

	// ErrAccountNotFound is returned when an account lookup misses.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPersistence is returned when the account store fails after the
	// single permitted retry on a create race.
	ErrPersistence = errors.New("account persistence failed")
)
