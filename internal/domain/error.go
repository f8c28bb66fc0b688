package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrNoProvider      = errors.New("no AI provider configured")

	// ErrRateLimited is control flow, not a failure: callers must branch on it
	// and tell the user how long to wait.
	ErrRateLimited = errors.New("rate limited")
)
