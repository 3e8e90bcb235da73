package domain

import "errors"

var (
	// ErrInvalidInput is returned when a query or request payload is unusable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a search has no results or an ID is unknown.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable is returned when a provider cannot be reached or
	// answers with a failure status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
