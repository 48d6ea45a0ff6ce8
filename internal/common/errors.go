package common

import (
	"errors"
	"fmt"
)

// Error kinds for the request pipeline. Lookups that miss return ErrNotFound
// as a normal result; only transport and infrastructure faults are
// exceptional. Insufficient indicator data is not an error at all: short
// series surface null fields instead.
var (
	// ErrNotFound marks an unresolvable ticker or company.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failed or timed-out market-data fetch.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrInvalidInput marks a client-caused failure: empty or oversized
	// query, malformed ticker.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Upstreamf wraps ErrUpstream with context.
func Upstreamf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUpstream)...)
}

// InvalidInputf wraps ErrInvalidInput with context.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}
