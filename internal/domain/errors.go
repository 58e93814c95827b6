package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key elodash writes to the shared KV store.
const KeyPrefix = "elodash:"

var (
	// ErrBoardNotFound signals an unknown board name.
	ErrBoardNotFound = errors.New("board not found")
	// ErrInvalidSortKey signals a sort key that is not a numeric field of the board.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidCriteria signals a malformed filter request.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrEmptyBoard signals that no record is left to pick from.
	ErrEmptyBoard = errors.New("board has no matching records")

	// ErrInvalidRegistration signals a registration with missing or malformed fields.
	ErrInvalidRegistration = errors.New("invalid registration")
	// ErrAlreadyRegistered signals a duplicate LeetCode or GitHub username.
	ErrAlreadyRegistered = errors.New("user already registered")
	// ErrRateLimited signals a throttled write.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamUnavailable signals that the KV backend failed a read or write.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// FieldError wraps ErrInvalidRegistration with the offending field name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRegistration.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRegistration }

// NewFieldError creates a registration field error.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
