package elodash

import "github.com/kailas-cloud/elodash/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBoardNotFound       = domain.ErrBoardNotFound
	ErrInvalidSortKey      = domain.ErrInvalidSortKey
	ErrInvalidCriteria     = domain.ErrInvalidCriteria
	ErrEmptyBoard          = domain.ErrEmptyBoard
	ErrInvalidRegistration = domain.ErrInvalidRegistration
	ErrAlreadyRegistered   = domain.ErrAlreadyRegistered
	ErrRateLimited         = domain.ErrRateLimited
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
)
