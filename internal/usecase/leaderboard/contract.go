package leaderboard

import (
	"context"

	"github.com/kailas-cloud/elodash/internal/domain/board"
	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Snapshots loads the current records of a board.
// Implementations report failures as an empty collection.
type Snapshots interface {
	Load(ctx context.Context, b board.Board) []record.Record
}

// CacheInvalidator drops cached board payloads.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, name string) error
}
