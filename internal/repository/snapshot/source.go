package snapshot

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/elodash/internal/domain/board"
)

// fetcher downloads static board files.
type fetcher interface {
	FetchURL(ctx context.Context, url string) ([]byte, error)
}

// kvReader reads a board payload stored under a key.
type kvReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// payloadLoader returns the raw payload of a board.
type payloadLoader interface {
	Load(ctx context.Context, b board.Board) ([]byte, error)
}

// Source loads raw board payloads from their configured origin.
type Source struct {
	fetcher fetcher
	kv      kvReader
}

// NewSource creates a payload source. kv may be nil when no board reads from a key.
func NewSource(f fetcher, kv kvReader) *Source {
	return &Source{fetcher: f, kv: kv}
}

// Load fetches the raw payload of b.
func (s *Source) Load(ctx context.Context, b board.Board) ([]byte, error) {
	src := b.Source()
	switch src.Type() {
	case board.SourceURL:
		data, err := s.fetcher.FetchURL(ctx, src.URL())
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", b.Name(), err)
		}
		return data, nil
	case board.SourceKV:
		if s.kv == nil {
			return nil, fmt.Errorf("board %s reads key %q but no kv backend is configured", b.Name(), src.Key())
		}
		data, err := s.kv.Get(ctx, src.Key())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", b.Name(), err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("board %s: unknown source type %q", b.Name(), src.Type())
}
