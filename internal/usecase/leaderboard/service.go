package leaderboard

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	lb "github.com/kailas-cloud/elodash/internal/domain/leaderboard"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/tracing"
)

// Page size defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	warmConcurrency = 4
)

// catalog is an immutable board table, swapped whole on reload.
type catalog struct {
	order  []board.Board
	byName map[string]board.Board
}

func newCatalog(boards []board.Board) (*catalog, error) {
	c := &catalog{order: make([]board.Board, 0, len(boards)), byName: make(map[string]board.Board, len(boards))}
	for _, b := range boards {
		if _, dup := c.byName[b.Name()]; dup {
			return nil, fmt.Errorf("duplicate board %q", b.Name())
		}
		c.byName[b.Name()] = b
		c.order = append(c.order, b)
	}
	return c, nil
}

// Service runs the leaderboard pipeline (rank, filter, paginate) over board snapshots.
type Service struct {
	boards      atomic.Pointer[catalog]
	snapshots   Snapshots
	invalidator CacheInvalidator
	pageSize    int
	maxPageSize int
	intN        func(n int) int
	logger      *zap.Logger
}

// New creates a leaderboard service.
func New(boards []board.Board, snapshots Snapshots, logger *zap.Logger) (*Service, error) {
	cat, err := newCatalog(boards)
	if err != nil {
		return nil, err
	}
	s := &Service{
		snapshots:   snapshots,
		pageSize:    DefaultPageSize,
		maxPageSize: MaxPageSize,
		intN:        rand.IntN,
		logger:      logger,
	}
	s.boards.Store(cat)
	return s, nil
}

// WithPagination overrides the default and maximum page size.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	if defaultSize > 0 {
		s.pageSize = min(defaultSize, s.maxPageSize)
	}
	return s
}

// WithCacheInvalidator drops cached payloads of boards changed by ReplaceBoards.
func (s *Service) WithCacheInvalidator(inv CacheInvalidator) *Service {
	s.invalidator = inv
	return s
}

// Boards returns the configured boards in configuration order.
func (s *Service) Boards() []board.Board {
	cat := s.boards.Load()
	out := make([]board.Board, len(cat.order))
	copy(out, cat.order)
	return out
}

// Board returns one board by name.
func (s *Service) Board(name string) (board.Board, error) {
	b, ok := s.boards.Load().byName[name]
	if !ok {
		return board.Board{}, fmt.Errorf("board %q: %w", name, domain.ErrBoardNotFound)
	}
	return b, nil
}

// Query returns one page of a board: the snapshot ranked by the sort key,
// filtered by the query criteria and cut to the requested page.
// Out-of-range pages clamp.
func (s *Service) Query(ctx context.Context, q Query) (res Result, err error) {
	ctx, end := tracing.StartSpan(ctx, "leaderboard.query", attribute.String("board", q.Board))
	defer func() { end(err) }()

	b, err := s.Board(q.Board)
	if err != nil {
		return Result{}, err
	}
	key, err := sortKey(b, q.Sort)
	if err != nil {
		return Result{}, err
	}
	crit, err := criteria(b, q)
	if err != nil {
		return Result{}, err
	}
	req, err := lb.NewPageRequest(q.Page, s.resolvePageSize(q.PageSize))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}

	records := s.snapshots.Load(ctx, b)
	filtered := lb.Rank(records, key)
	if !crit.IsEmpty() {
		filtered = lb.Filter(filtered, crit)
	}
	items, page := lb.Paginate(filtered, req)

	tracing.SetAttributes(ctx,
		attribute.Int("criteria.conditions", len(crit.Conditions())),
		attribute.Int("records.total", len(records)),
		attribute.Int("records.matched", len(filtered)),
		attribute.Int("page", page.Index),
	)

	offset := (page.Index - 1) * page.Size
	entries := make([]Entry, len(items))
	for i, r := range items {
		entries[i] = Entry{Rank: offset + i + 1, Record: r, Change: change(r)}
	}
	return Result{Board: b, Sort: key, Entries: entries, Page: page}, nil
}

func (s *Service) resolvePageSize(requested int) int {
	switch {
	case requested <= 0:
		return s.pageSize
	case requested > s.maxPageSize:
		return s.maxPageSize
	}
	return requested
}

// Categories returns category counts of a board, sorted by name.
// Boards whose records carry no categories return an empty list.
func (s *Service) Categories(ctx context.Context, name string) ([]lb.CategoryCount, error) {
	b, err := s.Board(name)
	if err != nil {
		return nil, err
	}
	if !b.Schema().HasCategories() {
		return []lb.CategoryCount{}, nil
	}
	return lb.CountCategories(s.snapshots.Load(ctx, b)), nil
}

// Random picks a uniformly random record of a board among those matching the
// query criteria. Sort and page fields are ignored.
func (s *Service) Random(ctx context.Context, q Query) (record.Record, error) {
	b, err := s.Board(q.Board)
	if err != nil {
		return nil, err
	}
	crit, err := criteria(b, q)
	if err != nil {
		return nil, err
	}
	candidates := lb.Filter(s.snapshots.Load(ctx, b), crit)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("board %s: %w", q.Board, domain.ErrEmptyBoard)
	}
	return candidates[s.intN(len(candidates))], nil
}

// Warm loads every board once so the snapshot cache is filled.
func (s *Service) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, b := range s.Boards() {
		g.Go(func() error {
			n := len(s.snapshots.Load(gctx, b))
			s.logger.Debug("Board warmed", zap.String("board", b.Name()), zap.Int("records", n))
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("warm boards: %w", err)
	}
	return nil
}

// ReplaceBoards swaps the board table. Cached payloads of removed boards and of
// boards whose source changed are invalidated.
func (s *Service) ReplaceBoards(ctx context.Context, boards []board.Board) error {
	next, err := newCatalog(boards)
	if err != nil {
		return err
	}
	prev := s.boards.Swap(next)

	if s.invalidator == nil {
		return nil
	}
	for name, old := range prev.byName {
		if nb, ok := next.byName[name]; ok && nb.Source() == old.Source() && nb.Kind() == old.Kind() {
			continue
		}
		if err := s.invalidator.Invalidate(ctx, name); err != nil {
			s.logger.Warn("Failed to invalidate board cache", zap.String("board", name), zap.Error(err))
		}
	}
	return nil
}
