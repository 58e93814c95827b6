package leaderboard

import (
	"fmt"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/board"
	lb "github.com/kailas-cloud/elodash/internal/domain/leaderboard"
	"github.com/kailas-cloud/elodash/internal/domain/metric"
	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Query is one list request against a board. Zero values select defaults.
type Query struct {
	Board      string
	Text       string
	Min        *float64
	Max        *float64
	RangeField record.Field // defaults to the board's range field
	Category   string
	Sort       record.Field // defaults to the board's default sort key
	Page       int
	PageSize   int
}

// Entry is one ranked record with its derived change.
type Entry struct {
	Rank   int // 1-based position in the filtered ranking
	Record record.Record
	Change *metric.Change
}

// Result is one page of a board.
type Result struct {
	Board   board.Board
	Sort    record.Field
	Entries []Entry
	Page    lb.Page
}

// criteria builds the filter criteria of q against the board schema.
func criteria(b board.Board, q Query) (lb.Criteria, error) {
	schema := b.Schema()

	text, err := lb.NewText(q.Text, schema.TextFields()...)
	if err != nil {
		return lb.Criteria{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}

	field := q.RangeField
	if field == "" {
		field = schema.RangeField()
	}
	if !schema.IsNumeric(field) {
		return lb.Criteria{}, fmt.Errorf("%w: range field %q is not numeric on board %s",
			domain.ErrInvalidCriteria, field, b.Name())
	}
	rng, err := lb.NewRange(field, q.Min, q.Max)
	if err != nil {
		return lb.Criteria{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}

	conds := []lb.Condition{text, rng}
	if q.Category != "" {
		if !schema.HasCategories() {
			return lb.Criteria{}, fmt.Errorf("%w: board %s has no categories", domain.ErrInvalidCriteria, b.Name())
		}
		conds = append(conds, lb.NewCategory(q.Category))
	}

	c, err := lb.NewCriteria(conds...)
	if err != nil {
		return lb.Criteria{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}
	return c, nil
}

// sortKey resolves and validates the sort key of q.
func sortKey(b board.Board, requested record.Field) (record.Field, error) {
	if requested == "" {
		return b.Schema().DefaultSort(), nil
	}
	if !b.Schema().IsNumeric(requested) {
		return "", fmt.Errorf("%w: %q on board %s", domain.ErrInvalidSortKey, requested, b.Name())
	}
	return requested, nil
}

// change derives the per-entry change shown next to a record.
// LeetCode users compare elo against prev_elo. GitHub users show the stored
// contribution delta once a previous total exists.
func change(r record.Record) *metric.Change {
	switch v := r.(type) {
	case record.LeetCode:
		cur, ok1 := v.Elo()
		prev, ok2 := v.PrevElo()
		if !ok1 || !ok2 {
			return nil
		}
		c := metric.Delta(cur, prev)
		return &c
	case record.GitHub:
		prev, ok := v.PrevContributions()
		if !ok {
			return nil
		}
		if d, ok := v.Delta(); ok {
			c := metric.Delta(d, 0)
			return &c
		}
		if cur, ok := v.Contributions(); ok {
			c := metric.Delta(cur, prev)
			return &c
		}
	}
	return nil
}
