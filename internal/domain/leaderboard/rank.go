// Package leaderboard holds the pure list pipeline applied to a board
// snapshot: Rank, then Filter, then Paginate. Every function takes its input
// by value and returns a new slice; nothing here keeps state between calls.
package leaderboard

import (
	"slices"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Rank returns a copy of records ordered non-increasing by key.
// Records missing key sort after every record that has it. Ties keep their
// input order.
func Rank(records []record.Record, key record.Field) []record.Record {
	out := slices.Clone(records)
	if out == nil {
		return []record.Record{}
	}
	slices.SortStableFunc(out, func(a, b record.Record) int {
		av, aok := a.Number(key)
		bv, bok := b.Number(key)
		switch {
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		case !aok && !bok:
			return 0
		case av > bv:
			return -1
		case av < bv:
			return 1
		}
		return 0
	})
	return out
}
