package leaderboard

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Filter returns the records matching criteria, in input order.
func Filter(records []record.Record, criteria Criteria) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if criteria.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// CategoryCount is the number of records carrying one category.
type CategoryCount struct {
	Name  string
	Count int
}

// CountCategories tallies categories across records, sorted by name.
func CountCategories(records []record.Record) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, c := range r.Categories() {
			counts[c]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int { return strings.Compare(a.Name, b.Name) })
	return out
}
