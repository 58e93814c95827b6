package chi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	lb "github.com/kailas-cloud/elodash/internal/domain/leaderboard"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
)

// bindQuery reads the board criteria from the path and the query string.
// min and max are free text: anything unparsable leaves that bound open.
// page and page_size must be integers when present.
func bindQuery(r *http.Request) (lbuc.Query, error) {
	params := r.URL.Query()
	var (
		text, minS, maxS, rangeField, category, sort *string
		page, pageSize                               *int
	)
	binds := []struct {
		name string
		dest any
	}{
		{"q", &text},
		{"min", &minS},
		{"max", &maxS},
		{"range_field", &rangeField},
		{"category", &category},
		{"sort", &sort},
		{"page", &page},
		{"page_size", &pageSize},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, params, b.dest); err != nil {
			return lbuc.Query{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}

	q := lbuc.Query{
		Board:      chi.URLParam(r, "board"),
		Text:       deref(text),
		Min:        lb.ParseBound(deref(minS)),
		Max:        lb.ParseBound(deref(maxS)),
		RangeField: record.Field(deref(rangeField)),
		Category:   deref(category),
		Sort:       record.Field(deref(sort)),
	}
	if page != nil {
		q.Page = *page
	}
	if pageSize != nil {
		if *pageSize < 1 {
			return lbuc.Query{}, errors.New("page_size must be at least 1")
		}
		q.PageSize = *pageSize
	}
	return q, nil
}

// bindCoins reads the coin balance. Missing, empty, non-numeric and
// out-of-range input yields NaN, which has no estimate.
func bindCoins(r *http.Request) float64 {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "coins", r.URL.Query(), &raw); err != nil || raw == nil {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || !finite(v) {
		return math.NaN()
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
