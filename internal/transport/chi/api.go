package chi

import (
	"math"
	"net/url"
	"time"

	"github.com/kailas-cloud/elodash/internal/domain/board"
	lb "github.com/kailas-cloud/elodash/internal/domain/leaderboard"
	"github.com/kailas-cloud/elodash/internal/domain/metric"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/domain/registration"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeBoardNotFound     ErrorCode = "board_not_found"
	ErrorCodeInvalidSortKey    ErrorCode = "invalid_sort_key"
	ErrorCodeEmptyBoard        ErrorCode = "empty_board"
	ErrorCodeAlreadyRegistered ErrorCode = "already_registered"
	ErrorCodeRateLimited       ErrorCode = "rate_limited"
	ErrorCodeUpstreamError     ErrorCode = "upstream_error"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   *string   `json:"field,omitempty"`
}

// Board is a catalogue entry.
type Board struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	SortKeys      []string `json:"sort_keys"`
	TextFields    []string `json:"text_fields"`
	RangeField    string   `json:"range_field"`
	DefaultSort   string   `json:"default_sort"`
	HasCategories bool     `json:"has_categories"`
}

// BoardListResponse lists the board catalogue.
type BoardListResponse struct {
	Items []Board `json:"items"`
}

// Change is the derived movement of an entry.
type Change struct {
	Value float64 `json:"value"`
	Trend string  `json:"trend"`
}

// Entry is one ranked record.
type Entry struct {
	Rank   int            `json:"rank"`
	Record map[string]any `json:"record"`
	Change *Change        `json:"change"`
}

// Page describes the returned window.
type Page struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// EntryListResponse is one page of a board.
type EntryListResponse struct {
	Board string  `json:"board"`
	Sort  string  `json:"sort"`
	Items []Entry `json:"items"`
	Page  Page    `json:"page"`
}

// Category is one category with its record count.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryListResponse lists the categories of a board.
type CategoryListResponse struct {
	Items []Category `json:"items"`
}

// ShirtResponse is the months-to-target estimate. Months is null when no
// estimate is available.
type ShirtResponse struct {
	Coins    float64 `json:"coins"`
	Target   float64 `json:"target"`
	PerMonth float64 `json:"per_month"`
	Months   *int    `json:"months"`
}

// RegistrationRequest is the body of POST /registrations.
type RegistrationRequest struct {
	LeetCodeUsername string `json:"leetcode_username"`
	GitHubUsername   string `json:"github_username"`
	DisplayName      string `json:"display_name"`
}

// User is a stored registration.
type User struct {
	ID               string    `json:"id"`
	LeetCodeUsername string    `json:"leetcode_username"`
	GitHubUsername   string    `json:"github_username"`
	DisplayName      string    `json:"display_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func boardToAPI(b board.Board) Board {
	s := b.Schema()
	return Board{
		Name:          b.Name(),
		Kind:          string(b.Kind()),
		SortKeys:      fieldNames(s.NumericFields()),
		TextFields:    fieldNames(s.TextFields()),
		RangeField:    string(s.RangeField()),
		DefaultSort:   string(s.DefaultSort()),
		HasCategories: s.HasCategories(),
	}
}

func fieldNames(fields []record.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

func resultToAPI(res lbuc.Result) EntryListResponse {
	items := make([]Entry, len(res.Entries))
	for i, e := range res.Entries {
		items[i] = Entry{Rank: e.Rank, Record: recordToAPI(e.Record), Change: changeToAPI(e.Change)}
	}
	return EntryListResponse{
		Board: res.Board.Name(),
		Sort:  string(res.Sort),
		Items: items,
		Page:  pageToAPI(res.Page),
	}
}

func pageToAPI(p lb.Page) Page {
	return Page{Page: p.Index, PageSize: p.Size, TotalItems: p.TotalItems, TotalPages: p.TotalPages}
}

func changeToAPI(c *metric.Change) *Change {
	if c == nil {
		return nil
	}
	v := c.Value()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return &Change{Value: v, Trend: string(c.Trend())}
}

func categoriesToAPI(counts []lb.CategoryCount) CategoryListResponse {
	items := make([]Category, len(counts))
	for i, c := range counts {
		items[i] = Category{Name: c.Name, Count: c.Count}
	}
	return CategoryListResponse{Items: items}
}

func userToAPI(u registration.User) User {
	return User{
		ID:               u.ID(),
		LeetCodeUsername: u.LeetCodeUsername(),
		GitHubUsername:   u.GitHubUsername(),
		DisplayName:      u.DisplayName(),
		CreatedAt:        u.CreatedAt(),
	}
}

// recordToAPI renders a record with its payload field names plus profile links.
// Missing numbers render as null.
func recordToAPI(r record.Record) map[string]any {
	out := map[string]any{"kind": string(r.Kind())}
	switch v := r.(type) {
	case record.LeetCode:
		out["name"] = v.Name()
		out["elo"] = nullable(v.Elo())
		out["prev_elo"] = nullable(v.PrevElo())
		out["current_problem_delta"] = nullable(v.ProblemDelta())
		out["problems_each_week"] = pointsToAPI(v.Weekly())
		out["profile_url"] = "https://leetcode.com/" + url.PathEscape(v.Name())
	case record.GitHub:
		out["github_username"] = v.Username()
		out["display_name"] = v.DisplayName()
		out["current_contributions"] = nullable(v.Contributions())
		out["prev_contributions"] = nullable(v.PrevContributions())
		out["contribution_delta"] = nullable(v.Delta())
		out["last_updated"] = v.LastUpdated()
		out["contributions_each_week"] = pointsToAPI(v.Weekly())
		out["calendar_data"] = calendarToAPI(v.Calendar())
		out["profile_url"] = "https://github.com/" + url.PathEscape(v.Username())
	case record.Problem:
		out["id"] = v.ID()
		out["title"] = v.Title()
		out["title_slug"] = v.TitleSlug()
		out["contest_slug"] = v.ContestSlug()
		out["rating"] = nullable(v.Rating())
		out["topics"] = nonNil(v.Categories())
		if slug := v.TitleSlug(); slug != "" {
			out["problem_url"] = "https://leetcode.com/problems/" + url.PathEscape(slug)
		}
		if slug := v.ContestSlug(); slug != "" {
			out["contest_url"] = "https://leetcode.com/contest/" + url.PathEscape(slug)
		}
	}
	return out
}

func nullable(v float64, ok bool) *float64 {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type point struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func pointsToAPI(in []record.Point) []point {
	out := make([]point, len(in))
	for i, p := range in {
		out[i] = point{Date: p.Date, Count: p.Count}
	}
	return out
}

func calendarToAPI(in []record.CalendarWeek) [][]point {
	out := make([][]point, len(in))
	for i, w := range in {
		out[i] = pointsToAPI(w.Days)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
