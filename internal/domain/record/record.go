// Package record defines the leaderboard record variants.
//
// A Record is one of LeetCode, GitHub or Problem. Every variant is an immutable
// value validated once when a board snapshot is decoded; the pipelines read
// fields only through Number, Text and Categories.
package record

// Kind identifies a record variant.
type Kind string

// Record kinds.
const (
	KindLeetCode Kind = "leetcode"
	KindGitHub   Kind = "github"
	KindProblem  Kind = "problem"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLeetCode, KindGitHub, KindProblem:
		return true
	}
	return false
}

// Field names a record attribute. Names follow the JSON payload keys.
type Field string

// LeetCode user fields.
const (
	FieldName         Field = "name"
	FieldElo          Field = "elo"
	FieldPrevElo      Field = "prev_elo"
	FieldProblemDelta Field = "current_problem_delta"
)

// GitHub user fields.
const (
	FieldGitHubUsername    Field = "github_username"
	FieldDisplayName       Field = "display_name"
	FieldContributions     Field = "current_contributions"
	FieldPrevContributions Field = "prev_contributions"
	FieldContributionDelta Field = "contribution_delta"
	FieldLastUpdated       Field = "last_updated"
)

// Problem fields.
const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldTitleSlug   Field = "title_slug"
	FieldContestSlug Field = "contest_slug"
	FieldRating      Field = "rating"
)

// Record is a single leaderboard entry.
type Record interface {
	// Kind returns the variant.
	Kind() Kind
	// Key returns a stable identity within a board.
	Key() string
	// Number returns a numeric field; false when the field is absent or not numeric.
	Number(f Field) (float64, bool)
	// Text returns a text field; false when the field is absent.
	Text(f Field) (string, bool)
	// Categories returns the record's category set (nil when it has none).
	Categories() []string

	sealed()
}

// Point is one sample of a weekly series.
type Point struct {
	Date  string
	Count int
}

// CalendarWeek is one column of a GitHub contribution calendar.
type CalendarWeek struct {
	Days []Point
}

func number(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func text(s string) (string, bool) {
	return s, s != ""
}

func clonePoints(in []Point) []Point {
	if in == nil {
		return nil
	}
	out := make([]Point, len(in))
	copy(out, in)
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
