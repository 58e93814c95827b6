package record

import "fmt"

// GitHub is a GitHub user on the contributions leaderboard.
type GitHub struct {
	username          string
	displayName       string
	contributions     *float64
	prevContributions *float64
	delta             *float64
	lastUpdated       string
	weekly            []Point
	calendar          []CalendarWeek
}

var _ Record = GitHub{}

// GitHubParams carries the decoded fields of a GitHub record.
type GitHubParams struct {
	Username          string
	DisplayName       string
	Contributions     *float64
	PrevContributions *float64
	Delta             *float64
	LastUpdated       string
	Weekly            []Point
	Calendar          []CalendarWeek
}

// NewGitHub validates and creates a GitHub record.
// DisplayName falls back to Username.
func NewGitHub(p GitHubParams) (GitHub, error) {
	if p.Username == "" {
		return GitHub{}, fmt.Errorf("github record: github_username is required")
	}
	display := p.DisplayName
	if display == "" {
		display = p.Username
	}

	var calendar []CalendarWeek
	if p.Calendar != nil {
		calendar = make([]CalendarWeek, len(p.Calendar))
		for i, w := range p.Calendar {
			calendar[i] = CalendarWeek{Days: clonePoints(w.Days)}
		}
	}

	return GitHub{
		username:          p.Username,
		displayName:       display,
		contributions:     cloneFloat(p.Contributions),
		prevContributions: cloneFloat(p.PrevContributions),
		delta:             cloneFloat(p.Delta),
		lastUpdated:       p.LastUpdated,
		weekly:            clonePoints(p.Weekly),
		calendar:          calendar,
	}, nil
}

// Kind returns KindGitHub.
func (GitHub) Kind() Kind { return KindGitHub }

// Key returns the GitHub username.
func (r GitHub) Key() string { return r.username }

// Username returns the GitHub login.
func (r GitHub) Username() string { return r.username }

// DisplayName returns the name shown on the board.
func (r GitHub) DisplayName() string { return r.displayName }

// Contributions returns the current contribution total.
func (r GitHub) Contributions() (float64, bool) { return number(r.contributions) }

// PrevContributions returns the total from the previous refresh.
func (r GitHub) PrevContributions() (float64, bool) { return number(r.prevContributions) }

// Delta returns the precomputed contribution change.
func (r GitHub) Delta() (float64, bool) { return number(r.delta) }

// LastUpdated returns the refresh date string, empty when never refreshed.
func (r GitHub) LastUpdated() string { return r.lastUpdated }

// Weekly returns the contributions-per-week series.
func (r GitHub) Weekly() []Point { return clonePoints(r.weekly) }

// Calendar returns the contribution calendar.
func (r GitHub) Calendar() []CalendarWeek {
	if r.calendar == nil {
		return nil
	}
	out := make([]CalendarWeek, len(r.calendar))
	for i, w := range r.calendar {
		out[i] = CalendarWeek{Days: clonePoints(w.Days)}
	}
	return out
}

// Number implements Record.
func (r GitHub) Number(f Field) (float64, bool) {
	switch f {
	case FieldContributions:
		return number(r.contributions)
	case FieldPrevContributions:
		return number(r.prevContributions)
	case FieldContributionDelta:
		return number(r.delta)
	}
	return 0, false
}

// Text implements Record.
func (r GitHub) Text(f Field) (string, bool) {
	switch f {
	case FieldGitHubUsername:
		return text(r.username)
	case FieldDisplayName:
		return text(r.displayName)
	case FieldLastUpdated:
		return text(r.lastUpdated)
	}
	return "", false
}

// Categories implements Record.
func (GitHub) Categories() []string { return nil }

func (GitHub) sealed() {}
