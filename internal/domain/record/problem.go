package record

import "fmt"

// Problem is a rated LeetCode contest problem.
type Problem struct {
	id          string
	title       string
	titleSlug   string
	contestSlug string
	contestID   string
	rating      *float64
	topics      []string
}

var _ Record = Problem{}

// ProblemParams carries the decoded fields of a Problem record.
type ProblemParams struct {
	ID          string
	Title       string
	TitleSlug   string
	ContestSlug string
	ContestID   string
	Rating      *float64
	Topics      []string
}

// NewProblem validates and creates a Problem record.
func NewProblem(p ProblemParams) (Problem, error) {
	if p.Title == "" {
		return Problem{}, fmt.Errorf("problem record: title is required")
	}
	var topics []string
	if p.Topics != nil {
		topics = make([]string, len(p.Topics))
		copy(topics, p.Topics)
	}
	return Problem{
		id:          p.ID,
		title:       p.Title,
		titleSlug:   p.TitleSlug,
		contestSlug: p.ContestSlug,
		contestID:   p.ContestID,
		rating:      cloneFloat(p.Rating),
		topics:      topics,
	}, nil
}

// Kind returns KindProblem.
func (Problem) Kind() Kind { return KindProblem }

// Key returns the problem ID, or the title slug when the payload carries no ID.
func (r Problem) Key() string {
	if r.id != "" {
		return r.id
	}
	if r.titleSlug != "" {
		return r.titleSlug
	}
	return r.title
}

// ID returns the LeetCode problem ID.
func (r Problem) ID() string { return r.id }

// Title returns the problem title.
func (r Problem) Title() string { return r.title }

// TitleSlug returns the URL slug of the problem.
func (r Problem) TitleSlug() string { return r.titleSlug }

// ContestSlug returns the URL slug of the contest.
func (r Problem) ContestSlug() string { return r.contestSlug }

// ContestID returns the contest display name.
func (r Problem) ContestID() string { return r.contestID }

// Rating returns the problem difficulty rating.
func (r Problem) Rating() (float64, bool) { return number(r.rating) }

// Number implements Record.
func (r Problem) Number(f Field) (float64, bool) {
	if f == FieldRating {
		return number(r.rating)
	}
	return 0, false
}

// Text implements Record.
func (r Problem) Text(f Field) (string, bool) {
	switch f {
	case FieldID:
		return text(r.id)
	case FieldTitle:
		return text(r.title)
	case FieldTitleSlug:
		return text(r.titleSlug)
	case FieldContestSlug:
		return text(r.contestSlug)
	}
	return "", false
}

// Categories returns the problem topics.
func (r Problem) Categories() []string {
	if r.topics == nil {
		return nil
	}
	out := make([]string, len(r.topics))
	copy(out, r.topics)
	return out
}

func (Problem) sealed() {}
