package record

import "fmt"

// LeetCode is a LeetCode user on the contest leaderboard.
type LeetCode struct {
	name         string
	elo          *float64
	prevElo      *float64
	problemDelta *float64
	weekly       []Point
}

var _ Record = LeetCode{}

// NewLeetCode validates and creates a LeetCode record.
// Only name is required; a freshly registered user has no rating history yet.
func NewLeetCode(name string, elo, prevElo, problemDelta *float64, weekly []Point) (LeetCode, error) {
	if name == "" {
		return LeetCode{}, fmt.Errorf("leetcode record: name is required")
	}
	return LeetCode{
		name:         name,
		elo:          cloneFloat(elo),
		prevElo:      cloneFloat(prevElo),
		problemDelta: cloneFloat(problemDelta),
		weekly:       clonePoints(weekly),
	}, nil
}

// Kind returns KindLeetCode.
func (LeetCode) Kind() Kind { return KindLeetCode }

// Key returns the LeetCode username.
func (r LeetCode) Key() string { return r.name }

// Name returns the LeetCode username.
func (r LeetCode) Name() string { return r.name }

// Elo returns the current contest rating.
func (r LeetCode) Elo() (float64, bool) { return number(r.elo) }

// PrevElo returns the rating before the last contest.
func (r LeetCode) PrevElo() (float64, bool) { return number(r.prevElo) }

// ProblemDelta returns the number of problems solved this period.
func (r LeetCode) ProblemDelta() (float64, bool) { return number(r.problemDelta) }

// Weekly returns the problems-solved series.
func (r LeetCode) Weekly() []Point { return clonePoints(r.weekly) }

// Number implements Record.
func (r LeetCode) Number(f Field) (float64, bool) {
	switch f {
	case FieldElo:
		return number(r.elo)
	case FieldPrevElo:
		return number(r.prevElo)
	case FieldProblemDelta:
		return number(r.problemDelta)
	}
	return 0, false
}

// Text implements Record.
func (r LeetCode) Text(f Field) (string, bool) {
	if f == FieldName {
		return text(r.name)
	}
	return "", false
}

// Categories implements Record.
func (LeetCode) Categories() []string { return nil }

func (LeetCode) sealed() {}
