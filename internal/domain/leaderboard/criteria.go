package leaderboard

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// MaxConditions is the maximum number of conditions in one Criteria.
const MaxConditions = 32

type conditionKind int

const (
	conditionText conditionKind = iota + 1
	conditionRange
	conditionCategory
)

// Condition is a single filter clause: a text search, a numeric range or a
// category membership test.
type Condition struct {
	kind conditionKind

	query  string // lower-cased
	fields []record.Field

	field record.Field
	min   *float64
	max   *float64

	category string
}

// NewText creates a case-insensitive substring condition over fields.
// A record matches when any of the fields contains query. An empty query
// matches every record.
func NewText(query string, fields ...record.Field) (Condition, error) {
	if query != "" && len(fields) == 0 {
		return Condition{}, fmt.Errorf("text condition requires at least one field")
	}
	return Condition{
		kind:   conditionText,
		query:  strings.ToLower(query),
		fields: slices.Clone(fields),
	}, nil
}

// NewRange creates an inclusive numeric range condition on field.
// A nil bound is open. An infinite bound in its open direction (-Inf for min,
// +Inf for max) is treated as nil.
func NewRange(field record.Field, minVal, maxVal *float64) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("range field is required")
	}
	if minVal != nil && math.IsNaN(*minVal) {
		return Condition{}, fmt.Errorf("range min is NaN")
	}
	if maxVal != nil && math.IsNaN(*maxVal) {
		return Condition{}, fmt.Errorf("range max is NaN")
	}
	if minVal != nil && math.IsInf(*minVal, -1) {
		minVal = nil
	}
	if maxVal != nil && math.IsInf(*maxVal, 1) {
		maxVal = nil
	}
	return Condition{kind: conditionRange, field: field, min: cloneFloat(minVal), max: cloneFloat(maxVal)}, nil
}

// NewCategory creates a category membership condition. An empty value matches
// every record.
func NewCategory(value string) Condition {
	return Condition{kind: conditionCategory, category: value}
}

// IsActive reports whether the condition constrains anything.
func (c Condition) IsActive() bool {
	switch c.kind {
	case conditionText:
		return c.query != ""
	case conditionRange:
		return c.min != nil || c.max != nil
	case conditionCategory:
		return c.category != ""
	}
	return false
}

// Matches reports whether r satisfies the condition.
func (c Condition) Matches(r record.Record) bool {
	if !c.IsActive() {
		return true
	}
	switch c.kind {
	case conditionText:
		for _, f := range c.fields {
			if s, ok := r.Text(f); ok && strings.Contains(strings.ToLower(s), c.query) {
				return true
			}
		}
		return false
	case conditionRange:
		v, ok := r.Number(c.field)
		if !ok {
			return false
		}
		if c.min != nil && v < *c.min {
			return false
		}
		if c.max != nil && v > *c.max {
			return false
		}
		return true
	case conditionCategory:
		return slices.Contains(r.Categories(), c.category)
	}
	return true
}

// Criteria is a conjunction of conditions (immutable value object).
// The zero value matches every record.
type Criteria struct {
	conditions []Condition
}

// NewCriteria validates and creates a Criteria.
func NewCriteria(conditions ...Condition) (Criteria, error) {
	if len(conditions) > MaxConditions {
		return Criteria{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Criteria{conditions: slices.Clone(conditions)}, nil
}

// And returns the conjunction of c and other.
func (c Criteria) And(other Criteria) Criteria {
	merged := make([]Condition, 0, len(c.conditions)+len(other.conditions))
	merged = append(merged, c.conditions...)
	merged = append(merged, other.conditions...)
	return Criteria{conditions: merged}
}

// Conditions returns the conditions.
func (c Criteria) Conditions() []Condition { return slices.Clone(c.conditions) }

// IsEmpty reports whether no condition is active.
func (c Criteria) IsEmpty() bool {
	for _, cond := range c.conditions {
		if cond.IsActive() {
			return false
		}
	}
	return true
}

// Matches reports whether r satisfies every condition.
func (c Criteria) Matches(r record.Record) bool {
	for _, cond := range c.conditions {
		if !cond.Matches(r) {
			return false
		}
	}
	return true
}

// ParseBound converts a user-entered bound. Empty, malformed and NaN input
// yields nil, which leaves that side of a range open.
func ParseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
