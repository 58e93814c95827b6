package board

import (
	"slices"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// Schema declares which record fields are numeric (rankable, range-filterable)
// and which are textual (searchable) for a record kind.
type Schema struct {
	numeric     []record.Field
	text        []record.Field
	defaultSort record.Field
	rangeField  record.Field
	categories  bool
}

// SchemaFor returns the schema of a record kind.
func SchemaFor(kind record.Kind) Schema {
	switch kind {
	case record.KindLeetCode:
		return Schema{
			numeric:     []record.Field{record.FieldProblemDelta, record.FieldElo, record.FieldPrevElo},
			text:        []record.Field{record.FieldName},
			defaultSort: record.FieldProblemDelta,
			rangeField:  record.FieldElo,
		}
	case record.KindGitHub:
		return Schema{
			numeric: []record.Field{
				record.FieldContributionDelta, record.FieldContributions, record.FieldPrevContributions,
			},
			text:        []record.Field{record.FieldDisplayName, record.FieldGitHubUsername},
			defaultSort: record.FieldContributionDelta,
			rangeField:  record.FieldContributions,
		}
	case record.KindProblem:
		return Schema{
			numeric:     []record.Field{record.FieldRating},
			text:        []record.Field{record.FieldTitle},
			defaultSort: record.FieldRating,
			rangeField:  record.FieldRating,
			categories:  true,
		}
	}
	return Schema{}
}

// NumericFields returns the fields usable as sort keys and range filters.
func (s Schema) NumericFields() []record.Field { return slices.Clone(s.numeric) }

// TextFields returns the fields searched by a text query.
func (s Schema) TextFields() []record.Field { return slices.Clone(s.text) }

// DefaultSort returns the sort key used when a query names none.
func (s Schema) DefaultSort() record.Field { return s.defaultSort }

// RangeField returns the field a min/max filter applies to by default.
func (s Schema) RangeField() record.Field { return s.rangeField }

// HasCategories reports whether records of this kind carry a category set.
func (s Schema) HasCategories() bool { return s.categories }

// IsNumeric reports whether f is a numeric field of the schema.
func (s Schema) IsNumeric(f record.Field) bool { return slices.Contains(s.numeric, f) }
