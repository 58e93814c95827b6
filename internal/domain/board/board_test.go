package board

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

func mustSource(t *testing.T) Source {
	t.Helper()
	s, err := NewSource(SourceURL, "https://example.com/users_by_elo.json", "")
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return s
}

func TestNew_Valid(t *testing.T) {
	b, err := New("leetcode", record.KindLeetCode, mustSource(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name() != "leetcode" || b.Kind() != record.KindLeetCode {
		t.Errorf("Name/Kind = %q/%q", b.Name(), b.Kind())
	}
	if b.Schema().DefaultSort() != record.FieldProblemDelta {
		t.Errorf("DefaultSort() = %q", b.Schema().DefaultSort())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		board   string
		kind    record.Kind
		wantErr string
	}{
		{"empty name", "", record.KindGitHub, "name is required"},
		{"uppercase", "LeetCode", record.KindGitHub, "lowercase"},
		{"too long", strings.Repeat("a", 65), record.KindGitHub, "too long"},
		{"unknown kind", "cf", record.Kind("codeforces"), "unknown record kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.board, tt.kind, mustSource(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewSource(t *testing.T) {
	if _, err := NewSource(SourceURL, "", ""); err == nil {
		t.Error("url source without url should fail")
	}
	if _, err := NewSource(SourceKV, "", ""); err == nil {
		t.Error("kv source without key should fail")
	}
	if _, err := NewSource("ftp", "x", "y"); err == nil {
		t.Error("unknown source type should fail")
	}
	s, err := NewSource(SourceKV, "", "leetcode:data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "kv:leetcode:data" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestSchemaFor(t *testing.T) {
	gh := SchemaFor(record.KindGitHub)
	if !gh.IsNumeric(record.FieldContributionDelta) {
		t.Error("contribution_delta should be numeric")
	}
	if gh.IsNumeric(record.FieldDisplayName) {
		t.Error("display_name should not be numeric")
	}
	if len(gh.TextFields()) != 2 {
		t.Errorf("TextFields() = %v", gh.TextFields())
	}
	if gh.HasCategories() {
		t.Error("github records have no categories")
	}

	p := SchemaFor(record.KindProblem)
	if !p.HasCategories() || p.RangeField() != record.FieldRating {
		t.Errorf("problem schema = %+v", p)
	}

	fields := p.NumericFields()
	fields[0] = record.FieldElo
	if p.NumericFields()[0] != record.FieldRating {
		t.Error("NumericFields() must return a copy")
	}
}
