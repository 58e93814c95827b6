package registration

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/elodash/internal/domain"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNew_Valid(t *testing.T) {
	u, err := New("id-1", " alice ", "alice-gh", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.LeetCodeUsername() != "alice" {
		t.Errorf("leetcode = %q, want trimmed", u.LeetCodeUsername())
	}
	if u.DisplayName() != "alice" {
		t.Errorf("display = %q, want leetcode fallback", u.DisplayName())
	}
	if !u.CreatedAt().Equal(now) {
		t.Errorf("created_at = %v", u.CreatedAt())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		lc, gh    string
		display   string
		wantField string
	}{
		{"missing id", "", "a", "b", "", "id"},
		{"missing leetcode", "x", "", "b", "", "leetcode_username"},
		{"blank github", "x", "a", "   ", "", "github_username"},
		{"space in leetcode", "x", "a b", "b", "", "leetcode_username"},
		{"long github", "x", "a", string(make([]byte, 65)), "", "github_username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.lc, tt.gh, tt.display, now)
			if !errors.Is(err, domain.ErrInvalidRegistration) {
				t.Fatalf("expected ErrInvalidRegistration, got %v", err)
			}
			var fe *domain.FieldError
			if !errors.As(err, &fe) || fe.Field != tt.wantField {
				t.Errorf("field = %v, want %q", fe, tt.wantField)
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	a, _ := New("1", "alice", "alice-gh", "", now)
	sameLC, _ := New("2", "alice", "other", "", now)
	sameGH, _ := New("3", "bob", "alice-gh", "", now)
	other, _ := New("4", "carol", "carol-gh", "", now)

	if !a.Conflicts(sameLC) || !a.Conflicts(sameGH) {
		t.Error("expected conflict on shared username")
	}
	if a.Conflicts(other) {
		t.Error("unexpected conflict")
	}
	if Reconstruct("5", "", "", "", time.Time{}).Conflicts(Reconstruct("6", "", "", "", time.Time{})) {
		t.Error("empty usernames must not conflict")
	}
}
