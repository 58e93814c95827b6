package registration

import (
	"strings"
	"time"
	"unicode"

	"github.com/kailas-cloud/elodash/internal/domain"
)

const maxNameLen = 64

// User is a registered leaderboard participant (immutable value object).
type User struct {
	id               string
	leetcodeUsername string
	githubUsername   string
	displayName      string
	createdAt        time.Time
}

// New validates and creates a User.
// Both usernames are required, trimmed and may not contain whitespace.
// An empty displayName falls back to the LeetCode username.
func New(id, leetcodeUsername, githubUsername, displayName string, createdAt time.Time) (User, error) {
	if id == "" {
		return User{}, domain.NewFieldError("id", "is required")
	}
	lc, err := validateUsername("leetcode_username", leetcodeUsername)
	if err != nil {
		return User{}, err
	}
	gh, err := validateUsername("github_username", githubUsername)
	if err != nil {
		return User{}, err
	}
	display := strings.TrimSpace(displayName)
	if display == "" {
		display = lc
	}
	if len(display) > maxNameLen {
		return User{}, domain.NewFieldError("display_name", "is too long (max 64)")
	}
	return User{
		id:               id,
		leetcodeUsername: lc,
		githubUsername:   gh,
		displayName:      display,
		createdAt:        createdAt.UTC(),
	}, nil
}

// Reconstruct hydrates a User from storage without validation.
// Entries written by older clients may lack fields.
func Reconstruct(id, leetcodeUsername, githubUsername, displayName string, createdAt time.Time) User {
	return User{
		id:               id,
		leetcodeUsername: leetcodeUsername,
		githubUsername:   githubUsername,
		displayName:      displayName,
		createdAt:        createdAt,
	}
}

func validateUsername(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.NewFieldError(field, "is required")
	}
	if len(v) > maxNameLen {
		return "", domain.NewFieldError(field, "is too long (max 64)")
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return "", domain.NewFieldError(field, "must not contain whitespace")
	}
	return v, nil
}

// ID returns the registration ID.
func (u User) ID() string { return u.id }

// LeetCodeUsername returns the LeetCode login.
func (u User) LeetCodeUsername() string { return u.leetcodeUsername }

// GitHubUsername returns the GitHub login.
func (u User) GitHubUsername() string { return u.githubUsername }

// DisplayName returns the name shown on boards.
func (u User) DisplayName() string { return u.displayName }

// CreatedAt returns the registration time.
func (u User) CreatedAt() time.Time { return u.createdAt }

// Conflicts reports whether other uses the same LeetCode or GitHub username.
// Comparison is exact, matching how the refresh job keys its lookups.
func (u User) Conflicts(other User) bool {
	return (u.leetcodeUsername != "" && u.leetcodeUsername == other.leetcodeUsername) ||
		(u.githubUsername != "" && u.githubUsername == other.githubUsername)
}
