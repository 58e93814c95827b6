package user

import (
	"time"

	"github.com/kailas-cloud/elodash/internal/domain/registration"
)

// userDTO is the users:list element shared with the refresh scripts.
type userDTO struct {
	ID               string `json:"id"`
	LeetCodeUsername string `json:"leetcode_username"`
	GitHubUsername   string `json:"github_username"`
	DisplayName      string `json:"display_name"`
	CreatedAt        string `json:"created_at"`
}

func toDTO(u registration.User) userDTO {
	var created string
	if !u.CreatedAt().IsZero() {
		created = u.CreatedAt().UTC().Format(time.RFC3339Nano)
	}
	return userDTO{
		ID:               u.ID(),
		LeetCodeUsername: u.LeetCodeUsername(),
		GitHubUsername:   u.GitHubUsername(),
		DisplayName:      u.DisplayName(),
		CreatedAt:        created,
	}
}

// fromDTO hydrates a stored user. An unparsable created_at is kept as zero.
func fromDTO(d userDTO) registration.User {
	created, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	return registration.Reconstruct(d.ID, d.LeetCodeUsername, d.GitHubUsername, d.DisplayName, created)
}
