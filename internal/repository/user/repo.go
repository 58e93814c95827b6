package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/elodash/internal/db"
	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/registration"
)

// DefaultKey is the key the refresh scripts read registered users from.
const DefaultKey = "users:list"

// store is the consumer interface for the registration list (ISP).
// Implemented by the KV worker client and the database store.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/registration.Repository over a single JSON array.
type Repo struct {
	store store
	key   string
}

// New creates a user repository. An empty key selects DefaultKey.
func New(s store, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{store: s, key: key}
}

// List returns all registered users in stored order.
// A missing key is an empty list. A corrupt list is an error so that a
// following Save cannot overwrite it.
func (r *Repo) List(ctx context.Context) ([]registration.User, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []registration.User{}, nil
		}
		return nil, fmt.Errorf("get %s: %w: %w", r.key, domain.ErrUpstreamUnavailable, err)
	}

	var dtos []userDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}

	users := make([]registration.User, len(dtos))
	for i, d := range dtos {
		users[i] = fromDTO(d)
	}
	return users, nil
}

// Save replaces the stored list. Backend failures on either read or write
// wrap domain.ErrUpstreamUnavailable whatever the backend.
func (r *Repo) Save(ctx context.Context, users []registration.User) error {
	dtos := make([]userDTO, len(users))
	for i, u := range users {
		dtos[i] = toDTO(u)
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("set %s: %w: %w", r.key, domain.ErrUpstreamUnavailable, err)
	}
	return nil
}
