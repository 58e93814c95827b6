package registration

import (
	"context"

	"github.com/kailas-cloud/elodash/internal/domain/registration"
)

// Repository stores the registered user list as a whole.
type Repository interface {
	List(ctx context.Context) ([]registration.User, error)
	Save(ctx context.Context, users []registration.User) error
}
