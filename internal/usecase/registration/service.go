package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/registration"
	"github.com/kailas-cloud/elodash/internal/metrics"
	"github.com/kailas-cloud/elodash/internal/tracing"
)

// Request is a registration submitted by a user.
type Request struct {
	LeetCodeUsername string
	GitHubUsername   string
	DisplayName      string
}

// Service appends users to the registration list.
// The list is read, extended and written back as one value, so writers are
// serialised within the process.
type Service struct {
	repo    Repository
	mu      sync.Mutex
	limiter *rate.Limiter
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
}

// New creates a registration service without throttling.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// WithRateLimit throttles registrations to perMinute with the given burst.
// perMinute <= 0 disables throttling.
func (s *Service) WithRateLimit(perMinute float64, burst int) *Service {
	if perMinute <= 0 {
		s.limiter = nil
		return s
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(perMinute/60), burst)
	return s
}

// Register validates req, rejects duplicates and stores the new user.
func (s *Service) Register(ctx context.Context, req Request) (u registration.User, err error) {
	ctx, end := tracing.StartSpan(ctx, "registration.register")
	defer func() {
		end(err)
		metrics.RegistrationsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	u, err = registration.New(s.newID(), req.LeetCodeUsername, req.GitHubUsername, req.DisplayName, s.now())
	if err != nil {
		return registration.User{}, fmt.Errorf("validate registration: %w", err)
	}

	// Only well-formed requests spend throttle budget.
	if s.limiter != nil && !s.limiter.Allow() {
		return registration.User{}, domain.ErrRateLimited
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.List(ctx)
	if err != nil {
		return registration.User{}, fmt.Errorf("list users: %w", err)
	}
	for _, existing := range users {
		if existing.Conflicts(u) {
			return registration.User{}, fmt.Errorf("register %s: %w", u.LeetCodeUsername(), domain.ErrAlreadyRegistered)
		}
	}

	if err := s.repo.Save(ctx, append(users, u)); err != nil {
		return registration.User{}, fmt.Errorf("save users: %w", err)
	}

	tracing.SetAttributes(ctx, attribute.Int("users.total", len(users)+1))
	s.logger.Info("User registered",
		zap.String("id", u.ID()),
		zap.String("leetcode_username", u.LeetCodeUsername()),
		zap.String("github_username", u.GitHubUsername()),
	)
	return u, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidRegistration):
		return "invalid"
	case errors.Is(err, domain.ErrRateLimited):
		return "throttled"
	}
	return "error"
}
