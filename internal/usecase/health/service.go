package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	upstream UpstreamChecker
	timeout  time.Duration
}

// New creates a Service. Either checker can be nil when the component is not configured.
func New(db DBPinger, upstream UpstreamChecker) *Service {
	return &Service{db: db, upstream: upstream, timeout: defaultCheckTimeout}
}

// WithTimeout bounds each component check.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs the configured component checks concurrently.
// With no component configured the service reports Healthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var mu sync.Mutex
	var g errgroup.Group

	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res := CheckOK
			if err := fn(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}

	if s.db != nil {
		run("database", s.db.Ping)
	}
	if s.upstream != nil {
		run("upstream", s.upstream.HealthCheck)
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
