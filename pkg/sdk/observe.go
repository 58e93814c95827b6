package elodash

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elodash",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type, board and status.",
		}, []string{"operation", "board", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "elodash",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "board"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("elodash: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("elodash: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
// A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one SDK call. board is empty for calls not scoped to a
// board.
func (o *observer) observe(op, board string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		label := board
		if errors.Is(err, ErrBoardNotFound) {
			// unknown board names are not recorded
			label = ""
		}
		o.metrics.operations.WithLabelValues(op, label, outcome(err)).Inc()
		o.metrics.duration.WithLabelValues(op, label).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed",
				"op", op,
				"board", board,
				"status", outcome(err),
				"duration", dur,
				"error", err,
			)
		} else {
			o.logger.Debug("operation completed",
				"op", op,
				"board", board,
				"duration", dur,
			)
		}
	}
}

// outcome classifies err: "ok", "rejected" for caller mistakes and domain
// refusals, "error" for everything else.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBoardNotFound), errors.Is(err, ErrEmptyBoard),
		errors.Is(err, ErrInvalidCriteria), errors.Is(err, ErrInvalidSortKey),
		errors.Is(err, ErrInvalidRegistration), errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrRateLimited):
		return "rejected"
	default:
		return "error"
	}
}
