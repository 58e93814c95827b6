// Package snapshot loads board payloads and decodes them into records.
// Loading never fails from the caller's point of view: any transport, status
// or decoding problem yields an empty collection.
package snapshot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/domain/board"
	"github.com/kailas-cloud/elodash/internal/domain/record"
	"github.com/kailas-cloud/elodash/internal/logger"
	"github.com/kailas-cloud/elodash/internal/metrics"
	"github.com/kailas-cloud/elodash/internal/tracing"
)

// Repo implements usecase/leaderboard.Snapshots.
type Repo struct {
	loader payloadLoader
	logger *zap.Logger
}

// New creates a snapshot repository over a payload loader (Source or Cache).
func New(loader payloadLoader, logger *zap.Logger) *Repo {
	return &Repo{loader: loader, logger: logger}
}

// Load returns the records of b. Failures are logged, counted and reported as
// an empty, non-nil collection.
func (r *Repo) Load(ctx context.Context, b board.Board) []record.Record {
	log := r.log(ctx).With(zap.String("board", b.Name()), zap.Stringer("source", b.Source()))
	ctx, end := tracing.StartSpan(ctx, "snapshot.load", attribute.String("board", b.Name()))
	start := time.Now()
	var err error
	defer func() {
		metrics.SnapshotFetchDuration.WithLabelValues(b.Name()).Observe(time.Since(start).Seconds())
		end(err)
	}()

	payload, err := r.loader.Load(ctx, b)
	if err != nil {
		log.Warn("Snapshot load failed, serving empty board", zap.Error(err))
		metrics.SnapshotFetchTotal.WithLabelValues(b.Name(), "error").Inc()
		return []record.Record{}
	}

	records, dropped, err := Decode(b.Kind(), payload)
	if err != nil {
		log.Warn("Snapshot decode failed, serving empty board", zap.Error(err))
		metrics.SnapshotFetchTotal.WithLabelValues(b.Name(), "error").Inc()
		return []record.Record{}
	}
	tracing.SetAttributes(ctx, attribute.Int("snapshot.records", len(records)))
	if dropped > 0 {
		tracing.AddEvent(ctx, "snapshot.dropped", attribute.Int("dropped", dropped))
		log.Debug("Dropped malformed snapshot records", zap.Int("dropped", dropped))
		metrics.SnapshotDroppedTotal.WithLabelValues(b.Name()).Add(float64(dropped))
	}

	metrics.SnapshotFetchTotal.WithLabelValues(b.Name(), "ok").Inc()
	metrics.SnapshotRecords.WithLabelValues(b.Name()).Set(float64(len(records)))
	return records
}

// log prefers the request-scoped logger.
func (r *Repo) log(ctx context.Context) *zap.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return r.logger
}
