package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/db"
	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/board"
)

var cacheKeyPrefix = domain.KeyPrefix + "snapshot:"

// Cached snapshot hash fields.
const (
	fieldPayload   = "payload"
	fieldSource    = "source"
	fieldFetchedAt = "fetched_at"
)

// hashStore is the consumer interface for the snapshot cache (ISP).
type hashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache keeps raw board payloads in the database for ttl.
// An entry is bound to the source it was fetched from; a board whose source
// changed on reload misses until refetched.
type Cache struct {
	inner      payloadLoader
	store      hashStore
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// NewCache creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func NewCache(
	inner payloadLoader,
	s hashStore,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// Load returns the cached payload of b or loads it from the inner source.
// Failed loads and payloads that are not a well-formed JSON array are not
// cached, so the next load refetches.
func (c *Cache) Load(ctx context.Context, b board.Board) ([]byte, error) {
	if c.ttl <= 0 {
		return c.inner.Load(ctx, b)
	}

	key := cacheKey(b.Name())
	if data, ok := c.getFromCache(ctx, key, b.Source().String()); ok {
		c.incCache("hit")
		return data, nil
	}

	c.incCache("miss")

	data, err := c.inner.Load(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if !isJSONArray(data) {
		c.logger.Warn("Not caching malformed snapshot payload",
			zap.String("board", b.Name()), zap.Int("bytes", len(data)))
		return data, nil
	}
	c.putToCache(ctx, key, b.Source().String(), data)
	return data, nil
}

func isJSONArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '[' && json.Valid(data)
}

// Invalidate drops the cached payload of a board.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	if err := c.store.Del(ctx, cacheKey(name)); err != nil {
		return fmt.Errorf("invalidate snapshot %s: %w", name, err)
	}
	return nil
}

func cacheKey(name string) string {
	return cacheKeyPrefix + name
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) getFromCache(ctx context.Context, key, source string) ([]byte, bool) {
	m, err := c.store.HGetAll(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached snapshot", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if m[fieldSource] != source {
		return nil, false
	}
	payload, ok := m[fieldPayload]
	if !ok {
		return nil, false
	}
	return []byte(payload), true
}

func (c *Cache) putToCache(ctx context.Context, key, source string, data []byte) {
	fields := map[string]string{
		fieldPayload:   string(data),
		fieldSource:    source,
		fieldFetchedAt: strconv.FormatInt(c.now().Unix(), 10),
	}
	if err := c.store.HSet(ctx, key, fields); err != nil {
		c.logger.Warn("Failed to cache snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Expire(ctx, key, c.ttl); err != nil {
		c.logger.Warn("Failed to set snapshot ttl", zap.String("key", key), zap.Error(err))
		// An entry without ttl would never refresh.
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop snapshot without ttl", zap.String("key", key), zap.Error(err))
		}
	}
}
