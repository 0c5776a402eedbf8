// Package resultcache stores whole ranked result sets in the shared KV
// store. The cache is strictly best-effort: a store outage degrades every
// lookup to a miss and never fails a search.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rescuelink/emsearch/internal/db"
	"github.com/rescuelink/emsearch/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "result_cache:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache maps (canonical query text, scope) to a cached RankedResult.
type Cache struct {
	store      store
	ttl        time.Duration
	now        func() time.Time
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache with the given default TTL.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		ttl:        ttl,
		now:        time.Now,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithClock replaces the wall clock, for expiry tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// envelope wraps the cached value with its own expiry stamp. Redis already
// expires the key server-side; the stamp guards against backends without
// native TTL and against clock-skewed reads right at the boundary.
type envelope struct {
	StoredAtMs int64               `json:"stored_at_ms"`
	TTLSec     int64               `json:"ttl_sec"`
	Result     domain.RankedResult `json:"result"`
}

// Get returns the cached result for the query, or ok=false on a miss.
// A stale-beyond-TTL entry is evicted and reported as a miss, never returned.
func (c *Cache) Get(ctx context.Context, canonical string, scope domain.Scope) (domain.RankedResult, bool) {
	key := c.cacheKey(canonical, scope)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Result cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return domain.RankedResult{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("Result cache entry corrupted", zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return domain.RankedResult{}, false
	}

	expiry := time.UnixMilli(env.StoredAtMs).Add(time.Duration(env.TTLSec) * time.Second)
	if c.now().After(expiry) {
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict stale result", zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return domain.RankedResult{}, false
	}

	c.incCache("hit")
	return env.Result, true
}

// Put stores a result under the cache TTL. Failures are logged and
// swallowed; the caller already has the result in hand.
func (c *Cache) Put(ctx context.Context, canonical string, scope domain.Scope, result domain.RankedResult) {
	key := c.cacheKey(canonical, scope)

	data, err := json.Marshal(envelope{
		StoredAtMs: c.now().UnixMilli(),
		TTLSec:     int64(c.ttl.Seconds()),
		Result:     result,
	})
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey hashes the canonical text together with every scope field.
// Identical inputs always collide; distinct scopes never do, because the
// fields are length-delimited before hashing.
func (c *Cache) cacheKey(canonical string, scope domain.Scope) string {
	h := sha256.New()
	for _, part := range []string{canonical, scope.AgencyID, scope.StateCode} {
		var lenBuf [8]byte
		for i, b := 0, len(part); i < 8; i++ {
			lenBuf[i] = byte(b >> (8 * i))
		}
		h.Write(lenBuf[:])
		h.Write([]byte(part))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
