// Package embcache bounds embedding provider traffic with an in-process LRU.
// Keys are the exact normalized text; the normalizer has already
// canonicalized case and whitespace upstream, so byte-equal text means an
// identical embedding.
package embcache

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rescuelink/emsearch/internal/domain"
)

// CachedEmbedder is a caching decorator around a domain.Embedder.
type CachedEmbedder struct {
	inner      domain.Embedder
	cache      *lru[[]float32]
	cacheTotal *prometheus.CounterVec
}

// New creates a caching decorator with a bounded entry count.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(inner domain.Embedder, capacity int, cacheTotal *prometheus.CounterVec) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		cache:      newLRU[[]float32](capacity),
		cacheTotal: cacheTotal,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cached vectors are copied on the way out so no caller can mutate the
// cached value in place.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if vec, ok := c.cache.Get(text); ok {
		c.incCache("hit")
		out := make([]float32, len(vec))
		copy(out, vec)
		return domain.EmbeddingResult{Embedding: out}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	stored := make([]float32, len(result.Embedding))
	copy(stored, result.Embedding)
	c.cache.Put(text, stored)

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
