// Package emsearch embeds the protocol search pipeline in-process: the
// same normalization, embedding, retrieval and fusion the HTTP server
// runs, wired directly against Redis for Go programs that do not want a
// network hop.
package emsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/rescuelink/emsearch/internal/db/redis"
	"github.com/rescuelink/emsearch/internal/domain"
	"github.com/rescuelink/emsearch/internal/metrics"
	"github.com/rescuelink/emsearch/internal/repository/embcache"
	"github.com/rescuelink/emsearch/internal/repository/resultcache"
	"github.com/rescuelink/emsearch/internal/repository/retriever"
	openaiEmb "github.com/rescuelink/emsearch/internal/transport/openai"
	searchuc "github.com/rescuelink/emsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Re-exported domain types so callers never import internal packages.
type (
	// Scope restricts a search to one agency and state.
	Scope = domain.Scope
	// RankedResult is the final ranked list for one query.
	RankedResult = domain.RankedResult
	// RankedItem is one entry of a RankedResult.
	RankedItem = domain.RankedItem
	// Candidate is a retrieved protocol chunk.
	Candidate = domain.Candidate
)

// Sentinel errors surfaced by Search.
var (
	ErrInvalidInput        = domain.ErrInvalidInput
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrRetrievalFailed     = domain.ErrRetrievalFailed
	ErrTimeout             = domain.ErrTimeout
)

// Client is the emsearch SDK entry point.
type Client struct {
	store  *dbRedis.Store
	search *searchuc.Service
}

// New creates a Client and connects to Redis.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("emsearch: redis address required (use WithRedis)")
	}
	if cfg.embedder == nil && cfg.apiKey == "" {
		return nil, errors.New("emsearch: embedding credentials required (use WithOpenAI or WithEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("emsearch: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("emsearch: redis not ready: %w", err)
	}

	metrics.RegisterSearchMetrics()

	embedder := cfg.embedder
	if embedder == nil {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Timeout:    cfg.embedTimeout,
			Logger:     cfg.logger,
		})
		embedder = embcache.New(base, cfg.embedCacheEntries, metrics.EmbeddingCacheTotal)
	}

	retr := retriever.New(store, cfg.indexName, metrics.RetrievalDuration)
	cache := resultcache.New(store, cfg.resultCacheTTL, metrics.ResultCacheTotal, cfg.logger)

	svc := searchuc.New(embedder, retr, cache, searchuc.Options{
		TopK:             cfg.topK,
		ResultLimit:      cfg.resultLimit,
		RetrievalTimeout: cfg.retrievalTimeout,
	}, cfg.logger)

	return &Client{store: store, search: svc}, nil
}

// Search runs the full pipeline for one query.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (RankedResult, error) {
	return c.search.Search(ctx, buildQuery(query, opts))
}

// Ping checks Redis availability.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the Redis connection.
func (c *Client) Close() {
	c.store.Close()
}

func buildQuery(raw string, opts []SearchOption) domain.Query {
	q := domain.Query{Raw: raw}
	for _, o := range opts {
		o(&q)
	}
	return q
}
