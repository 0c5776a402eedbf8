package emsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/rescuelink/emsearch/internal/domain"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	apiKey            string
	baseURL           string
	model             string
	dimensions        int
	embedTimeout      time.Duration
	embedCacheEntries int
	embedder          domain.Embedder

	indexName        string
	topK             int
	resultLimit      int
	resultCacheTTL   time.Duration
	retrievalTimeout time.Duration

	logger *zap.Logger
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		model:             "text-embedding-3-small",
		dimensions:        1536,
		embedTimeout:      5 * time.Second,
		embedCacheEntries: 2048,
		indexName:         "protocol_chunks",
		topK:              20,
		resultLimit:       10,
		resultCacheTTL:    5 * time.Minute,
		retrievalTimeout:  5 * time.Second,
		logger:            zap.NewNop(),
	}
}

// WithRedis sets the Redis addresses.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the Redis password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithOpenAI sets the embedding provider credentials.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
	}
}

// WithBaseURL points the embedding client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithModel sets the embedding model and its vector dimensions.
func WithModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.model = model
		c.dimensions = dimensions
	}
}

// WithEmbedder replaces the OpenAI embedder entirely. The caller owns
// caching for a custom embedder.
func WithEmbedder(e domain.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithIndexName sets the protocol chunk index name.
func WithIndexName(name string) Option {
	return func(c *clientConfig) {
		c.indexName = name
	}
}

// WithTopK sets how many candidates each sub-query fetches.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.topK = k
	}
}

// WithResultLimit caps the final ranked list.
func WithResultLimit(n int) Option {
	return func(c *clientConfig) {
		c.resultLimit = n
	}
}

// WithResultCacheTTL sets how long ranked results stay cached.
func WithResultCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.resultCacheTTL = ttl
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// SearchOption configures one Search call.
type SearchOption func(*domain.Query)

// InAgency restricts results to one agency's protocol set.
func InAgency(agencyID string) SearchOption {
	return func(q *domain.Query) {
		q.Scope.AgencyID = agencyID
	}
}

// InState restricts results to one state's protocol sets.
func InState(stateCode string) SearchOption {
	return func(q *domain.Query) {
		q.Scope.StateCode = stateCode
	}
}

// FromVoice marks the query as voice-transcribed.
func FromVoice() SearchOption {
	return func(q *domain.Query) {
		q.VoiceOrigin = true
	}
}
