// Package db defines the storage contracts the service consumes. The search
// core only ever sees these interfaces; the concrete backend (Redis-protocol
// store with vector search) lives in the redis subpackage.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces, not on Store.
type Store interface {
	Pinger
	KVStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations with optional expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// KNNQuery describes a vector similarity search against an FT index.
// TagFilters are mandatory pre-filters: a result may only come from
// documents whose TAG fields match every entry.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	TagFilters   map[string]string
	ReturnFields []string
}

// SearchEntry is one raw hit from the store.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the raw response of a search call.
type SearchResult struct {
	Total   int64
	Entries []SearchEntry
}

// Searcher provides vector search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
