package search

import (
	"context"

	"github.com/rescuelink/emsearch/internal/domain"
)

// Retriever is the vector store boundary: topK nearest protocol chunks for
// a query vector, scope-filtered server-side.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, scope domain.Scope, topK int) ([]domain.Candidate, error)
}

// ResultCache is the shared ranked-result cache. Both methods are
// best-effort: Get reports a miss on any store trouble and Put never
// surfaces an error.
type ResultCache interface {
	Get(ctx context.Context, canonical string, scope domain.Scope) (domain.RankedResult, bool)
	Put(ctx context.Context, canonical string, scope domain.Scope, result domain.RankedResult)
}
