// Package retriever adapts the vector store's raw FT.SEARCH results into
// domain candidates. Scope filters are applied server-side as mandatory
// pre-filters; an agency-scoped query can never see another agency's
// protocols regardless of similarity.
package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rescuelink/emsearch/internal/db"
	"github.com/rescuelink/emsearch/internal/domain"
)

// Hash field names of an indexed protocol chunk.
const (
	fieldText     = "__content"
	fieldAgency   = "agency_id"
	fieldState    = "state_code"
	fieldProtocol = "protocol_number"
	fieldTitle    = "title"
	fieldUrgent   = "urgent"
)

// store is the consumer interface for retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the orchestrator's Retriever contract.
type Repo struct {
	store     store
	indexName string
	duration  *prometheus.HistogramVec
}

// New creates a retriever over the named protocol chunk index.
// duration is a histogram vec with label "status", passed explicitly.
func New(s store, indexName string, duration *prometheus.HistogramVec) *Repo {
	return &Repo{
		store:     s,
		indexName: fmt.Sprintf("%s%s:idx", domain.KeyPrefix, indexName),
		duration:  duration,
	}
}

// Retrieve runs a topK nearest-neighbor search under the given scope.
// Remote failures wrap domain.ErrRetrievalFailed.
func (r *Repo) Retrieve(
	ctx context.Context, vector []float32, scope domain.Scope, topK int,
) ([]domain.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:  r.indexName,
		Vector:     vector,
		K:          topK,
		TagFilters: scopeFilters(scope),
		ReturnFields: []string{
			fieldText, fieldAgency, fieldState, fieldProtocol, fieldTitle,
			fieldUrgent, "__vector_score",
		},
	}

	start := time.Now()
	sr, err := r.store.SearchKNN(ctx, q)
	r.observe(time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w: %w", r.indexName, domain.ErrRetrievalFailed, err)
	}

	return parseCandidates(sr), nil
}

// scopeFilters builds the mandatory TAG pre-filter set. An empty scope
// field adds no filter on that axis.
func scopeFilters(scope domain.Scope) map[string]string {
	if scope.IsZero() {
		return nil
	}
	filters := make(map[string]string, 2)
	if scope.AgencyID != "" {
		filters[fieldAgency] = scope.AgencyID
	}
	if scope.StateCode != "" {
		filters[fieldState] = scope.StateCode
	}
	return filters
}

func parseCandidates(sr *db.SearchResult) []domain.Candidate {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		candidates = append(candidates, domain.Candidate{
			ChunkID:        entry.Key,
			Score:          entry.Score,
			AgencyID:       entry.Fields[fieldAgency],
			StateCode:      entry.Fields[fieldState],
			ProtocolNumber: entry.Fields[fieldProtocol],
			Title:          entry.Fields[fieldTitle],
			Text:           entry.Fields[fieldText],
			Urgent:         entry.Fields[fieldUrgent] == "1",
		})
	}
	return candidates
}

func (r *Repo) observe(d time.Duration, err error) {
	if r.duration == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.duration.WithLabelValues(status).Observe(d.Seconds())
}
