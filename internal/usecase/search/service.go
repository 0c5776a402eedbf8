// Package search orchestrates the protocol lookup pipeline:
// normalize → result cache → embed → concurrent retrieval → fuse → cache.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rescuelink/emsearch/internal/domain"
	"github.com/rescuelink/emsearch/internal/metrics"
	"github.com/rescuelink/emsearch/internal/normalize"
)

// Options are the pipeline tunables, resolved from config at startup.
type Options struct {
	TopK             int           // candidates per sub-query
	ResultLimit      int           // final ranked list size
	RetrievalTimeout time.Duration // per retrieval attempt
}

// Service is the search orchestrator. It owns no state beyond its
// collaborators; every request is independent.
type Service struct {
	embed  domain.Embedder
	retr   Retriever
	cache  ResultCache
	opts   Options
	logger *zap.Logger
}

// New creates a search orchestrator.
func New(embed domain.Embedder, retr Retriever, cache ResultCache, opts Options, logger *zap.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 10
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = 5 * time.Second
	}
	return &Service{embed: embed, retr: retr, cache: cache, opts: opts, logger: logger}
}

// Search runs the full pipeline for one query.
//
// An input that normalizes to nothing returns an empty result flagged
// NoQuery — a user mistake, not a system fault. Real failures surface as
// exactly one of the domain sentinels (ErrProviderUnavailable,
// ErrRetrievalFailed, ErrTimeout); a partial result is never returned
// silently, and a failed request never populates the cache.
func (s *Service) Search(ctx context.Context, q domain.Query) (domain.RankedResult, error) {
	start := time.Now()

	nq := normalize.Normalize(q.Raw)
	if len(nq.SubQueries) == 0 {
		s.observe("empty", start)
		return domain.RankedResult{NoQuery: true}, nil
	}

	if cached, ok := s.cache.Get(ctx, nq.Canonical, q.Scope); ok {
		s.observe("hit", start)
		return cached, nil
	}

	perSub, err := s.retrieveAll(ctx, nq.SubQueries, q.Scope)
	if err != nil {
		s.observe("error", start)
		return domain.RankedResult{}, s.classify(ctx, err)
	}

	result := fuse(perSub, nq.Intent, nq.Urgent, q.Scope, s.opts.ResultLimit)
	s.cache.Put(ctx, nq.Canonical, q.Scope, result)

	s.logger.Debug("Search completed",
		zap.String("canonical", nq.Canonical),
		zap.Int("sub_queries", len(nq.SubQueries)),
		zap.String("intent", string(nq.Intent)),
		zap.Bool("urgent", nq.Urgent),
		zap.Bool("voice", q.VoiceOrigin),
		zap.Int("results", len(result.Items)),
	)
	s.observe("miss", start)
	return result, nil
}

// retrieveAll embeds each sub-query and runs its retrieval, all
// concurrently. The first failure cancels the sibling calls and fails the
// whole request: fusing a partial candidate set would silently bias the
// ranking.
func (s *Service) retrieveAll(
	ctx context.Context, subQueries []string, scope domain.Scope,
) ([][]domain.Candidate, error) {
	metrics.SearchFanout.Observe(float64(len(subQueries)))

	perSub := make([][]domain.Candidate, len(subQueries))

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subQueries {
		i, sub := i, sub
		g.Go(func() error {
			emb, err := s.embed.Embed(gctx, sub)
			if err != nil {
				return fmt.Errorf("embed sub-query %d: %w", i, err)
			}

			candidates, err := s.retrieveWithRetry(gctx, emb.Embedding, scope)
			if err != nil {
				return fmt.Errorf("retrieve sub-query %d: %w", i, err)
			}

			perSub[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return perSub, nil
}

// retrieveWithRetry runs one retrieval under its own deadline, retrying a
// single time. The vector store gets exactly one second chance; beyond that
// the failure is reported, not hammered.
func (s *Service) retrieveWithRetry(
	ctx context.Context, vector []float32, scope domain.Scope,
) ([]domain.Candidate, error) {
	candidates, err := s.retrieveOnce(ctx, vector, scope)
	if err == nil || ctx.Err() != nil {
		return candidates, err
	}

	s.logger.Warn("Retrieval failed, retrying once", zap.Error(err))
	return s.retrieveOnce(ctx, vector, scope)
}

func (s *Service) retrieveOnce(
	ctx context.Context, vector []float32, scope domain.Scope,
) ([]domain.Candidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.RetrievalTimeout)
	defer cancel()
	return s.retr.Retrieve(callCtx, vector, scope, s.opts.TopK)
}

// classify shapes a pipeline failure for the caller. A blown caller
// deadline always surfaces as ErrTimeout, no matter which call it killed;
// callers may retry a timeout but should back off a down provider.
func (s *Service) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, ctx.Err())
	}
	return err
}

func (s *Service) observe(outcome string, start time.Time) {
	metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
