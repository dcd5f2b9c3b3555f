package usecase

import (
	"context"
	"fmt"
	"time"

	"webrag/internal/adapter/cache"
	"webrag/internal/domain"
	"webrag/internal/port"
)

// Search answers natural-language queries against the vector index.
type Search struct {
	embedder port.Embedder
	index    port.VectorIndex
	ranker   port.Ranker
	cache    *cache.QueryCache
	minScore float64
}

// NewSearch wires the query flow. minScore filters results below the
// threshold after ranking; 0 disables the filter.
func NewSearch(embedder port.Embedder, index port.VectorIndex, ranker port.Ranker, minScore float64) *Search {
	return &Search{
		embedder: embedder,
		index:    index,
		ranker:   ranker,
		cache:    cache.NewQueryCache(100, 5*time.Minute),
		minScore: minScore,
	}
}

// Search embeds the query text and returns up to topK ranked results.
// Fewer than topK results is a valid outcome.
func (s *Search) Search(ctx context.Context, query string, topK int, dedupeBySource bool) ([]domain.SearchResult, error) {
	if topK < 1 {
		return nil, &domain.ConfigError{Param: "top_k", Reason: "must be at least 1"}
	}

	// The index is append-only, so its count doubles as a generation
	// number for cache freshness.
	gen := s.index.Count()
	if results, hit := s.cache.Get(query, topK, dedupeBySource, gen); hit {
		return results, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.ranker.Rank(vector, topK, dedupeBySource)
	if err != nil {
		return nil, err
	}

	if s.minScore > 0 {
		results = filterByScore(results, s.minScore)
	}

	s.cache.Put(query, topK, dedupeBySource, gen, results)
	return results, nil
}

// filterByScore drops results below the threshold and renumbers ranks.
// Scores themselves stay verbatim.
func filterByScore(results []domain.SearchResult, minScore float64) []domain.SearchResult {
	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= minScore {
			r.Rank = len(filtered) + 1
			filtered = append(filtered, r)
		}
	}
	return filtered
}
