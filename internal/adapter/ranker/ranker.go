package ranker

import (
	"webrag/internal/domain"
	"webrag/internal/port"
)

// DiversityRanker orders index matches for a query vector and can cap
// results to one chunk per source document, so a single page cannot
// crowd out the rest of the corpus.
type DiversityRanker struct {
	index      port.VectorIndex
	multiplier int
}

// NewDiversityRanker wraps a vector index. multiplier inflates the
// candidate count fetched from the index when deduplication is on;
// values below 2 fall back to 3.
func NewDiversityRanker(index port.VectorIndex, multiplier int) *DiversityRanker {
	if multiplier < 2 {
		multiplier = 3
	}
	return &DiversityRanker{
		index:      index,
		multiplier: multiplier,
	}
}

// Rank returns at most topK results in descending score order. Scores
// come from the index verbatim; callers apply their own thresholds.
// Fewer than topK results is a valid outcome when candidates run out.
func (r *DiversityRanker) Rank(query []float32, topK int, dedupeBySource bool) ([]domain.SearchResult, error) {
	if topK < 1 {
		return nil, &domain.ConfigError{Param: "top_k", Reason: "must be at least 1"}
	}

	candidates := topK
	if dedupeBySource {
		candidates = topK * r.multiplier
	}

	matches, err := r.index.Query(query, candidates)
	if err != nil {
		return nil, err
	}

	if dedupeBySource {
		kept := dedupe(matches, topK)
		// The inflated window can be monopolized by one prolific
		// source. If richer candidates remain unscanned, widen to the
		// whole index before settling for fewer results.
		if len(kept) < topK && len(matches) < r.index.Count() {
			matches, err = r.index.Query(query, r.index.Count())
			if err != nil {
				return nil, err
			}
			kept = dedupe(matches, topK)
		}
		matches = kept
	} else if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = domain.SearchResult{
			Rank:  i + 1,
			Score: m.Score,
			Chunk: m.Chunk,
		}
	}
	return results, nil
}

// dedupe keeps the best-scoring match per source URL, preserving score
// order, until topK distinct sources are collected or candidates are
// exhausted.
func dedupe(matches []domain.Match, topK int) []domain.Match {
	seen := make(map[string]struct{}, topK)
	kept := make([]domain.Match, 0, topK)

	for _, m := range matches {
		if _, dup := seen[m.Chunk.URL]; dup {
			continue
		}
		seen[m.Chunk.URL] = struct{}{}
		kept = append(kept, m)
		if len(kept) == topK {
			break
		}
	}
	return kept
}
