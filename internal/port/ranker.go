package port

import "webrag/internal/domain"

// Ranker orders index entries against a query vector.
type Ranker interface {
	// Rank returns at most topK results in descending score order.
	// With dedupeBySource set, at most one result per source URL is
	// kept. Fewer than topK results is a valid outcome.
	Rank(query []float32, topK int, dedupeBySource bool) ([]domain.SearchResult, error)
}
