package index

import (
	"math"
	"sort"
	"sync"

	"webrag/internal/domain"
)

type entry struct {
	id     string
	vector []float32
	chunk  domain.Chunk
}

// MemoryIndex is an in-memory vector index using exact brute-force
// cosine search. Entries are append-only and kept in insertion order,
// which is the tie-break order for equal scores. Inserts are
// serialized; queries may run concurrently with each other.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []entry
	ids     map[string]struct{}
	dim     int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		ids: make(map[string]struct{}),
	}
}

// Insert appends one (id, vector, chunk) entry. The first successful
// insert establishes the index dimensionality.
func (x *MemoryIndex) Insert(id string, vector []float32, chunk domain.Chunk) error {
	if len(vector) == 0 {
		return &domain.ConfigError{Param: "vector", Reason: "must not be empty"}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.ids[id]; exists {
		return &domain.DuplicateIDError{ID: id}
	}
	if len(x.entries) > 0 && len(vector) != x.dim {
		return &domain.DimensionError{Want: x.dim, Got: len(vector)}
	}

	// The index owns its copy of the vector.
	v := make([]float32, len(vector))
	copy(v, vector)

	x.entries = append(x.entries, entry{id: id, vector: v, chunk: chunk})
	x.ids[id] = struct{}{}
	x.dim = len(vector)
	return nil
}

// Query returns up to k entries by descending cosine similarity.
// Equal scores resolve to the earlier-inserted entry. An empty index
// returns an empty result.
func (x *MemoryIndex) Query(vector []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, &domain.ConfigError{Param: "k", Reason: "must be at least 1"}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(vector) != x.dim {
		return nil, &domain.DimensionError{Want: x.dim, Got: len(vector)}
	}

	return topK(x.entries, vector, k), nil
}

func (x *MemoryIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *MemoryIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.entries) == 0 {
		return 0
	}
	return x.dim
}

// topK scores every entry against the query and keeps the k best.
// entries must be in insertion order; the stable sort preserves that
// order for ties.
func topK(entries []entry, query []float32, k int) []domain.Match {
	matches := make([]domain.Match, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, domain.Match{
			ID:    e.id,
			Score: cosineSimilarity(query, e.vector),
			Chunk: e.chunk,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

// cosineSimilarity calculates the cosine similarity between two
// vectors. Zero-magnitude vectors score 0 rather than dividing by zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
