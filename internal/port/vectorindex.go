package port

import "webrag/internal/domain"

// VectorIndex stores (id, vector, chunk) entries and answers k-nearest
// queries by cosine similarity. Entries are append-only; ids are
// unique; dimensionality is fixed by the first successful insert.
type VectorIndex interface {
	// Insert adds one entry. It fails with domain.DuplicateIDError if
	// the id is already present and domain.DimensionError if the vector
	// does not match the established dimensionality.
	Insert(id string, vector []float32, chunk domain.Chunk) error

	// Query returns up to k entries with the highest cosine similarity
	// to the query vector, ties broken by insertion order. An empty
	// index yields an empty result, not an error.
	Query(vector []float32, k int) ([]domain.Match, error)

	// Count returns the number of stored entries.
	Count() int

	// Dimension returns the established dimensionality, or 0 if no
	// entry has been inserted yet.
	Dimension() int
}
