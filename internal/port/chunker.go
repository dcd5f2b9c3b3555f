package port

import "webrag/internal/domain"

// Chunker splits a document's text into ordered, overlapping segments.
// Implementations must be pure: identical input yields an identical
// chunk sequence.
type Chunker interface {
	// Chunk returns the chunk sequence for doc plus the number of
	// windows dropped for being below the minimum viable length.
	Chunk(doc domain.Document) (chunks []domain.Chunk, skipped int, err error)
}
