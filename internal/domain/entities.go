package domain

import (
	"fmt"
	"time"
)

// Document is a scraped page handed to the pipeline by the scraping
// collaborator. Immutable once created.
type Document struct {
	URL       string
	Category  string
	Name      string
	Text      string
	FetchedAt time.Time
}

// Chunk is a bounded-length segment of one document's normalized text.
// Offsets refer to the normalized text, not the raw scrape.
type Chunk struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Overlapped bool   `json:"overlapped,omitempty"`
	URL        string `json:"url"`
	Category   string `json:"category,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ChunkID builds the deterministic chunk identifier.
func ChunkID(docID string, seq int) string {
	return fmt.Sprintf("%s#%d", docID, seq)
}

// Match is a raw nearest-neighbor hit from the vector index.
type Match struct {
	ID    string
	Score float64
	Chunk Chunk
}

// SearchResult is a ranked hit returned to callers. Ephemeral, produced
// per query.
type SearchResult struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
	Chunk Chunk   `json:"chunk"`
}

// EmbedFailure records one chunk the embedder could not process.
type EmbedFailure struct {
	ChunkID string `json:"chunk_id"`
	Reason  string `json:"reason"`
}

// RunStats aggregates the outcome of one ingest run. A run always
// completes and reports what succeeded, what was skipped, and what
// failed.
type RunStats struct {
	Documents int            `json:"documents"`
	Chunks    int            `json:"chunks"`
	Skipped   int            `json:"skipped"`
	Vectors   int            `json:"vectors"`
	Failures  []EmbedFailure `json:"failures,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
}
