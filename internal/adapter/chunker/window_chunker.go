package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"webrag/internal/domain"
)

// WindowChunker splits normalized document text into fixed-size
// overlapping windows. Chunking is a pure function of (document,
// chunkSize, overlap): no randomness, no external state.
type WindowChunker struct {
	chunkSize int
	overlap   int
	minLen    int
}

// NewWindowChunker validates the segmentation parameters once, at
// construction. overlap must be smaller than chunkSize or the window
// would never advance.
func NewWindowChunker(chunkSize, overlap, minLen int) (*WindowChunker, error) {
	if chunkSize <= 0 {
		return nil, &domain.ConfigError{Param: "chunk_size", Reason: "must be positive"}
	}
	if overlap < 0 {
		return nil, &domain.ConfigError{Param: "chunk_overlap", Reason: "must not be negative"}
	}
	if overlap >= chunkSize {
		return nil, &domain.ConfigError{Param: "chunk_overlap", Reason: "must be smaller than chunk_size"}
	}
	if minLen < 0 {
		minLen = 0
	}
	return &WindowChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		minLen:    minLen,
	}, nil
}

// Chunk segments doc into windows of chunkSize runes advancing by
// chunkSize-overlap. The final partial window is kept even when shorter
// than chunkSize; windows below the minimum viable length are dropped
// and counted as skipped. Offsets refer to the normalized text.
func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, int, error) {
	text := []rune(Normalize(doc.Text))
	if len(text) == 0 {
		return nil, 0, nil
	}

	docID := generateDocID(doc.URL)
	stride := c.chunkSize - c.overlap

	var chunks []domain.Chunk
	skipped := 0
	seq := 0

	for start := 0; start < len(text); start += stride {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		window := string(text[start:end])
		if !viable(window, c.minLen) {
			skipped++
			if end == len(text) {
				break
			}
			continue
		}

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(docID, seq),
			DocID:      docID,
			Seq:        seq,
			Text:       window,
			Start:      start,
			End:        end,
			Overlapped: c.overlap > 0 && start > 0,
			URL:        doc.URL,
			Category:   doc.Category,
			Name:       doc.Name,
		})
		seq++

		if end == len(text) {
			break
		}
	}

	return chunks, skipped, nil
}

// Normalize collapses whitespace runs to single spaces and strips
// control characters. Pure and deterministic; chunk offsets are
// relative to its output.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// dropped
		default:
			if space && b.Len() > 0 {
				b.WriteRune(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// viable reports whether a window carries enough non-whitespace content
// to be worth indexing.
func viable(window string, minLen int) bool {
	n := 0
	for _, r := range window {
		if !unicode.IsSpace(r) {
			n++
			if n >= minLen {
				return true
			}
		}
	}
	return minLen <= 0
}

func generateDocID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:8])
}
