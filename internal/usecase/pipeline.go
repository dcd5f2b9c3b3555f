package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"webrag/internal/domain"
	"webrag/internal/port"
)

// ProgressFunc reports ingest progress per document.
type ProgressFunc func(processed, total int, url string)

// Pipeline drives the ingest flow: chunk each document, embed each
// chunk, insert into the vector index. A failing chunk is recorded and
// the run continues; only configuration errors abort a run, and only
// before any work starts.
type Pipeline struct {
	chunker  port.Chunker
	embedder port.Embedder
	index    port.VectorIndex
	workers  int

	mu   sync.Mutex
	last *domain.RunStats
}

// NewPipeline wires the ingest components. workers bounds how many
// embedding calls are in flight at once.
func NewPipeline(chunker port.Chunker, embedder port.Embedder, index port.VectorIndex, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		workers:  workers,
	}
}

// Run ingests the documents and returns aggregate statistics. The run
// always completes and reports what succeeded, what was skipped, and
// what failed — unless ctx is cancelled, in which case the statistics
// accumulated so far are returned alongside the context error.
// Cancellation is checked between chunks, never mid-chunk.
func (p *Pipeline) Run(ctx context.Context, docs []domain.Document, progress ProgressFunc) (*domain.RunStats, error) {
	start := time.Now()
	stats := &domain.RunStats{}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return p.finish(stats, start), err
		}

		chunks, skipped, err := p.chunker.Chunk(doc)
		if err != nil {
			return p.finish(stats, start), err
		}

		stats.Documents++
		stats.Chunks += len(chunks)
		stats.Skipped += skipped

		if err := p.ingestChunks(ctx, chunks, stats); err != nil {
			return p.finish(stats, start), err
		}

		if progress != nil {
			progress(i+1, len(docs), doc.URL)
		}
	}

	return p.finish(stats, start), nil
}

// ingestChunks embeds the chunks with bounded concurrency, then inserts
// the vectors in chunk order so insertion order stays deterministic.
func (p *Pipeline) ingestChunks(ctx context.Context, chunks []domain.Chunk, stats *domain.RunStats) error {
	type embedResult struct {
		vector []float32
		err    error
	}

	results := make([]embedResult, len(chunks))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	cancelled := false
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			vector, err := p.embedder.Embed(ctx, text)
			results[i] = embedResult{vector: vector, err: err}
		}(i, chunk.Text)
	}
	wg.Wait()

	if cancelled {
		return ctx.Err()
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if results[i].err != nil {
			stats.Failures = append(stats.Failures, domain.EmbedFailure{
				ChunkID: chunk.ID,
				Reason:  fmt.Sprintf("embed: %v", results[i].err),
			})
			continue
		}

		if err := p.index.Insert(chunk.ID, results[i].vector, chunk); err != nil {
			stats.Failures = append(stats.Failures, domain.EmbedFailure{
				ChunkID: chunk.ID,
				Reason:  fmt.Sprintf("insert: %v", err),
			})
			continue
		}
		stats.Vectors++
	}

	return nil
}

func (p *Pipeline) finish(stats *domain.RunStats, start time.Time) *domain.RunStats {
	stats.Elapsed = time.Since(start)

	p.mu.Lock()
	p.last = stats
	p.mu.Unlock()

	return stats
}

// Stats returns the statistics of the most recent run, or nil if no run
// has completed yet.
func (p *Pipeline) Stats() *domain.RunStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
