package port

import "webrag/internal/domain"

// DocumentSource supplies scraped documents to the pipeline.
type DocumentSource interface {
	Load(root string) ([]domain.Document, error)
}
