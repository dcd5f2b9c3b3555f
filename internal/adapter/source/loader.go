package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"webrag/internal/domain"
)

// Loader reads scraped page files from a directory tree. Each file is
// a JSON snapshot written by the scraper: url, category, name, text and
// fetch timestamp. Files are matched against include/exclude glob
// patterns and returned in path order so runs are reproducible.
type Loader struct {
	includes []string
	excludes []string
}

type pageFile struct {
	URL       string `json:"url"`
	Category  string `json:"category"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	FetchedAt string `json:"fetched_at"`
}

func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.json"}
	}
	return &Loader{
		includes: includes,
		excludes: excludes,
	}
}

// Load walks root and decodes every matching page file.
func (l *Loader) Load(root string) ([]domain.Document, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if l.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if l.shouldInclude(relPath) && !l.shouldExclude(relPath) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus directory: %w", err)
	}

	sort.Strings(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := readPage(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readPage(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	var page pageFile
	if err := json.Unmarshal(data, &page); err != nil {
		return domain.Document{}, fmt.Errorf("invalid page file: %w", err)
	}
	if page.URL == "" {
		return domain.Document{}, fmt.Errorf("page file missing url")
	}

	var fetchedAt time.Time
	if page.FetchedAt != "" {
		fetchedAt, err = time.Parse(time.RFC3339, page.FetchedAt)
		if err != nil {
			return domain.Document{}, fmt.Errorf("invalid fetched_at: %w", err)
		}
	}

	return domain.Document{
		URL:       page.URL,
		Category:  page.Category,
		Name:      page.Name,
		Text:      page.Text,
		FetchedAt: fetchedAt,
	}, nil
}

func (l *Loader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Loader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}
