package index

import (
	"errors"
	"math"
	"testing"

	"webrag/internal/domain"
)

func chunkFor(id, url string) domain.Chunk {
	return domain.Chunk{ID: id, URL: url, Text: "text for " + id}
}

func TestMemoryIndexInsertAndQuery(t *testing.T) {
	x := NewMemoryIndex()

	if err := x.Insert("a", []float32{1, 0, 0}, chunkFor("a", "https://x.test/1")); err != nil {
		t.Fatal(err)
	}
	if err := x.Insert("b", []float32{0, 1, 0}, chunkFor("b", "https://x.test/2")); err != nil {
		t.Fatal(err)
	}

	if x.Count() != 2 {
		t.Errorf("expected count 2, got %d", x.Count())
	}
	if x.Dimension() != 3 {
		t.Errorf("expected dimension 3, got %d", x.Dimension())
	}

	matches, err := x.Query([]float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].ID != "a" {
		t.Errorf("expected best match 'a', got %q", matches[0].ID)
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("expected score 1.0 for identical vector, got %f", matches[0].Score)
	}
	if matches[0].Chunk.URL != "https://x.test/1" {
		t.Errorf("match lost chunk metadata: %+v", matches[0].Chunk)
	}
}

func TestMemoryIndexDimensionGuard(t *testing.T) {
	x := NewMemoryIndex()

	v768 := make([]float32, 768)
	v768[0] = 1
	if err := x.Insert("a", v768, chunkFor("a", "u")); err != nil {
		t.Fatal(err)
	}

	v384 := make([]float32, 384)
	v384[0] = 1
	err := x.Insert("b", v384, chunkFor("b", "u"))
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	var dimErr *domain.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected *domain.DimensionError, got %T", err)
	}
	if dimErr.Want != 768 || dimErr.Got != 384 {
		t.Errorf("unexpected dimensions in error: %+v", dimErr)
	}

	// Failed insert must not alter the index.
	if x.Count() != 1 {
		t.Errorf("count changed after failed insert: %d", x.Count())
	}
}

func TestMemoryIndexDuplicateID(t *testing.T) {
	x := NewMemoryIndex()

	if err := x.Insert("a", []float32{1, 2}, chunkFor("a", "u")); err != nil {
		t.Fatal(err)
	}

	err := x.Insert("a", []float32{3, 4}, chunkFor("a", "u"))
	var dupErr *domain.DuplicateIDError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected *domain.DuplicateIDError, got %v", err)
	}
	if dupErr.ID != "a" {
		t.Errorf("expected id 'a' in error, got %q", dupErr.ID)
	}
	if x.Count() != 1 {
		t.Errorf("count changed after rejected insert: %d", x.Count())
	}
}

func TestMemoryIndexTieBreakByInsertionOrder(t *testing.T) {
	x := NewMemoryIndex()

	v := []float32{0.3, 0.7, 0.1}
	if err := x.Insert("a", v, chunkFor("a", "u1")); err != nil {
		t.Fatal(err)
	}
	if err := x.Insert("b", v, chunkFor("b", "u2")); err != nil {
		t.Fatal(err)
	}

	matches, err := x.Query(v, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "a" || matches[1].ID != "b" {
		t.Errorf("expected [a b] by insertion order, got [%s %s]", matches[0].ID, matches[1].ID)
	}
	if matches[0].Score != matches[1].Score {
		t.Errorf("identical vectors must score equally: %f vs %f", matches[0].Score, matches[1].Score)
	}
}

func TestMemoryIndexEmptyQuery(t *testing.T) {
	x := NewMemoryIndex()

	matches, err := x.Query([]float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("empty index query must not error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %d matches", len(matches))
	}
}

func TestMemoryIndexKValidation(t *testing.T) {
	x := NewMemoryIndex()

	_, err := x.Query([]float32{1}, 0)
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *domain.ConfigError for k=0, got %v", err)
	}
}

func TestMemoryIndexFewerThanK(t *testing.T) {
	x := NewMemoryIndex()

	if err := x.Insert("a", []float32{1, 0}, chunkFor("a", "u")); err != nil {
		t.Fatal(err)
	}
	if err := x.Insert("b", []float32{0, 1}, chunkFor("b", "u")); err != nil {
		t.Fatal(err)
	}

	matches, err := x.Query([]float32{1, 1}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("expected all 2 entries for k=10, got %d", len(matches))
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 2}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tc.want)
			}
		})
	}
}
