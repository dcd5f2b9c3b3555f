package chunker

import (
	"errors"
	"strings"
	"testing"

	"webrag/internal/domain"
)

func testDoc(text string) domain.Document {
	return domain.Document{
		URL:      "https://example.com/page",
		Category: "docs",
		Name:     "Example Page",
		Text:     text,
	}
}

func TestWindowChunkerCoverage(t *testing.T) {
	c, err := NewWindowChunker(10, 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("abcde", 9) // 45 runes, no whitespace
	chunks, skipped, err := c.Chunk(testDoc(text))
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	if chunks[0].Start != 0 {
		t.Errorf("first chunk must start at 0, got %d", chunks[0].Start)
	}
	if chunks[len(chunks)-1].End != len(text) {
		t.Errorf("last chunk must end at %d, got %d", len(text), chunks[len(chunks)-1].End)
	}

	stride := 10 - 3
	for i := 0; i < len(chunks)-1; i++ {
		if chunks[i+1].Start != chunks[i].Start+stride {
			t.Errorf("chunk %d starts at %d, want %d", i+1, chunks[i+1].Start, chunks[i].Start+stride)
		}
		if chunks[i].End != chunks[i].Start+10 {
			t.Errorf("chunk %d has width %d, want 10", i, chunks[i].End-chunks[i].Start)
		}
		// No gap between consecutive windows.
		if chunks[i+1].Start > chunks[i].End {
			t.Errorf("gap between chunk %d (ends %d) and chunk %d (starts %d)",
				i, chunks[i].End, i+1, chunks[i+1].Start)
		}
	}
}

func TestWindowChunkerFinalPartialKept(t *testing.T) {
	c, err := NewWindowChunker(10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("x", 25)
	chunks, _, err := c.Chunk(testDoc(text))
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	last := chunks[2]
	if last.End-last.Start != 5 {
		t.Errorf("expected final partial chunk of width 5, got %d", last.End-last.Start)
	}
}

func TestWindowChunkerDeterminism(t *testing.T) {
	c, err := NewWindowChunker(8, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc("The quick brown fox jumps over the lazy dog, twice at least.")

	first, skippedA, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	second, skippedB, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}

	if skippedA != skippedB {
		t.Errorf("skipped counts differ: %d vs %d", skippedA, skippedB)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestWindowChunkerIDsAndProvenance(t *testing.T) {
	c, err := NewWindowChunker(10, 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc(strings.Repeat("y", 30))
	chunks, _, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for i, ch := range chunks {
		if ch.Seq != i {
			t.Errorf("chunk %d has seq %d", i, ch.Seq)
		}
		if ch.ID != domain.ChunkID(ch.DocID, ch.Seq) {
			t.Errorf("chunk id %q does not match docID#seq", ch.ID)
		}
		if seen[ch.ID] {
			t.Errorf("duplicate chunk id %q", ch.ID)
		}
		seen[ch.ID] = true
		if ch.URL != doc.URL || ch.Category != doc.Category || ch.Name != doc.Name {
			t.Errorf("chunk %d lost source metadata: %+v", i, ch)
		}
	}

	if chunks[0].Overlapped {
		t.Error("first chunk must not be flagged as overlapped")
	}
	for _, ch := range chunks[1:] {
		if !ch.Overlapped {
			t.Errorf("chunk %d should be flagged as overlapped", ch.Seq)
		}
	}
}

func TestWindowChunkerSkipsBelowMinimum(t *testing.T) {
	c, err := NewWindowChunker(10, 0, 3)
	if err != nil {
		t.Fatal(err)
	}

	// 10 solid runes then a 2-rune tail below the minimum.
	chunks, skipped, err := c.Chunk(testDoc("abcdefghijkl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped window, got %d", skipped)
	}
}

func TestWindowChunkerEmptyDocument(t *testing.T) {
	c, err := NewWindowChunker(10, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	chunks, skipped, err := c.Chunk(testDoc("  \t\n  "))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 || skipped != 0 {
		t.Errorf("expected nothing from whitespace-only document, got %d chunks, %d skipped", len(chunks), skipped)
	}
}

func TestWindowChunkerConfigErrors(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -5, 0},
		{"negative overlap", 10, -1},
		{"overlap equals chunk size", 10, 10},
		{"overlap exceeds chunk size", 150, 201},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWindowChunker(tc.chunkSize, tc.overlap, 0)
			if err == nil {
				t.Fatal("expected configuration error")
			}
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *domain.ConfigError, got %T", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello   world", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"  padded  ", "padded"},
		{"ctrl\x00\x07chars", "ctrlchars"},
		{"tabs\tand\r\nnewlines", "tabs and newlines"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
