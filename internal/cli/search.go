package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webrag/internal/adapter/index"
	"webrag/internal/adapter/ranker"
	"webrag/internal/usecase"
)

var (
	searchQuery    string
	searchTopK     int
	searchJSON     bool
	searchNoDedupe bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed content",
	Long: `Search the vector index for chunks semantically close to the query.
Results are deduplicated by source page unless --no-dedupe is given.

Examples:
  webrag search -q "how do refunds work"
  webrag search -q "pricing tiers" --top-k 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().BoolVar(&searchNoDedupe, "no-dedupe", false, "allow multiple results from the same page")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	dbPath := indexPath(cfg, rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'webrag ingest' first")
	}

	idx, err := index.NewBoltIndex(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	rk := ranker.NewDiversityRanker(idx, cfg.Retrieve.CandidateMultiplier)
	searchUC := usecase.NewSearch(embedder, idx, rk, cfg.Retrieve.MinScoreThreshold)

	topK := cfg.Retrieve.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}
	dedupe := cfg.Retrieve.DedupeBySource && !searchNoDedupe

	results, err := searchUC.Search(cmd.Context(), searchQuery, topK, dedupe)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for _, r := range results {
		name := r.Chunk.Name
		if name == "" {
			name = r.Chunk.URL
		}
		fmt.Printf("--- [%d] %s (score: %.3f) ---\n", r.Rank, name, r.Score)
		fmt.Printf("    %s#%d\n", r.Chunk.URL, r.Chunk.Seq)
		text := r.Chunk.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
