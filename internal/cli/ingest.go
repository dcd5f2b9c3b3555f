package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"webrag/config"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/source"
	"webrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk, embed and index scraped pages",
	Long: `Ingest scraped page files from the given directory: each page is
chunked, embedded and inserted into the vector index. The index is
stored in .webrag/index.db under the root directory.

Examples:
  webrag ingest ./pages         # Ingest a scraped corpus
  webrag ingest .               # Ingest pages under the current directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	if err := config.EnsureDataDir(rootDir); err != nil {
		return fmt.Errorf("failed to create .webrag directory: %w", err)
	}

	loader := source.NewLoader(cfg.Corpus.Includes, cfg.Corpus.Excludes)
	fmt.Printf("Scanning %s...\n", path)
	docs, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No page files found.")
		return nil
	}

	chk, err := chunker.NewWindowChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Chunking.MinChunkLen)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	idx, err := index.NewBoltIndex(indexPath(cfg, rootDir))
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}
	defer idx.Close()

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	pipeline := usecase.NewPipeline(chk, embedder, idx, cfg.Embedding.Workers)
	stats, err := pipeline.Run(cmd.Context(), docs, func(processed, total int, url string) {
		bar.Set(processed)
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Documents:       %d\n", stats.Documents)
	fmt.Printf("  Chunks created:  %d\n", stats.Chunks)
	fmt.Printf("  Chunks skipped:  %d (below minimum length)\n", stats.Skipped)
	fmt.Printf("  Vectors indexed: %d\n", stats.Vectors)
	fmt.Printf("  Elapsed:         %s\n", stats.Elapsed.Round(0))

	if len(stats.Failures) > 0 {
		fmt.Printf("\nFailures (%d):\n", len(stats.Failures))
		for _, f := range stats.Failures {
			fmt.Printf("  - %s: %s\n", f.ChunkID, f.Reason)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", indexPath(cfg, rootDir))
	return nil
}
