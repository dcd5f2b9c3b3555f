package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webrag/config"
	"webrag/internal/adapter/embedding"
	"webrag/internal/port"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "webrag",
	Short: "webrag - semantic search over scraped web content",
	Long: `webrag indexes scraped web pages as embedding vectors and answers
natural-language queries by cosine similarity over the indexed chunks.

Example usage:
  webrag ingest ./pages            # Chunk, embed and index scraped pages
  webrag search -q "refund policy" # Find the most relevant chunks
  webrag stats                     # Show index statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return cfg.Validate()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./webrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "jina":
		return embedding.NewJinaEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// indexPath resolves the vector index location: explicit config path
// wins, otherwise the .webrag directory under the root.
func indexPath(cfg *config.Config, rootDir string) string {
	if cfg.Index.Path != "" {
		return cfg.Index.Path
	}
	return config.IndexDBPath(rootDir)
}
