package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webrag/internal/adapter/index"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := indexPath(cfg, rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'webrag ingest' first")
	}

	idx, err := index.NewBoltIndex(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer idx.Close()

	fmt.Printf("Index: %s\n", dbPath)
	fmt.Printf("  Vectors:   %d\n", idx.Count())
	fmt.Printf("  Dimension: %d\n", idx.Dimension())
	return nil
}
