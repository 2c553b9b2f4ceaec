package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/logger"
)

var indexCmd = &cobra.Command{
	Use:   "index [chunks.jsonl]",
	Short: "Build the vector index from a chunk artifact",
	Long: `Reads a line-delimited chunk artifact, embeds every chunk, and
rebuilds the vector collection from scratch. The build is idempotent:
running it twice over the same artifact yields the same index.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if chunkStore == nil {
		return errors.New("chunk store not configured")
	}

	chunks, skipped, err := chunkStore.ReadChunks(args[0])
	if err != nil {
		return fmt.Errorf("read chunk artifact: %w", err)
	}
	if skipped > 0 {
		logger.Warn("Skipped %d invalid lines in %s", skipped, args[0])
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no valid chunks in %s", args[0])
	}

	stored, err := indexService.Index(cmd.Context(), chunks)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d of %d chunks\n", stored, len(chunks))
	return nil
}
