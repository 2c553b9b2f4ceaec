package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract [input.json]",
	Short: "Extract retrieval chunks from product records",
	Long: `Reads a JSON array of product records and emits typed retrieval
chunks: core info, windowed description segments, attributes, and model
variants. Records without any detail produce a single name-only chunk;
records without identity are dropped.

The chunks are written as a line-delimited JSON artifact (one chunk per
line) and, when a product store is configured, saved for direct search.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "chunks.jsonl", "chunk artifact path")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractor == nil {
		return errors.New("extractor not configured")
	}
	if chunkStore == nil {
		return errors.New("chunk store not configured")
	}

	records, err := readProductRecords(args[0])
	if err != nil {
		return err
	}

	var chunks []domain.Chunk
	dropped := 0
	for i := range records {
		extracted := extractor.Extract(records[i])
		if extracted == nil {
			dropped++
			continue
		}
		chunks = append(chunks, extracted...)
	}

	logger.Info("Extracted %d chunks from %d records (%d dropped)", len(chunks), len(records), dropped)

	if err := chunkStore.WriteChunks(extractOutput, chunks); err != nil {
		return fmt.Errorf("write chunk artifact: %w", err)
	}

	if productStore != nil {
		ctx := cmd.Context()
		if err := productStore.SaveProducts(ctx, records); err != nil {
			return fmt.Errorf("save products: %w", err)
		}
		if err := productStore.SaveChunks(ctx, chunks); err != nil {
			return fmt.Errorf("save chunks: %w", err)
		}
	}

	cmd.Printf("Extracted %d chunks from %d records to %s\n", len(chunks), len(records), extractOutput)
	if dropped > 0 {
		cmd.Printf("Dropped %d records without identity or detail\n", dropped)
	}
	return nil
}
