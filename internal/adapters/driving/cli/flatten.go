package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/logger"
)

var flattenOutput string

var flattenCmd = &cobra.Command{
	Use:   "flatten [input.json]",
	Short: "Flatten nested scrape records through the language model",
	Long: `Reads a JSON array of raw scrape records and rewrites each one as a
flat key-value object via the LLM. Records are processed concurrently;
output order always matches input order. A record whose retries are
exhausted yields an empty object at its position.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

func init() {
	flattenCmd.Flags().StringVarP(&flattenOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	if flattenService == nil {
		return errors.New("flatten service not configured")
	}

	records, err := readRawRecords(args[0])
	if err != nil {
		return err
	}

	flat, err := flattenService.Flatten(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("flatten failed: %w", err)
	}

	empty := 0
	for _, r := range flat {
		if len(r) == 0 {
			empty++
		}
	}
	if empty > 0 {
		logger.Warn("%d of %d records failed to flatten", empty, len(flat))
	}

	if err := writeJSON(cmd, flattenOutput, flat); err != nil {
		return err
	}
	if flattenOutput != "" {
		cmd.Printf("Flattened %d records to %s\n", len(flat), flattenOutput)
	}
	return nil
}
