package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/services"
)

var (
	queryTopK         int
	querySemanticOnly bool
	queryRetrieveOnly bool
	queryJSON         bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question over the indexed products",
	Long: `Runs hybrid retrieval (semantic vector search merged with direct
substring search, deduplicated by product name) and synthesises a
natural-language answer from the retrieved fragments.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", services.DefaultTopK, "maximum semantic results")
	queryCmd.Flags().BoolVar(&querySemanticOnly, "semantic-only", false, "skip the direct substring search")
	queryCmd.Flags().BoolVar(&queryRetrieveOnly, "retrieve-only", false, "print retrieved chunks without synthesising an answer")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output retrieved chunks as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever not configured")
	}

	topK := queryTopK
	// The flag wins; otherwise a configured retrieval.top_k applies.
	if !cmd.Flags().Changed("top-k") && configStore != nil {
		if k := configStore.GetInt("retrieval.top_k"); k > 0 {
			topK = k
		}
	}

	opts := domain.QueryOptions{
		TopK:         topK,
		SemanticOnly: querySemanticOnly,
	}

	retrieved, err := retrieverService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryRetrieveOnly {
		if queryJSON {
			return outputChunksJSON(cmd, retrieved)
		}
		return outputChunksText(cmd, retrieved)
	}

	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Synthesize(cmd.Context(), args[0], retrieved)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}

func outputChunksJSON(cmd *cobra.Command, retrieved []domain.RetrievedChunk) error {
	data, err := json.MarshalIndent(retrieved, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunksText(cmd *cobra.Command, retrieved []domain.RetrievedChunk) error {
	if len(retrieved) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range retrieved {
		label := "direct"
		if r.Source == domain.RetrievalSemantic {
			label = fmt.Sprintf("semantic %.3f", r.Score)
		}
		cmd.Printf("  [%d] (%s) %s\n", i+1, label, r.Chunk.ChunkID)
		cmd.Printf("      %s\n", r.Chunk.Content)
		cmd.Println()
	}
	return nil
}
