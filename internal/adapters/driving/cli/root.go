// Package cli implements the kohi command-line interface.
//
// Commands are thin adapters: they parse flags, decode input files, and
// delegate to the core services wired in through SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/chunker"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driving"
	"github.com/kohi-labs/kohi-cli/internal/logger"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

var (
	normaliser       *normalisers.Normaliser
	extractor        *chunker.Extractor
	indexService     driving.Indexer
	retrieverService driving.Retriever
	answerService    driving.Synthesizer
	flattenService   driving.Flattener
	productStore     driven.ProductStore
	chunkStore       driven.ChunkStore
	scrapeClient     driven.Scraper
	configStore      driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kohi",
	Short: "Coffee product pipeline: scrape, normalise, chunk, index, ask",
	Long: `kohi turns raw coffee product data into an answerable knowledge base.

The pipeline runs in stages: scrape marketplace listings, flatten raw
records through an LLM, normalise supplier sheets into a canonical
schema, extract retrieval chunks, index them into a vector store, and
answer natural-language questions over the result.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Services bundles everything the commands need. Nil entries disable
// the commands that depend on them.
type Services struct {
	Normaliser  *normalisers.Normaliser
	Extractor   *chunker.Extractor
	Indexer     driving.Indexer
	Retriever   driving.Retriever
	Synthesizer driving.Synthesizer
	Flattener   driving.Flattener
	Products    driven.ProductStore
	Chunks      driven.ChunkStore
	Scraper     driven.Scraper
	Config      driven.ConfigStore
}

// SetServices wires service implementations into the command tree.
// Must be called before Execute.
func SetServices(s Services) {
	normaliser = s.Normaliser
	extractor = s.Extractor
	indexService = s.Indexer
	retrieverService = s.Retriever
	answerService = s.Synthesizer
	flattenService = s.Flattener
	productStore = s.Products
	chunkStore = s.Chunks
	scrapeClient = s.Scraper
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
