package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

var (
	scrapeURL     string
	scrapeKeyword string
	scrapeCountry string
	scrapeOutput  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape marketplace listings through the scraping service",
	Long: `Submits a scrape job for a listing URL or a search keyword and
waits for the result. Inline responses return immediately; queued jobs
are polled until completion. The raw records are written as JSON,
ready for the flatten and extract stages.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeURL, "url", "u", "", "listing URL to scrape")
	scrapeCmd.Flags().StringVarP(&scrapeKeyword, "keyword", "q", "", "search keyword to scrape")
	scrapeCmd.Flags().StringVar(&scrapeCountry, "country", "TW", "marketplace region")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if scrapeClient == nil {
		return errors.New("scraper not configured")
	}
	if scrapeURL == "" && scrapeKeyword == "" {
		return errors.New("either --url or --keyword is required")
	}

	ctx := cmd.Context()
	jobID, records, err := scrapeClient.Submit(ctx, driven.ScrapeRequest{
		URL:     scrapeURL,
		Keyword: scrapeKeyword,
		Country: scrapeCountry,
	})
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if jobID != "" {
		logger.Info("Job %s queued, polling for result", jobID)
		records, err = scrapeClient.Poll(ctx, jobID)
		if err != nil {
			return fmt.Errorf("scrape failed: %w", err)
		}
	}

	out := make([]map[string]any, 0, len(records))
	for i := range records {
		out = append(out, records[i].Fields)
	}

	if err := writeJSON(cmd, scrapeOutput, out); err != nil {
		return err
	}
	if scrapeOutput != "" {
		cmd.Printf("Scraped %d records to %s\n", len(records), scrapeOutput)
	}
	return nil
}
