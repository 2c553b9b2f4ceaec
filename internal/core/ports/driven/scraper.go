package driven

import (
	"context"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// Scraper submits scrape jobs to an external scraping service and polls
// for their results. The service is an opaque boundary: submit returns a
// job handle, and results are retrieved by polling until populated.
type Scraper interface {
	// Submit sends a scrape request. When the service answers inline the
	// returned job id is "" and items holds the payload; otherwise items
	// is nil and the job must be polled.
	Submit(ctx context.Context, req ScrapeRequest) (jobID string, items []domain.ProductRecord, err error)

	// Poll blocks until the job completes, the context is cancelled, or
	// the service reports a failure.
	Poll(ctx context.Context, jobID string) ([]domain.ProductRecord, error)

	// Close releases resources.
	Close() error
}

// ScrapeRequest describes one scrape target.
type ScrapeRequest struct {
	// URL is the listing or search page to scrape.
	URL string

	// Keyword is the search keyword, for keyword-driven actors.
	Keyword string

	// Country is the proxy/geo hint (e.g. "TW").
	Country string
}
