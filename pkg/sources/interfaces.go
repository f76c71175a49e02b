package sources

import (
	"context"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/pkg/httpclient"
)

// Fetcher retrieves one batch of articles, sentiment and trending topics for a query page.
// Failures are reported as *FetchError.
type Fetcher interface {
	ID() string
	FetchBatch(ctx context.Context, req domain.BatchRequest) (domain.Batch, error)
}

// Builder creates a Fetcher for a source entry.
type Builder func(src Source, client HTTPClient) (Fetcher, error)

// FetcherRegistry resolves the fetcher implementation for a given source config.
type FetcherRegistry interface {
	FetcherFor(src Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
