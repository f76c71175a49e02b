// Package sourceobs decorates a sources.Fetcher with tracing and structured logs.
package sourceobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
	"github.com/samvad-hq/samvad-market-pulse/internal/trace"
	"github.com/samvad-hq/samvad-market-pulse/pkg/sources"
)

type observableFetcher struct {
	next sources.Fetcher
	log  logger.Logger
}

var _ sources.Fetcher = (*observableFetcher)(nil)

// Wrap returns a Fetcher that records a span and a log line per batch.
func Wrap(next sources.Fetcher, log logger.Logger) sources.Fetcher {
	return &observableFetcher{next: next, log: logger.Ensure(log)}
}

func (o *observableFetcher) ID() string { return o.next.ID() }

func (o *observableFetcher) FetchBatch(ctx context.Context, req domain.BatchRequest) (domain.Batch, error) {
	ctx, span := trace.StartSpan(ctx, "sources.FetchBatch")
	defer span.End()

	span.SetAttributes(
		attribute.String("source.id", o.next.ID()),
		attribute.String("query.window", string(req.Query.Window)),
		attribute.Bool("query.has_search", req.Query.SearchText != ""),
		attribute.Int("page", req.Page),
	)

	start := time.Now()
	batch, err := o.next.FetchBatch(ctx, req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		kind := sources.Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		o.log.WarnObj("source batch failed", "source_error", map[string]any{
			"source_id":  o.next.ID(),
			"page":       req.Page,
			"kind":       kind.String(),
			"elapsed_ms": elapsed,
			"error":      err.Error(),
		})
		return batch, err
	}

	span.SetAttributes(attribute.Int("batch.size", len(batch.Articles)))
	o.log.DebugObj("source batch fetched", "source_batch", map[string]any{
		"source_id":  o.next.ID(),
		"page":       req.Page,
		"articles":   len(batch.Articles),
		"trending":   len(batch.Trending),
		"elapsed_ms": elapsed,
	})
	return batch, nil
}
