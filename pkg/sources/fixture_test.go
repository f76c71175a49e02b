package sources

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

func fixtureDataset(n int, anchor time.Time) Dataset {
	ds := Dataset{
		Sentiment: domain.SentimentSummary{Positive: 20, Neutral: 30, Negative: 50},
		Trending:  []domain.TrendingTopic{{Name: "Rates", Sentiment: domain.SentimentNegative}},
	}
	for i := 0; i < n; i++ {
		ds.Articles = append(ds.Articles, domain.Article{
			ID:          fmt.Sprintf("a%02d", i),
			Title:       fmt.Sprintf("Headline %d", i),
			PublishedAt: anchor.Add(-time.Duration(i) * time.Hour),
		})
	}
	return ds
}

func TestFixtureFetcherPagesLocally(t *testing.T) {
	anchor := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	f := newFixtureFetcherWithClock("fx", fixtureDataset(14, anchor), func() time.Time { return anchor })

	q := domain.Query{Window: domain.Window24h}
	first, err := f.FetchBatch(context.Background(), domain.BatchRequest{Query: q, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("FetchBatch page 1: %v", err)
	}
	second, err := f.FetchBatch(context.Background(), domain.BatchRequest{Query: q, Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("FetchBatch page 2: %v", err)
	}
	third, _ := f.FetchBatch(context.Background(), domain.BatchRequest{Query: q, Page: 3, PageSize: 10})

	if len(first.Articles) != 10 || len(second.Articles) != 4 || len(third.Articles) != 0 {
		t.Fatalf("unexpected page sizes %d/%d/%d", len(first.Articles), len(second.Articles), len(third.Articles))
	}
	if second.Articles[0].ID != "a10" {
		t.Fatalf("page 2 should start at a10, got %s", second.Articles[0].ID)
	}
	if first.Sentiment.Overall != domain.SentimentNegative {
		t.Fatalf("expected derived overall negative, got %q", first.Sentiment.Overall)
	}
}

func TestFixtureFetcherFiltersWindowAndSearch(t *testing.T) {
	anchor := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	f := newFixtureFetcherWithClock("fx", fixtureDataset(14, anchor), func() time.Time { return anchor })

	batch, err := f.FetchBatch(context.Background(), domain.BatchRequest{
		Query: domain.Query{Window: domain.Window6h},
		Page:  1,
	})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	// a00..a06 are inside the 6h window (a06 sits exactly on the cutoff)
	if len(batch.Articles) != 7 {
		t.Fatalf("expected 7 articles in 6h window, got %d", len(batch.Articles))
	}

	batch, _ = f.FetchBatch(context.Background(), domain.BatchRequest{
		Query: domain.Query{SearchText: "HEADLINE 1", Window: domain.Window30d},
		Page:  1,
	})
	for _, a := range batch.Articles {
		if !strings.HasPrefix(a.Title, "Headline 1") {
			t.Fatalf("unexpected match %q", a.Title)
		}
	}
	if len(batch.Articles) != 5 { // 1, 10, 11, 12, 13
		t.Fatalf("expected 5 matches, got %d", len(batch.Articles))
	}
}

func TestFixtureFetcherHonoursCancelledContext(t *testing.T) {
	f := newFixtureFetcherWithClock("fx", fixtureDataset(1, time.Now()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.FetchBatch(ctx, domain.BatchRequest{Page: 1}); Classify(err) != KindNetwork {
		t.Fatalf("expected network failure for cancelled context, got %v", err)
	}
}

func TestLoadDatasetYAMLUsesAnchor(t *testing.T) {
	dir := t.TempDir()
	dataset := writeFile(t, dir, "sample.yaml", `
anchor_time: 2025-03-04T12:00:00Z
sentiment: {positive: 40, neutral: 40, negative: 20}
trending:
  - {name: Earnings, sentiment: positive}
articles:
  - url: https://news.example/1
    title: Earnings beat
    source: {name: Reuters}
    published_at: 2025-03-04T10:00:00Z
  - url: https://news.example/2
    title: Old story
    published_at: 2025-02-01T10:00:00Z
`)
	sourcesFile := writeFile(t, dir, "sources.yaml", `
sources:
  - {id: offline, name: Offline, type: fixture, dataset_file: sample.yaml}
`)
	reg, err := LoadRegistry(sourcesFile)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	src, _ := reg.ByID("offline")
	if src.DatasetFile != dataset {
		t.Fatalf("dataset path %q, want %q", src.DatasetFile, dataset)
	}

	f, err := DefaultFetcherRegistry(nil, 0).FetcherFor(src)
	if err != nil {
		t.Fatalf("FetcherFor: %v", err)
	}
	batch, err := f.FetchBatch(context.Background(), domain.BatchRequest{Query: domain.Query{Window: domain.Window24h}, Page: 1})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(batch.Articles) != 1 || batch.Articles[0].ID != "https://news.example/1" {
		t.Fatalf("unexpected articles %+v", batch.Articles)
	}
	if batch.Sentiment.Overall != domain.SentimentNeutral {
		t.Fatalf("tie should derive neutral, got %q", batch.Sentiment.Overall)
	}
}

func TestFetcherForUnknownType(t *testing.T) {
	if _, err := DefaultFetcherRegistry(nil, 0).FetcherFor(Source{ID: "x", Type: "rss"}); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestShippedSourcesFile(t *testing.T) {
	reg, err := LoadRegistry("../../configs/sources.yaml")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if first, err := reg.Select(""); err != nil || first.Type != TypeHTTPJSON {
		t.Fatalf("expected http_json source first, got %+v (%v)", first, err)
	}

	src, err := reg.Select("offline")
	if err != nil {
		t.Fatalf("Select offline: %v", err)
	}
	f, err := DefaultFetcherRegistry(nil, 0).FetcherFor(src)
	if err != nil {
		t.Fatalf("FetcherFor: %v", err)
	}
	batch, err := f.FetchBatch(context.Background(), domain.BatchRequest{
		Query: domain.Query{Window: domain.Window30d},
		Page:  1,
	})
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(batch.Articles) != domain.PageSize {
		t.Fatalf("expected a full first page, got %d", len(batch.Articles))
	}
	if batch.Sentiment.Overall != domain.SentimentNegative {
		t.Fatalf("expected derived overall negative, got %q", batch.Sentiment.Overall)
	}
}
