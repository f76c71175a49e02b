package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

// Dataset is the on-disk shape served by fixture sources.
type Dataset struct {
	// AnchorTime pins "now" for window filtering so recorded datasets stay stable.
	AnchorTime *time.Time              `json:"anchor_time" yaml:"anchor_time"`
	Articles   []domain.Article        `json:"articles" yaml:"articles"`
	Sentiment  domain.SentimentSummary `json:"sentiment" yaml:"sentiment"`
	Trending   []domain.TrendingTopic  `json:"trending" yaml:"trending"`
}

// fixtureFetcher serves a static dataset, filtering and paging it locally.
type fixtureFetcher struct {
	id      string
	dataset Dataset
	now     func() time.Time
}

// NewFixtureFetcher loads the dataset referenced by src.DatasetFile.
func NewFixtureFetcher(src Source, _ HTTPClient) (Fetcher, error) {
	if !strings.EqualFold(src.Type, TypeFixture) {
		return nil, fmt.Errorf("fixture fetcher received incompatible source type %q", src.Type)
	}
	ds, err := LoadDataset(src.DatasetFile)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.ID, err)
	}
	return newFixtureFetcherWithClock(src.ID, ds, time.Now), nil
}

func newFixtureFetcherWithClock(id string, ds Dataset, now func() time.Time) *fixtureFetcher {
	if now == nil {
		now = time.Now
	}
	if ds.AnchorTime != nil {
		anchor := *ds.AnchorTime
		now = func() time.Time { return anchor }
	}
	return &fixtureFetcher{id: id, dataset: ds, now: now}
}

// LoadDataset reads a YAML or JSON dataset file.
func LoadDataset(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}

	var ds Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &ds)
	default:
		err = yaml.Unmarshal(raw, &ds)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("decode dataset %s: %w", filepath.Base(path), err)
	}

	for i := range ds.Articles {
		if ds.Articles[i].ID == "" {
			ds.Articles[i].ID = ds.Articles[i].URL
		}
	}
	return ds, nil
}

func (f *fixtureFetcher) ID() string { return f.id }

func (f *fixtureFetcher) FetchBatch(ctx context.Context, req domain.BatchRequest) (domain.Batch, error) {
	if err := ctx.Err(); err != nil {
		return domain.Batch{}, transportError(f.id, err)
	}

	page, size := normalizePaging(req.Page, req.PageSize)
	matched := f.match(req.Query)

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	trending := make([]domain.TrendingTopic, len(f.dataset.Trending))
	copy(trending, f.dataset.Trending)

	return domain.Batch{
		Articles:  append([]domain.Article(nil), matched[start:end]...),
		Sentiment: f.dataset.Sentiment.Normalize(),
		Trending:  trending,
	}, nil
}

// match applies the server-side search and recency filters.
func (f *fixtureFetcher) match(q domain.Query) []domain.Article {
	needle := strings.ToLower(strings.TrimSpace(q.SearchText))
	var cutoff time.Time
	if d := q.Window.Duration(); d > 0 {
		cutoff = f.now().Add(-d)
	}

	out := make([]domain.Article, 0, len(f.dataset.Articles))
	for _, a := range f.dataset.Articles {
		if !cutoff.IsZero() && !a.PublishedAt.IsZero() && a.PublishedAt.Before(cutoff) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}
