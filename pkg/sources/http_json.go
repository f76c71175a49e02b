package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

// httpJSONFetcher implements Fetcher against a JSON news/sentiment API.
type httpJSONFetcher struct {
	src    Source
	client HTTPClient
	getenv func(string) string
}

// NewHTTPJSONFetcher builds a fetcher for an http_json source.
func NewHTTPJSONFetcher(src Source, client HTTPClient) (Fetcher, error) {
	if !strings.EqualFold(src.Type, TypeHTTPJSON) {
		return nil, fmt.Errorf("http_json fetcher received incompatible source type %q", src.Type)
	}
	if strings.TrimSpace(src.BaseURL) == "" {
		return nil, fmt.Errorf("source %q base_url is empty", src.ID)
	}
	if client == nil {
		return nil, fmt.Errorf("source %q has no http client", src.ID)
	}
	return &httpJSONFetcher{src: src, client: client, getenv: os.Getenv}, nil
}

func (f *httpJSONFetcher) ID() string { return f.src.ID }

func (f *httpJSONFetcher) FetchBatch(ctx context.Context, req domain.BatchRequest) (domain.Batch, error) {
	page, size := normalizePaging(req.Page, req.PageSize)
	params := map[string]string{
		"q":         strings.TrimSpace(req.Query.SearchText),
		"timeframe": string(req.Query.Window),
		"page":      strconv.Itoa(page),
		"pageSize":  strconv.Itoa(size),
	}

	resp, err := f.client.Get(ctx, f.src.BaseURL+f.src.Path, params, Headers(f.src, f.getenv))
	if err != nil {
		return domain.Batch{}, transportError(f.src.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return domain.Batch{}, remoteError(f.src.ID, resp.StatusCode(),
			fmt.Errorf("unexpected status body: %s", responseSnippet(body)))
	}

	batch, err := decodeBatch(body)
	if err != nil {
		return domain.Batch{}, remoteError(f.src.ID, resp.StatusCode(), err)
	}
	return batch, nil
}

type wireResponse struct {
	Articles       []wireArticle  `json:"articles"`
	Sentiment      *wireSentiment `json:"sentiment"`
	SentimentData  *wireSentiment `json:"sentimentData"`
	Trending       []wireTopic    `json:"trending"`
	TrendingTopics []wireTopic    `json:"trendingTopics"`
}

type wireArticle struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Source      wireSource `json:"source"`
	PublishedAt string     `json:"publishedAt"`
	Sentiment   string     `json:"sentiment"`
	Impact      string     `json:"impact"`
}

type wireSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireSentiment struct {
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
	Overall  string `json:"overall"`
}

type wireTopic struct {
	Name      string `json:"name"`
	Topic     string `json:"topic"`
	Sentiment string `json:"sentiment"`
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func decodeBatch(body []byte) (domain.Batch, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.Batch{}, fmt.Errorf("decode batch payload: %w", err)
	}
	if wire.Articles == nil {
		return domain.Batch{}, errors.New("decode batch payload: articles field missing")
	}

	articles := make([]domain.Article, 0, len(wire.Articles))
	for i, wa := range wire.Articles {
		a, err := wa.toDomain()
		if err != nil {
			return domain.Batch{}, fmt.Errorf("article[%d]: %w", i, err)
		}
		articles = append(articles, a)
	}

	var summary domain.SentimentSummary
	if ws := firstSentiment(wire.Sentiment, wire.SentimentData); ws != nil {
		summary = domain.SentimentSummary{
			Positive: ws.Positive,
			Neutral:  ws.Neutral,
			Negative: ws.Negative,
			Overall:  domain.ParseSentiment(ws.Overall),
		}
	}

	topics := wire.Trending
	if len(topics) == 0 {
		topics = wire.TrendingTopics
	}
	trending := make([]domain.TrendingTopic, 0, len(topics))
	for _, wt := range topics {
		name := firstNonEmpty(wt.Name, wt.Topic)
		if name == "" {
			continue
		}
		sentiment := domain.ParseSentiment(wt.Sentiment)
		if sentiment == "" {
			sentiment = domain.SentimentNeutral
		}
		trending = append(trending, domain.TrendingTopic{Name: name, Sentiment: sentiment})
	}

	return domain.Batch{
		Articles:  articles,
		Sentiment: summary.Normalize(),
		Trending:  trending,
	}, nil
}

func firstSentiment(values ...*wireSentiment) *wireSentiment {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (wa wireArticle) toDomain() (domain.Article, error) {
	url := strings.TrimSpace(wa.URL)
	id := firstNonEmpty(wa.ID, url)
	if id == "" {
		return domain.Article{}, errors.New("article has neither id nor url")
	}

	var published time.Time
	if raw := strings.TrimSpace(wa.PublishedAt); raw != "" {
		t, err := parsePublished(raw)
		if err != nil {
			return domain.Article{}, err
		}
		published = t
	}

	return domain.Article{
		ID:          id,
		URL:         url,
		Title:       strings.TrimSpace(wa.Title),
		Description: strings.TrimSpace(wa.Description),
		Source: domain.ArticleSource{
			ID:   strings.TrimSpace(wa.Source.ID),
			Name: strings.TrimSpace(wa.Source.Name),
		},
		PublishedAt: published,
		Sentiment:   domain.ParseSentiment(wa.Sentiment),
		Impact:      domain.ParseImpact(wa.Impact),
	}, nil
}

func parsePublished(raw string) (time.Time, error) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable publishedAt %q", raw)
}
