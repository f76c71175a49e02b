package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by sources, the dashboard controller and views.

// PageSize is the fixed number of articles requested per batch.
const PageSize = 10

// Sentiment is the polarity attached to articles, topics and summaries.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Impact is the estimated market impact of an article.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// ParseSentiment normalizes a remote sentiment label. Unknown labels map to "".
func ParseSentiment(raw string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(raw))) {
	case SentimentPositive, "bullish":
		return SentimentPositive
	case SentimentNegative, "bearish":
		return SentimentNegative
	case SentimentNeutral:
		return SentimentNeutral
	default:
		return ""
	}
}

// ParseImpact normalizes a remote impact label. Unknown labels map to "".
func ParseImpact(raw string) Impact {
	switch i := Impact(strings.ToLower(strings.TrimSpace(raw))); i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return i
	default:
		return ""
	}
}

// ArticleSource is the publisher of an article as nested in the remote payload.
type ArticleSource struct {
	ID   string `json:"id,omitempty" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Article is a single news item. Sentiment and Impact are empty when the remote omitted them.
type Article struct {
	ID          string        `json:"id" yaml:"id"`
	URL         string        `json:"url" yaml:"url"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Source      ArticleSource `json:"source" yaml:"source"`
	PublishedAt time.Time     `json:"published_at" yaml:"published_at"`
	Sentiment   Sentiment     `json:"sentiment,omitempty" yaml:"sentiment"`
	Impact      Impact        `json:"impact,omitempty" yaml:"impact"`
}

// SentimentSummary is the percentage breakdown returned alongside a batch.
type SentimentSummary struct {
	Positive int       `json:"positive" yaml:"positive"`
	Neutral  int       `json:"neutral" yaml:"neutral"`
	Negative int       `json:"negative" yaml:"negative"`
	Overall  Sentiment `json:"overall" yaml:"overall"`
}

// DeriveOverall returns the dominant category. Ties resolve to neutral.
func (s SentimentSummary) DeriveOverall() Sentiment {
	switch {
	case s.Positive > s.Neutral && s.Positive > s.Negative:
		return SentimentPositive
	case s.Negative > s.Neutral && s.Negative > s.Positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Normalize fills Overall from the percentages when the remote left it out.
func (s SentimentSummary) Normalize() SentimentSummary {
	if s.Overall == "" {
		s.Overall = s.DeriveOverall()
	}
	return s
}

// TrendingTopic is a named subject with its dominant sentiment.
type TrendingTopic struct {
	Name      string    `json:"name" yaml:"name"`
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
}

// Query identifies what the dashboard is showing.
type Query struct {
	SearchText string     `json:"search_text"`
	Window     TimeWindow `json:"time_window"`
}

// BatchRequest asks a source for one page of a query.
type BatchRequest struct {
	Query    Query
	Page     int
	PageSize int
}

// Batch is one page of articles plus the sentiment and trending data that came with it.
type Batch struct {
	Articles  []Article
	Sentiment SentimentSummary
	Trending  []TrendingTopic
}
