package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/samvad-market-pulse/internal/dashboard"
	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
)

// DateLayout is the display format for article timestamps.
const DateLayout = "Jan 2, 3:04 PM"

// Mode selects how the article list is laid out.
type Mode string

const (
	ModeGrid Mode = "grid"
	ModeList Mode = "list"
)

// ParseMode validates a view mode label.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeGrid, ModeList:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported view mode %q (expected grid or list)", raw)
	}
}

// Article is an article ready for display.
type Article struct {
	ID          string           `json:"id"`
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	SourceName  string           `json:"source_name"`
	PublishedAt string           `json:"published_at"`
	Sentiment   domain.Sentiment `json:"sentiment"`
	Impact      domain.Impact    `json:"impact"`
}

// ViewModel is everything a renderer needs to draw the dashboard.
type ViewModel struct {
	LoadState     string                  `json:"load_state"`
	ErrorMessage  string                  `json:"error_message,omitempty"`
	RetryCount    int                     `json:"retry_count"`
	CanRetry      bool                    `json:"can_retry"`
	RetryHint     string                  `json:"retry_hint,omitempty"`
	Sentiment     domain.SentimentSummary `json:"sentiment"`
	Trending      []domain.TrendingTopic  `json:"trending"`
	Articles      []Article               `json:"articles"`
	HasMore       bool                    `json:"has_more"`
	ViewMode      Mode                    `json:"view_mode"`
	Query         domain.Query            `json:"query"`
	FilterText    string                  `json:"filter_text"`
	TotalArticles int                     `json:"total_articles"`
	Duplicates    int                     `json:"duplicates"`
}

// Options carries presentation settings that are not part of the dashboard state.
type Options struct {
	Mode     Mode
	Location *time.Location
}

// Build projects the state through the local filter and formats it for display.
func Build(s dashboard.State, opts Options) ViewModel {
	mode := opts.Mode
	if mode == "" {
		mode = ModeGrid
	}

	shown := make([]Article, 0, len(s.Articles))
	for a := range dashboard.ProjectSeq(s.Articles, s.FilterText) {
		shown = append(shown, BuildArticle(a, opts.Location))
	}

	return ViewModel{
		LoadState:     s.LoadState.String(),
		ErrorMessage:  s.ErrorMessage,
		RetryCount:    s.RetryCount,
		CanRetry:      s.CanRetry(),
		RetryHint:     retryHint(s),
		Sentiment:     s.Sentiment,
		Trending:      append([]domain.TrendingTopic{}, s.Trending...),
		Articles:      shown,
		HasMore:       s.HasMore,
		ViewMode:      mode,
		Query:         s.Query,
		FilterText:    s.FilterText,
		TotalArticles: len(s.Articles),
		Duplicates:    s.Duplicates,
	}
}

// BuildArticle formats a single article in loc (local time when nil).
func BuildArticle(a domain.Article, loc *time.Location) Article {
	if loc == nil {
		loc = time.Local
	}
	out := Article{
		ID:          a.ID,
		URL:         a.URL,
		Title:       strings.TrimSpace(a.Title),
		Description: plainText(a.Description),
		SourceName:  a.Source.Name,
		Sentiment:   a.Sentiment,
		Impact:      a.Impact,
	}
	if !a.PublishedAt.IsZero() {
		out.PublishedAt = a.PublishedAt.In(loc).Format(DateLayout)
	}
	if out.Sentiment == "" {
		out.Sentiment = domain.SentimentNeutral
	}
	if out.Impact == "" {
		out.Impact = domain.ImpactMedium
	}
	return out
}

func retryHint(s dashboard.State) string {
	if s.LoadState != dashboard.Error {
		return ""
	}
	if s.CanRetry() {
		return fmt.Sprintf("Try again (attempt %d of %d failed).", s.RetryCount, s.MaxRetries)
	}
	return "Still failing after several attempts. Check your internet connection, then refresh."
}

// plainText drops markup from remote descriptions and collapses whitespace.
func plainText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.Join(strings.Fields(raw), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
